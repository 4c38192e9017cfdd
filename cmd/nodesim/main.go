// Command nodesim runs a simulated sensor node on the host and polls it
// the way the coordinator does.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
