package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/sensor"
)

func TestProbeAndBatteryConversions(t *testing.T) {
	tests := []struct {
		data []byte
		want float64
	}{
		{data: []byte{0x58, 0x01}, want: 21.5},
		{data: []byte{0xF8, 0xFF}, want: -0.5},
		{data: []byte{0x00}, want: 0},
	}
	for _, tt := range tests {
		if got := probeCelsius(tt.data); got != tt.want {
			t.Errorf("probeCelsius(%v) = %v, want %v", tt.data, got, tt.want)
		}
	}
	if got := batteryVolts(185); got != 3.7 {
		t.Errorf("batteryVolts(185) = %v, want 3.7", got)
	}
	if !probeType(sensor.TypeProbe) || !probeType(sensor.TypeProbe+sensor.LowPowerFlag) || probeType(sensor.TypeBattery) {
		t.Error("probeType misclassifies type codes")
	}
}

func TestSetupAppliesFileEnvAndVerbose(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "node.yaml")
	if err := os.WriteFile(cfgPath, []byte("node:\n  address: 6\nlog:\n  level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("NRFNODE_CHANNEL=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("NRFNODE_CHANNEL") })

	a := &app{configPath: cfgPath, envFile: envPath, ctx: context.Background(), log: logrus.New()}
	if err := a.setup(); err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	if a.cfg.Node.Address != 6 || a.cfg.Node.ChannelOrDefault() != 42 {
		t.Errorf("node = %+v", a.cfg.Node)
	}
	if a.log.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", a.log.GetLevel())
	}

	a = &app{envFile: filepath.Join(dir, "missing.env"), verbose: true, ctx: context.Background(), log: logrus.New()}
	if err := a.setup(); err != nil {
		t.Fatalf("setup() with missing env file error = %v", err)
	}
	if a.log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug with --verbose", a.log.GetLevel())
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "node.yaml")
	if err := os.WriteFile(cfgPath, []byte("node:\n  address: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := &app{configPath: cfgPath, ctx: context.Background(), log: logrus.New()}
	if err := a.setup(); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("setup() error = %v, want validation failure", err)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "Version: dev\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPresentCommandAgainstSimulatedNode(t *testing.T) {
	a := &app{ctx: context.Background(), log: logrus.New()}
	a.log.SetLevel(logrus.ErrorLevel)
	if err := a.setup(); err != nil {
		t.Fatal(err)
	}

	cmd := newPresentCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--speed", "50"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("present error = %v", err)
	}
	if !strings.Contains(out.String(), "node 2: 4 sensors") {
		t.Errorf("output = %q", out.String())
	}
}
