package protocol

// Address identifies a node on the radio link.
type Address byte

const (
	// CoordinatorAddress is the single polling peer. It is never assigned
	// to a sensor node.
	CoordinatorAddress Address = 1

	// FirstNodeAddress is the lowest address a sensor node may use.
	FirstNodeAddress Address = 2

	MaxChannel = 125
)

// ValidNodeAddress reports whether a can be assigned to a sensor node.
func ValidNodeAddress(a Address) bool { return a >= FirstNodeAddress }

// ValidateChannel rejects channels the transceiver cannot tune to.
func ValidateChannel(ch uint8) error {
	if ch > MaxChannel {
		return ErrInvalidChannel
	}
	return nil
}
