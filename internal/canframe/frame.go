// Package canframe defines the CAN frame view resolved from queue handles,
// and a fixed table that owns frames on behalf of a driver.
package canframe

import "fmt"

// Identifier masks, same values as <linux/can.h>.
const (
	SFFMask = 0x7FF      // standard 11-bit identifier
	EFFMask = 0x1FFFFFFF // extended 29-bit identifier
)

// MaxDLC is the largest classic CAN payload length.
const MaxDLC = 8

// Frame is a classic CAN frame.
type Frame struct {
	ID       uint32
	Extended bool
	Remote   bool
	DLC      uint8 // payload length, 0..8
	Data     [MaxDLC]byte
}

// CanID returns the arbitration identifier: ID masked to 11 or 29 bits.
// Lower values win arbitration on the bus.
func (f Frame) CanID() uint32 {
	if f.Extended {
		return f.ID & EFFMask
	}
	return f.ID & SFFMask
}

// Payload returns the valid part of Data.
func (f *Frame) Payload() []byte {
	n := f.DLC
	if n > MaxDLC {
		n = MaxDLC
	}
	return f.Data[:n]
}

func (f Frame) String() string {
	kind := "std"
	if f.Extended {
		kind = "ext"
	}
	if f.Remote {
		return fmt.Sprintf("%s ID: %X RTR Len: %d", kind, f.CanID(), f.DLC)
	}
	return fmt.Sprintf("%s ID: %X Len: %d Data: %X", kind, f.CanID(), f.DLC, f.Payload())
}
