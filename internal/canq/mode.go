package canq

import (
	"fmt"
	"strings"
)

// Mode selects the insertion discipline of a Queue.
type Mode int

const (
	// Fifo appends at the write cursor.
	Fifo Mode = iota
	// Priority keeps handles sorted by CAN identifier and coalesces duplicates.
	Priority
)

func (m Mode) String() string {
	switch m {
	case Fifo:
		return "fifo"
	case Priority:
		return "priority"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "fifo" or "priority", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return Fifo, nil
	case "priority", "prio":
		return Priority, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrMode, s)
	}
}

func (m Mode) valid() bool {
	return m == Fifo || m == Priority
}
