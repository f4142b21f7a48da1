// Package gpio provides footswitch input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the footswitch.
type Reader interface {
	// Read returns the logical footswitch state.
	// The line is pulled up, so electrically low = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Defaults for a Raspberry Pi (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
