package types

// PinInput samples a raw input level (true = high).
type PinInput func() bool

// PinOutput drives an output level.
type PinOutput func(level bool)
