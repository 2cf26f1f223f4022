package comparator

import "github.com/KOMKZ/go-yogan-event/errcode"

// Module code 20: comparator
var (
	// ErrInvalidArgument a nil or otherwise unusable comparator was supplied
	ErrInvalidArgument = errcode.Register(errcode.New(20, 1, "comparator",
		"error.comparator.invalid_argument", "invalid comparator argument"))

	// ErrIndexOutOfRange an insertion index outside [0, length] was supplied
	ErrIndexOutOfRange = errcode.Register(errcode.New(20, 2, "comparator",
		"error.comparator.index_out_of_range", "comparator index out of range"))
)
