package base

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrShortRead is matched by every ShortReadError.
var ErrShortRead = errors.New("short read")

// ShortReadError reports that a decoder found fewer fields than a complete
// record requires. Nothing is written to the destination when it is returned.
type ShortReadError struct {
	Format    string // "ascii", "binary" or "dump"
	Want, Got int    // number of fields required and obtained
	Err       error  // underlying reader or parse error, may be nil
}

func (e *ShortReadError) Error() string {
	msg := fmt.Sprintf(
		"%s data reading fails: requiring data number is %d, only obtain %d",
		e.Format, e.Want, e.Got,
	)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShortReadError) Is(target error) bool { return target == ErrShortRead }

func (e *ShortReadError) Unwrap() error { return e.Err }
