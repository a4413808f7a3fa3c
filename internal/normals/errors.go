package normals

import (
	"errors"
	"fmt"
)

var (
	// ErrFrequencyWithoutCategory is returned when a frequency header appears
	// before any category header.
	ErrFrequencyWithoutCategory = errors.New("frequency header outside any normals category")

	// ErrDataWithoutVariable is returned when a daily month row appears before
	// a row announcing its variable.
	ErrDataWithoutVariable = errors.New("daily month row without a variable")

	// ErrUnknownMonth is returned when a month row starts with a token that is
	// not a month abbreviation.
	ErrUnknownMonth = errors.New("unknown month")

	// ErrNonNumericToken is returned when a value is not an integer after its
	// flag has been stripped.
	ErrNonNumericToken = errors.New("non-numeric value")
)

// LineError reports a fatal parse error together with the offending line.
type LineError struct {
	Line int    // 1-based line number
	Text string // line content, trimmed
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
