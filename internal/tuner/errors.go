package tuner

import "fmt"

// Error is a tune failure reported to clients with an HDHomeRun-style code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d - %s", e.Code, e.Message)
}

// Is matches tuner errors by code so wrapped copies compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrNoTunerAvailable is returned when every tuner is locked.
	ErrNoTunerAvailable = &Error{Code: 805, Message: "All Tuners In Use"}

	// ErrTranscoderMissing is returned when no usable ffmpeg was found at setup.
	ErrTranscoderMissing = &Error{Code: 806, Message: "Tune Failed: FFMPEG Missing"}
)
