package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreadableFile matches any *UnreadableFileError via errors.Is.
var ErrUnreadableFile = errors.New("unreadable file")

// UnreadableFileError is returned when a dataset could not be opened or when
// every decoding strategy failed to produce a parseable table.
type UnreadableFileError struct {
	Source   string
	Attempts []error
}

func (e *UnreadableFileError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, err := range e.Attempts {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("unreadable file %s: %s", e.Source, strings.Join(msgs, "; "))
}

func (e *UnreadableFileError) Is(target error) bool {
	return target == ErrUnreadableFile
}

func (e *UnreadableFileError) Unwrap() []error {
	return e.Attempts
}

// MalformedRow describes a CSV row that was skipped.
type MalformedRow struct {
	Line   int
	Reason string
}
