package csvstore

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

var ErrMalformedRecord = fmt.Errorf("malformed record: %w", shared.ErrCorrupt)

// MalformedRecordError pinpoints the row that failed to parse.
type MalformedRecordError struct {
	Resource Resource
	Line     int
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", e.Resource.FileName(), e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Resource.FileName(), e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// MalformedResources lists the resources named by MalformedRecordErrors
// anywhere in err, including inside errors.Join trees.
func MalformedResources(err error) []Resource {
	var out []Resource
	seen := map[Resource]bool{}
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		var mre *MalformedRecordError
		if errors.As(e, &mre) && !seen[mre.Resource] {
			seen[mre.Resource] = true
			out = append(out, mre.Resource)
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
