package csvstore

import (
	"errors"
	"fmt"
)

// QuarantineCorrupt sets aside every resource named in loadErr. It refuses
// when loadErr contains anything other than malformed records, since an
// I/O failure says nothing about the file contents.
func (s *FSStore) QuarantineCorrupt(loadErr error) ([]string, error) {
	if !onlyMalformed(loadErr) {
		return nil, loadErr
	}
	var moved []string
	for _, r := range MalformedResources(loadErr) {
		path, err := s.Quarantine(r)
		if err != nil {
			return moved, fmt.Errorf("quarantine %s: %w", r.FileName(), err)
		}
		if path != "" {
			moved = append(moved, path)
		}
	}
	return moved, nil
}

func onlyMalformed(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if !onlyMalformed(inner) {
				return false
			}
		}
		return true
	}
	var mre *MalformedRecordError
	return errors.As(err, &mre)
}
