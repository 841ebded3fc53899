package logsegment

import causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"

// ErrSegmentNotFound builds a ResourceNotFound-kind error for a missing
// segment id.
func ErrSegmentNotFound(id SegmentID) error {
	return causalityerrors.ResourceNotFound(string(id))
}
