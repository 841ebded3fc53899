package resource

import causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"

// ErrInvalidState builds a ResourceInvalidState-kind error for illegal
// state transitions and illegal field mutations (I2, I4).
func ErrInvalidState(reason string) error {
	return causalityerrors.ResourceInvalidState(reason)
}
