package match

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

// #region errors
// ErrEmptyValue is returned when a field has no value to compare.
var ErrEmptyValue = errors.New("empty value field")

// UnsupportedConditionError reports a condition type that cannot be applied to
// the target field. Callers turn it into a warning or an Indeterminate result.
type UnsupportedConditionError struct {
	Condition cybox.ConditionType
	Field     string
}

func (e *UnsupportedConditionError) Error() string {
	target := e.Field
	if target == "" {
		target = "string field"
	}
	return fmt.Sprintf("could not process condition %s on %s", e.Condition, target)
}

// UnsupportedApplyError reports an apply policy outside ANY/ALL/NONE.
type UnsupportedApplyError struct {
	Apply cybox.ApplyPolicy
}

func (e *UnsupportedApplyError) Error() string {
	return fmt.Sprintf("could not process apply condition %s", e.Apply)
}

// IsUnsupported reports whether err is one of the unsupported-condition errors.
func IsUnsupported(err error) bool {
	var condErr *UnsupportedConditionError
	var applyErr *UnsupportedApplyError
	return errors.As(err, &condErr) || errors.As(err, &applyErr)
}
// #endregion errors
