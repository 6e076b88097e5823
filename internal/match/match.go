package match

import (
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

// #region match-field
// MatchField evaluates a multi-valued string field against subject.
func MatchField(f *cybox.Field, subject string) (bool, error) {
	if f == nil {
		return false, ErrEmptyValue
	}
	return Match(f.Values, f.Condition, f.Apply, subject)
}
// #endregion match-field

// #region match
// Match computes one partial result per value and combines them under apply,
// stopping as soon as the outcome is decided. Comparisons are case-insensitive.
func Match(values []string, cond cybox.ConditionType, apply cybox.ApplyPolicy, subject string) (bool, error) {
	if len(values) == 0 {
		return false, ErrEmptyValue
	}
	if cond == "" {
		cond = cybox.Equals
	}
	if apply == "" {
		apply = cybox.ApplyAny
	}
	switch apply {
	case cybox.ApplyAny, cybox.ApplyAll, cybox.ApplyNone:
	default:
		return false, &UnsupportedApplyError{Apply: apply}
	}

	lowerSubject := strings.ToLower(subject)
	for _, v := range values {
		partial, err := compare(strings.ToLower(v), cond, lowerSubject)
		if err != nil {
			return false, err
		}
		switch apply {
		case cybox.ApplyNone:
			if partial {
				return false, nil
			}
		case cybox.ApplyAll:
			if !partial {
				return false, nil
			}
		default:
			if partial {
				return true, nil
			}
		}
	}

	// Every part agreed: NONE and ALL hold, ANY found nothing.
	return apply != cybox.ApplyAny, nil
}
// #endregion match

// #region compare
func compare(value string, cond cybox.ConditionType, subject string) (bool, error) {
	switch cond {
	case cybox.Equals:
		return subject == value, nil
	case cybox.DoesNotEqual:
		return subject != value, nil
	case cybox.Contains:
		return strings.Contains(subject, value), nil
	case cybox.DoesNotContain:
		return !strings.Contains(subject, value), nil
	case cybox.StartsWith:
		return strings.HasPrefix(subject, value), nil
	case cybox.EndsWith:
		return strings.HasSuffix(subject, value), nil
	default:
		return false, &UnsupportedConditionError{Condition: cond}
	}
}
// #endregion compare
