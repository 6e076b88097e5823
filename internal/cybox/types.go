package cybox

import "strings"

// #region delimiter
// Delimiter joins the parts of a multi-valued field in the document encoding.
const Delimiter = "##comma##"
// #endregion delimiter

// #region condition-type
// ConditionType is the comparison applied to a field's value(s).
type ConditionType string

const (
	Equals             ConditionType = "Equals"
	DoesNotEqual       ConditionType = "DoesNotEqual"
	Contains           ConditionType = "Contains"
	DoesNotContain     ConditionType = "DoesNotContain"
	StartsWith         ConditionType = "StartsWith"
	EndsWith           ConditionType = "EndsWith"
	GreaterThan        ConditionType = "GreaterThan"
	GreaterThanOrEqual ConditionType = "GreaterThanOrEqual"
	LessThan           ConditionType = "LessThan"
	LessThanOrEqual    ConditionType = "LessThanOrEqual"
	InclusiveBetween   ConditionType = "InclusiveBetween"
	ExclusiveBetween   ConditionType = "ExclusiveBetween"
)

// IsBetween reports whether c takes exactly two range operands.
func (c ConditionType) IsBetween() bool {
	return c == InclusiveBetween || c == ExclusiveBetween
}
// #endregion condition-type

// #region apply-policy
// ApplyPolicy governs how the parts of a multi-valued field combine.
type ApplyPolicy string

const (
	ApplyAny  ApplyPolicy = "ANY"
	ApplyAll  ApplyPolicy = "ALL"
	ApplyNone ApplyPolicy = "NONE"
)
// #endregion apply-policy

// #region operator
// Operator combines the children of a Composition.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
)
// #endregion operator

// #region field
// Field is one optional property of a typed object. Values holds the parts of a
// multi-valued field in document order.
type Field struct {
	Values    []string
	Condition ConditionType // empty means Equals
	Apply     ApplyPolicy   // empty means ANY
	Datatype  string        // e.g. "dateTime"
}

// NewField splits raw on Delimiter.
func NewField(raw string, cond ConditionType, apply ApplyPolicy) *Field {
	return &Field{
		Values:    SplitValues(raw),
		Condition: cond,
		Apply:     apply,
	}
}

// Str builds an Equals/ANY field from one or more literal values.
func Str(values ...string) *Field {
	return &Field{Values: values}
}

// Raw rejoins the values with Delimiter.
func (f *Field) Raw() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Values, Delimiter)
}

// IsEmpty reports whether the field carries no usable value.
func (f *Field) IsEmpty() bool {
	return f == nil || len(f.Values) == 0 || (len(f.Values) == 1 && f.Values[0] == "")
}

// SplitValues splits a delimiter-joined value. An empty string yields a single
// empty part so callers can report it.
func SplitValues(raw string) []string {
	return strings.Split(raw, Delimiter)
}
// #endregion field
