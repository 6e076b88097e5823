package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

// #region clause
// Clause is a parameterized SQL predicate over the case file table.
type Clause struct {
	SQL  string
	Args []any
}

// IsEmpty reports whether the clause has no predicate.
func (c Clause) IsEmpty() bool { return c.SQL == "" }

// And joins two clauses. An empty side yields the other unchanged.
func (c Clause) And(other Clause) Clause {
	if c.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return c
	}
	args := make([]any, 0, len(c.Args)+len(other.Args))
	args = append(args, c.Args...)
	args = append(args, other.Args...)
	return Clause{SQL: c.SQL + " AND " + other.SQL, Args: args}
}

// String renders the clause with its arguments substituted, for traces only.
func (c Clause) String() string {
	var b strings.Builder
	arg := 0
	for _, r := range c.SQL {
		if r == '?' && arg < len(c.Args) {
			switch v := c.Args[arg].(type) {
			case string:
				b.WriteString("'" + v + "'")
			default:
				fmt.Fprint(&b, v)
			}
			arg++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
// #endregion clause

// #region columns
// Columns are the file-table columns a clause may reference.
var columns = map[string]bool{
	"name":        true,
	"parent_path": true,
	"size":        true,
	"crtime":      true,
	"mtime":       true,
	"atime":       true,
	"md5":         true,
	"sha256":      true,
}

func checkColumn(column string) error {
	if !columns[column] {
		return fmt.Errorf("unknown file column %q", column)
	}
	return nil
}
// #endregion columns

// #region string-clause
// StringClause builds a case-insensitive predicate on a text column.
func StringClause(values []string, cond cybox.ConditionType, apply cybox.ApplyPolicy, column string) (Clause, error) {
	if err := checkColumn(column); err != nil {
		return Clause{}, err
	}
	if isEmptyValues(values) {
		return Clause{}, ErrEmptyValue
	}
	if cond == "" {
		cond = cybox.Equals
	}

	lowered := "lower(" + column + ")"
	partials := make([]Clause, 0, len(values))
	for _, v := range values {
		lv := strings.ToLower(v)
		var p Clause
		switch cond {
		case cybox.Equals:
			p = Clause{SQL: lowered + " = ?", Args: []any{lv}}
		case cybox.DoesNotEqual:
			p = Clause{SQL: lowered + " != ?", Args: []any{lv}}
		case cybox.Contains:
			p = Clause{SQL: lowered + ` LIKE ? ESCAPE '\'`, Args: []any{"%" + escapeLike(lv) + "%"}}
		case cybox.DoesNotContain:
			p = Clause{SQL: lowered + ` NOT LIKE ? ESCAPE '\'`, Args: []any{"%" + escapeLike(lv) + "%"}}
		case cybox.StartsWith:
			p = Clause{SQL: lowered + ` LIKE ? ESCAPE '\'`, Args: []any{escapeLike(lv) + "%"}}
		case cybox.EndsWith:
			p = Clause{SQL: lowered + ` LIKE ? ESCAPE '\'`, Args: []any{"%" + escapeLike(lv)}}
		default:
			return Clause{}, &UnsupportedConditionError{Condition: cond, Field: column}
		}
		partials = append(partials, p)
	}
	return combine(partials, apply)
}
// #endregion string-clause

// #region numeric-clause
var numericOps = map[cybox.ConditionType]string{
	cybox.Equals:             "=",
	cybox.DoesNotEqual:       "!=",
	cybox.GreaterThan:        ">",
	cybox.GreaterThanOrEqual: ">=",
	cybox.LessThan:           "<",
	cybox.LessThanOrEqual:    "<=",
}

// NumericClause builds a predicate on an integer column. Between conditions
// need exactly two operands and ignore the apply policy.
func NumericClause(values []string, cond cybox.ConditionType, apply cybox.ApplyPolicy, column string) (Clause, error) {
	if err := checkColumn(column); err != nil {
		return Clause{}, err
	}
	if isEmptyValues(values) {
		return Clause{}, ErrEmptyValue
	}
	if cond == "" {
		cond = cybox.Equals
	}

	if cond.IsBetween() {
		if len(values) != 2 {
			return Clause{}, fmt.Errorf("unexpected number of arguments in %s on %s (%s)",
				cond, column, strings.Join(values, cybox.Delimiter))
		}
		lo, err := parseNumber(values[0], column)
		if err != nil {
			return Clause{}, err
		}
		hi, err := parseNumber(values[1], column)
		if err != nil {
			return Clause{}, err
		}
		if cond == cybox.InclusiveBetween {
			return Clause{SQL: "(" + column + " >= ? AND " + column + " <= ?)", Args: []any{lo, hi}}, nil
		}
		return Clause{SQL: "(" + column + " > ? AND " + column + " < ?)", Args: []any{lo, hi}}, nil
	}

	op, ok := numericOps[cond]
	if !ok {
		return Clause{}, &UnsupportedConditionError{Condition: cond, Field: column}
	}
	partials := make([]Clause, 0, len(values))
	for _, v := range values {
		n, err := parseNumber(v, column)
		if err != nil {
			return Clause{}, err
		}
		partials = append(partials, Clause{SQL: column + " " + op + " ?", Args: []any{n}})
	}
	return combine(partials, apply)
}

// TimestampClause converts RFC 3339 timestamps to Unix seconds and builds a
// numeric predicate.
func TimestampClause(values []string, cond cybox.ConditionType, apply cybox.ApplyPolicy, column string) (Clause, error) {
	if isEmptyValues(values) {
		return Clause{}, ErrEmptyValue
	}
	converted, err := ConvertTimestamps(values)
	if err != nil {
		return Clause{}, err
	}
	return NumericClause(converted, cond, apply, column)
}

// ConvertTimestamps turns each RFC 3339 value into a Unix-seconds string.
func ConvertTimestamps(values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", v, err)
		}
		out[i] = strconv.FormatInt(ts.Unix(), 10)
	}
	return out, nil
}

func parseNumber(v, column string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q on %s is not numeric", v, column)
	}
	return n, nil
}
// #endregion numeric-clause

// #region combine
// combine joins per-part predicates: ANY as OR, ALL as AND, NONE as AND NOT.
func combine(partials []Clause, apply cybox.ApplyPolicy) (Clause, error) {
	if apply == "" {
		apply = cybox.ApplyAny
	}
	var joiner string
	switch apply {
	case cybox.ApplyAny:
		joiner = " OR "
	case cybox.ApplyAll:
		joiner = " AND "
	case cybox.ApplyNone:
		joiner = " AND "
	default:
		return Clause{}, &UnsupportedApplyError{Apply: apply}
	}

	sqls := make([]string, len(partials))
	var args []any
	for i, p := range partials {
		if apply == cybox.ApplyNone {
			sqls[i] = "NOT (" + p.SQL + ")"
		} else {
			sqls[i] = p.SQL
		}
		args = append(args, p.Args...)
	}
	if len(sqls) == 1 {
		return Clause{SQL: sqls[0], Args: args}, nil
	}
	return Clause{SQL: "(" + strings.Join(sqls, joiner) + ")", Args: args}, nil
}

func isEmptyValues(values []string) bool {
	return len(values) == 0 || (len(values) == 1 && values[0] == "")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
// #endregion combine
