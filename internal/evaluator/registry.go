package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/hive"
	"github.com/danielpatrickdp/stix-triage/internal/match"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region registry
// Registry looks a key up in the exported hives and checks its values.
type Registry struct {
	env *Env
	obj *cybox.RegistryKey
	id  string
}

func NewRegistry(env *Env, obj *cybox.RegistryKey, id string) *Registry {
	return &Registry{env: env, obj: obj, id: id}
}

type hiveOutcome int

const (
	keyMissing hiveOutcome = iota
	keyFoundValuesMissing
	keyMatched
)

func (e *Registry) Evaluate(ctx context.Context) result.ObservableResult {
	const kind = cybox.KindRegistryKey
	var w result.Warnings
	warnUnsupported(&w, e.obj)

	if e.obj.Key.IsEmpty() {
		return result.NewIndeterminate(e.id, describe(kind, "No key value", &w))
	}
	if cond := condition(e.obj.Key); cond != cybox.Equals {
		return result.NewIndeterminate(e.id, describe(kind, fmt.Sprintf("Can not support condition %s on Key field", cond), &w))
	}
	if ap := apply(e.obj.Key); ap != cybox.ApplyAny {
		w.Add("Apply condition %s on Key field treated as ANY", ap)
	}

	hiveName := ""
	if !e.obj.Hive.IsEmpty() {
		hiveName = e.obj.Hive.Values[0]
	}
	hives := hive.Select(e.env.Hives, hiveName)
	if len(hives) == 0 {
		return result.NewIndeterminate(e.id, describe(kind, "No matching registry hives found", &w))
	}

	opened := 0
	best := keyMissing
	for _, h := range hives {
		if err := ctx.Err(); err != nil {
			return failed(kind, e.id, err, &w)
		}
		root, closer, err := e.env.opener()(h.Path)
		if err != nil {
			w.AddErr(err)
			continue
		}
		opened++
		outcome := e.testHive(root, hiveName, &w)
		closer.Close()

		if outcome == keyMatched {
			ref := result.ArtifactRef{ObjectID: h.File.ID, ObservableID: e.id, ObjectType: kind.String()}
			return result.NewTrue(e.id,
				describe(kind, fmt.Sprintf("Found key %s in %s", joinValues(e.obj.Key), h.File.FullPath()), &w),
				[]result.ArtifactRef{ref})
		}
		if outcome > best {
			best = outcome
		}
	}

	switch {
	case opened == 0:
		return result.NewIndeterminate(e.id, describe(kind, "Could not open any registry hive", &w))
	case best == keyFoundValuesMissing:
		return result.NewFalse(e.id, describe(kind, "Found key but no matching values", &w))
	default:
		return result.NewFalse(e.id, describe(kind, "Could not find key "+joinValues(e.obj.Key), &w))
	}
}
// #endregion registry

// #region test-hive
// testHive checks every key value of the object against one hive. Parser
// panics on damaged hives become warnings.
func (e *Registry) testHive(root hive.Key, hiveName string, w *result.Warnings) (outcome hiveOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.Add("Error reading hive: %v", r)
			outcome = keyMissing
		}
	}()

	for _, keyPath := range e.obj.Key.Values {
		key, ok := hive.Lookup(root, keyPath, hiveName)
		if !ok {
			continue
		}
		if e.valuesMatch(key.Values(), w) {
			return keyMatched
		}
		outcome = keyFoundValuesMissing
	}
	return outcome
}

// valuesMatch requires every value criterion to be met by some value of the key.
func (e *Registry) valuesMatch(values []hive.Value, w *result.Warnings) bool {
	for _, crit := range e.obj.Values {
		found := false
		for _, v := range values {
			if e.valueMatches(crit, v, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (e *Registry) valueMatches(crit cybox.RegistryValue, v hive.Value, w *result.Warnings) bool {
	if !crit.Name.IsEmpty() {
		ok, err := match.MatchField(crit.Name, v.Name)
		if err != nil {
			w.AddErr(err)
			return false
		}
		if !ok {
			return false
		}
	}
	if crit.Data.IsEmpty() {
		return true
	}

	switch {
	case v.Type.IsString():
		ok, err := match.MatchField(crit.Data, v.Text)
		if err != nil {
			w.AddErr(err)
			return false
		}
		return ok
	case v.Type.IsInteger():
		ok, err := matchInteger(crit.Data, v.Number)
		if err != nil {
			w.AddErr(err)
			return false
		}
		return ok
	default:
		w.Add("Value type %s not supported for %s", v.Type, v.Name)
		return false
	}
}

// matchInteger compares integer registry data as unsigned 64-bit values. Only
// Equals is supported; operands accept 0x and 0 prefixes.
func matchInteger(f *cybox.Field, n uint64) (bool, error) {
	if cond := condition(f); cond != cybox.Equals {
		return false, &match.UnsupportedConditionError{Condition: cond, Field: "integer registry value"}
	}
	ap := apply(f)
	for _, s := range f.Values {
		want, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return false, fmt.Errorf("registry value %q is not an integer", s)
		}
		eq := want == n
		switch ap {
		case cybox.ApplyNone:
			if eq {
				return false, nil
			}
		case cybox.ApplyAll:
			if !eq {
				return false, nil
			}
		default:
			if eq {
				return true, nil
			}
		}
	}
	return ap != cybox.ApplyAny, nil
}
// #endregion test-hive
