// Package observable walks an indicator's observable tree, dispatching leaves to
// the per-type evaluators and folding composition results.
package observable

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/evaluator"
	"github.com/danielpatrickdp/stix-triage/internal/metrics"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region options
// Options tunes one Evaluator.
type Options struct {
	// ShortCircuit stops a composition at its first decisive child: False
	// under AND, True under OR. Off by default so traces cover every child.
	ShortCircuit bool

	// Metrics is optional.
	Metrics *metrics.Metrics
}
// #endregion options

// #region evaluator
// Evaluator evaluates the observables of one indicator. Results are memoized by
// observable key for the lifetime of the Evaluator, so build one per indicator.
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	env    *evaluator.Env
	opts   Options
	memo   map[string]result.ObservableResult
	active map[string]bool
}

func New(env *evaluator.Env, opts Options) *Evaluator {
	return &Evaluator{
		env:    env,
		opts:   opts,
		memo:   make(map[string]result.ObservableResult),
		active: make(map[string]bool),
	}
}
// #endregion evaluator

// #region indicator
// EvaluateIndicator evaluates the indicator's root observable.
func (e *Evaluator) EvaluateIndicator(ctx context.Context, ind *cybox.Indicator) result.ObservableResult {
	if ind == nil || ind.Observable == nil {
		return result.NewIndeterminate("", "Indicator has no observable")
	}
	return e.EvaluateObservable(ctx, ind.Observable)
}
// #endregion indicator

// #region observable
// EvaluateObservable evaluates a leaf or nested composition. An observable with
// an inline object or composition is evaluated as written; otherwise its key is
// resolved against the document index, objects first. A key that resolves to
// nothing yields Indeterminate and is not memoized.
func (e *Evaluator) EvaluateObservable(ctx context.Context, obs *cybox.Observable) result.ObservableResult {
	if obs == nil {
		return result.NewIndeterminate("", "Missing observable")
	}
	key := obs.Key()
	if key != "" {
		if res, ok := e.memo[key]; ok {
			e.opts.Metrics.MemoHit()
			return res
		}
		if e.active[key] {
			return result.NewIndeterminate(key, fmt.Sprintf("Circular reference to observable %s", key))
		}
		e.active[key] = true
		defer delete(e.active, key)
	}

	var res result.ObservableResult
	switch {
	case obs.IDRef == "" && obs.Composition != nil:
		res = e.evaluateKeyedComposition(ctx, obs.Composition, key)
	case obs.IDRef == "" && obs.Object != nil:
		res = e.evaluateObject(ctx, obs.Object, key)
	default:
		if obj, ok := e.env.Index.Lookup(key); ok {
			res = e.evaluateObject(ctx, obj, key)
		} else if comp, ok := e.env.Index.LookupComposition(key); ok {
			res = e.evaluateKeyedComposition(ctx, comp, key)
		} else {
			return result.NewIndeterminate(key, fmt.Sprintf("Error loading/finding object for observable %s", key))
		}
	}

	if key != "" {
		e.memo[key] = res
	}
	return res
}

func (e *Evaluator) evaluateKeyedComposition(ctx context.Context, comp *cybox.Composition, key string) result.ObservableResult {
	res := e.EvaluateComposition(ctx, comp)
	res.ObservableID = key
	return res
}
// #endregion observable

// #region dispatch
func (e *Evaluator) evaluateObject(ctx context.Context, obj *cybox.Object, id string) result.ObservableResult {
	if obj == nil || obj.Properties == nil {
		return result.NewIndeterminate(id, "Object has no properties")
	}
	if err := ctx.Err(); err != nil {
		return result.NewIndeterminate(id, fmt.Sprintf("%s: Evaluation cancelled: %v", obj.Properties.Kind(), err))
	}

	var ev evaluator.Evaluator
	switch p := obj.Properties.(type) {
	case *cybox.File:
		ev = evaluator.NewFile(e.env, p, id)
	case *cybox.Address:
		ev = evaluator.NewAddress(e.env, p, id)
	case *cybox.Domain:
		ev = evaluator.NewDomain(e.env, p, id)
	case *cybox.Email:
		ev = evaluator.NewEmail(e.env, p, id)
	case *cybox.Account:
		ev = evaluator.NewAccount(e.env, p, id)
	case *cybox.System:
		ev = evaluator.NewSystem(e.env, p, id)
	case *cybox.RegistryKey:
		ev = evaluator.NewRegistry(e.env, p, id)
	case *cybox.NetworkShare:
		ev = evaluator.NewNetworkShare(e.env, p, id)
	case *cybox.URI:
		ev = evaluator.NewURI(e.env, p, id)
	case *cybox.URLHistory:
		ev = evaluator.NewURLHistory(e.env, p, id)
	default:
		name := obj.Properties.Kind().String()
		if u, ok := p.(*cybox.Unknown); ok && u.TypeName != "" {
			name = u.TypeName
		}
		return result.NewIndeterminate(id, name+" not supported")
	}

	res := ev.Evaluate(ctx)
	e.opts.Metrics.Observable(obj.Properties.Kind().String(), res.State.String())
	return res
}
// #endregion dispatch

// #region composition
// EvaluateComposition folds the children of comp under its operator. Child
// descriptions are indented two spaces below an operator header.
func (e *Evaluator) EvaluateComposition(ctx context.Context, comp *cybox.Composition) result.ObservableResult {
	if comp == nil {
		return result.NewIndeterminate("", "Missing composition")
	}
	switch comp.Operator {
	case cybox.OpAnd, cybox.OpOr:
	case "":
		return result.NewIndeterminate("", "No operator found in composition")
	default:
		return result.NewIndeterminate("", fmt.Sprintf("Unknown composition operator %s", comp.Operator))
	}
	if len(comp.Observables) == 0 {
		return result.NewIndeterminate("", "Composition with no children")
	}

	children := make([]result.ObservableResult, 0, len(comp.Observables))
	for _, child := range comp.Observables {
		res := e.EvaluateObservable(ctx, child)
		children = append(children, res)
		if e.opts.ShortCircuit && decisive(res, comp.Operator) {
			break
		}
	}

	out := result.CombineAll("", children, comp.Operator)
	out.Description = trace(comp, children)
	return out
}

func decisive(r result.ObservableResult, op cybox.Operator) bool {
	if op == cybox.OpAnd {
		return r.IsFalse()
	}
	return r.IsTrue()
}

func trace(comp *cybox.Composition, children []result.ObservableResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s composition:", comp.Operator)
	for _, c := range children {
		b.WriteString("\n")
		b.WriteString(result.Indent(c.Description, 2))
	}
	if skipped := len(comp.Observables) - len(children); skipped > 0 {
		fmt.Fprintf(&b, "\n  (skipped %d of %d after decisive result)", skipped, len(comp.Observables))
	}
	return b.String()
}
// #endregion composition
