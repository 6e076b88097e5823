package result

// #region state
// State is the tri-state verdict of an observable or composition.
type State int

const (
	Indeterminate State = iota
	False
	True
)

func (s State) String() string {
	switch s {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "INDETERMINATE"
	}
}
// #endregion state

// #region artifact-ref
// ArtifactRef points at a case object that satisfied an observable.
type ArtifactRef struct {
	ObjectID     int64  // case object (file or artifact) ID
	ObservableID string // observable that matched
	ObjectType   string // e.g. "FileObject"
}
// #endregion artifact-ref

// #region observable-result
// ObservableResult is the outcome of evaluating one observable or composition.
// Values are never mutated after construction; Combine returns a new result.
type ObservableResult struct {
	ObservableID string
	State        State
	Description  string
	Artifacts    []ArtifactRef
}
// #endregion observable-result
