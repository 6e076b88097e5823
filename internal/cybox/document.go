package cybox

// #region observable
// Observable references exactly one typed object (inline or by IDRef) or a
// nested Composition.
type Observable struct {
	ID          string
	IDRef       string
	Object      *Object
	Composition *Composition
}

// Key is the memoization and lookup key: the ID, else the IDRef.
func (o *Observable) Key() string {
	if o.ID != "" {
		return o.ID
	}
	return o.IDRef
}
// #endregion observable

// #region composition
// Composition is a boolean combination of observables.
type Composition struct {
	Operator    Operator
	Observables []*Observable
}
// #endregion composition

// #region indicator
// Indicator is a named top-level rule rooted in one observable.
type Indicator struct {
	ID          string
	Title       string
	Description string
	Observable  *Observable
}

// Label names the indicator for artifacts: title, else ID, else a generic label.
func (i *Indicator) Label() string {
	switch {
	case i.Title != "":
		return i.Title
	case i.ID != "":
		return i.ID
	default:
		return "Unnamed indicator(s)"
	}
}
// #endregion indicator

// #region document
// Document is one pre-parsed indicator document.
type Document struct {
	Name        string
	Observables []*Observable
	Indicators  []*Indicator
}

// HasKind reports whether any object in the document is of kind k.
func (d *Document) HasKind(k Kind) bool {
	found := false
	visit := func(o *Observable) {
		if o.Object != nil && o.Object.Properties != nil && o.Object.Properties.Kind() == k {
			found = true
		}
	}
	for _, o := range d.Observables {
		walk(o, visit)
	}
	for _, ind := range d.Indicators {
		walk(ind.Observable, visit)
	}
	return found
}
// #endregion document

// #region index
// Index is the document-scoped ID to Object map, plus the ID'd compositions an
// IDRef may point at. It is built once and only read during evaluation, so
// indicators may share it across goroutines.
type Index struct {
	objects      map[string]*Object
	compositions map[string]*Composition
}

// NewIndex collects every observable that carries an ID and an inline object or
// composition, from the top-level definitions and from inside every indicator
// tree. Top-level definitions win over inline duplicates.
func NewIndex(doc *Document) *Index {
	idx := &Index{
		objects:      make(map[string]*Object),
		compositions: make(map[string]*Composition),
	}
	add := func(o *Observable) {
		if o.ID == "" {
			return
		}
		switch {
		case o.Object != nil:
			if _, exists := idx.objects[o.ID]; !exists {
				idx.objects[o.ID] = o.Object
			}
		case o.Composition != nil && o.IDRef == "":
			if _, exists := idx.compositions[o.ID]; !exists {
				idx.compositions[o.ID] = o.Composition
			}
		}
	}
	for _, o := range doc.Observables {
		walk(o, add)
	}
	for _, ind := range doc.Indicators {
		walk(ind.Observable, add)
	}
	return idx
}

// Lookup returns the object registered under id.
func (x *Index) Lookup(id string) (*Object, bool) {
	if x == nil || id == "" {
		return nil, false
	}
	obj, ok := x.objects[id]
	return obj, ok
}

// LookupComposition returns the composition registered under id.
func (x *Index) LookupComposition(id string) (*Composition, bool) {
	if x == nil || id == "" {
		return nil, false
	}
	comp, ok := x.compositions[id]
	return comp, ok
}

// Len returns the number of indexed objects.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.objects)
}

func walk(o *Observable, fn func(*Observable)) {
	if o == nil {
		return
	}
	fn(o)
	if o.Composition != nil {
		for _, child := range o.Composition.Observables {
			walk(child, fn)
		}
	}
}
// #endregion index
