package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// #region yaml-types
type docYAML struct {
	Name        string           `yaml:"name"`
	Observables []*obsYAML       `yaml:"observables"`
	Indicators  []*indicatorYAML `yaml:"indicators"`
}

type indicatorYAML struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Observable  *obsYAML `yaml:"observable"`
}

type obsYAML struct {
	ID          string    `yaml:"id"`
	IDRef       string    `yaml:"idref"`
	Object      *objYAML  `yaml:"object"`
	Composition *compYAML `yaml:"composition"`
}

type compYAML struct {
	Operator    string     `yaml:"operator"`
	Observables []*obsYAML `yaml:"observables"`
}

// objYAML is one typed object. Scalar properties are keyed by their CybOX
// field names; the list-valued parts of a few object types have their own keys.
type objYAML struct {
	ID            string                  `yaml:"id"`
	Type          string                  `yaml:"type"`
	Properties    map[string]*fieldYAML   `yaml:"properties"`
	Hashes        []hashYAML              `yaml:"hashes"`
	IsMasqueraded *bool                   `yaml:"is_masqueraded"`
	Values        []registryValueYAML     `yaml:"values"`
	Entries       []map[string]*fieldYAML `yaml:"entries"`
}

type hashYAML struct {
	Type  string     `yaml:"type"`
	Value *fieldYAML `yaml:"value"`
}

type registryValueYAML struct {
	Name *fieldYAML `yaml:"name"`
	Data *fieldYAML `yaml:"data"`
}
// #endregion yaml-types

// #region field-yaml
// fieldYAML accepts either a bare scalar (Equals, ANY) or a mapping with
// value, condition, apply and datatype keys.
type fieldYAML struct {
	Value     string `yaml:"value"`
	Condition string `yaml:"condition"`
	Apply     string `yaml:"apply"`
	Datatype  string `yaml:"datatype"`
}

func (f *fieldYAML) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Value = node.Value
		return nil
	case yaml.MappingNode:
		type plain fieldYAML
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*f = fieldYAML(p)
		return nil
	default:
		return fmt.Errorf("line %d: field must be a scalar or a mapping", node.Line)
	}
}
// #endregion field-yaml
