// Package document reads the YAML rendition of a pre-parsed indicator document
// into a cybox.Document. The loader is permissive: unknown object types and
// unknown fields are carried through so evaluation can report them.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

// #region load
// Load reads and converts the document at path. The document name defaults to
// the file's base name.
func Load(path string) (*cybox.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return doc, nil
}

// Parse converts YAML bytes into a Document.
func Parse(data []byte) (*cybox.Document, error) {
	var raw docYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc := &cybox.Document{Name: raw.Name}
	for _, o := range raw.Observables {
		doc.Observables = append(doc.Observables, convertObservable(o))
	}
	for _, ind := range raw.Indicators {
		if ind == nil {
			continue
		}
		doc.Indicators = append(doc.Indicators, &cybox.Indicator{
			ID:          ind.ID,
			Title:       ind.Title,
			Description: ind.Description,
			Observable:  convertObservable(ind.Observable),
		})
	}
	return doc, nil
}
// #endregion load

// #region convert-tree
func convertObservable(o *obsYAML) *cybox.Observable {
	if o == nil {
		return nil
	}
	out := &cybox.Observable{ID: o.ID, IDRef: o.IDRef}
	if o.Object != nil {
		out.Object = convertObject(o.Object)
	}
	if o.Composition != nil {
		comp := &cybox.Composition{Operator: cybox.Operator(strings.ToUpper(o.Composition.Operator))}
		for _, child := range o.Composition.Observables {
			if c := convertObservable(child); c != nil {
				comp.Observables = append(comp.Observables, c)
			}
		}
		out.Composition = comp
	}
	return out
}

func convertField(f *fieldYAML) *cybox.Field {
	if f == nil {
		return nil
	}
	field := cybox.NewField(f.Value, cybox.ConditionType(f.Condition), cybox.ApplyPolicy(strings.ToUpper(f.Apply)))
	field.Datatype = f.Datatype
	return field
}
// #endregion convert-tree

// #region convert-object
// props hands out typed fields by name; whatever is left becomes Extra.
type props map[string]*fieldYAML

func (p props) take(name string) *cybox.Field {
	f, ok := p[name]
	if !ok {
		return nil
	}
	delete(p, name)
	return convertField(f)
}

func (p props) extra() map[string]*cybox.Field {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]*cybox.Field, len(p))
	for name, f := range p {
		out[name] = convertField(f)
	}
	return out
}

func objectType(t string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(t), "Object"))
}

func convertObject(o *objYAML) *cybox.Object {
	p := props{}
	for k, v := range o.Properties {
		p[k] = v
	}
	obj := &cybox.Object{ID: o.ID}

	switch objectType(o.Type) {
	case "file":
		f := &cybox.File{
			FileName:        p.take("File_Name"),
			FileExtension:   p.take("File_Extension"),
			FilePath:        p.take("File_Path"),
			SizeInBytes:     p.take("Size_In_Bytes"),
			CreatedTime:     p.take("Created_Time"),
			ModifiedTime:    p.take("Modified_Time"),
			AccessedTime:    p.take("Accessed_Time"),
			FileFormat:      p.take("File_Format"),
			PETimeDateStamp: p.take("PE_Time_Date_Stamp"),
			IsMasqueraded:   o.IsMasqueraded,
		}
		for _, h := range o.Hashes {
			f.Hashes = append(f.Hashes, cybox.Hash{Type: strings.ToUpper(h.Type), Value: convertField(h.Value)})
		}
		f.Extra = p.extra()
		obj.Properties = f
	case "address":
		a := &cybox.Address{Value: p.take("Address_Value")}
		if c, ok := p["category"]; ok {
			a.Category = c.Value
			delete(p, "category")
		}
		a.Extra = p.extra()
		obj.Properties = a
	case "domainname", "domain":
		d := &cybox.Domain{Value: p.take("Value")}
		if t, ok := p["type"]; ok {
			d.Type = t.Value
			delete(p, "type")
		}
		d.Extra = p.extra()
		obj.Properties = d
	case "emailmessage", "email":
		obj.Properties = &cybox.Email{
			To:      p.take("To"),
			CC:      p.take("CC"),
			From:    p.take("From"),
			Subject: p.take("Subject"),
			Extra:   p.extra(),
		}
	case "account", "useraccount", "windowsuseraccount":
		obj.Properties = &cybox.Account{
			Username:      p.take("Username"),
			HomeDirectory: p.take("Home_Directory"),
			FullName:      p.take("Full_Name"),
			Extra:         p.extra(),
		}
	case "system", "windowssystem":
		obj.Properties = &cybox.System{
			Hostname:               p.take("Hostname"),
			ProcessorArchitecture:  p.take("Processor_Architecture"),
			ProductName:            p.take("Product_Name"),
			Version:                p.take("Version"),
			RegisteredOrganization: p.take("Registered_Organization"),
			RegisteredOwner:        p.take("Registered_Owner"),
			WindowsTempDirectory:   p.take("Windows_Temp_Directory"),
			WindowsSystemDirectory: p.take("Windows_System_Directory"),
			ProductID:              p.take("Product_ID"),
			Extra:                  p.extra(),
		}
	case "windowsregistrykey", "registrykey":
		k := &cybox.RegistryKey{
			Key:  p.take("Key"),
			Hive: p.take("Hive"),
		}
		for _, v := range o.Values {
			k.Values = append(k.Values, cybox.RegistryValue{Name: convertField(v.Name), Data: convertField(v.Data)})
		}
		k.Extra = p.extra()
		obj.Properties = k
	case "windowsnetworkshare", "networkshare":
		obj.Properties = &cybox.NetworkShare{
			Netname:   p.take("Netname"),
			LocalPath: p.take("Local_Path"),
			Extra:     p.extra(),
		}
	case "uri":
		u := &cybox.URI{Value: p.take("Value")}
		if t, ok := p["type"]; ok {
			u.Type = t.Value
			delete(p, "type")
		}
		u.Extra = p.extra()
		obj.Properties = u
	case "urlhistory":
		h := &cybox.URLHistory{BrowserName: p.take("Browser_Name")}
		for _, e := range o.Entries {
			ep := props{}
			for k, v := range e {
				ep[k] = v
			}
			h.Entries = append(h.Entries, cybox.URLHistoryEntry{
				URL:             ep.take("URL"),
				Hostname:        ep.take("Hostname"),
				ReferrerURL:     ep.take("Referrer_URL"),
				PageTitle:       ep.take("Page_Title"),
				UserProfileName: ep.take("User_Profile_Name"),
				Extra:           ep.extra(),
			})
		}
		h.Extra = p.extra()
		obj.Properties = h
	default:
		obj.Properties = &cybox.Unknown{TypeName: o.Type}
	}
	return obj
}
// #endregion convert-object
