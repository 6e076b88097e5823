package cybox

// #region kind
// Kind identifies the object type behind an observable.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindAddress
	KindDomain
	KindEmail
	KindAccount
	KindSystem
	KindRegistryKey
	KindNetworkShare
	KindURI
	KindURLHistory
)

var kindLabels = map[Kind]string{
	KindFile:         "FileObject",
	KindAddress:      "AddressObject",
	KindDomain:       "DomainNameObject",
	KindEmail:        "EmailMessageObject",
	KindAccount:      "AccountObject",
	KindSystem:       "SystemObject",
	KindRegistryKey:  "WindowsRegistryKeyObject",
	KindNetworkShare: "WindowsNetworkShareObject",
	KindURI:          "URIObject",
	KindURLHistory:   "URLHistoryObject",
}

// String returns the label used in traces and artifact provenance.
func (k Kind) String() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return "UnknownObject"
}
// #endregion kind

// #region properties
// Properties is the typed payload of an Object. The set of implementations is
// closed; see the Kind constants.
type Properties interface {
	Kind() Kind
	extra() map[string]*Field
}

// Unsupported returns the names of document fields that have no typed home.
func Unsupported(p Properties) map[string]*Field {
	if p == nil {
		return nil
	}
	return p.extra()
}

// Object is one typed object description.
type Object struct {
	ID         string
	Properties Properties
}
// #endregion properties

// #region file
// Hash is one entry of a file's hash list.
type Hash struct {
	Type  string // "MD5", "SHA256", ...
	Value *Field // nil for fuzzy or non-simple hash values
}

// File describes a file object; PETimeDateStamp is set for Windows executables.
type File struct {
	FileName        *Field
	FileExtension   *Field
	FilePath        *Field
	SizeInBytes     *Field
	CreatedTime     *Field
	ModifiedTime    *Field
	AccessedTime    *Field
	Hashes          []Hash
	IsMasqueraded   *bool
	FileFormat      *Field
	PETimeDateStamp *Field
	Extra           map[string]*Field
}

func (*File) Kind() Kind { return KindFile }
func (o *File) extra() map[string]*Field { return o.Extra }
// #endregion file

// #region address
// Address is a network address (IPv4, e-mail, MAC, ...).
type Address struct {
	Value    *Field
	Category string
	Extra    map[string]*Field
}

func (*Address) Kind() Kind { return KindAddress }
func (o *Address) extra() map[string]*Field { return o.Extra }
// #endregion address

// #region domain
// Domain is a fully qualified domain name.
type Domain struct {
	Value *Field
	Type  string
	Extra map[string]*Field
}

func (*Domain) Kind() Kind { return KindDomain }
func (o *Domain) extra() map[string]*Field { return o.Extra }
// #endregion domain

// #region email
// Email carries the header fields of an e-mail message.
type Email struct {
	To      *Field
	CC      *Field
	From    *Field
	Subject *Field
	Extra   map[string]*Field
}

func (*Email) Kind() Kind { return KindEmail }
func (o *Email) extra() map[string]*Field { return o.Extra }
// #endregion email

// #region account
// Account is a user account on a system.
type Account struct {
	Username      *Field
	HomeDirectory *Field
	FullName      *Field
	Extra         map[string]*Field
}

func (*Account) Kind() Kind { return KindAccount }
func (o *Account) extra() map[string]*Field { return o.Extra }
// #endregion account

// #region system
// System describes host and operating system properties.
type System struct {
	Hostname               *Field
	ProcessorArchitecture  *Field
	ProductName            *Field
	Version                *Field
	RegisteredOrganization *Field
	RegisteredOwner        *Field
	WindowsTempDirectory   *Field
	WindowsSystemDirectory *Field
	ProductID              *Field
	Extra                  map[string]*Field
}

func (*System) Kind() Kind { return KindSystem }
func (o *System) extra() map[string]*Field { return o.Extra }
// #endregion system

// #region registry
// RegistryValue is one value criterion under a registry key.
type RegistryValue struct {
	Name *Field
	Data *Field
}

// RegistryKey is a Windows registry key, optionally scoped to a hive.
type RegistryKey struct {
	Key    *Field
	Hive   *Field
	Values []RegistryValue
	Extra  map[string]*Field
}

func (*RegistryKey) Kind() Kind { return KindRegistryKey }
func (o *RegistryKey) extra() map[string]*Field { return o.Extra }
// #endregion registry

// #region network-share
// NetworkShare is a mapped Windows network share.
type NetworkShare struct {
	Netname   *Field
	LocalPath *Field
	Extra     map[string]*Field
}

func (*NetworkShare) Kind() Kind { return KindNetworkShare }
func (o *NetworkShare) extra() map[string]*Field { return o.Extra }
// #endregion network-share

// #region uri
// URI is a uniform resource identifier.
type URI struct {
	Value *Field
	Type  string
	Extra map[string]*Field
}

func (*URI) Kind() Kind { return KindURI }
func (o *URI) extra() map[string]*Field { return o.Extra }
// #endregion uri

// #region url-history
// URLHistoryEntry is one visited-URL record.
type URLHistoryEntry struct {
	URL             *Field
	Hostname        *Field
	ReferrerURL     *Field
	PageTitle       *Field
	UserProfileName *Field
	Extra           map[string]*Field
}

// URLHistory is a browser's history with optional browser metadata.
type URLHistory struct {
	BrowserName *Field
	Entries     []URLHistoryEntry
	Extra       map[string]*Field
}

func (*URLHistory) Kind() Kind { return KindURLHistory }
func (o *URLHistory) extra() map[string]*Field { return o.Extra }
// #endregion url-history

// #region unknown
// Unknown stands in for object types the engine does not evaluate.
type Unknown struct {
	TypeName string
}

func (*Unknown) Kind() Kind { return KindUnknown }
func (*Unknown) extra() map[string]*Field { return nil }
// #endregion unknown
