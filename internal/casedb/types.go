package casedb

import (
	"errors"
	"time"
)

// #region errors
// ErrNotFound is returned when a requested case object does not exist.
var ErrNotFound = errors.New("not found")
// #endregion errors

// #region artifact-types
// ArtifactType names a blackboard artifact type.
type ArtifactType string

const (
	ArtKeywordHit         ArtifactType = "TSK_KEYWORD_HIT"
	ArtExtMismatch        ArtifactType = "TSK_EXT_MISMATCH_DETECTED"
	ArtOSInfo             ArtifactType = "TSK_OS_INFO"
	ArtOSAccount          ArtifactType = "TSK_OS_ACCOUNT"
	ArtRemoteDrive        ArtifactType = "TSK_REMOTE_DRIVE"
	ArtWebHistory         ArtifactType = "TSK_WEB_HISTORY"
	ArtEmailMsg           ArtifactType = "TSK_EMAIL_MSG"
	ArtInterestingFileHit ArtifactType = "TSK_INTERESTING_FILE_HIT"
)
// #endregion artifact-types

// #region attribute-types
// AttributeType names an artifact attribute type.
type AttributeType string

const (
	AttrKeyword       AttributeType = "TSK_KEYWORD"
	AttrEmailTo       AttributeType = "TSK_EMAIL_TO"
	AttrEmailCC       AttributeType = "TSK_EMAIL_CC"
	AttrEmailFrom     AttributeType = "TSK_EMAIL_FROM"
	AttrSubject       AttributeType = "TSK_SUBJECT"
	AttrName          AttributeType = "TSK_NAME"
	AttrProcessorArch AttributeType = "TSK_PROCESSOR_ARCHITECTURE"
	AttrProgName      AttributeType = "TSK_PROG_NAME"
	AttrVersion       AttributeType = "TSK_VERSION"
	AttrOrganization  AttributeType = "TSK_ORGANIZATION"
	AttrOwner         AttributeType = "TSK_OWNER"
	AttrTempDir       AttributeType = "TSK_TEMP_DIR"
	AttrPath          AttributeType = "TSK_PATH"
	AttrProductID     AttributeType = "TSK_PRODUCT_ID"
	AttrUserName      AttributeType = "TSK_USER_NAME"
	AttrUserID        AttributeType = "TSK_USER_ID"
	AttrLocalPath     AttributeType = "TSK_LOCAL_PATH"
	AttrRemotePath    AttributeType = "TSK_REMOTE_PATH"
	AttrURL           AttributeType = "TSK_URL"
	AttrDomain        AttributeType = "TSK_DOMAIN"
	AttrReferrer      AttributeType = "TSK_REFERRER"
	AttrTitle         AttributeType = "TSK_TITLE"
	AttrSetName       AttributeType = "TSK_SET_NAME"
	AttrCategory      AttributeType = "TSK_CATEGORY"
)
// #endregion attribute-types

// #region file
// File is a row of the case file table. Times are Unix seconds.
type File struct {
	ID           int64
	DataSourceID int64
	Name         string
	ParentPath   string
	Size         int64
	Crtime       int64
	Mtime        int64
	Atime        int64
	MD5          string
	SHA256       string
	MIMEType     string
	Allocated    bool
	LocalPath    string // on-disk copy of the content, used for export
}

// FullPath joins the parent path and name.
func (f File) FullPath() string { return f.ParentPath + f.Name }
// #endregion file

// #region artifact
// Attribute is one typed value on an artifact.
type Attribute struct {
	Type  AttributeType
	Value string
}

// Artifact is a blackboard artifact attached to a case object.
type Artifact struct {
	ID         int64
	ObjID      int64
	Type       ArtifactType
	Attributes []Attribute
}

// Attr returns the first value of attribute t.
func (a Artifact) Attr(t AttributeType) (string, bool) {
	for _, at := range a.Attributes {
		if at.Type == t {
			return at.Value, true
		}
	}
	return "", false
}
// #endregion artifact

// #region interesting-item
// InterestingItem is an artifact written by the engine for a True indicator.
type InterestingItem struct {
	ID        int64
	ObjID     int64
	SetName   string
	Title     string
	Category  string
	RunID     string
	CreatedAt time.Time
}
// #endregion interesting-item
