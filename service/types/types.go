package types

// StoredFile is the in-memory representation of an upload: the bytes plus
// the metadata the request carried. It only lives for the duration of the
// upload request.
type StoredFile struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Content      []byte
}

// DocumentType categorises a project document for filtering purposes.
type DocumentType string

const (
	DocumentTypeLegal     DocumentType = "legal"
	DocumentTypeFinancial DocumentType = "financial"
	DocumentTypeTechnical DocumentType = "technical"
	DocumentTypeMarketing DocumentType = "marketing"
	DocumentTypeImage     DocumentType = "image"
	DocumentTypeVideo     DocumentType = "video"
	DocumentTypeOther     DocumentType = "other"
)

// AccessLevel is the minimum audience allowed to see a document.
type AccessLevel string

const (
	AccessLevelPublic   AccessLevel = "public"
	AccessLevelPartner  AccessLevel = "partner"
	AccessLevelInvestor AccessLevel = "investor"
	AccessLevelAdmin    AccessLevel = "admin"
)

// SecurityLevel is what a viewer may do with a document once visible.
type SecurityLevel string

const (
	SecurityLevelViewOnly   SecurityLevel = "view_only"
	SecurityLevelDownload   SecurityLevel = "download"
	SecurityLevelPrint      SecurityLevel = "print"
	SecurityLevelFullAccess SecurityLevel = "full_access"
)

// Valid reports whether the document type is a known enum value.
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentTypeLegal, DocumentTypeFinancial, DocumentTypeTechnical,
		DocumentTypeMarketing, DocumentTypeImage, DocumentTypeVideo, DocumentTypeOther:
		return true
	}
	return false
}

// Valid reports whether the access level is a known enum value.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessLevelPublic, AccessLevelPartner, AccessLevelInvestor, AccessLevelAdmin:
		return true
	}
	return false
}

// Valid reports whether the security level is a known enum value.
func (s SecurityLevel) Valid() bool {
	switch s {
	case SecurityLevelViewOnly, SecurityLevelDownload, SecurityLevelPrint, SecurityLevelFullAccess:
		return true
	}
	return false
}
