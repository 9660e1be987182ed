package business

import (
	"context"

	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/storage/repository"
	"github.com/loretops/coinvest-docs/service/types"
)

// DocumentService defines the business logic interface for project
// document operations.
type DocumentService interface {
	// Upload stores the file through the active backend and persists its
	// metadata under the owning project.
	Upload(ctx context.Context, req *UploadRequest) (*models.ProjectDocument, error)

	// List returns a project's documents, newest first.
	List(ctx context.Context, projectID string, filter repository.DocumentFilter) ([]*models.ProjectDocument, error)

	// GetByID returns one document including its owning project.
	GetByID(ctx context.Context, documentID string) (*models.ProjectDocument, error)

	// Delete removes the backend object (best effort), the document's view
	// records and the metadata row, in that order.
	Delete(ctx context.Context, documentID string) error

	// SignedAccess issues a time limited delivery URL and records a view
	// audit row. Every call records a new row.
	SignedAccess(ctx context.Context, req *AccessRequest) (*AccessResult, error)
}

// UploadRequest carries an upload and its caller supplied metadata.
type UploadRequest struct {
	ProjectID string
	File      *types.StoredFile

	DocumentType  types.DocumentType
	AccessLevel   types.AccessLevel
	SecurityLevel types.SecurityLevel
	Title         string

	// Optimize names the image optimization preset, matched case
	// insensitively. Empty leaves images untranscoded apart from format
	// normalisation; an unknown name falls back to the medium preset.
	Optimize string
}

// AccessRequest identifies who is asking for signed access to what.
type AccessRequest struct {
	DocumentID string
	UserID     string
	IPAddress  string
}

// AccessResult is a signed delivery URL plus the document it covers.
type AccessResult struct {
	Document  *models.ProjectDocument
	URL       string
	ExpiresIn int
}
