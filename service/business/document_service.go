package business

import (
	"context"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/storage"
	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/storage/repository"
	"github.com/loretops/coinvest-docs/service/types"
)

// SignedAccessExpiry is the fixed validity of backend signed URLs issued
// through SignedAccess. Not caller configurable at this layer.
const SignedAccessExpiry = 3600 * time.Second

type documentService struct {
	projects  repository.ProjectRepository
	documents repository.DocumentRepository
	views     repository.ViewRepository
	backend   storage.Backend
	log       *logrus.Logger
}

// NewDocumentService wires the document orchestration over its
// repositories and the active storage backend.
func NewDocumentService(
	projects repository.ProjectRepository,
	documents repository.DocumentRepository,
	views repository.ViewRepository,
	backend storage.Backend,
	log *logrus.Logger,
) DocumentService {
	return &documentService{
		projects:  projects,
		documents: documents,
		views:     views,
		backend:   backend,
		log:       log,
	}
}

func (s *documentService) Upload(ctx context.Context, req *UploadRequest) (*models.ProjectDocument, error) {
	if err := s.validateUploadRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify project")
	}
	if !exists {
		return nil, types.NewNotFound("project", req.ProjectID)
	}

	class := config.ClassForMime(req.File.MimeType)
	typeConfig := config.FileTypeFor(class)

	if !config.IsFileTypeAllowed(req.File.MimeType, &typeConfig) {
		return nil, types.NewValidation("file type %s is not allowed for %s uploads", req.File.MimeType, class)
	}
	if typeConfig.MaxSizeBytes > 0 && req.File.SizeBytes > typeConfig.MaxSizeBytes {
		return nil, types.NewValidation("file size %d exceeds the %d byte limit for %s uploads", req.File.SizeBytes, typeConfig.MaxSizeBytes, class)
	}

	targetPath := path.Join(typeConfig.Directory, req.ProjectID)

	var fileURL string
	if class == config.ClassImage {
		fileURL, err = s.backend.StoreImage(ctx, req.File, targetPath, s.presetFor(req.Optimize))
	} else {
		fileURL, err = s.backend.StoreFile(ctx, req.File, targetPath)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to store file")
	}

	document := &models.ProjectDocument{
		ProjectID: req.ProjectID,
		FileURL:   fileURL,
		// The original mime type, even when the image pipeline re-encoded
		// the stored bytes.
		FileType:      req.File.MimeType,
		DocumentType:  req.DocumentType,
		AccessLevel:   req.AccessLevel,
		SecurityLevel: req.SecurityLevel,
		Title:         req.Title,
	}
	s.applyDefaults(document, req)

	if err = s.documents.Save(ctx, document); err != nil {
		// The stored object is not rolled back. Leave the URL in the logs
		// so the orphan can be reaped.
		s.log.WithError(err).WithField("url", fileURL).Error("Stored file has no metadata row")
		return nil, errors.Wrap(err, "failed to persist document metadata")
	}

	return document, nil
}

func (s *documentService) List(ctx context.Context, projectID string, filter repository.DocumentFilter) ([]*models.ProjectDocument, error) {
	documents, err := s.documents.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	return documents, nil
}

func (s *documentService) GetByID(ctx context.Context, documentID string) (*models.ProjectDocument, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("document", documentID)
		}
		return nil, errors.Wrap(err, "failed to load document")
	}
	return document, nil
}

func (s *documentService) Delete(ctx context.Context, documentID string) error {
	document, err := s.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	// Backend removal is best effort: the metadata row goes away even when
	// the object cannot be removed, so listings never show undeletable
	// entries.
	if !s.backend.DeleteFile(ctx, document.FileURL) {
		s.log.WithField("document_id", documentID).
			WithField("url", document.FileURL).
			Warn("Backend object was not removed, deleting metadata anyway")
	}

	if err = s.views.DeleteForDocument(ctx, documentID); err != nil {
		return errors.Wrap(err, "failed to delete document views")
	}
	if err = s.documents.Delete(ctx, documentID); err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	return nil
}

func (s *documentService) SignedAccess(ctx context.Context, req *AccessRequest) (*AccessResult, error) {
	document, err := s.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	signedURL, err := s.backend.SignedURL(ctx, document.FileURL, SignedAccessExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign document url")
	}

	view := &models.DocumentView{
		DocumentID: document.ID,
		UserID:     req.UserID,
		IPAddress:  req.IPAddress,
	}
	if err = s.views.Record(ctx, view); err != nil {
		return nil, errors.Wrap(err, "failed to record document view")
	}

	return &AccessResult{
		Document:  document,
		URL:       signedURL,
		ExpiresIn: int(SignedAccessExpiry / time.Second),
	}, nil
}

func (s *documentService) validateUploadRequest(req *UploadRequest) error {
	if req.File == nil || len(req.File.Content) == 0 {
		return types.NewValidation("no file content supplied")
	}
	if req.ProjectID == "" {
		return types.NewValidation("project id is required")
	}
	if req.DocumentType != "" && !req.DocumentType.Valid() {
		return types.NewValidation("unknown document type %q", req.DocumentType)
	}
	if req.AccessLevel != "" && !req.AccessLevel.Valid() {
		return types.NewValidation("unknown access level %q", req.AccessLevel)
	}
	if req.SecurityLevel != "" && !req.SecurityLevel.Valid() {
		return types.NewValidation("unknown security level %q", req.SecurityLevel)
	}
	return nil
}

func (s *documentService) applyDefaults(document *models.ProjectDocument, req *UploadRequest) {
	if document.DocumentType == "" {
		document.DocumentType = types.DocumentTypeOther
	}
	if document.AccessLevel == "" {
		document.AccessLevel = types.AccessLevelPartner
	}
	if document.SecurityLevel == "" {
		document.SecurityLevel = types.SecurityLevelViewOnly
	}
	if document.Title == "" {
		document.Title = req.File.OriginalName
	}
}

// presetFor resolves the optimization preset for an upload. No preset
// requested keeps the original rendition; an unknown name falls back to
// the medium preset.
func (s *documentService) presetFor(name string) config.ImageOptions {
	if name == "" {
		preset, _ := config.PresetFor("original")
		return preset
	}
	preset, ok := config.PresetFor(name)
	if !ok {
		s.log.WithField("preset", name).Warn("Unknown optimization preset, using medium")
		preset, _ = config.PresetFor("medium")
	}
	return preset
}
