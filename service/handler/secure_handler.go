package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/loretops/coinvest-docs/service/business"
	"github.com/loretops/coinvest-docs/service/business/securelink"
	"github.com/loretops/coinvest-docs/service/storage"
	"github.com/loretops/coinvest-docs/service/types"
)

// gateFetchExpiry covers the backend signed URL the gate itself fetches;
// it only needs to outlive the proxied response.
const gateFetchExpiry = 5 * time.Minute

// SecureGateHandler is the delivery gate for capability token access: it
// validates the token, audits the access and proxies the already resolved
// document content. It never derives storage addresses itself.
type SecureGateHandler struct {
	service business.DocumentService
	issuer  *securelink.Issuer
	backend storage.Backend
	client  *http.Client
	log     *logrus.Logger
}

func NewSecureGateHandler(
	service business.DocumentService,
	issuer *securelink.Issuer,
	backend storage.Backend,
	client *http.Client,
	log *logrus.Logger,
) *SecureGateHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &SecureGateHandler{
		service: service,
		issuer:  issuer,
		backend: backend,
		client:  client,
		log:     log,
	}
}

// Serve handles GET /api/documents/secure/{documentId}?token=...
func (h *SecureGateHandler) Serve(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, h.log, &types.AuthError{Message: "authentication token is required"})
		return
	}

	claims, err := h.issuer.Verify(token, documentID)
	if err != nil {
		// Expired and invalid tokens get the same response; only the logs
		// tell them apart.
		logEntry := h.log.WithField("document_id", documentID)
		switch {
		case errors.Is(err, securelink.ErrTokenExpired):
			logEntry.Info("Rejected expired capability token")
			writeError(w, h.log, &types.AuthError{Message: "invalid or expired token"})
		case errors.Is(err, securelink.ErrTokenMismatch):
			logEntry.Warn("Rejected capability token bound to another resource")
			writeError(w, h.log, &types.AuthError{Message: "token does not grant access to this document", Forbidden: true})
		default:
			logEntry.Info("Rejected invalid capability token")
			writeError(w, h.log, &types.AuthError{Message: "invalid or expired token"})
		}
		return
	}

	document, err := h.service.GetByID(r.Context(), documentID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	// Audit line before any byte is served.
	h.log.WithField("user_id", claims.Subject).
		WithField("document_id", documentID).
		WithField("action", "secure-view").
		Info("Serving document through secure gate")

	contentURL, err := h.backend.SignedURL(r.Context(), document.FileURL, gateFetchExpiry)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	// The fetch rides the request context so a gone client cancels it.
	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, contentURL, nil)
	if err != nil {
		writeError(w, h.log, types.NewStorage(err, "could not fetch document content"))
		return
	}

	upstream, err := h.client.Do(upstreamReq)
	if err != nil {
		writeError(w, h.log, types.NewStorage(err, "could not fetch document content"))
		return
	}
	defer upstream.Body.Close()

	if upstream.StatusCode != http.StatusOK {
		writeError(w, h.log, types.NewStorage(
			errors.Errorf("upstream returned status %d", upstream.StatusCode),
			"could not fetch document content"))
		return
	}

	// Discourage caching and casual download: the content renders inline
	// and is never stored by intermediaries.
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Type", document.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", document.Title))

	if _, err = io.Copy(w, upstream.Body); err != nil {
		h.log.WithError(err).WithField("document_id", documentID).Warn("Secure delivery interrupted")
	}
}
