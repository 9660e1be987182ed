package handler

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/loretops/coinvest-docs/service/business"
	"github.com/loretops/coinvest-docs/service/business/securelink"
	"github.com/loretops/coinvest-docs/service/storage/repository"
	"github.com/loretops/coinvest-docs/service/types"
)

// maxMultipartMemory bounds how much of a multipart body is held in RAM
// before spilling to disk. Class size ceilings are enforced afterwards by
// the service.
const maxMultipartMemory = 32 << 20

// DocumentsHandler exposes the document CRUD and signed access surface.
type DocumentsHandler struct {
	service business.DocumentService
	issuer  *securelink.Issuer
	log     *logrus.Logger
}

func NewDocumentsHandler(service business.DocumentService, issuer *securelink.Issuer, log *logrus.Logger) *DocumentsHandler {
	return &DocumentsHandler{service: service, issuer: issuer, log: log}
}

// Upload handles POST /projects/{projectId}/documents|images|videos.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, h.log, types.NewValidation("could not parse multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.log, types.NewValidation("no file supplied"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.log, types.NewValidation("could not read file: %v", err))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	document, err := h.service.Upload(r.Context(), &business.UploadRequest{
		ProjectID: projectID,
		File: &types.StoredFile{
			OriginalName: header.Filename,
			MimeType:     mimeType,
			SizeBytes:    int64(len(content)),
			Content:      content,
		},
		DocumentType:  types.DocumentType(r.FormValue("documentType")),
		AccessLevel:   types.AccessLevel(r.FormValue("accessLevel")),
		SecurityLevel: types.SecurityLevel(r.FormValue("securityLevel")),
		Title:         r.FormValue("title"),
		Optimize:      r.FormValue("optimize"),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Document uploaded successfully",
		"document": document,
	})
}

// List handles GET /projects/{projectId}/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	filter := repository.DocumentFilter{
		DocumentType: types.DocumentType(r.URL.Query().Get("documentType")),
		AccessLevel:  types.AccessLevel(r.URL.Query().Get("accessLevel")),
	}

	documents, err := h.service.List(r.Context(), projectID, filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": documents})
}

// Get handles GET /documents/{documentId}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	document, err := h.service.GetByID(r.Context(), mux.Vars(r)["documentId"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"document": document})
}

// Delete handles DELETE /documents/{documentId}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["documentId"]); err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// Access handles GET /documents/{documentId}/access: a backend signed URL
// plus a capability scoped viewer link, with a view audit row recorded.
func (h *DocumentsHandler) Access(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	result, err := h.service.SignedAccess(r.Context(), &business.AccessRequest{
		DocumentID: documentID,
		UserID:     requestUserID(r),
		IPAddress:  requestIP(r),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	token, err := h.issuer.Issue(documentID, requestUserID(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document":  result.Document,
		"url":       result.URL,
		"expiresIn": result.ExpiresIn,
		"secureUrl": fmt.Sprintf("/api/documents/secure/%s?token=%s", documentID, token),
	})
}

// requestUserID identifies the caller. Authentication middleware lives in
// the surrounding platform; this extracted service trusts the forwarded
// identity header.
func requestUserID(r *http.Request) string {
	if userID := r.Header.Get("X-User-Id"); userID != "" {
		return userID
	}
	return "anonymous"
}

func requestIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
