package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/service/business"
	"github.com/loretops/coinvest-docs/service/business/securelink"
	"github.com/loretops/coinvest-docs/service/handler"
	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/storage/repository"
	"github.com/loretops/coinvest-docs/service/testsutil"
)

type handlerFixture struct {
	db      *gorm.DB
	backend *testsutil.FakeBackend
	service business.DocumentService
	issuer  *securelink.Issuer
	router  *mux.Router
	project *models.Project
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db := testsutil.NewTestDatabase(t)
	backend := testsutil.NewFakeBackend()
	log := logrus.New()

	service := business.NewDocumentService(
		repository.NewProjectRepository(db),
		repository.NewDocumentRepository(db),
		repository.NewViewRepository(db),
		backend,
		log,
	)
	issuer := securelink.NewIssuer([]byte("test-signing-secret"), time.Hour)

	router := handler.NewRouter(
		handler.NewDocumentsHandler(service, issuer, log),
		handler.NewSecureGateHandler(service, issuer, backend, nil, log),
		"",
	)

	project := &models.Project{Name: "Residencial Norte", Status: "published"}
	require.NoError(t, db.Create(project).Error)

	return &handlerFixture{
		db:      db,
		backend: backend,
		service: service,
		issuer:  issuer,
		router:  router,
		project: project,
	}
}

// multipartUpload builds a multipart body with one file part plus form
// fields, returning the body and its content type.
func multipartUpload(t *testing.T, filename, mimeType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (f *handlerFixture) uploadDocument(t *testing.T) *models.ProjectDocument {
	t.Helper()

	body, contentType := multipartUpload(t, "business-plan.pdf", "application/pdf",
		[]byte("%PDF-1.4 test"), map[string]string{"documentType": "financial"})

	req := httptest.NewRequest(http.MethodPost, "/projects/"+f.project.ID+"/documents", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	documents, err := f.service.List(context.Background(), f.project.ID, repository.DocumentFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, documents)
	return documents[0]
}

func TestHealthz(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestUpload(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartUpload(t, "business-plan.pdf", "application/pdf",
		[]byte("%PDF-1.4 test"), map[string]string{
			"documentType": "financial",
			"accessLevel":  "investor",
			"title":        "Business plan",
		})

	req := httptest.NewRequest(http.MethodPost, "/projects/"+f.project.ID+"/documents", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	payload := decodeBody(t, rec)
	assert.Equal(t, "Document uploaded successfully", payload["message"])

	document := payload["document"].(map[string]interface{})
	assert.NotEmpty(t, document["id"])
	assert.Equal(t, "financial", document["documentType"])
	assert.Equal(t, "investor", document["accessLevel"])
	assert.Equal(t, "Business plan", document["title"])
	assert.Equal(t, "application/pdf", document["fileType"])
}

func TestUpload_NoFile(t *testing.T) {
	f := newHandlerFixture(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/projects/"+f.project.ID+"/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file supplied", decodeBody(t, rec)["error"])
}

func TestUpload_MissingProject(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartUpload(t, "business-plan.pdf", "application/pdf",
		[]byte("%PDF-1.4 test"), nil)

	req := httptest.NewRequest(http.MethodPost, "/projects/no-such-project/documents", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no-such-project")
}

func TestUpload_ImageAlias(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartUpload(t, "facade.png", "image/png",
		[]byte("fake png bytes"), map[string]string{"optimize": "thumbnail"})

	req := httptest.NewRequest(http.MethodPost, "/projects/"+f.project.ID+"/images", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	document := decodeBody(t, rec)["document"].(map[string]interface{})
	assert.Equal(t, "image/png", document["fileType"])
	assert.True(t, strings.HasSuffix(document["fileUrl"].(string), ".webp"), document["fileUrl"])
}

func TestList(t *testing.T) {
	f := newHandlerFixture(t)
	f.uploadDocument(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/projects/"+f.project.ID+"/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	documents := decodeBody(t, rec)["documents"].([]interface{})
	assert.Len(t, documents, 1)

	rec = f.do(httptest.NewRequest(http.MethodGet,
		"/projects/"+f.project.ID+"/documents?documentType=legal", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["documents"])
}

func TestGet(t *testing.T) {
	f := newHandlerFixture(t)
	document := f.uploadDocument(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/documents/"+document.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)["document"].(map[string]interface{})
	assert.Equal(t, document.ID, payload["id"])
}

func TestGet_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/documents/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "missing")
}

func TestDelete(t *testing.T) {
	f := newHandlerFixture(t)
	document := f.uploadDocument(t)

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/documents/"+document.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Document deleted successfully", decodeBody(t, rec)["message"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/documents/"+document.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccess(t *testing.T) {
	f := newHandlerFixture(t)
	document := f.uploadDocument(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+document.ID+"/access", nil)
	req.Header.Set("X-User-Id", "user1")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload := decodeBody(t, rec)
	assert.Equal(t, document.FileURL, payload["url"])
	assert.Equal(t, float64(3600), payload["expiresIn"])

	secureURL, ok := payload["secureUrl"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(secureURL, "/api/documents/secure/"+document.ID+"?token="), secureURL)

	// The embedded token opens exactly this document.
	token := strings.TrimPrefix(secureURL, "/api/documents/secure/"+document.ID+"?token=")
	claims, err := f.issuer.Verify(token, document.ID)
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.Subject)

	// Each access call leaves an audit row carrying the forwarded identity.
	views, err := repository.NewViewRepository(f.db).ListForDocument(context.Background(), document.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "user1", views[0].UserID)
	assert.Equal(t, "10.0.0.1", views[0].IPAddress)
}

func TestAccess_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/documents/missing/access", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
