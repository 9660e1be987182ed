package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the document subsystem's HTTP surface. A non empty
// uploadsDir is served statically under /uploads/, which is where the
// local backend's URLs resolve; cloud deployments pass it empty. Non
// matching methods on registered paths yield 405 via the router.
func NewRouter(documents *DocumentsHandler, gate *SecureGateHandler, uploadsDir string) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// The three upload aliases share one handler: classification runs on
	// the mime type, not the route.
	for _, kind := range []string{"documents", "images", "videos"} {
		router.HandleFunc("/projects/{projectId}/"+kind, documents.Upload).Methods(http.MethodPost)
	}
	router.HandleFunc("/projects/{projectId}/documents", documents.List).Methods(http.MethodGet)

	router.HandleFunc("/documents/{documentId}", documents.Get).Methods(http.MethodGet)
	router.HandleFunc("/documents/{documentId}", documents.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/documents/{documentId}/access", documents.Access).Methods(http.MethodGet)

	router.HandleFunc("/api/documents/secure/{documentId}", gate.Serve).Methods(http.MethodGet)

	if uploadsDir != "" {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))).Methods(http.MethodGet)
	}

	return router
}
