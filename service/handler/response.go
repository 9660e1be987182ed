package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/loretops/coinvest-docs/service/types"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto a status code and a JSON body.
// Internal causes stay in the server logs.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	status := types.StatusFor(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		message = "internal server error"
	}

	writeJSON(w, status, map[string]string{"error": message})
}
