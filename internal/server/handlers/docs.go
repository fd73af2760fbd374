package handlers

import (
	"net/http"

	"github.com/swaggo/swag"

	// registers the OpenAPI document
	_ "github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/docs"
)

// HandleSwaggerJSON serves the registered OpenAPI document.
func HandleSwaggerJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		RespondWithErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
