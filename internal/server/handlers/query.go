package handlers

import (
	"net/http"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/transaction"
)

// respondWithQuery writes a QueryResponse: Found is passed to found, NotFound becomes 404 and
// InvalidState becomes 400 with the state message as the error description.
func respondWithQuery[T any](w http.ResponseWriter, r *http.Request, q transaction.QueryResponse[T], found func(T)) {
	switch q.Outcome {
	case transaction.QueryFound:
		found(q.Value)
	case transaction.QueryNotFound:
		RespondWithJSONPayload(w, http.StatusNotFound,
			NewErrorResponse(r, http.StatusNotFound, ErrorNotFound, "presentation not found"))
	default:
		RespondWithJSONPayload(w, http.StatusBadRequest,
			NewErrorResponse(r, http.StatusBadRequest, ErrorInvalidRequest, q.Message))
	}
}
