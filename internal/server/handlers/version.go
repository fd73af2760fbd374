package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/version"
)

// HandleVersion godoc
//
//	@Summary		Get version information
//	@Description	Returns the version and build information for the service
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func HandleVersion(info version.Info) http.HandlerFunc {
	// Pre-create the response to avoid allocating on every request
	response := VersionResponse{
		Version:   info.Version,
		BuildTime: info.BuildDate,
		GitCommit: info.GitCommit,
		Service:   "verifier-server",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode version", http.StatusInternalServerError)
			return
		}
	}
}

type VersionResponse struct {
	Version   string `json:"version" example:"1.0.0"`
	BuildTime string `json:"build_time" example:"2024-01-28T10:00:00Z"`
	GitCommit string `json:"git_commit" example:"8f2c1e4"`
	Service   string `json:"service" example:"verifier-server"`
}
