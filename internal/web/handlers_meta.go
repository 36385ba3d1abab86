package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/JonMunkholm/prfbulk/internal/core/tables"
)

// handleHealth reports liveness and current run capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.limiter.Status(),
	})
}

// handleTemplate returns a header-only CSV to fill in.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, templateFileName))
	w.WriteHeader(http.StatusOK)
	w.Write(core.RenderTemplate())
}

const templateFileName = "prf_bulk_import_template.csv"

// HeadersResponse lists the input and output columns.
type HeadersResponse struct {
	Required       []string `json:"required"`
	NewMember      []string `json:"newMember"`
	ExistingMember []string `json:"existingMember"`
	ChunkSize      int      `json:"chunkSize"`
	MaxRows        int      `json:"maxRows"`
}

// handleHeaders describes the expected input and the output file layouts.
func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HeadersResponse{
		Required:       tables.RequiredHeaders,
		NewMember:      tables.NewMemberColumns,
		ExistingMember: tables.ExistingMemberColumns,
		ChunkSize:      core.ChunkSize,
		MaxRows:        core.MaxRows,
	})
}
