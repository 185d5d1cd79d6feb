package http

import (
	"log/slog"
	"net/http"
	"time"

	"tally/internal/ai"
)

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Draft *ai.Draft `json:"draft"`
}

// handleParseFreeText extracts a transaction draft from free text. A null
// draft means nothing usable was extracted; the model being unreachable is
// reported the same way, so the client form keeps working regardless.
func (s *Server) handleParseFreeText(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	draft, err := s.parser.ParseFreeText(r.Context(), sanitizeInput(req.Text), time.Now())
	if err != nil {
		slog.WarnContext(r.Context(), "Free-text parse failed", "error", err)
		writeJSON(w, http.StatusOK, parseResponse{Draft: nil})
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{Draft: draft})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	text := s.insights.Generate(r.Context(), s.store.Transactions(), s.store.Language(), s.store.Revision())
	writeJSON(w, http.StatusOK, map[string]any{"insight": text})
}
