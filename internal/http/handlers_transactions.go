package http

import (
	"log/slog"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/store"
	"tally/internal/view"
)

type createTransactionRequest struct {
	Amount     string `json:"amount"`
	CategoryID string `json:"categoryId"`
	Date       string `json:"date,omitempty"`
	Note       string `json:"note,omitempty"`
	Type       string `json:"type"`
}

type updateTransactionRequest struct {
	Amount     *string `json:"amount,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
	Date       *string `json:"date,omitempty"`
	Note       *string `json:"note,omitempty"`
	Type       *string `json:"type,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}

	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid type: "+req.Type)
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date: must be RFC3339")
			return
		}
		date = parsed
	}

	tx, err := s.store.Create(r.Context(), core.Money{Cents: cents}, sanitizeInput(req.CategoryID), date, sanitizeInput(req.Note), typ)
	if err != nil {
		writeError(w, statusForValidation(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

type listTransactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Groups       []view.DailyGroup  `json:"groups,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	opt := view.ParseSortOption(r.URL.Query().Get("sort"))
	sorted := view.Sort(s.store.Transactions(), opt)

	resp := listTransactionsResponse{Transactions: sorted}
	// Day grouping only reads sensibly under a date order
	if r.URL.Query().Get("grouped") == "true" && opt.IsDateOrder() {
		resp.Groups = view.GroupByDay(sorted)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var ch store.Changes
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
			return
		}
		ch.Amount = &core.Money{Cents: cents}
	}
	if req.CategoryID != nil {
		categoryID := sanitizeInput(*req.CategoryID)
		ch.CategoryID = &categoryID
	}
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date: must be RFC3339")
			return
		}
		ch.Date = &parsed
	}
	if req.Note != nil {
		note := sanitizeInput(*req.Note)
		ch.Note = &note
	}
	if req.Type != nil {
		typ, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid type: "+*req.Type)
			return
		}
		ch.Type = &typ
	}

	found, err := s.store.Update(r.Context(), id, ch)
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, statusForValidation(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.Delete(r.Context(), id) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	s.store.ClearAll(r.Context())
	slog.InfoContext(r.Context(), "Ledger cleared via API")
	w.WriteHeader(http.StatusNoContent)
}

type categoryResponse struct {
	ID    string               `json:"id"`
	Name  string               `json:"name"`
	Icon  string               `json:"icon"`
	Color string               `json:"color"`
	Type  core.TransactionType `json:"type"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	lang := s.store.Language()

	var out []categoryResponse
	for _, c := range core.Categories() {
		out = append(out, categoryResponse{
			ID:    c.ID,
			Name:  c.LocalizedName(lang),
			Icon:  c.Icon,
			Color: c.Color,
			Type:  c.Type,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}
