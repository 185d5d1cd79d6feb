package http

import (
	"net/http"

	"tally/internal/core"
)

type setBudgetRequest struct {
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"budgets": s.store.Budgets()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CategoryID == "" {
		writeError(w, http.StatusUnprocessableEntity, "categoryId is required")
		return
	}

	// Out-of-range amounts clamp to zero inside the store, never rejected
	s.store.SetBudget(r.Context(), sanitizeInput(req.CategoryID), req.Amount)
	w.WriteHeader(http.StatusNoContent)
}

type setGoalRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"goal": s.store.SavingsGoal()})
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req setGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.store.SetSavingsGoal(r.Context(), req.Amount)
	w.WriteHeader(http.StatusNoContent)
}

type setLanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"language": s.store.Language()})
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req setLanguageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Unknown locales fall back to English rather than erroring
	s.store.SetLanguage(r.Context(), core.ParseLanguage(req.Language))
	w.WriteHeader(http.StatusNoContent)
}
