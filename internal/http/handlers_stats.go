package http

import (
	"net/http"
	"strconv"
	"time"

	"tally/internal/core"
	"tally/internal/stats"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Totals(s.store.Transactions()))
}

type savingsResponse struct {
	CurrentMonth core.Money `json:"currentMonth"`
	Goal         core.Money `json:"goal"`
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, savingsResponse{
		CurrentMonth: stats.CurrentMonthSavings(s.store.Transactions(), time.Now()),
		Goal:         s.store.SavingsGoal(),
	})
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	series := stats.MonthlySeries(s.store.Transactions())
	writeJSON(w, http.StatusOK, map[string]any{"months": series})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	lang := s.store.Language()
	breakdown := stats.CategoryExpenseBreakdown(s.store.Transactions(), func(id string) (string, bool) {
		c, ok := core.CategoryByID(id)
		if !ok {
			return "", false
		}
		return c.LocalizedName(lang), true
	})
	writeJSON(w, http.StatusOK, map[string]any{"categories": breakdown})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 9999 {
			writeError(w, http.StatusBadRequest, "invalid year: "+v)
			return
		}
		year = parsed
	}

	points := stats.NetAssetTrend(s.store.Transactions(), year)
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "points": points})
}
