package http

import (
	"log/slog"
	"net/http"
	"time"

	"tally/internal/export"
	"tally/internal/view"
)

// handleExportCSV streams the whole ledger as a CSV download, newest first.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txs := view.Sort(s.store.Transactions(), view.DateDesc)

	filename := "transactions-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.Write(w, txs); err != nil {
		// Headers are already gone at this point; just log it
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err, "count", len(txs))
	}
}
