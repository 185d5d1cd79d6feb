// Package export renders the transaction list as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"tally/internal/core"
)

const dateLayout = "2006-01-02 15:04:05"

// FallbackCategoryName labels rows whose category id no longer resolves.
const FallbackCategoryName = "Uncategorized"

// Write emits `Date,Type,Category,Amount,Note` rows. Dates are local wall
// clock, amounts carry exactly two decimals, and the category is its
// canonical (non-localized) display name. Quoting follows RFC 4180: fields
// containing separators or quotes are wrapped and internal quotes doubled.
func Write(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Type", "Category", "Amount", "Note"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, tx := range txs {
		name := FallbackCategoryName
		if c, ok := core.CategoryByID(tx.CategoryID); ok {
			name = c.Name
		}
		row := []string{
			tx.Date.Format(dateLayout),
			string(tx.Type),
			name,
			tx.Amount.String(),
			tx.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
