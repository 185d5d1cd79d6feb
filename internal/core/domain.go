package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"
)

const (
	English Language = "en"
	German  Language = "de"
	Chinese Language = "zh"
)

type (
	TransactionType string

	Language string

	// Transaction is a single recorded income or expense event. The ID is
	// assigned by the store and is opaque to everything else.
	Transaction struct {
		ID         string          `json:"id"`
		Amount     Money           `json:"amountCents"`
		CategoryID string          `json:"categoryId"`
		Date       time.Time       `json:"date"`
		Note       string          `json:"note"`
		Type       TransactionType `json:"type"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNotFound      = errors.New("transaction not found")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Expense, Income:
		return true
	default:
		return false
	}
}

// ParseTransactionType accepts the wire spelling case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Expense:
		return Expense, nil
	case Income:
		return Income, nil
	default:
		return "", ErrInvalidType
	}
}

func (l Language) IsValid() bool {
	switch l {
	case English, German, Chinese:
		return true
	default:
		return false
	}
}

// ParseLanguage falls back to English for anything it does not recognize.
// Persisted locale values are untrusted (see the persistence adapter), so an
// unknown value must degrade to the default rather than fail.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if l.IsValid() {
		return l
	}
	return English
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether two instants fall on the same calendar day, using
// the wall-clock date each timestamp carries (not a UTC re-projection).
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SameMonth reports whether two instants fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
