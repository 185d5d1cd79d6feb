package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tally/internal/ai"
	"tally/internal/core"
	"tally/internal/persist"
	"tally/internal/store"
)

func newTestServer() *Server {
	st := store.New(persist.NewMemory(), nil)
	parser := ai.New(ai.Config{}) // disabled
	return NewServer(":0", st, parser, ai.NewInsights(parser))
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func createTransaction(t *testing.T, s *Server, body string) core.Transaction {
	t.Helper()
	rec := doRequest(s, http.MethodPost, "/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var tx core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode created transaction: %v", err)
	}
	return tx
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer()

	if rec := doRequest(s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer()

	tx := createTransaction(t, s, `{"amount":"12,50","categoryId":"food","type":"expense","note":"lunch"}`)
	if tx.ID == "" {
		t.Error("created transaction has no id")
	}
	if tx.Amount.Cents != 1250 {
		t.Errorf("amount = %d cents, want 1250", tx.Amount.Cents)
	}
	if tx.Type != core.Expense {
		t.Errorf("type = %q", tx.Type)
	}
	if tx.Date.IsZero() {
		t.Error("date must default to now")
	}
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "zero amount", body: `{"amount":"0","categoryId":"food","type":"EXPENSE"}`, want: http.StatusUnprocessableEntity},
		{name: "negative amount", body: `{"amount":"-5","categoryId":"food","type":"EXPENSE"}`, want: http.StatusUnprocessableEntity},
		{name: "garbage amount", body: `{"amount":"abc","categoryId":"food","type":"EXPENSE"}`, want: http.StatusUnprocessableEntity},
		{name: "unknown type", body: `{"amount":"5","categoryId":"food","type":"TRANSFER"}`, want: http.StatusUnprocessableEntity},
		{name: "bad date", body: `{"amount":"5","categoryId":"food","type":"EXPENSE","date":"05/04/2024"}`, want: http.StatusUnprocessableEntity},
		{name: "malformed json", body: `{"amount":`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"amount":"5","categoryId":"food","type":"EXPENSE","foo":1}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := doRequest(s, http.MethodPost, "/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCreateAcceptsUnknownCategory(t *testing.T) {
	s := newTestServer()

	// Unknown category ids are stored as-is and degrade only in name-keyed views
	tx := createTransaction(t, s, `{"amount":"5","categoryId":"ghost","type":"EXPENSE"}`)
	if tx.CategoryID != "ghost" {
		t.Errorf("categoryId = %q, want ghost", tx.CategoryID)
	}
}

func TestListTransactionsSortedAndGrouped(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE","date":"2024-01-01T10:00:00Z"}`)
	createTransaction(t, s, `{"amount":"20","categoryId":"salary","type":"INCOME","date":"2024-01-02T10:00:00Z"}`)
	createTransaction(t, s, `{"amount":"5","categoryId":"food","type":"EXPENSE","date":"2024-01-01T18:00:00Z"}`)

	rec := doRequest(s, http.MethodGet, "/transactions?sort=DATE_ASC&grouped=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp listTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(resp.Transactions))
	}
	if !resp.Transactions[0].Date.Before(resp.Transactions[2].Date) {
		t.Error("DATE_ASC order not applied")
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(resp.Groups))
	}
	if len(resp.Groups[0].Transactions) != 2 {
		t.Errorf("first group size = %d, want 2 (both Jan 1 entries)", len(resp.Groups[0].Transactions))
	}
}

func TestListGroupingSkippedForNonDateOrder(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE"}`)

	rec := doRequest(s, http.MethodGet, "/transactions?sort=AMOUNT_DESC&grouped=true", "")
	var resp listTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Groups != nil {
		t.Error("grouping must be ignored for amount ordering")
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer()
	tx := createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE","note":"old"}`)

	rec := doRequest(s, http.MethodPatch, "/transactions/"+tx.ID, `{"note":"new","amount":"15.00"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("patch status = %d, body = %s", rec.Code, rec.Body.String())
	}

	list := doRequest(s, http.MethodGet, "/transactions", "")
	var resp listTransactionsResponse
	if err := json.Unmarshal(list.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	got := resp.Transactions[0]
	if got.Note != "new" || got.Amount.Cents != 1500 {
		t.Errorf("patched transaction = %+v", got)
	}
	if got.CategoryID != "food" {
		t.Errorf("untouched field changed: %q", got.CategoryID)
	}
}

func TestUpdateTransactionErrors(t *testing.T) {
	s := newTestServer()
	tx := createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE"}`)

	if rec := doRequest(s, http.MethodPatch, "/transactions/nope", `{"note":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
	if rec := doRequest(s, http.MethodPatch, "/transactions/"+tx.ID, `{"amount":"-1"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid patch status = %d, want 422", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer()
	tx := createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE"}`)

	if rec := doRequest(s, http.MethodDelete, "/transactions/"+tx.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := doRequest(s, http.MethodDelete, "/transactions/"+tx.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestClearAll(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE"}`)

	if rec := doRequest(s, http.MethodDelete, "/transactions", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/transactions", "")
	var resp listTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Transactions) != 0 {
		t.Errorf("transactions after clear = %d", len(resp.Transactions))
	}
}

func TestStatsSummary(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"100","categoryId":"salary","type":"INCOME"}`)
	createTransaction(t, s, `{"amount":"30","categoryId":"food","type":"EXPENSE"}`)

	rec := doRequest(s, http.MethodGet, "/stats/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}

	var got struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
		Balance core.Money `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Income.Cents != 10000 || got.Expense.Cents != 3000 || got.Balance.Cents != 7000 {
		t.Errorf("summary = %+v", got)
	}
}

func TestStatsTrendValidatesYear(t *testing.T) {
	s := newTestServer()

	if rec := doRequest(s, http.MethodGet, "/stats/trend?year=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad year status = %d, want 400", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/stats/trend?year=2024", "")
	var resp struct {
		Year   int               `json:"year"`
		Points []json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Year != 2024 || len(resp.Points) != 12 {
		t.Errorf("trend year = %d, points = %d", resp.Year, len(resp.Points))
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	s := newTestServer()

	if rec := doRequest(s, http.MethodPut, "/budgets", `{"categoryId":"food","amount":250.5}`); rec.Code != http.StatusNoContent {
		t.Fatalf("put budget status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/budgets", "")
	var resp struct {
		Budgets map[string]core.Money `json:"budgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Budgets["food"].Cents != 25050 {
		t.Errorf("budget = %+v", resp.Budgets)
	}
}

func TestBudgetRequiresCategory(t *testing.T) {
	s := newTestServer()
	if rec := doRequest(s, http.MethodPut, "/budgets", `{"amount":10}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing categoryId status = %d, want 422", rec.Code)
	}
}

func TestSavingsGoalRoundTrip(t *testing.T) {
	s := newTestServer()

	if rec := doRequest(s, http.MethodPut, "/settings/goal", `{"amount":1000}`); rec.Code != http.StatusNoContent {
		t.Fatalf("put goal status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/settings/goal", "")
	var resp struct {
		Goal core.Money `json:"goal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Goal.Cents != 100000 {
		t.Errorf("goal = %d cents", resp.Goal.Cents)
	}
}

func TestLanguageFallsBackToEnglish(t *testing.T) {
	s := newTestServer()

	if rec := doRequest(s, http.MethodPut, "/settings/language", `{"language":"fr"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("put language status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/settings/language", "")
	var resp struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Language != "en" {
		t.Errorf("language = %q, want en", resp.Language)
	}
}

func TestCategoriesLocalized(t *testing.T) {
	s := newTestServer()
	doRequest(s, http.MethodPut, "/settings/language", `{"language":"de"}`)

	rec := doRequest(s, http.MethodGet, "/categories", "")
	if !strings.Contains(rec.Body.String(), "Essen & Trinken") {
		t.Errorf("categories not localized: %s", rec.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"12.50","categoryId":"food","type":"EXPENSE","note":"lunch","date":"2024-07-03T18:45:09Z"}`)

	rec := doRequest(s, http.MethodGet, "/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Date,Type,Category,Amount,Note") {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, "Food & Dining") || !strings.Contains(body, "12.50") {
		t.Errorf("row content: %q", body)
	}
}

func TestAIParseDisabledReturnsNullDraft(t *testing.T) {
	s := newTestServer()

	rec := doRequest(s, http.MethodPost, "/ai/parse", `{"text":"spent 12 on pizza"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d", rec.Code)
	}

	var resp parseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Draft != nil {
		t.Errorf("draft = %+v, want null with AI disabled", resp.Draft)
	}
}

func TestAIInsightFallsBack(t *testing.T) {
	s := newTestServer()
	createTransaction(t, s, `{"amount":"10","categoryId":"food","type":"EXPENSE"}`)

	rec := doRequest(s, http.MethodGet, "/ai/insight", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("insight status = %d", rec.Code)
	}

	var resp struct {
		Insight string `json:"insight"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Insight != ai.Fallback(core.English) {
		t.Errorf("insight = %q, want fallback", resp.Insight)
	}
}

func TestRateLimiterBlocksBursts(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("61st request within a minute must be blocked")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients must not be affected")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.clients["10.0.0.3"] = &clientInfo{lastRequest: time.Now().Add(-2 * time.Minute), requests: 60}
	if !rl.allow("10.0.0.3") {
		t.Error("counter must reset after the window passes")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	if rec := doRequest(s, http.MethodPut, "/transactions", `{}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
