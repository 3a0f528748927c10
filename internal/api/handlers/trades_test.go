package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ordonezjosue/wheeltracker/internal/api/handlers"
	"github.com/ordonezjosue/wheeltracker/internal/api/request"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/testutil"
)

func TestTradeHandlerAllTrades(t *testing.T) {
	t.Run("Returns every journal row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		testutil.NewTrade().WithTicker("AAPL").Build(t, repo)
		testutil.NewTrade().WithTicker("SOFI").Build(t, repo)

		req := httptest.NewRequest(http.MethodGet, "/api/trade", nil)
		w := httptest.NewRecorder()
		handler.AllTrades(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var trades []model.TradeRecord
		if err := json.Unmarshal(w.Body.Bytes(), &trades); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(trades) != 2 {
			t.Errorf("Expected 2 trades, got %d", len(trades))
		}
	})

	t.Run("Empty journal returns an empty array", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/trade", nil)
		w := httptest.NewRecorder()
		handler.AllTrades(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("Expected empty array, got %s", w.Body.String())
		}
	})
}

func TestTradeHandlerGetTrade(t *testing.T) {
	t.Run("Returns the trade by ID", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		trade := testutil.NewTrade().WithTicker("AAPL").Build(t, repo)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/"+trade.ID,
			map[string]string{"uuid": trade.ID})
		w := httptest.NewRecorder()
		handler.GetTrade(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.TradeRecord
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if got.ID != trade.ID || got.Ticker != "AAPL" {
			t.Errorf("Unexpected trade: %+v", got)
		}
	})

	t.Run("Unknown ID returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/"+id,
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		handler.GetTrade(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestTradeHandlerCreateTrade(t *testing.T) {
	t.Run("Creates an open entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		body := request.CreateTradeRequest{
			Strategy:   string(model.StrategyWheel),
			Ticker:     "AAPL",
			Strike:     100,
			Credit:     2.00,
			Qty:        1,
			Expiration: "2025-06-20",
		}
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/trade", nil, body)
		w := httptest.NewRecorder()
		handler.CreateTrade(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var got model.TradeRecord
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if got.Process != model.ProcessSellPut || got.Result != model.ResultOpen {
			t.Errorf("Expected an open Sell Put, got %s/%s", got.Process, got.Result)
		}
	})

	t.Run("Validation failures return 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		body := request.CreateTradeRequest{
			Strategy:   string(model.StrategyWheel),
			Ticker:     "AAPL",
			Strike:     0, // invalid
			Qty:        1,
			Expiration: "2025-06-20",
		}
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/trade", nil, body)
		w := httptest.NewRecorder()
		handler.CreateTrade(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("Malformed JSON returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		req := httptest.NewRequest(http.MethodPost, "/api/trade", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		handler.CreateTrade(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestTradeHandlerDeleteTrade(t *testing.T) {
	t.Run("Deletes and returns 204", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		trade := testutil.NewTrade().Build(t, repo)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+trade.ID,
			map[string]string{"uuid": trade.ID})
		w := httptest.NewRecorder()
		handler.DeleteTrade(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("Unknown ID returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+id,
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		handler.DeleteTrade(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestTradeHandlerSummary(t *testing.T) {
	t.Run("Returns the aggregated metrics", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		testutil.NewTrade().WithResult(model.ResultExpiredWorthless).WithPL(200).Build(t, repo)
		testutil.NewTrade().Build(t, repo)

		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		w := httptest.NewRecorder()
		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.Summary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if summary.TotalTrades != 2 || summary.ActiveTrades != 1 || summary.TotalProfit != 200 {
			t.Errorf("Unexpected summary: %+v", summary)
		}
	})
}

func TestTradeHandlerExport(t *testing.T) {
	t.Run("Returns the journal as a CSV attachment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		handler := handlers.NewTradeHandler(testutil.NewTestJournalService(t, db))

		testutil.NewTrade().WithTicker("AAPL").Build(t, repo)

		req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
		w := httptest.NewRecorder()
		handler.Export(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Expected text/csv, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
			t.Errorf("Expected attachment disposition, got %q", cd)
		}

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		if len(lines) != 2 {
			t.Errorf("Expected header plus 1 row, got %d lines", len(lines))
		}
	})
}
