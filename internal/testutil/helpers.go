package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
	"github.com/ordonezjosue/wheeltracker/internal/rowstore"
	"github.com/ordonezjosue/wheeltracker/internal/service"
	"github.com/ordonezjosue/wheeltracker/internal/yahoo"
)

// SetupTestRepo creates a TradeRepository over a fresh journal sheet in the
// given database.
func SetupTestRepo(t *testing.T, db *sql.DB) *repository.TradeRepository {
	t.Helper()

	store, err := rowstore.NewSQLiteStore(db, "Trades", repository.Columns())
	if err != nil {
		t.Fatalf("Failed to create test sheet: %v", err)
	}
	return repository.NewTradeRepository(store)
}

func NewTestJournalService(t *testing.T, db *sql.DB) *service.JournalService {
	t.Helper()

	return service.NewJournalService(SetupTestRepo(t, db), nil)
}

// NewTestJournalServiceWithPrices creates a JournalService backed by a mock
// price client, for testing price enrichment without real API calls.
func NewTestJournalServiceWithPrices(t *testing.T, db *sql.DB, prices *service.PriceCache) *service.JournalService {
	t.Helper()

	return service.NewJournalService(SetupTestRepo(t, db), prices)
}

func NewTestWheelService(t *testing.T, db *sql.DB) *service.WheelService {
	t.Helper()

	return service.NewWheelService(SetupTestRepo(t, db))
}

func NewTestImportService(t *testing.T, db *sql.DB) *service.ImportService {
	t.Helper()

	return service.NewImportService(SetupTestRepo(t, db))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MockYahooClient is a stub price source for tests. Lookups return the
// configured price per symbol, or an error when the symbol is absent.
// Safe for the concurrent fan-out the journal service performs.
type MockYahooClient struct {
	Prices map[string]float64

	mu    sync.Mutex
	calls int
}

// GetCurrentPrice implements yahoo.Client.
func (m *MockYahooClient) GetCurrentPrice(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	price, ok := m.Prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

// Calls reports how many lookups the client has served.
func (m *MockYahooClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ yahoo.Client = (*MockYahooClient)(nil)

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
