package service_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/service"
	"github.com/ordonezjosue/wheeltracker/internal/testutil"
)

func TestImportDescriptionProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Open and close legs pair into a closed trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,1.20,2025-03-01T10:00:00`,
			`AAPL,1 Mar Exp 150 Put BTC,0.30,2025-03-20T14:30:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		if report.Profile != model.ProfileDescription {
			t.Errorf("Expected description profile, got %q", report.Profile)
		}
		if report.Imported != 1 || report.Closed != 1 || report.Open != 0 {
			t.Errorf("Unexpected report: %+v", report)
		}
		if len(report.Warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", report.Warnings)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}

		got := trades[0]
		if got.Ticker != "AAPL" || got.Strike != 150 {
			t.Errorf("Unexpected trade: %+v", got)
		}
		if got.Strategy != model.StrategyPutCreditSpread || got.Process != model.ProcessSellPCS {
			t.Errorf("Expected PCS strategy, got %s/%s", got.Strategy, got.Process)
		}
		if got.Result != model.ResultClosed {
			t.Errorf("Expected Closed, got %q", got.Result)
		}
		// credit 1.20 minus buyback 0.30, one contract
		if got.PL != 90.00 {
			t.Errorf("Expected P/L 90.00, got %v", got.PL)
		}
		if got.Notes != "Imported from Tastytrade" {
			t.Errorf("Unexpected notes %q", got.Notes)
		}
	})

	t.Run("Quantity scales credit and profit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`F,-2 Jun 30d 12 Put STO,1.00,2025-05-01T10:00:00`,
			`F,2 Jun Exp 12 Put BTC,0.25,2025-05-20T10:00:00`,
		}, "\n")

		if _, err := imports.Import(ctx, strings.NewReader(csv)); err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		// (1.00*2 - 0.25*2) * 100
		if trades[0].PL != 150.00 {
			t.Errorf("Expected P/L 150.00, got %v", trades[0].PL)
		}
		if trades[0].Qty != 2 {
			t.Errorf("Expected qty 2, got %d", trades[0].Qty)
		}
	})

	t.Run("Unmatched opens remain as open positions in order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,1.20,2025-03-01T10:00:00`,
			`SOFI,-1 Apr 30d 7.5 Put STO,0.45,2025-03-02T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Open != 2 || report.Closed != 0 {
			t.Errorf("Unexpected report: %+v", report)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(trades) != 2 {
			t.Fatalf("Expected 2 trades, got %d", len(trades))
		}
		if trades[0].Ticker != "AAPL" || trades[1].Ticker != "SOFI" {
			t.Errorf("Expected input order preserved, got [%s %s]", trades[0].Ticker, trades[1].Ticker)
		}
		for _, trade := range trades {
			if trade.Result != model.ResultOpen {
				t.Errorf("Expected Open result, got %q", trade.Result)
			}
			if trade.PL != 0 {
				t.Errorf("Open positions carry no P/L, got %v", trade.PL)
			}
			if !strings.HasSuffix(trade.Notes, "(Open)") {
				t.Errorf("Expected (Open) note suffix, got %q", trade.Notes)
			}
		}
	})

	t.Run("Multi-underlying combos are excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO / -1 Mar 45d 155 Call STO,2.40,2025-03-01T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Imported != 0 {
			t.Errorf("Combo rows should not import, got %+v", report)
		}
		if len(report.Warnings) != 0 {
			t.Errorf("Combo exclusion is silent, got %v", report.Warnings)
		}
	})

	t.Run("Unparseable price skips the row with a warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,abc,2025-03-01T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Imported != 0 {
			t.Errorf("Expected nothing imported, got %+v", report)
		}
		if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "price") {
			t.Errorf("Expected a price warning, got %v", report.Warnings)
		}
	})

	t.Run("Row without option legs warns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		imports := service.NewImportService(testutil.SetupTestRepo(t, db))

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,Bought 100 shares,150.00,2025-03-01T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "no option legs") {
			t.Errorf("Expected a no-legs warning, got %v", report.Warnings)
		}
	})

	t.Run("Close without a matching open warns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		imports := service.NewImportService(testutil.SetupTestRepo(t, db))

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,1 Mar Exp 150 Put BTC,0.30,2025-03-20T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Imported != 0 {
			t.Errorf("Expected nothing imported, got %+v", report)
		}
		if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "no matching open") {
			t.Errorf("Expected an unmatched-close warning, got %v", report.Warnings)
		}
	})

	t.Run("Reopening the same key replaces the pending open", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,1.20,2025-03-01T10:00:00`,
			`AAPL,-1 Mar 30d 150 Put STO,1.50,2025-03-05T10:00:00`,
			`AAPL,1 Mar Exp 150 Put BTC,0.50,2025-03-20T10:00:00`,
		}, "\n")

		if _, err := imports.Import(ctx, strings.NewReader(csv)); err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}
		// The later open's 1.50 credit wins: (1.50 - 0.50) * 100
		if trades[0].PL != 100.00 {
			t.Errorf("Expected P/L 100.00, got %v", trades[0].PL)
		}
	})

	t.Run("Reopening after a close emits a single open position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,1.20,2025-03-01T10:00:00`,
			`AAPL,1 Mar Exp 150 Put BTC,0.30,2025-03-10T10:00:00`,
			`AAPL,-1 Mar 30d 150 Put STO,1.40,2025-03-12T10:00:00`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Imported != 2 || report.Closed != 1 || report.Open != 1 {
			t.Errorf("Unexpected report: %+v", report)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(trades) != 2 {
			t.Fatalf("Expected 2 trades, got %d", len(trades))
		}
		if trades[0].Result != model.ResultClosed || trades[0].PL != 90.00 {
			t.Errorf("Unexpected closed trade: %+v", trades[0])
		}
		if trades[1].Result != model.ResultOpen || trades[1].CreditCollected != 1.40 {
			t.Errorf("Unexpected open trade: %+v", trades[1])
		}
	})
}

func TestImportReparse(t *testing.T) {
	ctx := context.Background()

	t.Run("Importing the same file twice emits identical batches", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Symbol,Description,Price,Time",
			`AAPL,-1 Mar 45d 150 Put STO,1.20,2025-03-01T10:00:00`,
			`AAPL,1 Mar Exp 150 Put BTC,0.30,2025-03-20T14:30:00`,
			`SOFI,-2 Apr 30d 7.5 Put STO,0.45,2025-03-02T10:00:00`,
		}, "\n")

		first, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("First import failed: %v", err)
		}
		second, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Second import failed: %v", err)
		}
		if first.Imported != second.Imported || first.Closed != second.Closed || first.Open != second.Open {
			t.Errorf("Reports differ: %+v vs %+v", first, second)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(trades) != 2*first.Imported {
			t.Fatalf("Expected %d trades, got %d", 2*first.Imported, len(trades))
		}

		// Same fields in the same order, fresh IDs and row numbers aside.
		n := first.Imported
		for i := 0; i < n; i++ {
			a, b := trades[i], trades[i+n]
			a.ID, b.ID = "", ""
			a.RowNumber, b.RowNumber = 0, 0
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Record %d differs between imports:\n%+v\n%+v", i, a, b)
			}
		}
	})
}

func TestImportStructuredProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Explicit columns pair the same way", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Date,Underlying Symbol,Action,Quantity,Price,Strike Price,Expiration Date,Type",
			`2025-03-01,AAPL,SELL_TO_OPEN,1,1.20,150,2025-03-21,Put`,
			`2025-03-20,AAPL,BUY_TO_CLOSE,1,0.30,150,2025-03-21,Put`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Profile != model.ProfileStructured {
			t.Errorf("Expected structured profile, got %q", report.Profile)
		}
		if report.Closed != 1 {
			t.Errorf("Unexpected report: %+v", report)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if trades[0].PL != 90.00 {
			t.Errorf("Expected P/L 90.00, got %v", trades[0].PL)
		}
		if trades[0].Notes != "Imported from broker CSV" {
			t.Errorf("Unexpected notes %q", trades[0].Notes)
		}
	})

	t.Run("Unhandled actions are skipped with a warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		imports := service.NewImportService(testutil.SetupTestRepo(t, db))

		csv := strings.Join([]string{
			"Date,Underlying Symbol,Action,Quantity,Price,Strike Price,Expiration Date,Type",
			`2025-03-01,AAPL,SELL_TO_CLOSE,1,1.20,150,2025-03-21,Put`,
		}, "\n")

		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Imported != 0 {
			t.Errorf("Expected nothing imported, got %+v", report)
		}
		if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "unhandled action") {
			t.Errorf("Expected an action warning, got %v", report.Warnings)
		}
	})

	t.Run("Float quantities are accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.SetupTestRepo(t, db)
		imports := service.NewImportService(repo)

		csv := strings.Join([]string{
			"Date,Underlying Symbol,Action,Quantity,Price,Strike Price,Expiration Date,Type",
			`2025-03-01,AAPL,SELL_TO_OPEN,2.0,1.00,150,2025-03-21,Put`,
		}, "\n")

		if _, err := imports.Import(ctx, strings.NewReader(csv)); err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		trades, err := repo.ListTrades(ctx)
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if trades[0].Qty != 2 {
			t.Errorf("Expected qty 2, got %d", trades[0].Qty)
		}
	})
}

func TestImportProfileDetection(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown headers reject the whole upload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		imports := service.NewImportService(testutil.SetupTestRepo(t, db))

		csv := "Foo,Bar\n1,2\n"
		_, err := imports.Import(ctx, strings.NewReader(csv))
		if !errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			t.Errorf("Expected ErrInvalidCSVHeaders, got %v", err)
		}
	})

	t.Run("Header whitespace is tolerated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		imports := service.NewImportService(testutil.SetupTestRepo(t, db))

		csv := " Symbol , Description , Price \nAAPL,-1 Mar 45d 150 Put STO,1.20\n"
		report, err := imports.Import(ctx, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if report.Profile != model.ProfileDescription {
			t.Errorf("Expected description profile, got %q", report.Profile)
		}
	})
}
