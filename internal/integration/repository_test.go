//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fxresolver/internal/rates"
	"fxresolver/internal/repository"
)

func newRateRepo() repository.RateRepository {
	return repository.NewPostgresRateRepository(testDB)
}

func newRefreshRepo() repository.RefreshRepository {
	return repository.NewPostgresRefreshRepository(testDB)
}

// day parses a YYYY-MM-DD string into a UTC midnight.
func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUpsertRates(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	table := make(rates.Table)
	table.Add("USD", day("2024-01-15"), decimal.RequireFromString("1.0856"))
	table.Add("USD", day("2024-01-16"), decimal.RequireFromString("1.0901"))
	table.Add("GBP", day("2024-01-15"), decimal.RequireFromString("0.8562"))

	written, err := repo.UpsertRates(ctx, "ecb", table)
	if err != nil {
		t.Fatalf("UpsertRates: %v", err)
	}
	if written != 3 {
		t.Fatalf("expected 3 rows written, got %d", written)
	}

	list, err := repo.ListRates(ctx, "ecb", "", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("ListRates: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 stored rates, got %d", len(list))
	}
}

func TestUpsertRates_Overwrite(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	table := make(rates.Table)
	table.Add("USD", day("2024-01-15"), decimal.RequireFromString("1.0856"))
	if _, err := repo.UpsertRates(ctx, "ecb", table); err != nil {
		t.Fatalf("first UpsertRates: %v", err)
	}

	// Re-fetching a window must replace the stored value, not duplicate it.
	revised := make(rates.Table)
	revised.Add("USD", day("2024-01-15"), decimal.RequireFromString("1.0900"))
	written, err := repo.UpsertRates(ctx, "ecb", revised)
	if err != nil {
		t.Fatalf("second UpsertRates: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 row written, got %d", written)
	}

	loaded, err := repo.LoadTable(ctx, "ecb", day("2024-01-15"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	got, ok := loaded[rates.Currency("USD")][day("2024-01-15")]
	if !ok {
		t.Fatal("expected USD rate for 2024-01-15")
	}
	if !got.Equal(decimal.RequireFromString("1.0900")) {
		t.Fatalf("expected updated rate 1.0900, got %s", got)
	}
}

func TestLoadTable_Window(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	table := make(rates.Table)
	for _, d := range []string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-15", "2024-01-16"} {
		table.Add("USD", day(d), decimal.RequireFromString("1.08"))
	}
	// GBP is published only before the window.
	table.Add("GBP", day("2024-01-05"), decimal.RequireFromString("0.8562"))
	if _, err := repo.UpsertRates(ctx, "ecb", table); err != nil {
		t.Fatalf("UpsertRates: %v", err)
	}

	loaded, err := repo.LoadTable(ctx, "ecb", day("2024-01-11"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	series := loaded[rates.Currency("USD")]
	if len(series) != 3 {
		t.Fatalf("expected 3 days in window, got %d", len(series))
	}
	for _, d := range []string{"2024-01-11", "2024-01-12", "2024-01-15"} {
		if _, ok := series[day(d)]; !ok {
			t.Errorf("expected day %s in loaded table", d)
		}
	}

	// A currency with publications only outside the window keeps its key with
	// an empty series.
	gbp, ok := loaded[rates.Currency("GBP")]
	if !ok {
		t.Fatal("expected GBP key for out-of-window series")
	}
	if len(gbp) != 0 {
		t.Fatalf("expected empty GBP series, got %d entries", len(gbp))
	}
}

func TestLoadTable_SourceIsolation(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	ecb := make(rates.Table)
	ecb.Add("USD", day("2024-01-15"), decimal.RequireFromString("1.0856"))
	if _, err := repo.UpsertRates(ctx, "ecb", ecb); err != nil {
		t.Fatalf("UpsertRates ecb: %v", err)
	}

	banxico := make(rates.Table)
	banxico.Add("USD", day("2024-01-15"), decimal.RequireFromString("17.1234"))
	if _, err := repo.UpsertRates(ctx, "banxico", banxico); err != nil {
		t.Fatalf("UpsertRates banxico: %v", err)
	}

	loaded, err := repo.LoadTable(ctx, "banxico", day("2024-01-15"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	got := loaded[rates.Currency("USD")][day("2024-01-15")]
	if !got.Equal(decimal.RequireFromString("17.1234")) {
		t.Fatalf("expected banxico rate 17.1234, got %s", got)
	}
}

func TestListRates_CurrencyFilter(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	table := make(rates.Table)
	table.Add("USD", day("2024-01-15"), decimal.RequireFromString("1.0856"))
	table.Add("USD", day("2024-01-16"), decimal.RequireFromString("1.0901"))
	table.Add("GBP", day("2024-01-15"), decimal.RequireFromString("0.8562"))
	if _, err := repo.UpsertRates(ctx, "ecb", table); err != nil {
		t.Fatalf("UpsertRates: %v", err)
	}

	list, err := repo.ListRates(ctx, "ecb", "GBP", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("ListRates: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 GBP rate, got %d", len(list))
	}
	if list[0].Currency != "GBP" {
		t.Fatalf("expected currency GBP, got %s", list[0].Currency)
	}
	if !list[0].Rate.Equal(decimal.RequireFromString("0.8562")) {
		t.Fatalf("expected rate 0.8562, got %s", list[0].Rate)
	}
}

func TestLoadPegs_Seeded(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	pegs, err := repo.LoadPegs(ctx)
	if err != nil {
		t.Fatalf("LoadPegs: %v", err)
	}

	aed, ok := pegs[rates.Currency("AED")]
	if !ok {
		t.Fatal("expected seeded AED peg")
	}
	if aed.To != "USD" {
		t.Fatalf("expected AED pegged to USD, got %s", aed.To)
	}
	if !aed.Rate.Equal(decimal.RequireFromString("0.272294")) {
		t.Fatalf("expected AED peg rate 0.272294, got %s", aed.Rate)
	}

	dkk, ok := pegs[rates.Currency("DKK")]
	if !ok {
		t.Fatal("expected seeded DKK peg")
	}
	if dkk.To != "EUR" {
		t.Fatalf("expected DKK pegged to EUR, got %s", dkk.To)
	}
}

func TestListPegs(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRateRepo()

	list, err := repo.ListPegs(ctx)
	if err != nil {
		t.Fatalf("ListPegs: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected seeded pegs, got none")
	}

	found := false
	for _, peg := range list {
		if peg.Currency == "BND" {
			found = true
			if peg.To != "SGD" {
				t.Fatalf("expected BND pegged to SGD, got %s", peg.To)
			}
		}
	}
	if !found {
		t.Fatal("expected BND peg in list")
	}
}

func TestCreateRefresh(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	got, err := repo.CreateRefresh(ctx, id, "ecb", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if got != id {
		t.Fatalf("expected id %s, got %s", id, got)
	}

	// Verify DB state.
	ref, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ref == nil {
		t.Fatal("expected refresh record, got nil")
	}
	if ref.Source != "ecb" {
		t.Fatalf("expected source ecb, got %s", ref.Source)
	}
	if ref.Status != repository.StatusPending {
		t.Fatalf("expected PENDING, got %s", ref.Status)
	}
	if ref.WindowStart.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("expected window start 2024-01-01, got %s", ref.WindowStart.Format("2006-01-02"))
	}
	if ref.WindowEnd.Format("2006-01-02") != "2024-01-31" {
		t.Fatalf("expected window end 2024-01-31, got %s", ref.WindowEnd.Format("2006-01-02"))
	}
	if ref.RequestedAt.IsZero() {
		t.Fatal("expected requested_at to be set")
	}
}

func TestCreateRefresh_Dedup(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id1 := uuid.New().String()
	got1, err := repo.CreateRefresh(ctx, id1, "ecb", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("first CreateRefresh: %v", err)
	}
	if got1 != id1 {
		t.Fatalf("expected id1 %s, got %s", id1, got1)
	}

	// Second call for same source and window while PENDING should return existing ID.
	id2 := uuid.New().String()
	got2, err := repo.CreateRefresh(ctx, id2, "ecb", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("second CreateRefresh: %v", err)
	}
	if got2 != id1 {
		t.Fatalf("expected dedup to return %s, got %s", id1, got2)
	}

	// A different window is not deduplicated.
	id3 := uuid.New().String()
	got3, err := repo.CreateRefresh(ctx, id3, "ecb", day("2024-02-01"), day("2024-02-29"))
	if err != nil {
		t.Fatalf("third CreateRefresh: %v", err)
	}
	if got3 != id3 {
		t.Fatalf("expected new id %s for new window, got %s", id3, got3)
	}
}

func TestCreateRefresh_AfterCompletion(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id1 := uuid.New().String()
	_, err := repo.CreateRefresh(ctx, id1, "ecb", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}

	// Move to RUNNING then SUCCESS.
	if err := repo.MarkRunning(ctx, id1); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := repo.MarkSuccess(ctx, id1, 23); err != nil {
		t.Fatalf("MarkSuccess: %v", err)
	}

	// New request for same source and window should create a new record.
	id2 := uuid.New().String()
	got, err := repo.CreateRefresh(ctx, id2, "ecb", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("CreateRefresh after completion: %v", err)
	}
	if got != id2 {
		t.Fatalf("expected new id %s, got %s", id2, got)
	}
}

func TestMarkRunning(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, id, "ecb", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}

	t.Run("status is RUNNING", func(t *testing.T) {
		ref, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if ref.Status != repository.StatusRunning {
			t.Fatalf("expected RUNNING, got %s", ref.Status)
		}
	})

	t.Run("second call fails", func(t *testing.T) {
		if err := repo.MarkRunning(ctx, id); err == nil {
			t.Fatal("expected error for MarkRunning on RUNNING record, got nil")
		}
	})
}

func TestMarkSuccess(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, id, "ecb", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}

	if err := repo.MarkSuccess(ctx, id, 23); err != nil {
		t.Fatalf("MarkSuccess: %v", err)
	}

	ref, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ref.Status != repository.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", ref.Status)
	}
	if ref.RowCount == nil || *ref.RowCount != 23 {
		t.Fatalf("expected row_count 23, got %v", ref.RowCount)
	}
	if ref.UpdatedAt == nil {
		t.Fatal("expected updated_at to be set")
	}
}

func TestMarkSuccess_WrongStatus(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, id, "ecb", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}

	// Try to mark success while still PENDING (not RUNNING).
	if err := repo.MarkSuccess(ctx, id, 1); err == nil {
		t.Fatal("expected error for MarkSuccess on non-RUNNING record, got nil")
	}
}

func TestMarkFailed(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, id, "banxico", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}

	errMsg := "provider timeout"
	if err := repo.MarkFailed(ctx, id, errMsg); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	ref, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ref.Status != repository.StatusFailed {
		t.Fatalf("expected FAILED, got %s", ref.Status)
	}
	if ref.ErrorMsg == nil || *ref.ErrorMsg != errMsg {
		t.Fatalf("expected error message %q, got %v", errMsg, ref.ErrorMsg)
	}

	// A FAILED record stays eligible for MarkRunning so Asynq retries can proceed.
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning after FAILED: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	ref, err := repo.GetByID(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected nil for unknown UUID, got %+v", ref)
	}
}
