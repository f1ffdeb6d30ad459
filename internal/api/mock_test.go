package api

import (
	"context"
	"time"

	"fxresolver/internal/repository"
	"fxresolver/internal/service"
)

// mockRateService implements service.RateServiceInterface for testing.
type mockRateService struct {
	convertFunc        func(ctx context.Context, from, to string, on time.Time) (*service.ConversionResult, error)
	requestRefreshFunc func(ctx context.Context, source string, start, end time.Time) (string, string, error)
	getRefreshFunc     func(ctx context.Context, refreshID string) (*service.RefreshResult, error)
	listRatesFunc      func(ctx context.Context, source, currency string, start, end time.Time) ([]repository.Rate, error)
	listPegsFunc       func(ctx context.Context) ([]repository.Peg, error)
}

func (m *mockRateService) Convert(ctx context.Context, from, to string, on time.Time) (*service.ConversionResult, error) {
	return m.convertFunc(ctx, from, to, on)
}

func (m *mockRateService) RequestRefresh(ctx context.Context, source string, start, end time.Time) (string, string, error) {
	return m.requestRefreshFunc(ctx, source, start, end)
}

func (m *mockRateService) GetRefresh(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
	return m.getRefreshFunc(ctx, refreshID)
}

func (m *mockRateService) ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]repository.Rate, error) {
	return m.listRatesFunc(ctx, source, currency, start, end)
}

func (m *mockRateService) ListPegs(ctx context.Context) ([]repository.Peg, error) {
	return m.listPegsFunc(ctx)
}

func (m *mockRateService) ProcessRefresh(_ context.Context, _, _ string, _, _ time.Time) error {
	return nil // Not used in handler tests
}
