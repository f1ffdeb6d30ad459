package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fxresolver/internal/repository"
	"fxresolver/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type mockRateService struct {
	processRefreshFunc func(ctx context.Context, refreshID, source string, start, end time.Time) error
}

func (m *mockRateService) Convert(ctx context.Context, from, to string, on time.Time) (*service.ConversionResult, error) {
	return nil, nil
}

func (m *mockRateService) RequestRefresh(ctx context.Context, source string, start, end time.Time) (string, string, error) {
	return "", "", nil
}

func (m *mockRateService) GetRefresh(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
	return nil, nil
}

func (m *mockRateService) ProcessRefresh(ctx context.Context, refreshID, source string, start, end time.Time) error {
	return m.processRefreshFunc(ctx, refreshID, source, start, end)
}

func (m *mockRateService) ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]repository.Rate, error) {
	return nil, nil
}

func (m *mockRateService) ListPegs(ctx context.Context) ([]repository.Peg, error) {
	return nil, nil
}

func TestRefreshHandler(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()

	t.Run("valid payload", func(t *testing.T) {
		var gotID, gotSource string
		var gotStart, gotEnd time.Time
		svc := &mockRateService{
			processRefreshFunc: func(ctx context.Context, refreshID, source string, start, end time.Time) error {
				gotID, gotSource, gotStart, gotEnd = refreshID, source, start, end
				return nil
			},
		}
		handler := NewRefreshHandler(svc, sugar)

		payload, _ := json.Marshal(service.RefreshTaskPayload{
			RefreshID: "id-1",
			Source:    "ecb",
			Start:     "2024-01-01",
			End:       "2024-01-31",
		})
		task := asynq.NewTask(service.TaskTypeRefreshRates, payload)

		if err := handler(context.Background(), task); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if gotID != "id-1" || gotSource != "ecb" {
			t.Errorf("Expected id-1/ecb, got %s/%s", gotID, gotSource)
		}
		if !gotStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected start 2024-01-01, got %v", gotStart)
		}
		if !gotEnd.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected end 2024-01-31, got %v", gotEnd)
		}
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		svc := &mockRateService{
			processRefreshFunc: func(ctx context.Context, refreshID, source string, start, end time.Time) error {
				t.Error("ProcessRefresh should not be called for a malformed payload")
				return nil
			},
		}
		handler := NewRefreshHandler(svc, sugar)

		task := asynq.NewTask(service.TaskTypeRefreshRates, []byte("{not json"))
		if err := handler(context.Background(), task); err != nil {
			t.Errorf("Expected nil error for malformed payload, got %v", err)
		}
	})

	t.Run("malformed window is dropped", func(t *testing.T) {
		svc := &mockRateService{
			processRefreshFunc: func(ctx context.Context, refreshID, source string, start, end time.Time) error {
				t.Error("ProcessRefresh should not be called for a malformed window")
				return nil
			},
		}
		handler := NewRefreshHandler(svc, sugar)

		payload, _ := json.Marshal(service.RefreshTaskPayload{
			RefreshID: "id-1",
			Source:    "ecb",
			Start:     "01/02/2024",
			End:       "2024-01-31",
		})
		task := asynq.NewTask(service.TaskTypeRefreshRates, payload)
		if err := handler(context.Background(), task); err != nil {
			t.Errorf("Expected nil error for malformed window, got %v", err)
		}
	})

	t.Run("processing failure propagates for retry", func(t *testing.T) {
		svc := &mockRateService{
			processRefreshFunc: func(ctx context.Context, refreshID, source string, start, end time.Time) error {
				return errors.New("fetch failed")
			},
		}
		handler := NewRefreshHandler(svc, sugar)

		payload, _ := json.Marshal(service.RefreshTaskPayload{
			RefreshID: "id-1",
			Source:    "ecb",
			Start:     "2024-01-01",
			End:       "2024-01-31",
		})
		task := asynq.NewTask(service.TaskTypeRefreshRates, payload)
		if err := handler(context.Background(), task); err == nil {
			t.Error("Expected error to propagate for asynq retry")
		}
	})
}
