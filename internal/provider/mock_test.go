package provider

import (
	"context"
	"time"

	"fxresolver/internal/rates"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Source() rates.Source {
	args := m.Called()
	return args.Get(0).(rates.Source)
}

func (m *MockProvider) FetchTable(ctx context.Context, start, end time.Time) (rates.Table, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rates.Table), args.Error(1)
}
