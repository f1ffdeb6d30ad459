package service

import (
	"time"

	"github.com/shopspring/decimal"

	"fxresolver/internal/repository"
)

// ConversionResult is the outcome of a rate resolution. Lookup names the
// currency whose published series produced the rate; for identity conversions
// it is the currency itself.
type ConversionResult struct {
	From   string
	To     string
	Date   string
	Rate   decimal.Decimal
	Lookup string
	Source string
}

// RefreshResult represents a refresh request as returned by the service layer.
// Fields are populated according to the refresh's status:
//   - SUCCESS: RowCount and UpdatedAt are set, ErrorMsg is nil.
//   - FAILED:  ErrorMsg is set, RowCount is nil.
//   - PENDING/RUNNING: RowCount, ErrorMsg, and UpdatedAt are nil.
type RefreshResult struct {
	ID          string
	Source      string
	WindowStart string
	WindowEnd   string
	Status      string
	RowCount    *int64
	ErrorMsg    *string
	UpdatedAt   *string
}

func refreshResultFromRepo(ref *repository.Refresh) *RefreshResult {
	r := &RefreshResult{
		ID:          ref.ID,
		Source:      ref.Source,
		WindowStart: ref.WindowStart.Format("2006-01-02"),
		WindowEnd:   ref.WindowEnd.Format("2006-01-02"),
		Status:      string(ref.Status),
	}

	switch ref.Status {
	case repository.StatusSuccess:
		r.RowCount = ref.RowCount
		if ref.UpdatedAt != nil {
			ts := ref.UpdatedAt.Format(time.RFC3339)
			r.UpdatedAt = &ts
		}
	case repository.StatusFailed:
		r.ErrorMsg = ref.ErrorMsg
	}

	return r
}
