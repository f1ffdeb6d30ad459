// Package provider implements external rate sources that publish dated
// exchange-rate tables.
package provider

import (
	"context"
	"time"

	"fxresolver/internal/rates"
)

// TableProvider defines an interface for fetching dated rate tables from
// external sources.
type TableProvider interface {
	// Source identifies the base currency and quote convention the fetched
	// rates follow.
	Source() rates.Source
	// FetchTable returns every rate published in [start, end], keyed by
	// currency and day. Days without a publication are simply absent.
	FetchTable(ctx context.Context, start, end time.Time) (rates.Table, error)
}
