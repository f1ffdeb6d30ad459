// Package rates resolves foreign-exchange conversion rates over historical
// rate tables and currency pegs. Resolution is a pure function: it performs
// no I/O and is safe for concurrent use as long as the tables passed in are
// not mutated during a call.
package rates

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 style alphabetic code, e.g. "USD".
// Values are compared by equality only.
type Currency string

// Convention describes how a source publishes rates relative to its base
// currency.
type Convention string

const (
	// ConventionDirect: a stored rate r for currency C means one unit of C
	// costs r units of the source's base currency.
	ConventionDirect Convention = "DIRECT"
	// ConventionIndirect: a stored rate r for currency C means one unit of
	// the source's base currency buys r units of C.
	ConventionIndirect Convention = "INDIRECT"
)

// ParseConvention converts a configured or stored string into a Convention.
func ParseConvention(s string) (Convention, error) {
	switch Convention(strings.ToUpper(s)) {
	case ConventionDirect:
		return ConventionDirect, nil
	case ConventionIndirect:
		return ConventionIndirect, nil
	}
	return "", fmt.Errorf("unknown quote convention %q", s)
}

// Source identifies a rate publisher: the base currency its quotes are
// expressed against and the convention they follow. Immutable once built.
type Source struct {
	Base       Currency
	Convention Convention
}

// Table maps currency to publication day to rate. Day keys are UTC midnights
// (see Day). Rates are strictly positive and read per the owning source's
// convention. The source's own base currency never appears as a key.
type Table map[Currency]map[time.Time]decimal.Decimal

// Add stores one observation, normalizing the day key.
func (t Table) Add(c Currency, day time.Time, rate decimal.Decimal) {
	series, ok := t[c]
	if !ok {
		series = make(map[time.Time]decimal.Decimal)
		t[c] = series
	}
	series[Day(day)] = rate
}

// Day truncates t to the UTC midnight of its calendar day. All Table keys and
// resolution dates go through this normalization.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Peg declares a fixed parity: one unit of the pegged currency equals Rate
// units of To.
type Peg struct {
	To   Currency
	Rate decimal.Decimal
}

// PegTable maps a pegged currency to its peg definition.
type PegTable map[Currency]Peg

// Resolution is the outcome of a successful rate resolution. Lookup reports
// the non-base currency whose table row or peg produced the rate.
type Resolution struct {
	Rate   decimal.Decimal
	Lookup Currency
}
