package rates

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Resolution failure kinds. All are recoverable domain errors and pass
// through peg recursion unchanged.
var (
	// ErrUnsupportedCurrency means the lookup currency has neither a rate
	// series nor a peg definition.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrNoRateFound means the lookup currency has a rate series, but no
	// entry on any day within the fallback window.
	ErrNoRateFound = errors.New("no rate found")
	// ErrCircularPeg means peg definitions form a cycle.
	ErrCircularPeg = errors.New("circular peg chain")
)

const dayFormat = "2006-01-02"

var one = decimal.NewFromInt(1)

// Resolve returns the rate converting one unit of from into to, reading the
// table per src's base currency and quote convention.
//
// Unless from == to, exactly one side of the pair must equal src.Base. The
// other side is looked up in the table, scanning from day backward one
// calendar day at a time down to and including minDay. A currency without a
// rate series resolves through its peg, recursively; revisiting a currency
// during that recursion reports ErrCircularPeg. Passing a pair where neither
// side matches src.Base is a caller bug and panics once a stored rate is
// classified.
func Resolve(table Table, pegs PegTable, day, minDay time.Time, src Source, from, to Currency) (Resolution, error) {
	return resolve(table, pegs, Day(day), Day(minDay), src, from, to, nil)
}

func resolve(table Table, pegs PegTable, day, minDay time.Time, src Source, from, to Currency, visited map[Currency]struct{}) (Resolution, error) {
	// Peg recursion can legitimately ask for a currency-to-itself
	// conversion, so the identity case comes first.
	if from == to {
		return Resolution{Rate: one, Lookup: from}, nil
	}

	// The base currency never appears as a table row; the row to read
	// belongs to whichever side of the pair is not the base. The other side
	// anchors the peg recursion below.
	lookup, anchor := to, from
	if to == src.Base {
		lookup, anchor = from, to
	}

	series, ok := table[lookup]
	if !ok {
		return resolvePeg(table, pegs, day, minDay, src, to, lookup, anchor, visited)
	}

	for d := day; !d.Before(minDay); d = d.AddDate(0, 0, -1) {
		r, ok := series[d]
		if !ok {
			continue
		}
		return Resolution{Rate: orient(r, src, from, to), Lookup: lookup}, nil
	}
	return Resolution{}, fmt.Errorf("%w: %s between %s and %s",
		ErrNoRateFound, lookup, minDay.Format(dayFormat), day.Format(dayFormat))
}

// resolvePeg resolves lookup through its peg: the anchor side is resolved
// against the peg target, then combined with the fixed parity.
func resolvePeg(table Table, pegs PegTable, day, minDay time.Time, src Source, to, lookup, anchor Currency, visited map[Currency]struct{}) (Resolution, error) {
	peg, ok := pegs[lookup]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, lookup)
	}
	if _, seen := visited[lookup]; seen {
		return Resolution{}, fmt.Errorf("%w: %s revisited", ErrCircularPeg, lookup)
	}
	if visited == nil {
		visited = make(map[Currency]struct{})
	}
	visited[lookup] = struct{}{}

	rec, err := resolve(table, pegs, day, minDay, src, anchor, peg.To, visited)
	if err != nil {
		return Resolution{}, err
	}

	// peg.Rate reads "1 lookup = Rate units of peg.To" and rec.Rate already
	// relates the anchor to peg.To; which side of the original pair is the
	// base decides the division direction.
	rate := rec.Rate.Div(peg.Rate)
	if to == src.Base {
		rate = peg.Rate.Div(rec.Rate)
	}
	return Resolution{Rate: rate, Lookup: lookup}, nil
}

// orient turns a stored observation into a from-to rate based on the source
// convention and which side of the pair is the base currency.
func orient(r decimal.Decimal, src Source, from, to Currency) decimal.Decimal {
	switch {
	case src.Convention == ConventionDirect && to == src.Base:
		return r
	case src.Convention == ConventionDirect && from == src.Base:
		return one.Div(r)
	case src.Convention == ConventionIndirect && from == src.Base:
		return r
	case src.Convention == ConventionIndirect && to == src.Base:
		return one.Div(r)
	}
	panic(fmt.Sprintf("rates: neither side of %s->%s is the source base %s", from, to, src.Base))
}
