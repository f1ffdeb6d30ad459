package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fxresolver/internal/rates"

	"github.com/shopspring/decimal"
)

// Rate is a stored exchange rate for one currency on one day.
type Rate struct {
	Source   string
	Currency string
	Day      time.Time
	Rate     decimal.Decimal
}

// Peg is a stored fixed parity between two currencies.
type Peg struct {
	Currency string
	To       string
	Rate     decimal.Decimal
}

// RateRepository defines DB operations for rate tables and pegs.
type RateRepository interface {
	UpsertRates(ctx context.Context, source string, table rates.Table) (int64, error)
	LoadTable(ctx context.Context, source string, start, end time.Time) (rates.Table, error)
	ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]Rate, error)
	LoadPegs(ctx context.Context) (rates.PegTable, error)
	ListPegs(ctx context.Context) ([]Peg, error)
}

// PostgresRateRepository is an implementation of RateRepository using PostgreSQL.
type PostgresRateRepository struct {
	db *sql.DB
}

// NewPostgresRateRepository creates a new PostgresRateRepository.
func NewPostgresRateRepository(db *sql.DB) RateRepository {
	return &PostgresRateRepository{db: db}
}

// UpsertRates writes every rate in the table, replacing rows that already
// exist for the same source, currency, and day. It returns the number of rows
// written.
func (r *PostgresRateRepository) UpsertRates(ctx context.Context, source string, table rates.Table) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rates upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO rates (source, currency, rate_date, rate, fetched_at)
              VALUES ($1, $2, $3, $4, NOW())
              ON CONFLICT (source, currency, rate_date)
              DO UPDATE SET rate = EXCLUDED.rate, fetched_at = NOW()`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare rates upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // best-effort close

	var written int64
	for currency, series := range table {
		for day, rate := range series {
			if _, err = stmt.ExecContext(ctx, source, string(currency), day, rate); err != nil {
				return 0, fmt.Errorf("upsert rate %s %s: %w", currency, day.Format("2006-01-02"), err)
			}
			written++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rates upsert: %w", err)
	}
	return written, nil
}

// LoadTable reads the source's rate series into an in-memory table. Every
// currency the source has ever published appears as a key; entries are
// restricted to [start, end]. A currency whose publications all fall outside
// the window keeps an empty series, so resolution reports a missing rate
// rather than an unsupported currency.
func (r *PostgresRateRepository) LoadTable(ctx context.Context, source string, start, end time.Time) (rates.Table, error) {
	table := rates.Table{}

	currencyQuery := `SELECT DISTINCT currency FROM rates WHERE source = $1`
	currencyRows, err := r.db.QueryContext(ctx, currencyQuery, source)
	if err != nil {
		return nil, fmt.Errorf("load rate currencies: %w", err)
	}
	defer currencyRows.Close() //nolint:errcheck // best-effort close

	for currencyRows.Next() {
		var currency string
		if err := currencyRows.Scan(&currency); err != nil {
			return nil, fmt.Errorf("scan currency row: %w", err)
		}
		table[rates.Currency(currency)] = make(map[time.Time]decimal.Decimal)
	}
	if err := currencyRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currency rows: %w", err)
	}

	query := `SELECT currency, rate_date, rate
              FROM rates
              WHERE source = $1 AND rate_date BETWEEN $2::date AND $3::date`

	rows, err := r.db.QueryContext(ctx, query, source, start, end)
	if err != nil {
		return nil, fmt.Errorf("load rate table: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	for rows.Next() {
		var currency string
		var day time.Time
		var rate decimal.Decimal
		if err := rows.Scan(&currency, &day, &rate); err != nil {
			return nil, fmt.Errorf("scan rate row: %w", err)
		}
		table.Add(rates.Currency(currency), day, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate rows: %w", err)
	}
	return table, nil
}

// ListRates returns stored rates for the source within [start, end], oldest
// first. An empty currency matches all currencies.
func (r *PostgresRateRepository) ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]Rate, error) {
	query := `SELECT source, currency, rate_date, rate
              FROM rates
              WHERE source = $1
                AND ($2 = '' OR currency = $2)
                AND rate_date BETWEEN $3::date AND $4::date
              ORDER BY rate_date, currency`

	rows, err := r.db.QueryContext(ctx, query, source, currency, start, end)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.Source, &rate.Currency, &rate.Day, &rate.Rate); err != nil {
			return nil, fmt.Errorf("scan rate row: %w", err)
		}
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate rows: %w", err)
	}
	return out, nil
}

// LoadPegs reads the full peg table.
func (r *PostgresRateRepository) LoadPegs(ctx context.Context) (rates.PegTable, error) {
	query := `SELECT currency, pegged_to, rate FROM pegs`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load pegs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	pegs := rates.PegTable{}
	for rows.Next() {
		var currency, to string
		var rate decimal.Decimal
		if err := rows.Scan(&currency, &to, &rate); err != nil {
			return nil, fmt.Errorf("scan peg row: %w", err)
		}
		pegs[rates.Currency(currency)] = rates.Peg{To: rates.Currency(to), Rate: rate}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peg rows: %w", err)
	}
	return pegs, nil
}

// ListPegs returns all pegs ordered by currency code.
func (r *PostgresRateRepository) ListPegs(ctx context.Context) ([]Peg, error) {
	query := `SELECT currency, pegged_to, rate FROM pegs ORDER BY currency`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pegs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []Peg
	for rows.Next() {
		var peg Peg
		if err := rows.Scan(&peg.Currency, &peg.To, &peg.Rate); err != nil {
			return nil, fmt.Errorf("scan peg row: %w", err)
		}
		out = append(out, peg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peg rows: %w", err)
	}
	return out, nil
}
