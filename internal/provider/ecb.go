package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fxresolver/internal/rates"

	"github.com/shopspring/decimal"
)

var _ TableProvider = (*ECBDailyProvider)(nil)

// ECBDailyProvider fetches ECB reference rates from the Frankfurter API.
// Rates are euro-based and indirectly quoted: one euro buys r units of each
// listed currency.
type ECBDailyProvider struct {
	baseURL string
	client  *http.Client
}

// NewECBDailyProvider creates a new ECBDailyProvider.
func NewECBDailyProvider(baseURL string, timeoutSec int) *ECBDailyProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.dev/v1"
	}
	return &ECBDailyProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// Source reports the euro base and indirect quote convention.
func (p *ECBDailyProvider) Source() rates.Source {
	return rates.Source{Base: "EUR", Convention: rates.ConventionIndirect}
}

// Rate values decode as json.Number so they reach decimal without passing
// through float64.
type ecbRangeResponse struct {
	Base  string                            `json:"base"`
	Rates map[string]map[string]json.Number `json:"rates"`
}

// FetchTable retrieves all reference rates published in [start, end].
// Weekends and TARGET closing days carry no entries.
func (p *ECBDailyProvider) FetchTable(ctx context.Context, start, end time.Time) (rates.Table, error) {
	reqURL := fmt.Sprintf("%s/%s..%s?base=EUR",
		p.baseURL, start.Format("2006-01-02"), end.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("frankfurter API request creation failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frankfurter API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("frankfurter API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ecbRangeResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode frankfurter API response: %w", err)
	}

	table := rates.Table{}
	for dateStr, series := range result.Rates {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in frankfurter response: %w", dateStr, err)
		}
		for currency, num := range series {
			rate, err := decimal.NewFromString(num.String())
			if err != nil {
				return nil, fmt.Errorf("bad rate %q for %s on %s: %w", num.String(), currency, dateStr, err)
			}
			table.Add(rates.Currency(currency), day, rate)
		}
	}
	return table, nil
}
