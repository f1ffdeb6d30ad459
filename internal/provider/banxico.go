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

var _ TableProvider = (*BanxicoMonthlyProvider)(nil)

// BanxicoMonthlyProvider fetches the FIX peso/dollar series from the Banxico
// SIE API. Rates are peso-based and directly quoted: one dollar costs r pesos.
type BanxicoMonthlyProvider struct {
	baseURL string
	token   string
	series  string
	client  *http.Client
}

// NewBanxicoMonthlyProvider creates a new BanxicoMonthlyProvider with the given configuration.
func NewBanxicoMonthlyProvider(baseURL, token, series string, timeoutSec int) *BanxicoMonthlyProvider {
	if baseURL == "" {
		baseURL = "https://www.banxico.org.mx/SieAPIRest/service/v1"
	}
	if series == "" {
		series = "SF43718" // FIX exchange rate, pesos per US dollar
	}
	return &BanxicoMonthlyProvider{
		baseURL: baseURL,
		token:   token,
		series:  series,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// Source reports the peso base and direct quote convention.
func (p *BanxicoMonthlyProvider) Source() rates.Source {
	return rates.Source{Base: "MXN", Convention: rates.ConventionDirect}
}

// Banxico SIE API response structure
type banxicoResponse struct {
	Bmx struct {
		Series []struct {
			IDSerie string `json:"idSerie"`
			Datos   []struct {
				Fecha string `json:"fecha"`
				Dato  string `json:"dato"`
			} `json:"datos"`
		} `json:"series"`
	} `json:"bmx"`
}

// FetchTable retrieves the FIX rate for every banking day in [start, end].
// Days Banxico publishes as "N/E" are skipped.
func (p *BanxicoMonthlyProvider) FetchTable(ctx context.Context, start, end time.Time) (rates.Table, error) {
	reqURL := fmt.Sprintf("%s/series/%s/datos/%s/%s",
		p.baseURL, p.series, start.Format("2006-01-02"), end.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("banxico API request creation failed: %w", err)
	}
	req.Header.Set("Bmx-Token", p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("banxico API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("banxico API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result banxicoResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode banxico API response: %w", err)
	}
	if len(result.Bmx.Series) == 0 {
		return nil, fmt.Errorf("no series %s in banxico response", p.series)
	}

	table := rates.Table{}
	for _, dato := range result.Bmx.Series[0].Datos {
		if dato.Dato == "N/E" {
			continue
		}
		day, err := time.Parse("02/01/2006", dato.Fecha)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in banxico response: %w", dato.Fecha, err)
		}
		rate, err := decimal.NewFromString(dato.Dato)
		if err != nil {
			return nil, fmt.Errorf("bad rate %q on %s in banxico response: %w", dato.Dato, dato.Fecha, err)
		}
		table.Add("USD", day, rate)
	}
	return table, nil
}
