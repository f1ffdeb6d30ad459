package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fxresolver/internal/rates"
	"fxresolver/internal/service"
)

// ConvertResponse represents the response for a conversion request
type ConvertResponse struct {
	From   string `json:"from" example:"EUR"`
	To     string `json:"to" example:"USD"`
	Date   string `json:"date" example:"2024-01-15"`
	Rate   string `json:"rate" example:"1.0856"`
	Lookup string `json:"lookup_currency" example:"USD"`
	Source string `json:"source" example:"ecb"`
}

// RefreshRequest represents the request body for a rate refresh
type RefreshRequest struct {
	Source    string `json:"source" example:"ecb"`
	Month     string `json:"month,omitempty" example:"2024-01"`
	StartDate string `json:"start_date,omitempty" example:"2024-01-01"`
	EndDate   string `json:"end_date,omitempty" example:"2024-01-31"`
}

// RefreshResponse represents the response for an accepted refresh request
type RefreshResponse struct {
	RefreshID string `json:"refresh_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status    string `json:"status" example:"PENDING"`
}

// RefreshStatusResponse represents the response for a refresh status lookup
type RefreshStatusResponse struct {
	RefreshID   string  `json:"refresh_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Source      string  `json:"source" example:"ecb"`
	WindowStart string  `json:"window_start" example:"2024-01-01"`
	WindowEnd   string  `json:"window_end" example:"2024-01-31"`
	Status      string  `json:"status" example:"SUCCESS"`
	RowCount    *int64  `json:"row_count,omitempty" example:"23"`
	UpdatedAt   *string `json:"updated_at,omitempty" example:"2025-12-01T10:15:30Z"`
	Error       *string `json:"error,omitempty" example:"banxico API returned status 401"`
}

// RateEntry represents one stored rate row
type RateEntry struct {
	Currency string `json:"currency" example:"USD"`
	Date     string `json:"date" example:"2024-01-15"`
	Rate     string `json:"rate" example:"1.0856"`
}

// RatesResponse represents the response for a stored rates listing
type RatesResponse struct {
	Source string      `json:"source" example:"ecb"`
	Rates  []RateEntry `json:"rates"`
}

// PegEntry represents one configured currency peg
type PegEntry struct {
	Currency string `json:"currency" example:"AED"`
	PeggedTo string `json:"pegged_to" example:"USD"`
	Rate     string `json:"rate" example:"0.272294"`
}

// PegsResponse represents the response for the peg listing
type PegsResponse struct {
	Pegs []PegEntry `json:"pegs"`
}

// HandleConvert godoc
// @Summary Resolve a conversion rate
// @Description Resolves the exchange rate between two currencies on a date against the active source. One side of the pair must be the source base currency. Falls back to the nearest earlier day within the configured window when the date has no published rate, and to configured pegs for currencies without their own series.
// @Tags rates
// @Accept json
// @Produce json
// @Param from query string true "Currency to convert from (3 letters)" minlength(3) maxlength(3)
// @Param to query string true "Currency to convert to (3 letters)" minlength(3) maxlength(3)
// @Param date query string false "Conversion date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} ConvertResponse "Rate resolved"
// @Failure 400 {object} ErrorResponse "Invalid or unsupported currency"
// @Failure 404 {object} ErrorResponse "No rate within the fallback window"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /convert [get]
func HandleConvert(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from and to query params are required"})
			return
		}

		on := time.Now().UTC()
		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			parsed, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date must use the YYYY-MM-DD format"})
				return
			}
			on = parsed
		}

		res, err := svc.Convert(r.Context(), from, to, on)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrency),
				errors.Is(err, service.ErrUnsupportedPair),
				errors.Is(err, rates.ErrUnsupportedCurrency):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, rates.ErrNoRateFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, ConvertResponse{
			From:   res.From,
			To:     res.To,
			Date:   res.Date,
			Rate:   res.Rate.String(),
			Lookup: res.Lookup,
			Source: res.Source,
		})
	}
}

// HandleRequestRefresh godoc
// @Summary Request an asynchronous rate refresh
// @Description Initiates an asynchronous fetch of a source's rates for a date window. The window is given either as a whole month or as an explicit start_date/end_date pair. Returns immediately with a refresh_id for tracking; an in-flight refresh for the same source and window is returned instead of creating a duplicate.
// @Tags refreshes
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Source and window"
// @Success 202 {object} RefreshResponse "Refresh request accepted"
// @Failure 400 {object} ErrorResponse "Invalid window or unknown source"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh [post]
func HandleRequestRefresh(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}

		start, end, err := refreshWindow(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		refreshID, status, err := svc.RequestRefresh(r.Context(), strings.TrimSpace(req.Source), start, end)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnknownSource),
				errors.Is(err, service.ErrInvalidWindow):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		resp := RefreshResponse{RefreshID: refreshID, Status: status}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// refreshWindow derives the fetch window from either a month or an explicit
// start/end pair.
func refreshWindow(req RefreshRequest) (time.Time, time.Time, error) {
	if req.Month != "" {
		if req.StartDate != "" || req.EndDate != "" {
			return time.Time{}, time.Time{}, errors.New("month and start_date/end_date are mutually exclusive")
		}
		start, err := time.Parse("2006-01", req.Month)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("month must use the YYYY-MM format")
		}
		return start, start.AddDate(0, 1, -1), nil
	}

	if req.StartDate == "" || req.EndDate == "" {
		return time.Time{}, time.Time{}, errors.New("either month or both start_date and end_date are required")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must use the YYYY-MM-DD format")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must use the YYYY-MM-DD format")
	}
	return start, end, nil
}

// HandleGetRefreshByID godoc
// @Summary Get refresh status and result by ID
// @Description Retrieves the status of a rate refresh request by its refresh_id. Returns the row count and timestamp when status is SUCCESS.
// @Tags refreshes
// @Accept json
// @Produce json
// @Param refresh_id path string true "Refresh ID (UUID)" format(uuid)
// @Success 200 {object} RefreshStatusResponse "Refresh found"
// @Failure 400 {object} ErrorResponse "Invalid refresh_id format"
// @Failure 404 {object} ErrorResponse "Unknown refresh_id"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh/{refresh_id} [get]
func HandleGetRefreshByID(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshID := chi.URLParam(r, "refresh_id")
		if refreshID == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "refresh_id is required"})
			return
		}

		ref, err := svc.GetRefresh(r.Context(), refreshID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidRefreshID):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown refresh_id"})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, RefreshStatusResponse{
			RefreshID:   ref.ID,
			Source:      ref.Source,
			WindowStart: ref.WindowStart,
			WindowEnd:   ref.WindowEnd,
			Status:      ref.Status,
			RowCount:    ref.RowCount,
			UpdatedAt:   ref.UpdatedAt,
			Error:       ref.ErrorMsg,
		})
	}
}

// HandleListRates godoc
// @Summary List stored rates
// @Description Returns stored rates for a source within a date window, oldest first. The window defaults to the last 30 days and the source to the active one.
// @Tags rates
// @Accept json
// @Produce json
// @Param source query string false "Rate source, defaults to the active one"
// @Param currency query string false "Filter to one currency code (3 letters)" minlength(3) maxlength(3)
// @Param start query string false "Window start (YYYY-MM-DD)"
// @Param end query string false "Window end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} RatesResponse "Stored rates"
// @Failure 400 {object} ErrorResponse "Invalid currency or window"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [get]
func HandleListRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := r.URL.Query().Get("source")
		currency := r.URL.Query().Get("currency")

		end := time.Now().UTC()
		if s := r.URL.Query().Get("end"); s != "" {
			parsed, err := time.Parse("2006-01-02", s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "end must use the YYYY-MM-DD format"})
				return
			}
			end = parsed
		}
		start := end.AddDate(0, 0, -30)
		if s := r.URL.Query().Get("start"); s != "" {
			parsed, err := time.Parse("2006-01-02", s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start must use the YYYY-MM-DD format"})
				return
			}
			start = parsed
		}

		list, err := svc.ListRates(r.Context(), source, currency, start, end)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrency),
				errors.Is(err, service.ErrInvalidWindow):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		resp := RatesResponse{Source: source, Rates: make([]RateEntry, 0, len(list))}
		for _, rate := range list {
			resp.Source = rate.Source
			resp.Rates = append(resp.Rates, RateEntry{
				Currency: rate.Currency,
				Date:     rate.Day.Format("2006-01-02"),
				Rate:     rate.Rate.String(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleListPegs godoc
// @Summary List configured currency pegs
// @Description Returns every configured fixed parity. A pegged currency resolves through its anchor's published series.
// @Tags rates
// @Accept json
// @Produce json
// @Success 200 {object} PegsResponse "Configured pegs"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /pegs [get]
func HandleListPegs(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pegs, err := svc.ListPegs(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}

		resp := PegsResponse{Pegs: make([]PegEntry, 0, len(pegs))}
		for _, peg := range pegs {
			resp.Pegs = append(resp.Pegs, PegEntry{
				Currency: peg.Currency,
				PeggedTo: peg.To,
				Rate:     peg.Rate.String(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
