// Package service implements the core business logic for rate resolution and
// refresh management.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fxresolver/internal/config"
	"fxresolver/internal/provider"
	"fxresolver/internal/rates"
	"fxresolver/internal/repository"
)

// RateServiceInterface defines the operations available for conversion and refresh management.
type RateServiceInterface interface {
	Convert(ctx context.Context, from, to string, on time.Time) (*ConversionResult, error)
	RequestRefresh(ctx context.Context, source string, start, end time.Time) (refreshID, status string, err error)
	GetRefresh(ctx context.Context, refreshID string) (*RefreshResult, error)
	ProcessRefresh(ctx context.Context, refreshID, source string, start, end time.Time) error
	ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]repository.Rate, error)
	ListPegs(ctx context.Context) ([]repository.Peg, error)
}

// RateService defines business logic for conversions and refreshes
type RateService struct {
	rateRepo        repository.RateRepository
	refreshRepo     repository.RefreshRepository
	providers       map[string]provider.TableProvider
	enqueuer        RefreshEnqueuer
	cache           *redis.Client
	log             *zap.SugaredLogger
	source          string
	maxFallbackDays int
	cacheTTL        time.Duration
}

// NewRateService creates a new RateService
func NewRateService(rateRepo repository.RateRepository, refreshRepo repository.RefreshRepository, providers map[string]provider.TableProvider, enqueuer RefreshEnqueuer, cache *redis.Client, logger *zap.SugaredLogger, resolverCfg config.ResolverConfig, cacheCfg config.CacheConfig) *RateService {
	return &RateService{
		rateRepo:        rateRepo,
		refreshRepo:     refreshRepo,
		providers:       providers,
		enqueuer:        enqueuer,
		cache:           cache,
		log:             logger,
		source:          resolverCfg.Source,
		maxFallbackDays: resolverCfg.MaxFallbackDays,
		cacheTTL:        time.Duration(cacheCfg.ConversionTTLSec) * time.Second,
	}
}

// Convert resolves the exchange rate between two currencies on the given day
// against the active source, falling back to earlier days within the
// configured window when the day itself has no published rate.
func (s *RateService) Convert(ctx context.Context, from, to string, on time.Time) (*ConversionResult, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return nil, err
	}

	prov, ok := s.providers[s.source]
	if !ok {
		s.log.Errorw("Active source has no provider", "source", s.source)
		return nil, ErrUnknownSource
	}
	src := prov.Source()

	// Resolution requires one side of the pair to be the source base.
	if rates.Currency(from) != src.Base && rates.Currency(to) != src.Base && from != to {
		return nil, ErrUnsupportedPair
	}

	day := rates.Day(on)
	minDay := day.AddDate(0, 0, -s.maxFallbackDays)

	if res, ok := s.cacheGetConversion(ctx, from, to, day); ok {
		return res, nil
	}

	table, err := s.rateRepo.LoadTable(ctx, s.source, minDay, day)
	if err != nil {
		s.log.Errorw("DB error loading rate table", "source", s.source, "error", err)
		return nil, ErrInternal
	}
	pegs, err := s.rateRepo.LoadPegs(ctx)
	if err != nil {
		s.log.Errorw("DB error loading pegs", "error", err)
		return nil, ErrInternal
	}

	res, err := rates.Resolve(table, pegs, day, minDay, src, rates.Currency(from), rates.Currency(to))
	if err != nil {
		return nil, err
	}

	out := &ConversionResult{
		From:   from,
		To:     to,
		Date:   day.Format("2006-01-02"),
		Rate:   res.Rate,
		Lookup: string(res.Lookup),
		Source: s.source,
	}
	s.cacheSetConversion(ctx, out)
	return out, nil
}

// RequestRefresh processes a request to refresh a source's rates asynchronously.
// An empty source selects the active one.
func (s *RateService) RequestRefresh(ctx context.Context, source string, start, end time.Time) (refreshID, status string, err error) {
	if source == "" {
		source = s.source
	}
	if _, ok := s.providers[source]; !ok {
		return "", "", ErrUnknownSource
	}

	start, end = rates.Day(start), rates.Day(end)
	if end.Before(start) {
		return "", "", ErrInvalidWindow
	}

	uid := uuid.New().String()
	id, err := s.refreshRepo.CreateRefresh(ctx, uid, source, start, end)
	if err != nil {
		s.log.Errorw("CreateRefresh DB error", "error", err)
		return "", "", ErrInternal
	}

	if id != uid {
		return id, string(repository.StatusPending), nil
	}

	if err := s.enqueueRefreshTask(ctx, id, source, start, end); err != nil {
		return "", "", err
	}

	s.log.Infow("Enqueued refresh task", "refresh_id", id, "source", source,
		"window", start.Format("2006-01-02")+".."+end.Format("2006-01-02"))
	return id, string(repository.StatusPending), nil
}

// GetRefresh retrieves the state of a refresh request by its ID.
func (s *RateService) GetRefresh(ctx context.Context, refreshID string) (*RefreshResult, error) {
	if _, err := uuid.Parse(refreshID); err != nil {
		return nil, ErrInvalidRefreshID
	}
	ref, err := s.refreshRepo.GetByID(ctx, refreshID)
	if err != nil {
		s.log.Errorw("DB error fetching refresh by ID", "refresh_id", refreshID, "error", err)
		return nil, ErrInternal
	}
	if ref == nil {
		return nil, ErrNotFound
	}

	return refreshResultFromRepo(ref), nil
}

// ProcessRefresh performs the external fetch and stores the result (called by background worker).
func (s *RateService) ProcessRefresh(ctx context.Context, refreshID, source string, start, end time.Time) error {
	prov, ok := s.providers[source]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownSource, source)
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	s.log.Infow("Processing refresh", "refresh_id", refreshID, "source", source)
	s.markRunning(ctx, refreshID)

	table, err := prov.FetchTable(ctx, start, end)
	if err != nil {
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	written, err := s.rateRepo.UpsertRates(ctx, source, table)
	if err != nil {
		s.log.Errorw("DB error storing rates", "refresh_id", refreshID, "error", err)
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	if err := s.refreshRepo.MarkSuccess(ctx, refreshID, written); err != nil {
		s.log.Errorw("DB update error on success", "refresh_id", refreshID, "error", err)
		return err
	}

	s.log.Infow("Refresh success", "refresh_id", refreshID, "rows", written)
	return nil
}

// ListRates returns stored rates for a source within [start, end]. An empty
// source selects the active one; an empty currency matches all currencies.
func (s *RateService) ListRates(ctx context.Context, source, currency string, start, end time.Time) ([]repository.Rate, error) {
	if source == "" {
		source = s.source
	}
	if currency != "" {
		var err error
		currency, err = normalizeCurrency(currency)
		if err != nil {
			return nil, err
		}
	}

	start, end = rates.Day(start), rates.Day(end)
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}

	out, err := s.rateRepo.ListRates(ctx, source, currency, start, end)
	if err != nil {
		s.log.Errorw("DB error listing rates", "source", source, "error", err)
		return nil, ErrInternal
	}
	return out, nil
}

// ListPegs returns all configured currency pegs.
func (s *RateService) ListPegs(ctx context.Context) ([]repository.Peg, error) {
	pegs, err := s.rateRepo.ListPegs(ctx)
	if err != nil {
		s.log.Errorw("DB error listing pegs", "error", err)
		return nil, ErrInternal
	}
	return pegs, nil
}

func (s *RateService) enqueueRefreshTask(ctx context.Context, refreshID, source string, start, end time.Time) error {
	payload := RefreshTaskPayload{
		RefreshID: refreshID,
		Source:    source,
		Start:     start.Format("2006-01-02"),
		End:       end.Format("2006-01-02"),
	}
	if err := s.enqueuer.EnqueueRefreshTask(ctx, payload); err != nil {
		s.log.Errorw("Failed to enqueue task", "refresh_id", refreshID, "error", err)
		s.markFailed(ctx, refreshID, "enqueue error")
		return ErrInternalQueue
	}
	return nil
}

func (s *RateService) markFailed(ctx context.Context, refreshID, reason string) {
	if err := s.refreshRepo.MarkFailed(ctx, refreshID, reason); err != nil {
		s.log.Warnw("Failed to mark record as FAILED", "refresh_id", refreshID, "error", err)
	}
}

func (s *RateService) markRunning(ctx context.Context, refreshID string) {
	if err := s.refreshRepo.MarkRunning(ctx, refreshID); err != nil {
		s.log.Warnw("Failed to mark record as RUNNING", "refresh_id", refreshID, "error", err)
	}
}

func (s *RateService) completeFailure(ctx context.Context, refreshID string, cause error) {
	s.log.Errorw("Refresh error", "refresh_id", refreshID, "error", cause)
	if err := s.refreshRepo.MarkFailed(ctx, refreshID, cause.Error()); err != nil {
		s.log.Warnw("Failed to mark record as FAILED after refresh error", "refresh_id", refreshID, "error", err)
	}
}

// TaskTypeRefreshRates is the Asynq task type for rate refresh jobs.
const TaskTypeRefreshRates = "rates:refresh"

// RefreshTaskPayload is the payload structure for rate refresh Asynq tasks.
// Window dates use the 2006-01-02 layout.
type RefreshTaskPayload struct {
	RefreshID string `json:"refresh_id"`
	Source    string `json:"source"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// RefreshEnqueuer enqueues refresh tasks for background processing.
type RefreshEnqueuer interface {
	EnqueueRefreshTask(ctx context.Context, payload RefreshTaskPayload) error
}
