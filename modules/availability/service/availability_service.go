package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-poll-scheduler/core/cache"
	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/interval"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/core/metrics"
	"go-poll-scheduler/modules/availability/client"
	"go-poll-scheduler/modules/availability/dto"

	pkgerrors "github.com/pkg/errors"
)

type AvailabilityServiceInterface interface {
	// GetAvailability fetches and normalizes one party's availability over w.
	GetAvailability(ctx context.Context, partyID string, w interval.Window) (interval.Availability, *errors.AppError)
}

type AvailabilityService struct {
	Source   client.SourceClientInterface
	Cache    cache.Store
	CacheTTL time.Duration
}

func NewAvailabilityService(source client.SourceClientInterface, store cache.Store, ttl time.Duration) *AvailabilityService {
	if store == nil {
		store = cache.Noop{}
	}
	return &AvailabilityService{
		Source:   source,
		Cache:    store,
		CacheTTL: ttl,
	}
}

func (s *AvailabilityService) GetAvailability(ctx context.Context, partyID string, w interval.Window) (interval.Availability, *errors.AppError) {
	if err := w.Validate(); err != nil {
		return interval.Absent(), errors.NewAppError(errors.ErrInvalidInput, "Invalid availability window", err)
	}

	records, appErr := s.fetch(ctx, partyID, w.Start, w.End)
	if appErr != nil {
		return interval.Absent(), appErr
	}

	avail, err := interval.Normalize(dto.ToRawIntervals(records), w)
	if err != nil {
		logger.Error("AvailabilityService:GetAvailability:Normalize", "party_id", partyID, "error", err)
		if pkgerrors.Is(err, interval.ErrShape) {
			return interval.Absent(), errors.NewAppError(errors.ErrInvalidSourceData,
				fmt.Sprintf("Availability source returned malformed data for %s", partyID), err)
		}
		return interval.Absent(), errors.NewAppError(errors.ErrInternalServer, "Failed to normalize availability", err)
	}
	return avail, nil
}

// fetch returns the raw records for partyID, going through the cache.
// Cache failures are logged and otherwise ignored.
func (s *AvailabilityService) fetch(ctx context.Context, partyID string, from, to int64) ([]dto.EventRecord, *errors.AppError) {
	key := fmt.Sprintf(constants.RedisKeyAvailability, partyID, from, to)

	cached, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("AvailabilityService:fetch:CacheGet", "key", key, "error", err)
	}
	metrics.IncCacheLookup(ok)
	if ok {
		var records []dto.EventRecord
		if err := json.Unmarshal(cached, &records); err == nil {
			return records, nil
		}
		logger.Warn("AvailabilityService:fetch:CacheCorrupt", "key", key)
		_ = s.Cache.Delete(ctx, key)
	}

	records, err := s.Source.FetchEvents(ctx, partyID, from, to)
	if err != nil {
		if pkgerrors.Is(err, interval.ErrShape) {
			return nil, errors.NewAppError(errors.ErrInvalidSourceData,
				fmt.Sprintf("Availability source returned malformed data for %s", partyID), err)
		}
		return nil, errors.NewAppError(errors.ErrSourceUnavailable, "Availability source is unavailable", err)
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := s.Cache.Set(ctx, key, payload, s.CacheTTL); err != nil {
			logger.Warn("AvailabilityService:fetch:CacheSet", "key", key, "error", err)
		}
	}
	return records, nil
}
