package service

import (
	"context"
	"encoding/json"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second
)

type DashboardService interface {
	// Stats serves the landing-page aggregates, cached in Redis with a short
	// TTL. A cache miss or Redis outage falls through to the database.
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type dashboardService struct {
	lots             repository.StockLotRepository
	issues           repository.IssueRepository
	alerts           repository.AlertRepository
	rdb              *redis.Client
	expiryWindowDays int
}

func NewDashboardService(
	lots repository.StockLotRepository,
	issues repository.IssueRepository,
	alerts repository.AlertRepository,
	rdb *redis.Client,
	expiryWindowDays int,
) DashboardService {
	return &dashboardService{
		lots:             lots,
		issues:           issues,
		alerts:           alerts,
		rdb:              rdb,
		expiryWindowDays: expiryWindowDays,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats dto.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("dashboard: cache write failed")
			}
		}
	}
	return stats, nil
}

func (s *dashboardService) compute(ctx context.Context) (*dto.DashboardStats, error) {
	var stats dto.DashboardStats
	var err error

	if stats.TotalLots, err = s.lots.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRounds, err = s.lots.TotalQuantity(ctx); err != nil {
		return nil, err
	}
	if stats.LotsBelowMin, err = s.lots.CountBelowThreshold(ctx); err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, s.expiryWindowDays)
	if stats.ExpiringLots, err = s.lots.CountExpiringBefore(ctx, cutoff); err != nil {
		return nil, err
	}
	if stats.OpenAlerts, err = s.alerts.CountOpen(ctx); err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -30)
	if stats.IssuesLast30d, err = s.issues.CountSince(ctx, since); err != nil {
		return nil, err
	}
	if stats.RoundsIssued30d, err = s.issues.SumQuantitySince(ctx, since); err != nil {
		return nil, err
	}
	return &stats, nil
}
