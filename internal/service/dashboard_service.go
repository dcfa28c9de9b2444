package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go-pharmapos/internal/cache"
	"go-pharmapos/internal/repository"
)

const (
	lowStockThreshold = 10
	expiryHorizonDays = 30
	statsCacheTTL     = 30 * time.Second
)

type DashboardService interface {
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
}

type dashboardService struct {
	orderRepo  repository.OrderRepository
	statsCache cache.StatsCache
}

func NewDashboardService(orderRepo repository.OrderRepository, statsCache cache.StatsCache) DashboardService {
	return &dashboardService{orderRepo: orderRepo, statsCache: statsCache}
}

func (s *dashboardService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.orderRepo.GetSalesMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if payload, ok, err := s.statsCache.Get(ctx, cache.KeyDashboardStats); err == nil && ok {
		var cached repository.DashboardStats
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	} else if err != nil {
		log.Printf("Warning: stats cache read failed: %v", err)
	}

	stats, err := s.orderRepo.GetDashboardStats(lowStockThreshold, time.Now().AddDate(0, 0, expiryHorizonDays))
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.statsCache.Set(ctx, cache.KeyDashboardStats, payload, statsCacheTTL); err != nil {
			log.Printf("Warning: stats cache write failed: %v", err)
		}
	}

	return stats, nil
}
