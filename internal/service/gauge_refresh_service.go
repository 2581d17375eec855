package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"personal-budget/internal/metrics"
)

// GaugeRefreshService periodically recomputes the balance and operation count
// gauges so /metrics stays current between API calls.
type GaugeRefreshService struct {
	OperationService *OperationService
	BalanceService   *BalanceService
	RefreshInterval  time.Duration
	Logger           *zap.Logger
}

func NewGaugeRefreshService(operationService *OperationService, balanceService *BalanceService, refreshInterval time.Duration, logger *zap.Logger) *GaugeRefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GaugeRefreshService{
		OperationService: operationService,
		BalanceService:   balanceService,
		RefreshInterval:  refreshInterval,
		Logger:           logger,
	}
}

// StartBackgroundJobs refreshes once immediately and then on every tick until
// applicationContext is done. A non-positive interval disables the loop.
func (service *GaugeRefreshService) StartBackgroundJobs(applicationContext context.Context) {
	if service.RefreshInterval <= 0 {
		service.Logger.Info("gauge refresh disabled")
		return
	}
	go service.startRefreshLoop(applicationContext)
}

func (service *GaugeRefreshService) startRefreshLoop(applicationContext context.Context) {
	service.RefreshGauges(applicationContext)

	ticker := time.NewTicker(service.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-applicationContext.Done():
			service.Logger.Info("gauge refresh loop stopped")
			return
		case <-ticker.C:
			service.RefreshGauges(applicationContext)
		}
	}
}

// RefreshGauges reads the store once. Failures are logged and leave the
// previous gauge values in place.
func (service *GaugeRefreshService) RefreshGauges(applicationContext context.Context) {
	operationCount, countError := service.OperationService.CountOperations(applicationContext)
	if countError != nil {
		service.Logger.Warn("could not refresh operation count", zap.Error(countError))
		return
	}

	_, summaryError := service.BalanceService.Summary(applicationContext)
	if summaryError != nil {
		service.Logger.Warn("could not refresh balance", zap.Error(summaryError))
		return
	}

	metrics.StoredOperations.Set(float64(operationCount))
	service.Logger.Debug("gauges refreshed", zap.Int64("operations", operationCount))
}
