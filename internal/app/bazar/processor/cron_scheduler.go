package processor

import (
	"context"

	"bazar/internal/app/bazar/service"
	"bazar/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически прогревает Redis кеш каталога
// Каталог неизменяемый, поэтому прогрев лишь продлевает запись до истечения TTL
type CronScheduler struct {
	cron       *cron.Cron
	catalogSvc service.CatalogServiceInterface
}

func NewCronScheduler(catalogSvc service.CatalogServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:       cron.New(),
		catalogSvc: catalogSvc,
	}
}

// Start регистрирует задачу прогрева и сразу выполняет её один раз,
// чтобы первый запрос каталога не попал на холодный кеш
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.catalogSvc.WarmCatalogCache(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to warm catalog cache")
			return
		}
		logger.Debug().Msg("Catalog cache warmed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Cron scheduler started")

	if err := s.catalogSvc.WarmCatalogCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed initial catalog cache warm")
	}

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}
