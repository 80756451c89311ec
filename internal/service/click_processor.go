package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRecordRetries     = 3    // Максимальное количество попыток записи
)

// ClickProcessor асинхронная запись детальной статистики переходов.
// Атомарный счётчик clicks в ссылке инкрементируется синхронно в
// LinkService; сюда попадают только детальные события (IP, user agent).
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(ctx context.Context, event *models.ClickEvent) error
	GetDailyStats(ctx context.Context, code string, days int) ([]models.DailyClickStats, error)
}

type clickProcessor struct {
	clickRepo    repository.ClickRepository
	linkRepo     repository.LinkRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewClickProcessor(
	clickRepo repository.ClickRepository,
	linkRepo repository.LinkRepository,
	logger *zap.Logger,
) ClickProcessor {
	return &clickProcessor{
		clickRepo:    clickRepo,
		linkRepo:     linkRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *clickProcessor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Процессор кликов остановлен")
}

func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.clickChannel:
			if !ok {
				return
			}
			p.processClick(event)
		}
	}
}

// processClick пишет одно событие с retry
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	click := &models.Click{
		LinkID:    event.LinkID,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Referer:   event.Referer,
		ClickedAt: time.Now(),
	}

	var err error
	for i := 0; i < maxRecordRetries; i++ {
		if err = p.clickRepo.RecordClick(ctx, click); err == nil {
			return
		}
		if i < maxRecordRetries-1 {
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}

	p.logger.Error("Не удалось записать клик после всех попыток",
		zap.Int64("link_id", event.LinkID),
		zap.Error(err),
	)
}

// RecordClick отправляет событие в пул, не блокируя запрос
func (p *clickProcessor) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.clickChannel <- event:
		return nil
	default:
		// Буфер заполнен: событие теряется, счётчик ссылки не страдает
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.Int64("link_id", event.LinkID),
		)
		return nil
	}
}

// GetDailyStats дневная разбивка переходов по коду ссылки
func (p *clickProcessor) GetDailyStats(ctx context.Context, code string, days int) ([]models.DailyClickStats, error) {
	link, err := p.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return p.clickRepo.GetDailyStats(ctx, link.ID, days)
}
