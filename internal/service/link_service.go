package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrLinkNotFound     = errors.New("link not found")
	ErrLinkExpired      = errors.New("link expired")
	ErrAliasTaken       = errors.New("custom alias already exists")
	ErrNotOwner         = errors.New("not the owner of the link")
	ErrCodeGenExhausted = errors.New("short code generation attempts exhausted")
)

const (
	// Предел попыток подбора свободного кода. При пространстве 62^6
	// недостижим на практике, но обязателен под тестовыми дублёрами.
	maxCodeAttempts = 10

	cacheTTL = 24 * time.Hour
)

type LinkService interface {
	CreateLink(ctx context.Context, userID int64, input *models.CreateLinkInput) (*models.Link, error)
	ResolveForRedirect(ctx context.Context, code string) (*models.Link, error)
	GetStats(ctx context.Context, code string) (*models.Link, error)
	UpdateLink(ctx context.Context, userID int64, code string, patch *models.UpdateLinkInput) (*models.Link, error)
	DeleteLink(ctx context.Context, userID int64, code string) error
}

type linkService struct {
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	codeGen   CodeGenerator
	logger    *zap.Logger
}

func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	codeGen CodeGenerator,
	logger *zap.Logger,
) LinkService {
	return &linkService{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		codeGen:   codeGen,
		logger:    logger,
	}
}

// CreateLink создаёт ссылку с кастомным алиасом либо сгенерированным кодом
func (s *linkService) CreateLink(ctx context.Context, userID int64, input *models.CreateLinkInput) (*models.Link, error) {
	link := &models.Link{
		OriginalURL: NormalizeURL(input.OriginalURL),
		UserID:      userID,
		Clicks:      0,
		ExpiresAt:   input.ExpiresAt,
	}

	if input.CustomAlias != nil && *input.CustomAlias != "" {
		alias := *input.CustomAlias

		// Алиас должен быть свободен и среди кодов, и среди алиасов
		inUse, err := s.linkRepo.CodeInUse(ctx, alias)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrAliasTaken
		}

		link.CustomAlias = &alias
		link.ShortCode = alias

		if err := s.linkRepo.Create(ctx, link); err != nil {
			// Проигранная гонка за алиас равносильна занятому алиасу
			if errors.Is(err, repository.ErrCodeExists) {
				return nil, ErrAliasTaken
			}
			return nil, err
		}
	} else {
		if err := s.createWithGeneratedCode(ctx, link); err != nil {
			return nil, err
		}
	}

	s.cacheLink(ctx, link)

	return link, nil
}

// createWithGeneratedCode подбирает свободный код и вставляет запись.
// Уникальный индекс — финальный арбитр: гонка между проверкой и
// вставкой проявляется как ErrCodeExists и уходит на следующую попытку.
func (s *linkService) createWithGeneratedCode(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.codeGen.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		inUse, err := s.linkRepo.CodeInUse(ctx, code)
		if err != nil {
			return err
		}
		if inUse {
			continue
		}

		link.ShortCode = code
		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			return err
		}
	}

	return ErrCodeGenExhausted
}

// ResolveForRedirect разрешает код в живую ссылку и учитывает переход
func (s *linkService) ResolveForRedirect(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.getByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.IsExpired(time.Now()) {
		// Истёкшая ссылка не учитывается в счётчике
		return nil, ErrLinkExpired
	}

	clicks, err := s.linkRepo.IncrementClicks(ctx, link.ID)
	switch {
	case err == nil:
		link.Clicks = clicks
	case errors.Is(err, repository.ErrLinkNotFound):
		// Ссылку удалили между чтением и инкрементом
		return nil, ErrLinkNotFound
	default:
		// Учёт переходов best-effort: редирект важнее счётчика
		s.logger.Error("Не удалось учесть переход",
			zap.String("code", code),
			zap.Error(err),
		)
	}

	return link, nil
}

// GetStats возвращает ссылку со свежим счётчиком, всегда из БД
func (s *linkService) GetStats(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// UpdateLink применяет частичное обновление после проверки владельца
func (s *linkService) UpdateLink(ctx context.Context, userID int64, code string, patch *models.UpdateLinkInput) (*models.Link, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if link.UserID != userID {
		return nil, ErrNotOwner
	}

	if patch.OriginalURL != nil {
		link.OriginalURL = NormalizeURL(*patch.OriginalURL)
	}
	if patch.ExpiresAt.Set {
		if patch.ExpiresAt.Valid {
			t := patch.ExpiresAt.Time
			link.ExpiresAt = &t
		} else {
			link.ExpiresAt = nil
		}
	}

	if err := s.linkRepo.Update(ctx, link); err != nil {
		return nil, err
	}

	s.invalidate(ctx, link.ShortCode)

	return link, nil
}

// DeleteLink удаляет ссылку после проверки владельца
func (s *linkService) DeleteLink(ctx context.Context, userID int64, code string) error {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if link.UserID != userID {
		return ErrNotOwner
	}

	s.invalidate(ctx, link.ShortCode)

	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	return nil
}

// getByCode читает сквозь кэш; промах уходит в БД и прогревает кэш
func (s *linkService) getByCode(ctx context.Context, code string) (*models.Link, error) {
	if link, err := s.cacheRepo.Get(ctx, code); err == nil {
		return link, nil
	}

	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	s.cacheLink(ctx, link)

	return link, nil
}

func (s *linkService) cacheLink(ctx context.Context, link *models.Link) {
	ttl := cacheTTL
	if link.ExpiresAt != nil {
		if until := time.Until(*link.ExpiresAt); until < ttl {
			ttl = until
		}
	}

	if err := s.cacheRepo.Set(ctx, link.ShortCode, link, ttl); err != nil {
		s.logger.Debug("Не удалось закэшировать ссылку",
			zap.String("code", link.ShortCode),
			zap.Error(err),
		)
	}
}

func (s *linkService) invalidate(ctx context.Context, code string) {
	if err := s.cacheRepo.Delete(ctx, code); err != nil {
		s.logger.Warn("Не удалось инвалидировать кэш",
			zap.String("code", code),
			zap.Error(err),
		)
	}
}

// NormalizeURL убирает ровно один завершающий слэш
func NormalizeURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
