package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	// GetByCode ищет ссылку одним запросом по короткому коду либо алиасу
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id int64) error
	// IncrementClicks атомарно увеличивает счётчик и возвращает новое значение
	IncrementClicks(ctx context.Context, id int64) (int64, error)
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (original_url, short_code, custom_alias, user_id, clicks, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.OriginalURL,
		link.ShortCode,
		link.CustomAlias,
		link.UserID,
		link.Clicks,
		link.ExpiresAt,
	).Scan(&link.ID, &link.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT id, original_url, short_code, custom_alias, user_id, clicks, expires_at, created_at, updated_at
		FROM links
		WHERE short_code = $1 OR custom_alias = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.CustomAlias,
		&link.UserID,
		&link.Clicks,
		&link.ExpiresAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (r *linkRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1 OR custom_alias = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return exists, nil
}

func (r *linkRepository) Update(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE links
		SET original_url = $1, expires_at = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, link.OriginalURL, link.ExpiresAt, link.ID).Scan(&link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to update link: %w", err)
	}

	return nil
}

func (r *linkRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM links WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) IncrementClicks(ctx context.Context, id int64) (int64, error) {
	// Одним UPDATE, без read-modify-write: параллельные редиректы не теряют инкременты
	query := `
		UPDATE links
		SET clicks = COALESCE(clicks, 0) + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING clicks
	`

	var clicks int64
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&clicks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLinkNotFound
		}
		return 0, fmt.Errorf("failed to increment clicks: %w", err)
	}

	return clicks, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
