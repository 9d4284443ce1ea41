package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/lzy/internal/entity"
)

const urlColumns = `id, long_url, short_url_hash, password, clicks_on_short_url, clicks_on_long_url,
	is_active, is_lazy, client_ip, created_at`

type urlDB struct {
	ID          int64     `db:"id"`
	LongURL     string    `db:"long_url"`
	ShortCode   string    `db:"short_url_hash"`
	Password    string    `db:"password"`
	ShortClicks int64     `db:"clicks_on_short_url"`
	LongClicks  int64     `db:"clicks_on_long_url"`
	IsActive    bool      `db:"is_active"`
	IsLazy      bool      `db:"is_lazy"`
	ClientIP    string    `db:"client_ip"`
	CreatedAt   time.Time `db:"created_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:        u.ID,
		ShortCode: u.ShortCode,
		LongURL:   u.LongURL,
		Password:  u.Password,
		URLStats: entity.URLStats{
			ShortClicks: u.ShortClicks,
			LongClicks:  u.LongClicks,
		},
		IsActive:  u.IsActive,
		IsLazy:    u.IsLazy,
		ClientIP:  u.ClientIP,
		CreatedAt: u.CreatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save inserts u and derives its short code from the id allocated by the database.
// Both statements run in one transaction, so the short code is never observable
// without its row and concurrent saves never share an id.
func (r *URLRepository) Save(
	ctx context.Context,
	u entity.NewURL,
	encode func(id int64) (string, error),
) (_ *entity.URL, err error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const insertQuery = `INSERT INTO urls(long_url, password, client_ip, is_lazy) VALUES ($1, $2, $3, $4) RETURNING id`
	const updateQuery = `UPDATE urls SET short_url_hash = $1 WHERE id = $2 RETURNING ` + urlColumns

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var id int64

	if err := tx.GetContext(ctx, &id, insertQuery, u.LongURL, u.Password, u.ClientIP, u.IsLazy); err != nil {
		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	shortCode, err := encode(id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode id: %w", op, err)
	}

	var url urlDB

	if err := tx.GetContext(ctx, &url, updateQuery, shortCode, id); err != nil {
		return nil, fmt.Errorf("%s: failed to set short code: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return url.toEntity(), nil
}

// RetrieveByShortCode returns the URL regardless of whether it is active.
func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE short_url_hash = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// RetrieveAndCountClick increments the short link click counter of an active URL
// and returns the updated row in a single statement.
func (r *URLRepository) RetrieveAndCountClick(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndCountClick"
	const query = `UPDATE urls SET clicks_on_short_url = clicks_on_short_url + 1
		WHERE short_url_hash = $1 AND is_active
		RETURNING ` + urlColumns

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get and update urls table row: %w", op, err)
	}

	return url.toEntity(), nil
}

// Deactivate marks the URL as deleted. Deactivating an inactive URL is not an error.
func (r *URLRepository) Deactivate(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.postgres.URLRepository.Deactivate"
	const query = `UPDATE urls SET is_active = FALSE WHERE short_url_hash = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to update urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}
