package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/lzy/internal/entity"
	"github.com/vadimbarashkov/lzy/pkg/postgres"
)

type forbiddenDomainDB struct {
	ID        int64     `db:"id"`
	Domain    string    `db:"domain"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *forbiddenDomainDB) toEntity() entity.ForbiddenDomain {
	return entity.ForbiddenDomain{
		ID:        d.ID,
		Domain:    d.Domain,
		CreatedAt: d.CreatedAt,
	}
}

type ForbiddenDomainRepository struct {
	db *sqlx.DB
}

func NewForbiddenDomainRepository(db *sqlx.DB) *ForbiddenDomainRepository {
	return &ForbiddenDomainRepository{db: db}
}

// ContainsAny reports whether any of hosts is forbidden. Comparison is case-insensitive.
func (r *ForbiddenDomainRepository) ContainsAny(ctx context.Context, hosts ...string) (bool, error) {
	const op = "adapter.repository.postgres.ForbiddenDomainRepository.ContainsAny"

	if len(hosts) == 0 {
		return false, nil
	}

	query, args, err := sqlx.In(`SELECT EXISTS(SELECT 1 FROM forbidden_domains WHERE LOWER(domain) IN (?))`, lower(hosts))
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var exists bool

	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("%s: failed to query forbidden_domains table: %w", op, err)
	}

	return exists, nil
}

func (r *ForbiddenDomainRepository) Save(ctx context.Context, domain string) (*entity.ForbiddenDomain, error) {
	const op = "adapter.repository.postgres.ForbiddenDomainRepository.Save"
	const query = `INSERT INTO forbidden_domains(domain) VALUES ($1) RETURNING id, domain, created_at`

	var d forbiddenDomainDB

	if err := r.db.GetContext(ctx, &d, query, strings.ToLower(domain)); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrDomainExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into forbidden_domains table: %w", op, err)
	}

	fd := d.toEntity()

	return &fd, nil
}

func (r *ForbiddenDomainRepository) List(ctx context.Context) ([]entity.ForbiddenDomain, error) {
	const op = "adapter.repository.postgres.ForbiddenDomainRepository.List"
	const query = `SELECT id, domain, created_at FROM forbidden_domains ORDER BY domain`

	var rows []forbiddenDomainDB

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from forbidden_domains table: %w", op, err)
	}

	domains := make([]entity.ForbiddenDomain, 0, len(rows))
	for _, d := range rows {
		domains = append(domains, d.toEntity())
	}

	return domains, nil
}

func (r *ForbiddenDomainRepository) Remove(ctx context.Context, domain string) error {
	const op = "adapter.repository.postgres.ForbiddenDomainRepository.Remove"
	const query = `DELETE FROM forbidden_domains WHERE domain = $1`

	res, err := r.db.ExecContext(ctx, query, strings.ToLower(domain))
	if err != nil {
		return fmt.Errorf("%s: failed to delete from forbidden_domains table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrDomainNotFound)
	}

	return nil
}

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
