package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/lzy/internal/entity"
)

type domainRepository interface {
	Save(ctx context.Context, domain string) (*entity.ForbiddenDomain, error)
	List(ctx context.Context) ([]entity.ForbiddenDomain, error)
	Remove(ctx context.Context, domain string) error
}

// DomainUseCase manages the forbidden domain list.
type DomainUseCase struct {
	repo domainRepository
}

func NewDomainUseCase(repo domainRepository) *DomainUseCase {
	return &DomainUseCase{repo: repo}
}

// Forbid adds domain to the forbidden list. The domain may be given as a bare host or a URL.
func (uc *DomainUseCase) Forbid(ctx context.Context, domain string) (*entity.ForbiddenDomain, error) {
	const op = "usecase.DomainUseCase.Forbid"

	host, err := parseHost(NormalizeURL(domain))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d, err := uc.repo.Save(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to forbid domain: %w", op, err)
	}

	return d, nil
}

func (uc *DomainUseCase) List(ctx context.Context) ([]entity.ForbiddenDomain, error) {
	const op = "usecase.DomainUseCase.List"

	domains, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list domains: %w", op, err)
	}

	return domains, nil
}

// Allow removes domain from the forbidden list. It accepts the same forms as Forbid.
func (uc *DomainUseCase) Allow(ctx context.Context, domain string) error {
	const op = "usecase.DomainUseCase.Allow"

	host, err := parseHost(NormalizeURL(domain))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := uc.repo.Remove(ctx, host); err != nil {
		return fmt.Errorf("%s: failed to allow domain: %w", op, err)
	}

	return nil
}
