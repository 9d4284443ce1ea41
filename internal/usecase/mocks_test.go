package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/lzy/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) Save(ctx context.Context, u entity.NewURL, encode func(id int64) (string, error)) (*entity.URL, error) {
	args := m.Called(ctx, u, encode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLRepository) RetrieveAndCountClick(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLRepository) Deactivate(ctx context.Context, shortCode string) error {
	args := m.Called(ctx, shortCode)
	return args.Error(0)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, rawURL string) error {
	args := m.Called(ctx, rawURL)
	return args.Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockForbiddenDomainRepository struct {
	mock.Mock
}

func (m *MockForbiddenDomainRepository) ContainsAny(ctx context.Context, hosts ...string) (bool, error) {
	args := m.Called(ctx, hosts)
	return args.Bool(0), args.Error(1)
}

type MockDomainRepository struct {
	mock.Mock
}

func (m *MockDomainRepository) Save(ctx context.Context, domain string) (*entity.ForbiddenDomain, error) {
	args := m.Called(ctx, domain)
	d, _ := args.Get(0).(*entity.ForbiddenDomain)
	return d, args.Error(1)
}

func (m *MockDomainRepository) List(ctx context.Context) ([]entity.ForbiddenDomain, error) {
	args := m.Called(ctx)
	domains, _ := args.Get(0).([]entity.ForbiddenDomain)
	return domains, args.Error(1)
}

func (m *MockDomainRepository) Remove(ctx context.Context, domain string) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

type stubEncoder struct{}

func (stubEncoder) Encode(id int64) (string, error) {
	return "Aq6", nil
}
