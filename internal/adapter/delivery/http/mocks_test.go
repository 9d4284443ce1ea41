package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/lzy/internal/entity"
	"github.com/vadimbarashkov/lzy/internal/usecase"
)

type MockURLUseCase struct {
	mock.Mock
}

func (m *MockURLUseCase) ShortenURL(ctx context.Context, in usecase.ShortenInput) (*entity.URL, error) {
	args := m.Called(ctx, in)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLUseCase) GetURLInfo(ctx context.Context, shortCode, password, clientIP string) (*entity.URL, error) {
	args := m.Called(ctx, shortCode, password, clientIP)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLUseCase) DeactivateURL(ctx context.Context, shortCode, password, clientIP string) error {
	args := m.Called(ctx, shortCode, password, clientIP)
	return args.Error(0)
}
