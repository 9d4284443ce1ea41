package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/lzy/internal/entity"
	"github.com/vadimbarashkov/lzy/pkg/hashid"
)

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown    error
	urlRepoMock   *MockURLRepository
	validatorMock *MockValidator
	limiterMock   *MockLimiter
	uc            *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.validatorMock = new(MockValidator)
	suite.limiterMock = new(MockLimiter)
	suite.uc = NewURLUseCase(suite.urlRepoMock, stubEncoder{}, suite.validatorMock, suite.limiterMock)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
	suite.validatorMock.AssertExpectations(suite.T())
	suite.limiterMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) storedURL() *entity.URL {
	return &entity.URL{
		ID:        3,
		ShortCode: "Aq6",
		LongURL:   "https://example.com",
		Password:  "46754",
		URLStats:  entity.URLStats{ShortClicks: 2},
		IsActive:  true,
	}
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	ctx := context.Background()

	suite.Run("validation error", func() {
		verr := &entity.ValidationError{Message: "Domain lzy.su is forbidden.", Err: entity.ErrForbiddenDomain}

		suite.validatorMock.
			On("Validate", ctx, "http://lzy.su").
			Once().
			Return(verr)

		url, err := suite.uc.ShortenURL(ctx, ShortenInput{LongURL: " lzy.su "})

		suite.ErrorIs(err, entity.ErrForbiddenDomain)

		var target *entity.ValidationError
		suite.ErrorAs(err, &target)
		suite.Equal("Domain lzy.su is forbidden.", target.Message)
		suite.Nil(url)
	})

	suite.Run("unknown error", func() {
		suite.validatorMock.
			On("Validate", ctx, "https://example.com").
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", ctx, mock.Anything, mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ShortenURL(ctx, ShortenInput{LongURL: "https://example.com"})

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.uc = NewURLUseCase(suite.urlRepoMock, stubEncoder{}, suite.validatorMock, suite.limiterMock,
			WithPassword("0123456789", 5))

		suite.validatorMock.
			On("Validate", ctx, "https://example.com").
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", ctx, mock.MatchedBy(func(u entity.NewURL) bool {
				return u.LongURL == "https://example.com" &&
					u.ClientIP == "10.0.0.1" &&
					u.IsLazy &&
					len(u.Password) == 5
			}), mock.Anything).
			Once().
			Return(suite.storedURL(), nil)

		url, err := suite.uc.ShortenURL(ctx, ShortenInput{
			LongURL:  "https://example.com",
			ClientIP: "10.0.0.1",
			Lazy:     true,
		})

		suite.NoError(err)
		suite.Equal("Aq6", url.ShortCode)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveAndCountClick", ctx, "Aq6").
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.ResolveShortCode(ctx, "Aq6")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveAndCountClick", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)

		url, err := suite.uc.ResolveShortCode(ctx, "Aq6")

		suite.NoError(err)
		suite.Equal("https://example.com", url.LongURL)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLInfo() {
	ctx := context.Background()

	suite.Run("limiter error", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(false, suite.errUnknown)

		url, err := suite.uc.GetURLInfo(ctx, "Aq6", "46754", "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("too many attempts", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(false, nil)

		url, err := suite.uc.GetURLInfo(ctx, "Aq6", "46754", "10.0.0.1")

		suite.ErrorIs(err, entity.ErrTooManyAttempts)
		suite.Nil(url)
	})

	suite.Run("unknown short code looks like a wrong password", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "zzz").
			Once().
			Return(nil, fmt.Errorf("wrapped: %w", entity.ErrURLNotFound))

		url, err := suite.uc.GetURLInfo(ctx, "zzz", "46754", "10.0.0.1")

		suite.ErrorIs(err, entity.ErrPasswordMismatch)
		suite.NotErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("unknown error", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.GetURLInfo(ctx, "Aq6", "46754", "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("wrong password", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)

		url, err := suite.uc.GetURLInfo(ctx, "Aq6", "00000", "10.0.0.1")

		suite.ErrorIs(err, entity.ErrPasswordMismatch)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)

		url, err := suite.uc.GetURLInfo(ctx, "Aq6", "46754", "10.0.0.1")

		suite.NoError(err)
		suite.Equal(int64(2), url.ShortClicks)
	})
}

func (suite *URLUseCaseTestSuite) TestDeactivateURL() {
	ctx := context.Background()

	suite.Run("wrong password", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)

		err := suite.uc.DeactivateURL(ctx, "Aq6", "00000", "10.0.0.1")

		suite.ErrorIs(err, entity.ErrPasswordMismatch)
	})

	suite.Run("unknown error", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)
		suite.urlRepoMock.
			On("Deactivate", ctx, "Aq6").
			Once().
			Return(suite.errUnknown)

		err := suite.uc.DeactivateURL(ctx, "Aq6", "46754", "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("success", func() {
		suite.limiterMock.
			On("Allow", ctx, "ip:10.0.0.1").
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("RetrieveByShortCode", ctx, "Aq6").
			Once().
			Return(suite.storedURL(), nil)
		suite.urlRepoMock.
			On("Deactivate", ctx, "Aq6").
			Once().
			Return(nil)

		err := suite.uc.DeactivateURL(ctx, "Aq6", "46754", "10.0.0.1")

		suite.NoError(err)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}

// sequenceRepository allocates ids the way a database sequence does.
type sequenceRepository struct {
	urlRepository
	lastID atomic.Int64
}

func (r *sequenceRepository) Save(_ context.Context, u entity.NewURL, encode func(id int64) (string, error)) (*entity.URL, error) {
	id := r.lastID.Add(1)

	code, err := encode(id)
	if err != nil {
		return nil, err
	}

	return &entity.URL{ID: id, ShortCode: code, LongURL: u.LongURL, Password: u.Password, IsActive: true}, nil
}

type allowAll struct{}

func (allowAll) Validate(context.Context, string) error { return nil }

func TestURLUseCase_ShortenURL_Concurrent(t *testing.T) {
	const n = 200

	enc, err := hashid.New(hashid.WithSalt("concurrent"))
	require.NoError(t, err)

	uc := NewURLUseCase(&sequenceRepository{}, enc, allowAll{}, nil)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]int, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			url, err := uc.ShortenURL(context.Background(), ShortenInput{LongURL: fmt.Sprintf("https://example.com/%d", i)})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			codes[url.ShortCode]++
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	assert.Len(t, codes, n)
	for code, count := range codes {
		assert.Equalf(t, 1, count, "short code %q allocated %d times", code, count)
	}
}
