package service

import (
	"context"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ecommerce-api/assets"
	"ecommerce-api/cache"
	"ecommerce-api/store"
)

const (
	latestProductsLimit = 5
	latestTransactions  = 4
	defaultPerPage      = 8
)

type Options struct {
	PerPage int
	Log     zerolog.Logger
}

// Service holds the business rules. Every read goes through the cache and
// every mutation invalidates it before returning.
type Service struct {
	store       store.Store
	cache       cache.Cache
	invalidator *cache.Invalidator
	assets      assets.Host
	validate    *validator.Validate
	perPage     int
	log         zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(st store.Store, c cache.Cache, host assets.Host, opts Options) *Service {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Service{
		store:       st,
		cache:       c,
		invalidator: cache.NewInvalidator(c, opts.Log.With().Str("component", "invalidator").Logger()),
		assets:      host,
		validate:    newValidator(),
		perPage:     perPage,
		log:         opts.Log,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// removeLocal drops a temporary upload once it has been hosted or rejected.
func (s *Service) removeLocal(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("path", path).Msg("remove local upload")
	}
}

// destroyPhoto deletes a hosted photo after the store no longer references
// it. Failures leave an orphaned object and are only logged.
func (s *Service) destroyPhoto(ctx context.Context, url string) {
	key, ok := assets.ObjectKeyFromURL(url)
	if !ok {
		return
	}
	if err := s.assets.Destroy(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("destroy photo")
	}
}
