package service

import (
	"context"

	"ecommerce-api/cache"
	"ecommerce-api/model"
)

// Stats is cached until the next admin-visible mutation.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return cache.Fetch(ctx, s.cache, cache.AdminStatsKey, func(ctx context.Context) (model.Stats, error) {
		st, err := s.store.Stats(ctx, latestTransactions)
		if err != nil {
			return model.Stats{}, upstream("load stats", err)
		}
		return st, nil
	})
}
