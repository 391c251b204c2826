package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// Invalidation describes a mutation that just happened.
type Invalidation struct {
	Product bool
	Admin   bool
	Order   bool

	UserID     string
	OrderID    string
	ProductIDs []string
}

// Keys returns every key whose value may be stale after the mutation, without
// duplicates.
func (inv Invalidation) Keys() []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	if inv.Product {
		add(LatestProductsKey)
		add(AllProductsKey)
		add(CategoriesKey)
		for _, id := range inv.ProductIDs {
			if id != "" {
				add(ProductKey(id))
			}
		}
	}

	if inv.Order {
		add(AllOrdersKey)
		if inv.OrderID != "" {
			add(OrderKey(inv.OrderID))
		}
		if inv.UserID != "" {
			add(MyOrdersKey(inv.UserID))
		}
	}

	if inv.Admin {
		add(AdminStatsKey)
		if inv.Product {
			add(AllProductsKey)
		}
		if inv.Order {
			add(AllOrdersKey)
		}
	}

	return keys
}

// Invalidator removes stale keys after mutations. It never touches the store.
type Invalidator struct {
	cache Cache
	log   zerolog.Logger
}

func NewInvalidator(c Cache, log zerolog.Logger) *Invalidator {
	return &Invalidator{cache: c, log: log}
}

// Invalidate deletes inv.Keys() before returning. Deleting an absent key is a
// no-op, so calling it twice with the same request is harmless.
func (i *Invalidator) Invalidate(ctx context.Context, inv Invalidation) {
	keys := inv.Keys()
	if len(keys) == 0 {
		return
	}
	i.cache.Delete(ctx, keys...)
	i.log.Debug().Strs("keys", keys).Msg("cache invalidated")
}
