package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ecommerce-api/cache"
	"ecommerce-api/model"
	"ecommerce-api/store"
)

// ---- memStore: stateful fake implementing store.Store ----
type memStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	products map[string]model.Product
	orders   map[string]model.Order
	coupons  map[string]model.Coupon
	calls    map[string]int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]model.User{},
		products: map[string]model.Product{},
		orders:   map[string]model.Order{},
		coupons:  map[string]model.Coupon{},
		calls:    map[string]int{},
	}
}

func (m *memStore) hit(name string) error {
	m.calls[name]++
	return m.failWith
}

func (m *memStore) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *memStore) CreateUser(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CreateUser"); err != nil {
		return err
	}
	for _, x := range m.users {
		if x.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListUsers"); err != nil {
		return nil, err
	}
	out := []model.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DeleteUser"); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) CreateProduct(_ context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CreateProduct"); err != nil {
		return err
	}
	m.products[p.ID] = p
	return nil
}

func (m *memStore) GetProduct(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) sortedProducts() []model.Product {
	out := []model.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListProducts"); err != nil {
		return nil, err
	}
	return m.sortedProducts(), nil
}

func (m *memStore) LatestProducts(_ context.Context, limit int) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("LatestProducts"); err != nil {
		return nil, err
	}
	ps := m.sortedProducts()
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, nil
}

func (m *memStore) Categories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("Categories"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, p := range m.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) SearchProducts(_ context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SearchProducts"); err != nil {
		return nil, 0, err
	}
	var match []model.Product
	for _, p := range m.sortedProducts() {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MaxPrice.IsPositive() && p.Price.GreaterThan(f.MaxPrice) {
			continue
		}
		match = append(match, p)
	}
	start := (f.Page - 1) * f.PerPage
	if start > len(match) {
		start = len(match)
	}
	end := start + f.PerPage
	if end > len(match) {
		end = len(match)
	}
	return match[start:end], len(match), nil
}

func (m *memStore) SaveProduct(_ context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SaveProduct"); err != nil {
		return err
	}
	if _, ok := m.products[p.ID]; !ok {
		return sql.ErrNoRows
	}
	m.products[p.ID] = p
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DeleteProduct"); err != nil {
		return err
	}
	if _, ok := m.products[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) CreateOrder(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CreateOrder"); err != nil {
		return err
	}
	stock := map[string]int{}
	for _, it := range o.Items {
		p, ok := m.products[it.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", it.ProductID, store.ErrUnknownProduct)
		}
		if _, seen := stock[it.ProductID]; !seen {
			stock[it.ProductID] = p.Stock
		}
		if stock[it.ProductID] < it.Quantity {
			return fmt.Errorf("product %s: %w", it.ProductID, store.ErrInsufficientStock)
		}
		stock[it.ProductID] -= it.Quantity
	}
	for id, left := range stock {
		p := m.products[id]
		p.Stock = left
		m.products[id] = p
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetOrder"); err != nil {
		return nil, err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memStore) ListOrders(_ context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListOrders"); err != nil {
		return nil, err
	}
	out := []model.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListOrdersByUser"); err != nil {
		return nil, err
	}
	out := []model.Order{}
	for _, o := range m.orders {
		if o.User == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SaveOrderStatus(_ context.Context, id string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SaveOrderStatus"); err != nil {
		return err
	}
	o, ok := m.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DeleteOrder"); err != nil {
		return err
	}
	if _, ok := m.orders[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.orders, id)
	return nil
}

func (m *memStore) CreateCoupon(_ context.Context, c model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CreateCoupon"); err != nil {
		return err
	}
	for _, x := range m.coupons {
		if x.Code == c.Code {
			return store.ErrDuplicate
		}
	}
	m.coupons[c.ID] = c
	return nil
}

func (m *memStore) GetCouponByCode(_ context.Context, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetCouponByCode"); err != nil {
		return nil, err
	}
	for _, c := range m.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListCoupons(_ context.Context) ([]model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListCoupons"); err != nil {
		return nil, err
	}
	out := []model.Coupon{}
	for _, c := range m.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) DeleteCoupon(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DeleteCoupon"); err != nil {
		return err
	}
	if _, ok := m.coupons[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.coupons, id)
	return nil
}

func (m *memStore) Stats(_ context.Context, latest int) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("Stats"); err != nil {
		return model.Stats{}, err
	}
	st := model.Stats{Counts: model.Counts{
		Users:    int64(len(m.users)),
		Products: int64(len(m.products)),
		Orders:   int64(len(m.orders)),
	}}
	for _, o := range m.orders {
		st.Revenue = st.Revenue.Add(o.Total)
	}
	return st, nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

// ---- fakeHost: records uploads and deletions ----
type fakeHost struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
	uploadErr error
}

func (h *fakeHost) Upload(_ context.Context, localPath string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.uploadErr != nil {
		return "", h.uploadErr
	}
	h.uploaded = append(h.uploaded, localPath)
	return fmt.Sprintf("http://assets.local/products/v1/photo%d%s", len(h.uploaded), filepath.Ext(localPath)), nil
}

func (h *fakeHost) Destroy(_ context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed = append(h.destroyed, key)
	return nil
}

// ---- helpers ----
type fixture struct {
	svc   *Service
	store *memStore
	cache *cache.Memory
	host  *fakeHost
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()
	c := cache.NewMemory()
	h := &fakeHost{}
	svc := NewService(st, c, h, Options{PerPage: 2, Log: zerolog.Nop()})

	var seq int
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id%d", seq)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return &fixture{svc: svc, store: st, cache: c, host: h}
}

// upload writes a throwaway file standing in for a multipart photo.
func upload(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	return path
}

func (f *fixture) has(key string) bool {
	return f.cache.Has(context.Background(), key)
}

func (f *fixture) seed(keys ...string) {
	for _, k := range keys {
		f.cache.Set(context.Background(), k, "[]")
	}
}
