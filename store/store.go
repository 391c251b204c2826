package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ecommerce-api/model"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

// PostgresStore is a Store backed by Postgres
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := DB.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: DB}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// mustAffect turns "zero rows affected" into sql.ErrNoRows.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- products ---

var productColumns = []string{"id", "name", "photo", "price", "stock", "category", "created_at", "updated_at"}

const selectProducts = `SELECT id, name, photo, price, stock, category, created_at, updated_at FROM products`

func scanProduct(sc scanner) (model.Product, error) {
	var p model.Product
	err := sc.Scan(&p.ID, &p.Name, &p.Photo, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProduct inserts a product with a caller-assigned id
func (s *PostgresStore) CreateProduct(ctx context.Context, p model.Product) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO products (id, name, photo, price, stock, category, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Photo, p.Price, p.Stock, p.Category, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(s.DB.QueryRowContext(ctx, selectProducts+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.queryProducts(ctx, selectProducts+` ORDER BY created_at DESC`)
}

func (s *PostgresStore) LatestProducts(ctx context.Context, limit int) ([]model.Product, error) {
	return s.queryProducts(ctx, selectProducts+` ORDER BY created_at DESC LIMIT $1`, limit)
}

func (s *PostgresStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// likeEscaper makes user text match literally inside ILIKE, whose default
// escape character is the backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// productFilter applies the where clauses shared by the count and page queries.
func productFilter(sb sq.SelectBuilder, f model.ProductFilter) sq.SelectBuilder {
	if f.Search != "" {
		sb = sb.Where(sq.ILike{"name": "%" + likeEscaper.Replace(f.Search) + "%"})
	}
	if f.MaxPrice.IsPositive() {
		sb = sb.Where(sq.LtOrEq{"price": f.MaxPrice})
	}
	if f.Category != "" {
		sb = sb.Where(sq.Eq{"category": f.Category})
	}
	return sb
}

// SearchProducts returns one page of products matching f and the number of
// matching products across all pages.
func (s *PostgresStore) SearchProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	countSQL, args, err := productFilter(qb().Select("COUNT(*)").From("products"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	perPage, page := f.PerPage, f.Page
	if perPage <= 0 {
		perPage = 8
	}
	if page <= 0 {
		page = 1
	}
	sb := productFilter(qb().Select(productColumns...).From("products"), f)
	switch f.Sort {
	case "asc":
		sb = sb.OrderBy("price ASC")
	case "desc":
		sb = sb.OrderBy("price DESC")
	default:
		sb = sb.OrderBy("created_at DESC")
	}
	sb = sb.Limit(uint64(perPage)).Offset(uint64((page - 1) * perPage))

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}
	products, err := s.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	return products, total, nil
}

func (s *PostgresStore) SaveProduct(ctx context.Context, p model.Product) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE products SET name=$1, photo=$2, price=$3, stock=$4, category=$5, updated_at=$6 WHERE id=$7`,
		p.Name, p.Photo, p.Price, p.Stock, p.Category, p.UpdatedAt, p.ID,
	)
	return mustAffect(res, err)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	return mustAffect(res, err)
}
