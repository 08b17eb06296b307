package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produmax-api/internal/domain/catalog"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

const productColumns = `id, name, details, stock, unit_price, combo_price, image_path,
	COALESCE(unit_id::text, ''), COALESCE(category_id::text, ''), created_at, updated_at`

// CatalogRepo lecturas de productos, unidades y categorías. Los nombres se normalizan
// antes de consultar y se comparan sin distinguir mayúsculas.
type CatalogRepo struct {
	db Querier
}

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(db Querier) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// GetProductByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *CatalogRepo) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// GetProductByName busca un producto por nombre.
func (r *CatalogRepo) GetProductByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE lower(name) = lower($1)`
	p, err := scanProduct(r.db.QueryRow(ctx, query, catalog.NormalizeName(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by name: %w", err)
	}
	return p, nil
}

// GetUnitByName busca una unidad por nombre.
func (r *CatalogRepo) GetUnitByName(ctx context.Context, name string) (*entity.Unit, error) {
	var u entity.Unit
	err := r.db.QueryRow(ctx, `SELECT id, name, symbol FROM units WHERE lower(name) = lower($1)`,
		catalog.NormalizeName(name)).Scan(&u.ID, &u.Name, &u.Symbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit by name: %w", err)
	}
	return &u, nil
}

// GetCategoryByName busca una categoría por nombre.
func (r *CatalogRepo) GetCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	var c entity.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE lower(name) = lower($1)`,
		catalog.NormalizeName(name)).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return &c, nil
}

// ListProducts lista productos ordenados por nombre.
func (r *CatalogRepo) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Details, &p.Stock, &p.UnitPrice, &p.ComboPrice, &p.ImagePath,
		&p.UnitID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
