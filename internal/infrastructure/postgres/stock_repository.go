package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto para un tenant.
func (r *StockRepo) Get(productID, tenantID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, tenant_id, quantity, min_quantity, updated_at
		FROM stock WHERE product_id = $1 AND tenant_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, tenantID).Scan(
		&s.ProductID, &s.TenantID, &s.Quantity, &s.MinQuantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Con lock_timeout activo en la transacción, la espera vencida sale como domain.ErrBusy.
func (r *StockRepo) GetForUpdate(productID, tenantID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, tenant_id, quantity, min_quantity, updated_at
		FROM stock WHERE product_id = $1 AND tenant_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, tenantID).Scan(
		&s.ProductID, &s.TenantID, &s.Quantity, &s.MinQuantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Create registra un producto en stock por primera vez.
func (r *StockRepo) Create(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, tenant_id, quantity, min_quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())`
	_, err := r.q.Exec(context.Background(), query,
		stock.ProductID, stock.TenantID, stock.Quantity, stock.MinQuantity)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y tenant).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, tenant_id, quantity, min_quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, tenant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		stock.ProductID, stock.TenantID, stock.Quantity, stock.MinQuantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// UpdateMinQuantity actualiza el umbral mínimo de un producto.
func (r *StockRepo) UpdateMinQuantity(productID, tenantID string, minQuantity int64) error {
	query := `
		UPDATE stock SET min_quantity = $3, updated_at = now()
		WHERE product_id = $1 AND tenant_id = $2`
	tag, err := r.q.Exec(context.Background(), query, productID, tenantID, minQuantity)
	if err != nil {
		return fmt.Errorf("update min quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLowStock devuelve los productos del tenant cuyo stock actual está en o bajo
// su mínimo. Ordena por déficit descendente (mayor quiebre primero).
func (r *StockRepo) ListLowStock(tenantID string, limit int) ([]*entity.Stock, error) {
	query := `
		SELECT product_id, tenant_id, quantity, min_quantity, updated_at
		FROM stock
		WHERE tenant_id = $1
		  AND min_quantity > 0
		  AND quantity <= min_quantity
		ORDER BY (min_quantity - quantity) DESC
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.TenantID, &s.Quantity, &s.MinQuantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
