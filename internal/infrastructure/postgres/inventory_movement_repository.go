package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla tiene un índice único sobre la tupla de idempotencia; ese índice es
// la garantía final contra aplicar dos veces la misma transición.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, tenant_id, reference_type, reference_id, type, quantity, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.TenantID,
		movement.ReferenceType, movement.ReferenceID, movement.Type,
		movement.Quantity, movement.Reason, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMovement
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// Exists verifica si ya hay un movimiento para la tupla exacta.
func (r *InventoryMovementRepo) Exists(productID, tenantID, referenceType, referenceID, movementType string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_movements
			WHERE product_id = $1 AND tenant_id = $2
			  AND reference_type = $3 AND reference_id = $4 AND type = $5
		)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query,
		productID, tenantID, referenceType, referenceID, movementType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists movement: %w", err)
	}
	return exists, nil
}

// GetByReference obtiene el movimiento de una tupla, o nil si no existe.
func (r *InventoryMovementRepo) GetByReference(productID, tenantID, referenceType, referenceID, movementType string) (*entity.InventoryMovement, error) {
	query := `
		SELECT id, product_id, tenant_id, reference_type, reference_id, type, quantity, reason, created_at
		FROM inventory_movements
		WHERE product_id = $1 AND tenant_id = $2
		  AND reference_type = $3 AND reference_id = $4 AND type = $5`
	var m entity.InventoryMovement
	err := r.q.QueryRow(context.Background(), query,
		productID, tenantID, referenceType, referenceID, movementType).Scan(
		&m.ID, &m.ProductID, &m.TenantID, &m.ReferenceType, &m.ReferenceID,
		&m.Type, &m.Quantity, &m.Reason, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement by reference: %w", err)
	}
	return &m, nil
}

// SumByProduct devuelve el total con signo del libro: return suma, exit resta.
func (r *InventoryMovementRepo) SumByProduct(productID, tenantID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'return' THEN quantity ELSE -quantity END), 0)
		FROM inventory_movements
		WHERE product_id = $1 AND tenant_id = $2`
	var total int64
	err := r.q.QueryRow(context.Background(), query, productID, tenantID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum movements by product: %w", err)
	}
	return total, nil
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *InventoryMovementRepo) ListByProduct(productID, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, product_id, tenant_id, reference_type, reference_id, type, quantity, reason, created_at
		FROM inventory_movements
		WHERE product_id = $1 AND tenant_id = $2`
	args := []any{productID, tenantID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.TenantID, &m.ReferenceType, &m.ReferenceID,
			&m.Type, &m.Quantity, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
