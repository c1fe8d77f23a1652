// Package memory implementa los puertos de persistencia del motor sobre mapas
// en memoria. Se usa en tests y para correr la API sin PostgreSQL. El TxRunner
// toma una copia del estado antes de ejecutar el callback y la restaura si este
// falla, reproduciendo el commit/rollback de una transacción real.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/internal/domain/repository"
)

type stockKey struct {
	productID string
	tenantID  string
}

type movementKey struct {
	productID     string
	tenantID      string
	referenceType string
	referenceID   string
	movementType  string
}

type dataset struct {
	stocks    map[stockKey]entity.Stock
	movements []entity.InventoryMovement
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		stocks:    make(map[stockKey]entity.Stock, len(d.stocks)),
		movements: make([]entity.InventoryMovement, len(d.movements)),
	}
	for k, v := range d.stocks {
		c.stocks[k] = v
	}
	copy(c.movements, d.movements)
	return c
}

// Store contiene stock y movimientos bajo un único mutex: las transacciones
// sobre el store se serializan completas, igual que con el bloqueo de fila.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{data: &dataset{stocks: make(map[stockKey]entity.Stock)}}
}

// StockRepository devuelve el adaptador de stock atado al store.
func (s *Store) StockRepository() repository.StockRepository {
	return &stockRepo{s: s, locking: true}
}

// MovementRepository devuelve el adaptador del libro de movimientos.
func (s *Store) MovementRepository() repository.InventoryMovementRepository {
	return &movementRepo{s: s, locking: true}
}

// TxRunner devuelve un runner transaccional sobre el store.
func (s *Store) TxRunner() inventory.TxRunner {
	return &txRunner{s: s}
}

type txRunner struct {
	s *Store
}

// Run ejecuta fn con repos sin bloqueo propio (el mutex ya está tomado) y
// restaura el snapshot si fn devuelve error.
func (r *txRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.data.clone()
	err := fn(&movementRepo{s: r.s}, &stockRepo{s: r.s})
	if err != nil {
		r.s.data = snapshot
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

type stockRepo struct {
	s       *Store
	locking bool
}

func (r *stockRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *stockRepo) Get(productID, tenantID string) (*entity.Stock, error) {
	defer r.lock()()
	s, ok := r.s.data.stocks[stockKey{productID, tenantID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s
	return &out, nil
}

// GetForUpdate equivale a Get: el mutex del store ya serializa las transacciones.
func (r *stockRepo) GetForUpdate(productID, tenantID string) (*entity.Stock, error) {
	return r.Get(productID, tenantID)
}

func (r *stockRepo) Create(stock *entity.Stock) error {
	defer r.lock()()
	k := stockKey{stock.ProductID, stock.TenantID}
	if _, ok := r.s.data.stocks[k]; ok {
		return domain.ErrDuplicate
	}
	r.s.data.stocks[k] = *stock
	return nil
}

func (r *stockRepo) Upsert(stock *entity.Stock) error {
	defer r.lock()()
	r.s.data.stocks[stockKey{stock.ProductID, stock.TenantID}] = *stock
	return nil
}

func (r *stockRepo) UpdateMinQuantity(productID, tenantID string, minQuantity int64) error {
	defer r.lock()()
	k := stockKey{productID, tenantID}
	s, ok := r.s.data.stocks[k]
	if !ok {
		return domain.ErrNotFound
	}
	s.MinQuantity = minQuantity
	s.UpdatedAt = time.Now()
	r.s.data.stocks[k] = s
	return nil
}

func (r *stockRepo) ListLowStock(tenantID string, limit int) ([]*entity.Stock, error) {
	defer r.lock()()
	var list []*entity.Stock
	for _, s := range r.s.data.stocks {
		if s.TenantID == tenantID && s.MinQuantity > 0 && s.Quantity <= s.MinQuantity {
			out := s
			list = append(list, &out)
			if len(list) == limit {
				break
			}
		}
	}
	return list, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct {
	s       *Store
	locking bool
}

func (r *movementRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func keyOf(m *entity.InventoryMovement) movementKey {
	return movementKey{m.ProductID, m.TenantID, m.ReferenceType, m.ReferenceID, m.Type}
}

func (r *movementRepo) find(k movementKey) *entity.InventoryMovement {
	for i := range r.s.data.movements {
		m := &r.s.data.movements[i]
		if keyOf(m) == k {
			out := *m
			return &out
		}
	}
	return nil
}

func (r *movementRepo) Create(movement *entity.InventoryMovement) error {
	defer r.lock()()
	if r.find(keyOf(movement)) != nil {
		return domain.ErrDuplicateMovement
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	r.s.data.movements = append(r.s.data.movements, *movement)
	return nil
}

func (r *movementRepo) Exists(productID, tenantID, referenceType, referenceID, movementType string) (bool, error) {
	defer r.lock()()
	k := movementKey{productID, tenantID, referenceType, referenceID, movementType}
	return r.find(k) != nil, nil
}

func (r *movementRepo) GetByReference(productID, tenantID, referenceType, referenceID, movementType string) (*entity.InventoryMovement, error) {
	defer r.lock()()
	k := movementKey{productID, tenantID, referenceType, referenceID, movementType}
	return r.find(k), nil
}

func (r *movementRepo) SumByProduct(productID, tenantID string) (int64, error) {
	defer r.lock()()
	var total int64
	for i := range r.s.data.movements {
		m := &r.s.data.movements[i]
		if m.ProductID == productID && m.TenantID == tenantID {
			total += m.Signed()
		}
	}
	return total, nil
}

func (r *movementRepo) ListByProduct(productID, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	defer r.lock()()
	var list []*entity.InventoryMovement
	skipped := 0
	// Recorre de más reciente a más antiguo, igual que el ORDER BY de la DB.
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.ProductID != productID || m.TenantID != tenantID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out := m
		list = append(list, &out)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}
