package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/internal/domain/repository"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
)

// UseCase es la única vía por la que cambia el stock. Cada operación corre como
// una transacción: guard de idempotencia, bloqueo de fila, ajuste de cantidad y
// append al libro de movimientos, todo o nada. Reaplicar la misma referencia no
// es un error: devuelve el movimiento ya registrado sin tocar el stock.
type UseCase struct {
	txRunner  TxRunner
	movRepo   repository.InventoryMovementRepository // atado al pool, solo lecturas
	stockRepo repository.StockRepository             // atado al pool, solo lecturas
	guard     Guard
	notifier  LowStockNotifier
	log       *logger.Logger
}

// NewUseCase construye el caso de uso del motor de inventario.
func NewUseCase(
	txRunner TxRunner,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	notifier LowStockNotifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		movRepo:   movRepo,
		stockRepo: stockRepo,
		notifier:  notifier,
		log:       log,
	}
}

// MovementInput entrada para consumir o devolver stock.
// La tupla (ReferenceType, ReferenceID) identifica el documento causante y es la
// clave de idempotencia junto al producto, el tenant y el tipo de movimiento.
type MovementInput struct {
	ProductID     string
	TenantID      string
	Quantity      int64
	Reason        string
	ReferenceType string
	ReferenceID   string
}

func (in MovementInput) validate() error {
	if in.ProductID == "" || in.TenantID == "" || in.ReferenceType == "" || in.ReferenceID == "" {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// ConsumeProduct descuenta stock por una salida causada por un documento.
// Falla con domain.ErrInsufficientStock si la cantidad resultante sería negativa;
// en ese caso no queda movimiento registrado. Si la referencia ya fue aplicada,
// devuelve el movimiento existente sin efecto alguno.
func (uc *UseCase) ConsumeProduct(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	return uc.apply(ctx, in, entity.MovementTypeExit)
}

// ReturnProduct repone stock por una devolución. Espejo de ConsumeProduct;
// no hay tope superior, una devolución sobre stock existente siempre procede.
func (uc *UseCase) ReturnProduct(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	return uc.apply(ctx, in, entity.MovementTypeReturn)
}

func (uc *UseCase) apply(ctx context.Context, in MovementInput, movementType string) (*entity.InventoryMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		applied  *entity.InventoryMovement
		lowStock *LowStockAlert
	)

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		ok, err := uc.guard.ShouldApply(movRepo, in.ProductID, in.TenantID, in.ReferenceType, in.ReferenceID, movementType)
		if err != nil {
			return err
		}
		if !ok {
			// Replay: la transición ya pasó por aquí. Devolver la fila original.
			prev, err := movRepo.GetByReference(in.ProductID, in.TenantID, in.ReferenceType, in.ReferenceID, movementType)
			if err != nil {
				return err
			}
			applied = prev
			return nil
		}

		// Bloquea la fila de stock; serializa operaciones concurrentes sobre el
		// mismo producto y tenant.
		stock, err := stockRepo.GetForUpdate(in.ProductID, in.TenantID)
		if err != nil {
			return err
		}

		if movementType == entity.MovementTypeExit {
			if stock.Quantity < in.Quantity {
				return domain.ErrInsufficientStock
			}
			stock.Quantity -= in.Quantity
		} else {
			stock.Quantity += in.Quantity
		}
		now := time.Now()
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(stock); err != nil {
			return err
		}

		mov := &entity.InventoryMovement{
			ProductID:     in.ProductID,
			TenantID:      in.TenantID,
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Type:          movementType,
			Quantity:      in.Quantity,
			Reason:        in.Reason,
			CreatedAt:     now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		applied = mov

		if movementType == entity.MovementTypeExit && stock.BelowMinimum() {
			lowStock = &LowStockAlert{
				ProductID:       stock.ProductID,
				TenantID:        stock.TenantID,
				CurrentQuantity: stock.Quantity,
				MinQuantity:     stock.MinQuantity,
			}
		}
		return nil
	})

	if errors.Is(err, domain.ErrDuplicateMovement) {
		// Carrera: otra transacción insertó la misma tupla y el constraint único
		// la detectó después del guard. Mismo tratamiento que el replay.
		prev, gerr := uc.movRepo.GetByReference(in.ProductID, in.TenantID, in.ReferenceType, in.ReferenceID, movementType)
		if gerr != nil {
			return nil, gerr
		}
		if prev == nil {
			return nil, err
		}
		return prev, nil
	}
	if err != nil {
		return nil, err
	}

	// Fuera de la sección crítica: la alerta no alarga la transacción y su fallo
	// no revierte nada.
	if lowStock != nil {
		uc.dispatchLowStock(ctx, *lowStock)
	}
	return applied, nil
}

func (uc *UseCase) dispatchLowStock(ctx context.Context, alert LowStockAlert) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.NotifyLowStock(ctx, alert); err != nil {
		uc.log.Warn().
			Err(err).
			Str("product_id", alert.ProductID).
			Str("tenant_id", alert.TenantID).
			Int64("quantity", alert.CurrentQuantity).
			Int64("min_quantity", alert.MinQuantity).
			Msg("fallo al notificar stock bajo")
	}
}

// TrackProduct registra un producto en el stock por primera vez.
func (uc *UseCase) TrackProduct(ctx context.Context, productID, tenantID string, quantity, minQuantity int64) (*entity.Stock, error) {
	if productID == "" || tenantID == "" || quantity < 0 || minQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	stock := &entity.Stock{
		ProductID:   productID,
		TenantID:    tenantID,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		UpdatedAt:   time.Now(),
	}
	if err := uc.stockRepo.Create(stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// GetStock consulta de solo lectura para UI y reportes.
func (uc *UseCase) GetStock(ctx context.Context, productID, tenantID string) (*entity.Stock, error) {
	if productID == "" || tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.Get(productID, tenantID)
}

// SetMinQuantity actualiza el umbral de alerta de un producto.
func (uc *UseCase) SetMinQuantity(ctx context.Context, productID, tenantID string, minQuantity int64) error {
	if productID == "" || tenantID == "" || minQuantity < 0 {
		return domain.ErrInvalidInput
	}
	return uc.stockRepo.UpdateMinQuantity(productID, tenantID, minQuantity)
}

// ListMovements lista el libro de movimientos de un producto para auditoría.
func (uc *UseCase) ListMovements(ctx context.Context, productID, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	if productID == "" || tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByProduct(productID, tenantID, from, to, limit, offset)
}

// LedgerBalance devuelve el total con signo del libro para un producto.
// Sirve para conciliar: cantidad actual == cantidad inicial + balance.
func (uc *UseCase) LedgerBalance(ctx context.Context, productID, tenantID string) (int64, error) {
	if productID == "" || tenantID == "" {
		return 0, domain.ErrInvalidInput
	}
	return uc.movRepo.SumByProduct(productID, tenantID)
}

// ListLowStock devuelve los productos del tenant en o bajo su mínimo.
func (uc *UseCase) ListLowStock(ctx context.Context, tenantID string, limit int) ([]*entity.Stock, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 10
	}
	return uc.stockRepo.ListLowStock(tenantID, limit)
}
