package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LedgerDeps dependencias del caso de uso del libro de movimientos.
type LedgerDeps struct {
	TxRunner     TxRunner
	Products     repository.ProductRepository
	Areas        repository.AreaRepository
	Dependencies repository.DependencyRepository
	Settings     SettingsSource
	Queue        propagation.Enqueuer
	Logger       *logger.Logger
	Now          func() time.Time
}

// LedgerUseCase registra movimientos de inventario de forma transaccional (bloqueo de filas con
// SELECT FOR UPDATE, Commit/Rollback) y encola la propagación después del commit.
type LedgerUseCase struct {
	txRunner TxRunner
	products repository.ProductRepository
	areas    repository.AreaRepository
	deps     repository.DependencyRepository
	settings SettingsSource
	queue    propagation.Enqueuer
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(d LedgerDeps) *LedgerUseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerUseCase{
		txRunner: d.TxRunner,
		products: d.Products,
		areas:    d.Areas,
		deps:     d.Dependencies,
		settings: d.Settings,
		queue:    d.Queue,
		log:      log.Component("ledger"),
		now:      now,
	}
}

// Execute valida la operación, la aplica en una única transacción y devuelve las filas creadas.
func (uc *LedgerUseCase) Execute(ctx context.Context, op OperationContext, cmd Command) ([]*entity.StockMovement, error) {
	if op.BusinessID == "" {
		return nil, domain.ErrUnauthorized
	}
	if pc, ok := cmd.(ProcessCommand); ok && len(pc.Inputs) == 0 {
		expanded, err := uc.expandRecipe(ctx, op, pc)
		if err != nil {
			return nil, err
		}
		cmd = expanded
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	if err := uc.checkAreas(ctx, op, cmd.areaIDs()); err != nil {
		return nil, err
	}
	s, err := uc.settings.Resolve(ctx, op.BusinessID)
	if err != nil {
		return nil, err
	}
	if ec, ok := cmd.(EntryCommand); ok && ec.Currency != "" && s.CostCurrency != "" &&
		!strings.EqualFold(ec.Currency, s.CostCurrency) {
		return nil, fmt.Errorf("%w: %s (costo en %s)", domain.ErrCurrencyMismatch, ec.Currency, s.CostCurrency)
	}

	productIDs, keys := cmd.lockSet()
	var tx *ledgerTx
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		tx, err = begin(ctx, repos, op, s, uc.now(), productIDs, keys)
		if err != nil {
			return err
		}
		switch c := cmd.(type) {
		case EntryCommand:
			return tx.entry(c)
		case OutCommand:
			return tx.decrease(entity.OperationOut, c.AreaID, c.Lines, c.Description)
		case WasteCommand:
			return tx.decrease(entity.OperationWaste, c.AreaID, c.Lines, c.Description)
		case SaleCommand:
			return tx.decrease(entity.OperationSale, c.AreaID, c.Lines, c.Description)
		case AdjustCommand:
			return tx.adjust(c)
		case TransferCommand:
			return tx.transfer(c)
		case TransformCommand:
			return tx.transform(c)
		case ProcessCommand:
			return tx.process(c)
		}
		return fmt.Errorf("%w: operación no soportada %T", domain.ErrInvalidInput, cmd)
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, op.BusinessID, s, tx)
	return tx.created, nil
}

func (uc *LedgerUseCase) checkAreas(ctx context.Context, op OperationContext, ids []string) error {
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		area, err := uc.areas.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if area == nil || area.BusinessID != op.BusinessID {
			return fmt.Errorf("%w: área %s", domain.ErrNotFound, id)
		}
		if !area.HoldsStock() {
			return fmt.Errorf("%w: %s (%s)", domain.ErrInvalidArea, area.Name, area.Type)
		}
	}
	return nil
}

// expandRecipe deriva los insumos del producto a elaborar: de su lista de insumos o, si no tiene,
// de su receta. Cantidad consumida = cantidad × producido / rendimiento.
func (uc *LedgerUseCase) expandRecipe(ctx context.Context, op OperationContext, c ProcessCommand) (ProcessCommand, error) {
	if uc.products == nil || uc.deps == nil || c.ProductID == "" {
		return c, nil
	}
	p, err := uc.products.GetByID(ctx, c.ProductID)
	if err != nil {
		return c, err
	}
	if p == nil || p.BusinessID != op.BusinessID {
		return c, fmt.Errorf("%w: producto %s", domain.ErrNotFound, c.ProductID)
	}

	supplies, err := uc.deps.ListSupplies(ctx, p.ID)
	if err != nil {
		return c, err
	}
	for _, sp := range supplies {
		qty := sp.Quantity.Mul(c.ProducedQuantity).Div(p.Yield())
		c.Inputs = append(c.Inputs, Line{ProductID: sp.SupplyProductID, Quantity: qty})
	}
	if len(c.Inputs) > 0 || p.RecipeID == nil {
		return c, nil
	}

	recipe, err := uc.deps.GetRecipe(ctx, *p.RecipeID)
	if err != nil || recipe == nil {
		return c, err
	}
	yield := recipe.Performance
	if !yield.IsPositive() {
		yield = decimal.NewFromInt(1)
	}
	for _, raw := range recipe.Raws {
		qty := raw.Quantity.Mul(c.ProducedQuantity).Div(yield)
		c.Inputs = append(c.Inputs, Line{ProductID: raw.ProductID, Quantity: qty})
	}
	return c, nil
}

// afterCommit encola la propagación. Un fallo aquí se registra y no afecta el movimiento confirmado.
func (uc *LedgerUseCase) afterCommit(ctx context.Context, businessID string, s settings.Settings, tx *ledgerTx) {
	if uc.queue == nil || tx == nil {
		return
	}
	jobs := PostCommitJobs(businessID, s, tx.touched, tx.costChanged)
	if len(jobs) == 0 {
		return
	}
	if err := uc.queue.Enqueue(context.WithoutCancel(ctx), jobs...); err != nil {
		uc.log.Warn().Err(err).Str("business_id", businessID).Int("jobs", len(jobs)).Msg("no se pudo encolar la propagación")
	}
}

// PostCommitJobs trabajos posteriores a un movimiento: costo de dependientes para los productos cuyo
// costo cambió, disponibilidad y vendibilidad de los productos tocados y sincronización del canal externo.
func PostCommitJobs(businessID string, s settings.Settings, touched, costChanged []string) []propagation.Job {
	var jobs []propagation.Job
	for _, id := range costChanged {
		jobs = append(jobs, propagation.PropagateCost{ProductID: id})
	}
	if len(touched) > 0 {
		ids := sortedUnique(touched)
		jobs = append(jobs,
			propagation.RecheckAvailability{ProductIDs: ids},
			propagation.RecheckSellability{ProductIDs: ids},
		)
		if s.ExternalChannelActive {
			jobs = append(jobs, propagation.SyncExternalChannel{BusinessID: businessID, ProductIDs: ids})
		}
	}
	return jobs
}
