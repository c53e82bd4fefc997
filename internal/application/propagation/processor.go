package propagation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// SettingsSource resuelve la configuración efectiva de un negocio.
type SettingsSource interface {
	Resolve(ctx context.Context, businessID string) (settings.Settings, error)
}

// ChannelNotifier integración con la tienda en línea.
type ChannelNotifier interface {
	Notify(ctx context.Context, businessID string, productIDs []string) error
}

// ProductTx ejecuta fn en una transacción corta con el repositorio de productos atado a ella.
type ProductTx interface {
	RunProducts(ctx context.Context, fn func(ctx context.Context, products repository.ProductRepository) error) error
}

// Processor ejecuta los trabajos de propagación. Cada handler es idempotente:
// repetir un trabajo sobre el mismo estado no produce cambios.
type Processor struct {
	products repository.ProductRepository
	tx       ProductTx
	balances repository.StockAreaProductRepository
	deps     repository.DependencyRepository
	settings SettingsSource
	queue    Enqueuer
	notifier ChannelNotifier
	metrics  *metrics.Jobs
	log      *logger.Logger
}

// ProcessorDeps dependencias del Processor. Notifier y Metrics son opcionales. Sin Tx las
// escrituras de costo, disponibilidad y banderas van directo a Products sin bloqueo.
type ProcessorDeps struct {
	Products repository.ProductRepository
	Tx       ProductTx
	Balances repository.StockAreaProductRepository
	Deps     repository.DependencyRepository
	Settings SettingsSource
	Queue    Enqueuer
	Notifier ChannelNotifier
	Metrics  *metrics.Jobs
	Logger   *logger.Logger
}

// NewProcessor construye el procesador de trabajos.
func NewProcessor(d ProcessorDeps) *Processor {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		products: d.Products,
		tx:       d.Tx,
		balances: d.Balances,
		deps:     d.Deps,
		settings: d.Settings,
		queue:    d.Queue,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      log.Component("propagation"),
	}
}

// Process despacha el trabajo a su handler.
func (p *Processor) Process(ctx context.Context, job Job) error {
	tracker := p.metrics.Track(string(job.Code()))
	var err error
	switch j := job.(type) {
	case RecomputeCost:
		err = p.recomputeCost(ctx, j.ProductID)
	case PropagateCost:
		err = p.propagateCost(ctx, j.ProductID)
	case RecomputeRecipeCost:
		err = p.recomputeRecipeCost(ctx, j.RecipeID)
	case RecheckAvailability:
		err = p.recheckAvailability(ctx, j.ProductIDs)
	case RecheckSellability:
		err = p.recheckSellability(ctx, j.ProductIDs)
	case SyncExternalChannel:
		err = p.syncExternalChannel(ctx, j)
	default:
		err = fmt.Errorf("trabajo no soportado: %T", job)
	}
	return tracker.End(err)
}

// inTx corre fn con el producto a escribir bloqueado, para que dos trabajos sobre el mismo
// producto no pisen la escritura del otro con una lectura vieja.
func (p *Processor) inTx(ctx context.Context, fn func(ctx context.Context, products repository.ProductRepository) error) error {
	if p.tx == nil {
		return fn(ctx, p.products)
	}
	return p.tx.RunProducts(ctx, fn)
}

func lockProduct(ctx context.Context, products repository.ProductRepository, id string) (*entity.Product, error) {
	list, err := products.GetManyForUpdate(ctx, []string{id})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// recomputeCost recalcula el costo bajo bloqueo del producto. Solo si el costo cambia se
// propaga a los dependientes, una vez confirmada la transacción.
func (p *Processor) recomputeCost(ctx context.Context, productID string) error {
	changed := false
	err := p.inTx(ctx, func(ctx context.Context, products repository.ProductRepository) error {
		product, err := lockProduct(ctx, products, productID)
		if err != nil {
			return err
		}
		if product == nil || product.DeletedAt != nil {
			return nil
		}
		cost, ok, err := p.productCost(ctx, products, product)
		if err != nil || !ok || cost.Equal(product.AverageCost) {
			return err
		}
		if err := products.UpdateCost(ctx, product.ID, cost); err != nil {
			return err
		}
		changed = true
		p.log.Debug().Str("product_id", product.ID).Str("cost", cost.String()).Msg("costo recalculado")
		return nil
	})
	if err != nil || !changed {
		return err
	}
	return p.queue.Enqueue(ctx, PropagateCost{ProductID: productID})
}

// productCost: combo → Σ compuesto.costo × cantidad; con receta → costo unitario de la receta;
// con insumos → (Σ insumo.costo × cantidad + Σ fijos) / rendimiento. ok=false si el producto
// no tiene de dónde derivar su costo.
func (p *Processor) productCost(ctx context.Context, products repository.ProductRepository, product *entity.Product) (decimal.Decimal, bool, error) {
	s, err := p.settings.Resolve(ctx, product.BusinessID)
	if err != nil {
		return decimal.Zero, false, err
	}
	opts := s.CostOptions()

	switch {
	case product.IsCombo():
		items, err := p.deps.ListComposition(ctx, product.ID)
		if err != nil {
			return decimal.Zero, false, err
		}
		inputs := make([]inventory.WeightedInput, 0, len(items))
		for _, it := range items {
			composed, err := products.GetByID(ctx, it.ComposedID)
			if err != nil {
				return decimal.Zero, false, err
			}
			if composed == nil {
				continue
			}
			inputs = append(inputs, inventory.WeightedInput{UnitCost: composed.AverageCost, Quantity: it.Quantity})
		}
		return inventory.ComboCost(inputs, opts), true, nil
	case !product.IsCostDefined:
		return decimal.Zero, false, nil
	case product.RecipeID != nil:
		recipe, err := p.deps.GetRecipe(ctx, *product.RecipeID)
		if err != nil || recipe == nil {
			return decimal.Zero, false, err
		}
		return inventory.RoundCost(recipe.UnitCost, opts), true, nil
	}

	supplies, err := p.deps.ListSupplies(ctx, product.ID)
	if err != nil {
		return decimal.Zero, false, err
	}
	fixed, err := p.deps.ListFixedCosts(ctx, product.ID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(supplies) == 0 && len(fixed) == 0 {
		return decimal.Zero, false, nil
	}
	inputs := make([]inventory.WeightedInput, 0, len(supplies))
	for _, sp := range supplies {
		supply, err := products.GetByID(ctx, sp.SupplyProductID)
		if err != nil {
			return decimal.Zero, false, err
		}
		if supply == nil {
			continue
		}
		inputs = append(inputs, inventory.WeightedInput{UnitCost: supply.AverageCost, Quantity: sp.Quantity})
	}
	amounts := make([]decimal.Decimal, 0, len(fixed))
	for _, f := range fixed {
		amounts = append(amounts, f.Amount)
	}
	return inventory.SuppliedCost(inputs, amounts, product.Yield(), opts), true, nil
}

// propagateCost recorre las aristas inversas: productos que lo usan como insumo, combos que lo
// contienen y recetas que lo consumen.
func (p *Processor) propagateCost(ctx context.Context, productID string) error {
	dependents, err := p.deps.ListSupplyDependents(ctx, productID)
	if err != nil {
		return err
	}
	combos, err := p.deps.ListCombosContaining(ctx, productID)
	if err != nil {
		return err
	}
	recipes, err := p.deps.ListRecipesUsing(ctx, productID)
	if err != nil {
		return err
	}
	var jobs []Job
	for _, id := range uniqueIDs(append(dependents, combos...)) {
		if id == productID {
			continue
		}
		jobs = append(jobs, RecomputeCost{ProductID: id})
	}
	for _, id := range uniqueIDs(recipes) {
		jobs = append(jobs, RecomputeRecipeCost{RecipeID: id})
	}
	if len(jobs) == 0 {
		return nil
	}
	return p.queue.Enqueue(ctx, jobs...)
}

func (p *Processor) recomputeRecipeCost(ctx context.Context, recipeID string) error {
	recipe, err := p.deps.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return nil
	}
	s, err := p.settings.Resolve(ctx, recipe.BusinessID)
	if err != nil {
		return err
	}
	inputs := make([]inventory.WeightedInput, 0, len(recipe.Raws))
	for _, raw := range recipe.Raws {
		product, err := p.products.GetByID(ctx, raw.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			continue
		}
		inputs = append(inputs, inventory.WeightedInput{UnitCost: product.AverageCost, Quantity: raw.Quantity})
	}
	cost := inventory.RecipeUnitCost(inputs, recipe.Performance, s.CostOptions())
	if cost.Equal(recipe.UnitCost) {
		return nil
	}
	if err := p.deps.UpdateRecipeUnitCost(ctx, recipe.ID, cost); err != nil {
		return err
	}
	bound, err := p.deps.ListProductsByRecipe(ctx, recipe.ID)
	if err != nil {
		return err
	}
	jobs := make([]Job, 0, len(bound))
	for _, id := range uniqueIDs(bound) {
		jobs = append(jobs, RecomputeCost{ProductID: id})
	}
	if len(jobs) == 0 {
		return nil
	}
	return p.queue.Enqueue(ctx, jobs...)
}

// recheckAvailability recalcula los combos afectados por ids. Los combos cuya disponibilidad
// cambia generan un nuevo trabajo para los combos que los contienen.
func (p *Processor) recheckAvailability(ctx context.Context, ids []string) error {
	var targets []string
	for _, id := range uniqueIDs(ids) {
		product, err := p.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product != nil && product.IsCombo() {
			targets = append(targets, id)
		}
		combos, err := p.deps.ListCombosContaining(ctx, id)
		if err != nil {
			return err
		}
		targets = append(targets, combos...)
	}

	changedByBusiness := map[string][]string{}
	var changed []string
	for _, comboID := range uniqueIDs(targets) {
		var (
			updated    bool
			businessID string
		)
		err := p.inTx(ctx, func(ctx context.Context, products repository.ProductRepository) error {
			combo, err := lockProduct(ctx, products, comboID)
			if err != nil {
				return err
			}
			if combo == nil || combo.DeletedAt != nil {
				return nil
			}
			availability, err := p.comboAvailability(ctx, products, combo.ID)
			if err != nil {
				return err
			}
			if inventory.SameAvailability(availability, combo.Availability) {
				return nil
			}
			if err := products.UpdateAvailability(ctx, combo.ID, availability); err != nil {
				return err
			}
			updated, businessID = true, combo.BusinessID
			return nil
		})
		if err != nil {
			return err
		}
		if !updated {
			continue
		}
		changed = append(changed, comboID)
		changedByBusiness[businessID] = append(changedByBusiness[businessID], comboID)
	}
	if len(changed) == 0 {
		return nil
	}

	jobs := []Job{RecheckAvailability{ProductIDs: changed}, RecheckSellability{ProductIDs: changed}}
	for businessID, combos := range changedByBusiness {
		s, err := p.settings.Resolve(ctx, businessID)
		if err != nil {
			return err
		}
		if s.ExternalChannelActive {
			jobs = append(jobs, SyncExternalChannel{BusinessID: businessID, ProductIDs: combos})
		}
	}
	return p.queue.Enqueue(ctx, jobs...)
}

func (p *Processor) comboAvailability(ctx context.Context, products repository.ProductRepository, comboID string) (*decimal.Decimal, error) {
	items, err := p.deps.ListComposition(ctx, comboID)
	if err != nil {
		return nil, err
	}
	stock := make([]inventory.ComposedStock, 0, len(items))
	for _, it := range items {
		composed, err := products.GetByID(ctx, it.ComposedID)
		if err != nil {
			return nil, err
		}
		cs := inventory.ComposedStock{Required: it.Quantity}
		switch {
		case composed == nil || composed.DeletedAt != nil:
			cs.StockLimit = true
		case composed.IsCombo():
			if composed.Availability != nil {
				cs.Available = *composed.Availability
				cs.StockLimit = true
			}
		default:
			cs.Available = composed.TotalQuantity
			cs.StockLimit = composed.StockLimit
		}
		stock = append(stock, cs)
	}
	return inventory.Disponibility(stock), nil
}

func (p *Processor) recheckSellability(ctx context.Context, ids []string) error {
	for _, id := range uniqueIDs(ids) {
		err := p.inTx(ctx, func(ctx context.Context, products repository.ProductRepository) error {
			product, err := lockProduct(ctx, products, id)
			if err != nil {
				return err
			}
			if product == nil || product.DeletedAt != nil {
				return nil
			}
			flags, err := p.sellability(ctx, product)
			if err != nil {
				return err
			}
			current := entity.ProductFlags{
				UnderAlert:       product.UnderAlert,
				IsManufacturable: product.IsManufacturable,
				OnlineSellable:   product.OnlineSellable,
			}
			if flags == current {
				return nil
			}
			return products.UpdateFlags(ctx, product.ID, flags)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) sellability(ctx context.Context, product *entity.Product) (entity.ProductFlags, error) {
	var flags entity.ProductFlags
	if product.AlertLimit != nil && product.TracksStock() {
		flags.UnderAlert = product.TotalQuantity.LessThan(*product.AlertLimit)
	}

	supplies, err := p.deps.ListSupplies(ctx, product.ID)
	if err != nil {
		return flags, err
	}
	flags.IsManufacturable = product.RecipeID != nil || len(supplies) > 0

	switch {
	case product.IsCombo():
		flags.OnlineSellable = product.Availability == nil || product.Availability.GreaterThan(decimal.Zero)
	case !product.TracksStock():
		flags.OnlineSellable = true
	default:
		s, err := p.settings.Resolve(ctx, product.BusinessID)
		if err != nil {
			return flags, err
		}
		if s.ReferenceStockAreaID == "" {
			flags.OnlineSellable = product.TotalQuantity.GreaterThan(decimal.Zero)
			break
		}
		row, err := p.balances.Get(ctx, product.ID, s.ReferenceStockAreaID)
		if err != nil {
			return flags, err
		}
		flags.OnlineSellable = row != nil && row.Quantity.GreaterThan(decimal.Zero)
	}
	return flags, nil
}

func (p *Processor) syncExternalChannel(ctx context.Context, job SyncExternalChannel) error {
	ids := uniqueIDs(job.ProductIDs)
	if len(ids) == 0 {
		return nil
	}
	if p.notifier == nil {
		p.log.Debug().Str("business_id", job.BusinessID).Int("products", len(ids)).Msg("sin canal externo configurado")
		return nil
	}
	return p.notifier.Notify(ctx, job.BusinessID, ids)
}
