// Package memory implementa los repositorios y el TxRunner sobre estructuras en memoria.
// Cada transacción trabaja sobre una copia del estado que reemplaza al original en el commit;
// las escrituras (transaccionales o no) se serializan con un único mutex.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type orderKey struct {
	orderID   string
	productID string
}

type state struct {
	products     map[string]*entity.Product
	areas        map[string]*entity.Area
	movements    map[string]*entity.StockMovement
	movementSeq  []string
	balances     map[string]*entity.StockAreaProduct
	balanceByKey map[entity.BalanceKey]string
	supplies     []entity.Supply
	fixedCosts   []entity.FixedCost
	composition  []entity.ComposedItem
	recipes      map[string]*entity.Recipe
	orders       map[orderKey]*entity.ManufacturingState
	settings     map[string]map[string]string
}

func newState() *state {
	return &state{
		products:     map[string]*entity.Product{},
		areas:        map[string]*entity.Area{},
		movements:    map[string]*entity.StockMovement{},
		balances:     map[string]*entity.StockAreaProduct{},
		balanceByKey: map[entity.BalanceKey]string{},
		recipes:      map[string]*entity.Recipe{},
		orders:       map[orderKey]*entity.ManufacturingState{},
		settings:     map[string]map[string]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.areas {
		a := *v
		c.areas[k] = &a
	}
	for k, v := range s.movements {
		m := *v
		c.movements[k] = &m
	}
	c.movementSeq = append([]string(nil), s.movementSeq...)
	for k, v := range s.balances {
		c.balances[k] = v.Clone()
	}
	for k, v := range s.balanceByKey {
		c.balanceByKey[k] = v
	}
	c.supplies = append([]entity.Supply(nil), s.supplies...)
	c.fixedCosts = append([]entity.FixedCost(nil), s.fixedCosts...)
	c.composition = append([]entity.ComposedItem(nil), s.composition...)
	for k, v := range s.recipes {
		r := *v
		r.Raws = append([]entity.RecipeRaw(nil), v.Raws...)
		c.recipes[k] = &r
	}
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for b, kv := range s.settings {
		m := make(map[string]string, len(kv))
		for k, v := range kv {
			m[k] = v
		}
		c.settings[b] = m
	}
	return c
}

// Store almacenamiento en memoria.
type Store struct {
	writeMu sync.Mutex   // serializa transacciones y escrituras sueltas
	dataMu  sync.RWMutex // protege el puntero data
	data    *state

	locksMu   sync.Mutex
	lastLocks []string
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// scope vista de un repositorio: sobre la copia de una transacción o sobre el estado compartido.
type scope struct {
	st    *Store
	tx    *state
	locks *[]string
}

func (sc scope) read(fn func(*state)) {
	if sc.tx != nil {
		fn(sc.tx)
		return
	}
	sc.st.dataMu.RLock()
	defer sc.st.dataMu.RUnlock()
	fn(sc.st.data)
}

func (sc scope) write(fn func(*state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.st.writeMu.Lock()
	defer sc.st.writeMu.Unlock()
	sc.st.dataMu.Lock()
	defer sc.st.dataMu.Unlock()
	return fn(sc.st.data)
}

func (sc scope) lock(name string) {
	if sc.locks != nil {
		*sc.locks = append(*sc.locks, name)
	}
}

// Run ejecuta fn sobre una copia del estado. Si fn devuelve nil la copia reemplaza al estado.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.dataMu.RLock()
	tx := s.data.clone()
	s.dataMu.RUnlock()

	var locks []string
	sc := scope{st: s, tx: tx, locks: &locks}
	err := fn(ctx, inventory.TxRepos{
		Movements:        movementRepo{sc},
		Balances:         balanceRepo{sc},
		Products:         productRepo{sc},
		ProductionOrders: orderRepo{sc},
	})

	s.locksMu.Lock()
	s.lastLocks = locks
	s.locksMu.Unlock()

	if err != nil {
		return err
	}
	s.dataMu.Lock()
	s.data = tx
	s.dataMu.Unlock()
	return nil
}

// LastLocks orden en que la última transacción tomó sus bloqueos ("product:<id>", "balance:<id>", ...).
func (s *Store) LastLocks() []string {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return append([]string(nil), s.lastLocks...)
}

func (s *Store) shared() scope { return scope{st: s} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return productRepo{s.shared()} }

// Areas repositorio de áreas.
func (s *Store) Areas() repository.AreaRepository { return areaRepo{s.shared()} }

// Movements repositorio del libro de movimientos fuera de transacción.
func (s *Store) Movements() repository.StockMovementRepository { return movementRepo{s.shared()} }

// Balances repositorio de balances fuera de transacción.
func (s *Store) Balances() repository.StockAreaProductRepository { return balanceRepo{s.shared()} }

// Dependencies grafos de insumos, combos y recetas.
func (s *Store) Dependencies() repository.DependencyRepository { return dependencyRepo{s.shared()} }

// ProductionOrders estado de órdenes de producción fuera de transacción.
func (s *Store) ProductionOrders() repository.ProductionOrderRepository { return orderRepo{s.shared()} }

// Settings configuración clave/valor por negocio.
func (s *Store) Settings() repository.SettingsRepository { return settingsRepo{s.shared()} }
