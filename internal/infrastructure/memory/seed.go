package memory

import (
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Carga de datos maestros (productos, áreas, grafos). Los registra el seed del modo memoria y los tests.

// PutProduct inserta o reemplaza un producto.
func (s *Store) PutProduct(p *entity.Product) {
	_ = s.shared().write(func(st *state) error {
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

// PutArea inserta o reemplaza un área.
func (s *Store) PutArea(a *entity.Area) {
	_ = s.shared().write(func(st *state) error {
		c := *a
		st.areas[a.ID] = &c
		return nil
	})
}

// PutBalance inserta un balance inicial (sin movimiento en el libro).
func (s *Store) PutBalance(row *entity.StockAreaProduct) {
	_ = s.shared().write(func(st *state) error {
		st.balances[row.ID] = row.Clone()
		st.balanceByKey[row.Key()] = row.ID
		return nil
	})
}

// AddSupply registra que base consume quantity de supply.
func (s *Store) AddSupply(sp entity.Supply) {
	_ = s.shared().write(func(st *state) error {
		st.supplies = append(st.supplies, sp)
		return nil
	})
}

// AddFixedCost registra un costo fijo de elaboración.
func (s *Store) AddFixedCost(f entity.FixedCost) {
	_ = s.shared().write(func(st *state) error {
		st.fixedCosts = append(st.fixedCosts, f)
		return nil
	})
}

// AddComposition registra un componente de combo.
func (s *Store) AddComposition(it entity.ComposedItem) {
	_ = s.shared().write(func(st *state) error {
		st.composition = append(st.composition, it)
		return nil
	})
}

// PutRecipe inserta o reemplaza una receta.
func (s *Store) PutRecipe(r *entity.Recipe) {
	_ = s.shared().write(func(st *state) error {
		c := *r
		c.Raws = append([]entity.RecipeRaw(nil), r.Raws...)
		st.recipes[r.ID] = &c
		return nil
	})
}

// PutManufacturingState registra la planificación de un producto en una orden.
func (s *Store) PutManufacturingState(m *entity.ManufacturingState) {
	_ = s.shared().write(func(st *state) error {
		c := *m
		st.orders[orderKey{m.ProductionOrderID, m.ProductID}] = &c
		return nil
	})
}

// SetSetting fija una clave de configuración del negocio.
func (s *Store) SetSetting(businessID, key, value string) {
	_ = s.shared().write(func(st *state) error {
		if st.settings[businessID] == nil {
			st.settings[businessID] = map[string]string{}
		}
		st.settings[businessID][key] = value
		return nil
	})
}
