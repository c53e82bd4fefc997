package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Settings configuración efectiva del motor de inventario para un negocio.
type Settings struct {
	Precision             int32
	CostCurrency          string
	ExternalChannelActive bool
	ReferenceStockAreaID  string
	ZeroCostFloor         bool
	Policy                inventory.StockPolicy
}

// CostOptions opciones de redondeo para el Cost Engine.
func (s Settings) CostOptions() inventory.CostOptions {
	return inventory.CostOptions{Precision: s.Precision, ZeroFloor: s.ZeroCostFloor}
}

// Defaults valores por defecto tomados de la configuración del proceso.
func Defaults(cfg config.InventoryConfig) Settings {
	return Settings{
		Precision:             cfg.Precision,
		CostCurrency:          strings.ToUpper(cfg.CostCurrency),
		ExternalChannelActive: cfg.ExternalChannelActive,
		ReferenceStockAreaID:  cfg.ReferenceStockAreaID,
		ZeroCostFloor:         cfg.ZeroCostFloor,
		Policy:                inventory.ParseStrictOperations(cfg.StrictOperations),
	}
}

// Resolver combina la configuración por negocio (repositorio clave/valor) con los valores por defecto.
type Resolver struct {
	repo     repository.SettingsRepository
	defaults Settings
}

// NewResolver construye el resolver. repo puede ser nil (solo valores por defecto).
func NewResolver(repo repository.SettingsRepository, defaults Settings) *Resolver {
	if defaults.Policy == nil {
		defaults.Policy = inventory.DefaultStockPolicy()
	}
	return &Resolver{repo: repo, defaults: defaults}
}

// Resolve devuelve la configuración efectiva del negocio.
func (r *Resolver) Resolve(ctx context.Context, businessID string) (Settings, error) {
	s := r.defaults
	if r.repo == nil || businessID == "" {
		return s, nil
	}
	if v, ok, err := r.repo.Get(ctx, businessID, repository.SettingPrecision); err != nil {
		return s, fmt.Errorf("leer %s: %w", repository.SettingPrecision, err)
	} else if ok {
		if n, perr := strconv.Atoi(strings.TrimSpace(v)); perr == nil && n >= 0 {
			s.Precision = int32(n)
		}
	}
	if v, ok, err := r.repo.Get(ctx, businessID, repository.SettingCostCurrency); err != nil {
		return s, fmt.Errorf("leer %s: %w", repository.SettingCostCurrency, err)
	} else if ok && strings.TrimSpace(v) != "" {
		s.CostCurrency = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok, err := r.repo.Get(ctx, businessID, repository.SettingExternalChannelActive); err != nil {
		return s, fmt.Errorf("leer %s: %w", repository.SettingExternalChannelActive, err)
	} else if ok {
		if b, perr := strconv.ParseBool(strings.TrimSpace(v)); perr == nil {
			s.ExternalChannelActive = b
		}
	}
	if v, ok, err := r.repo.Get(ctx, businessID, repository.SettingReferenceStockArea); err != nil {
		return s, fmt.Errorf("leer %s: %w", repository.SettingReferenceStockArea, err)
	} else if ok {
		s.ReferenceStockAreaID = strings.TrimSpace(v)
	}
	return s, nil
}
