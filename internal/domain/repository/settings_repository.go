package repository

import "context"

// Claves de configuración por negocio.
const (
	SettingPrecision             = "precission_after_coma"
	SettingCostCurrency          = "cost_currency"
	SettingExternalChannelActive = "external_channel_active"
	SettingReferenceStockArea    = "reference_stock_area"
)

// SettingsRepository lectura clave/valor de la configuración del negocio (solo lectura).
type SettingsRepository interface {
	Get(ctx context.Context, businessID, key string) (value string, ok bool, err error)
}
