package propagation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Code identifica el tipo de trabajo (tipo de tarea en la cola).
type Code string

// Códigos de trabajo.
const (
	CodeRecomputeCost       Code = "inventory:recompute-cost"
	CodePropagateCost       Code = "inventory:propagate-cost"
	CodeRecomputeRecipeCost Code = "inventory:recompute-recipe-cost"
	CodeRecheckAvailability Code = "inventory:recheck-availability"
	CodeRecheckSellability  Code = "inventory:recheck-sellability"
	CodeSyncExternalChannel Code = "inventory:sync-external-channel"
)

// Job trabajo de propagación. El conjunto de variantes es cerrado.
type Job interface {
	Code() Code
	isJob()
}

// RecomputeCost recalcula el costo de un producto a partir de sus entradas (combo, receta o insumos).
type RecomputeCost struct {
	ProductID string `json:"product_id"`
}

// PropagateCost encola el recálculo de todo lo que depende del costo de ProductID.
type PropagateCost struct {
	ProductID string `json:"product_id"`
}

// RecomputeRecipeCost recalcula el costo unitario de una receta.
type RecomputeRecipeCost struct {
	RecipeID string `json:"recipe_id"`
}

// RecheckAvailability recalcula la disponibilidad de los combos afectados por los productos dados.
type RecheckAvailability struct {
	ProductIDs []string `json:"product_ids"`
}

// RecheckSellability recalcula los indicadores de venta de los productos dados.
type RecheckSellability struct {
	ProductIDs []string `json:"product_ids"`
}

// SyncExternalChannel notifica a la tienda en línea los productos modificados.
type SyncExternalChannel struct {
	BusinessID string   `json:"business_id"`
	ProductIDs []string `json:"product_ids"`
}

func (RecomputeCost) Code() Code       { return CodeRecomputeCost }
func (PropagateCost) Code() Code       { return CodePropagateCost }
func (RecomputeRecipeCost) Code() Code { return CodeRecomputeRecipeCost }
func (RecheckAvailability) Code() Code { return CodeRecheckAvailability }
func (RecheckSellability) Code() Code  { return CodeRecheckSellability }
func (SyncExternalChannel) Code() Code { return CodeSyncExternalChannel }

func (RecomputeCost) isJob()       {}
func (PropagateCost) isJob()       {}
func (RecomputeRecipeCost) isJob() {}
func (RecheckAvailability) isJob() {}
func (RecheckSellability) isJob()  {}
func (SyncExternalChannel) isJob() {}

// Enqueuer puerto de encolado. Las implementaciones no bloquean a la espera del procesamiento.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobs ...Job) error
}

// Handler procesa un trabajo.
type Handler interface {
	Process(ctx context.Context, job Job) error
}

// Encode serializa los parámetros del trabajo.
func Encode(job Job) ([]byte, error) {
	return json.Marshal(job)
}

// Decode reconstruye el trabajo a partir de su código y sus parámetros.
func Decode(code Code, payload []byte) (Job, error) {
	var (
		job Job
		err error
	)
	switch code {
	case CodeRecomputeCost:
		var j RecomputeCost
		err = json.Unmarshal(payload, &j)
		job = j
	case CodePropagateCost:
		var j PropagateCost
		err = json.Unmarshal(payload, &j)
		job = j
	case CodeRecomputeRecipeCost:
		var j RecomputeRecipeCost
		err = json.Unmarshal(payload, &j)
		job = j
	case CodeRecheckAvailability:
		var j RecheckAvailability
		err = json.Unmarshal(payload, &j)
		job = j
	case CodeRecheckSellability:
		var j RecheckSellability
		err = json.Unmarshal(payload, &j)
		job = j
	case CodeSyncExternalChannel:
		var j SyncExternalChannel
		err = json.Unmarshal(payload, &j)
		job = j
	default:
		return nil, fmt.Errorf("%w: trabajo desconocido %q", domain.ErrInvalidInput, code)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parámetros de %s: %v", domain.ErrInvalidInput, code, err)
	}
	return job, nil
}

// uniqueIDs devuelve los ids sin repetidos ni vacíos, ordenados.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
