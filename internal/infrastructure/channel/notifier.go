package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
)

// DefaultTopic canal pub/sub que escucha la integración con la tienda en línea.
const DefaultTopic = "inventory:channel-sync"

var _ propagation.ChannelNotifier = (*RedisNotifier)(nil)

// Message cuerpo publicado por cada sincronización.
type Message struct {
	ProductIDs []string `json:"productIds"`
	BusinessID string   `json:"businessId"`
}

// RedisNotifier publica los productos modificados en un canal de Redis.
type RedisNotifier struct {
	client redis.UniversalClient
	topic  string
}

// NewRedisNotifier construye el notificador.
func NewRedisNotifier(client redis.UniversalClient, topic string) *RedisNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &RedisNotifier{client: client, topic: topic}
}

// Notify publica {productIds, businessId}. Sin productos no publica nada.
func (n *RedisNotifier) Notify(ctx context.Context, businessID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	body, err := json.Marshal(Message{ProductIDs: productIDs, BusinessID: businessID})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.topic, body).Err(); err != nil {
		return fmt.Errorf("publicar sincronización: %w", err)
	}
	return nil
}
