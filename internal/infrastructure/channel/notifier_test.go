package channel_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/channel"
)

func TestRedisNotifier_PublicaProductos(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(ctx, "sync")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := channel.NewRedisNotifier(client, "sync")
	require.NoError(t, n.Notify(ctx, "biz", []string{"p1", "p2"}))

	select {
	case msg := <-sub.Channel():
		var got channel.Message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "biz", got.BusinessID)
		assert.Equal(t, []string{"p1", "p2"}, got.ProductIDs)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó la notificación")
	}
}

func TestRedisNotifier_SinProductosNoPublica(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, channel.DefaultTopic)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := channel.NewRedisNotifier(client, "")
	require.NoError(t, n.Notify(ctx, "biz", nil))

	select {
	case msg := <-sub.Channel():
		t.Fatalf("publicación inesperada: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}
