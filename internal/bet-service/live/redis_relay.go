package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// Channel é o canal Redis Pub/Sub por onde as instâncias trocam eventos
const Channel = "bet_changes_broadcast"

// RedisRelay publica o evento no Redis; cada instância escuta o canal com
// StartRedisSubscriber e entrega aos seus próprios clientes websocket
type RedisRelay struct {
	r redis.UniversalClient
}

func NewRedisRelay(r redis.UniversalClient) *RedisRelay { return &RedisRelay{r: r} }

func (p *RedisRelay) Publish(ctx context.Context, e events.BetChanged) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := p.r.Publish(ctx, Channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", Channel, err)
	}
	return nil
}

// StartRedisSubscriber escuta o canal e repassa ao hub até o contexto acabar
func StartRedisSubscriber(ctx context.Context, r redis.UniversalClient, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, Channel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e events.BetChanged
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					log.Warn("ws relay unmarshal", zap.Error(err))
					continue
				}
				hub.Broadcast(e)
			}
		}
	}()
}
