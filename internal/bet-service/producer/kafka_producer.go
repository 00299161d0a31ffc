package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
	"github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// NewBetChanged monta o evento de uma mutação. Em deleted, bet é nil.
func NewBetChanged(action events.BetAction, id int64, bet *domain.Bet, now time.Time) (events.BetChanged, error) {
	e := events.BetChanged{
		EventID: uuid.NewString(),
		Action:  action,
		BetID:   id,
		Ts:      now,
	}
	if bet != nil {
		raw, err := json.Marshal(bet)
		if err != nil {
			return e, fmt.Errorf("marshal bet %d: %w", id, err)
		}
		e.Bet = raw
		e.Description = bet.Description
	}
	return e, nil
}

// KafkaPublisher publica eventos de mudança de aposta. A chave é o id da
// aposta, então todos os eventos de uma aposta caem na mesma partição.
type KafkaPublisher struct {
	Writer kafka.MessageWriter
}

func NewKafkaPublisher(w kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e events.BetChanged) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return kafka.WriteJSON(ctx, p.Writer, strconv.FormatInt(e.BetID, 10), b)
}

// Publisher é qualquer destino de eventos bet_changed
type Publisher interface {
	Publish(ctx context.Context, e events.BetChanged) error
}

// Fanout entrega o mesmo evento a todos os destinos; um destino com erro
// não impede os demais
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e events.BetChanged) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
