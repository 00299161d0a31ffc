package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// MessageReader é o que o Processor usa do *kafka.Reader. O offset só é
// commitado depois que a mensagem foi gravada ou mandada para a DLQ.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// AuditStore persiste o evento; false = já gravado antes
type AuditStore interface {
	Insert(ctx context.Context, e events.BetChanged) (bool, error)
}

var errInvalidEvent = errors.New("event without event_id or bet_id")

// Processor consome bet_changes e grava cada evento no log de auditoria.
// Mensagens que não decodificam vão para a DLQ (se configurada) e o loop segue.
// Falha no insert é repetida até gravar ou o contexto ser cancelado.
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Store  AuditStore
	DLQ    kafka.MessageWriter // opcional

	RetryDelay time.Duration

	OnConsumed  func()       // métricas (counter++)
	OnPersist   func()       // métricas
	OnDuplicate func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop de consumo; retorna quando o contexto é cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			p.sleep(ctx)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		ev, err := decode(m.Value)
		if err != nil {
			p.Log.Warn("invalid message", zap.ByteString("key", m.Key), zap.Error(err))
			p.fail("decode")
			p.deadLetter(ctx, m)
			p.commit(ctx, m)
			continue
		}

		inserted, err := p.persist(ctx, ev)
		if err != nil {
			return err
		}
		if inserted {
			if p.OnPersist != nil {
				p.OnPersist()
			}
		} else {
			p.Log.Debug("duplicate event", zap.String("event_id", ev.EventID))
			if p.OnDuplicate != nil {
				p.OnDuplicate()
			}
		}
		p.commit(ctx, m)
	}
}

// persist tenta o insert até conseguir; só retorna erro com o contexto cancelado
func (p *Processor) persist(ctx context.Context, ev events.BetChanged) (bool, error) {
	for {
		inserted, err := p.Store.Insert(ctx, ev)
		if err == nil {
			return inserted, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		p.Log.Warn("audit insert failed, retrying", zap.String("event_id", ev.EventID), zap.Error(err))
		p.fail("db_insert")
		p.sleep(ctx)
	}
}

func (p *Processor) commit(ctx context.Context, m kafka.Message) {
	if err := p.Reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		p.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("commit")
	}
}

func decode(b []byte) (events.BetChanged, error) {
	var ev events.BetChanged
	if err := json.Unmarshal(b, &ev); err != nil {
		return ev, err
	}
	if ev.EventID == "" || ev.BetID == 0 {
		return ev, errInvalidEvent
	}
	return ev, nil
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := kafka.WriteJSON(ctx, p.DLQ, string(m.Key), m.Value); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(phase string) {
	if p.OnError != nil {
		p.OnError(phase)
	}
}

func (p *Processor) sleep(ctx context.Context) {
	d := p.RetryDelay
	if d == 0 {
		d = 500 * time.Millisecond
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
