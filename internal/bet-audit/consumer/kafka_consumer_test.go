package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// scriptedReader devolve as mensagens em ordem e cancela o contexto no fim
type scriptedReader struct {
	msgs      []segkafka.Message
	errs      []error
	cancel    context.CancelFunc
	i         int
	committed []segkafka.Message
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...segkafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (segkafka.Message, error) {
	if r.i >= len(r.msgs) {
		r.cancel()
		<-ctx.Done()
		return segkafka.Message{}, ctx.Err()
	}
	m, err := r.msgs[r.i], r.errs[r.i]
	r.i++
	return m, err
}

// memAudit falha as primeiras `fails` chamadas (fails < 0 = sempre)
type memAudit struct {
	seen  map[string]events.BetChanged
	err   error
	fails int
	calls int
}

func (s *memAudit) Insert(_ context.Context, e events.BetChanged) (bool, error) {
	s.calls++
	if s.fails != 0 {
		if s.fails > 0 {
			s.fails--
		}
		return false, s.err
	}
	if _, ok := s.seen[e.EventID]; ok {
		return false, nil
	}
	s.seen[e.EventID] = e
	return true, nil
}

type dlqWriter struct{ msgs []segkafka.Message }

func (w *dlqWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type counters struct {
	consumed, persisted, duplicates int
	errors                          map[string]int
}

func newProcessor(r MessageReader, s AuditStore, dlq *dlqWriter, c *counters) *Processor {
	c.errors = map[string]int{}
	return &Processor{
		Log:         zap.NewNop(),
		Reader:      r,
		Store:       s,
		DLQ:         dlq,
		RetryDelay:  time.Millisecond,
		OnConsumed:  func() { c.consumed++ },
		OnPersist:   func() { c.persisted++ },
		OnDuplicate: func() { c.duplicates++ },
		OnError:     func(phase string) { c.errors[phase]++ },
	}
}

func eventMsg(t *testing.T, e events.BetChanged) segkafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return segkafka.Message{Key: []byte("1"), Value: b}
}

func TestProcessorPersistsAndDeduplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ev := events.BetChanged{EventID: "e-1", Action: events.BetCreated, BetID: 1, Description: "MIL-spread", Ts: time.Now()}
	r := &scriptedReader{
		msgs:   []segkafka.Message{eventMsg(t, ev), eventMsg(t, ev), {Key: []byte("2"), Value: []byte("{garbage")}},
		errs:   []error{nil, nil, nil},
		cancel: cancel,
	}
	store := &memAudit{seen: map[string]events.BetChanged{}}
	dlq := &dlqWriter{}
	var c counters

	err := newProcessor(r, store, dlq, &c).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run err=%v", err)
	}
	if c.consumed != 3 || c.persisted != 1 || c.duplicates != 1 {
		t.Fatalf("counters=%+v", c)
	}
	if c.errors["decode"] != 1 {
		t.Fatalf("errors=%v", c.errors)
	}
	if len(dlq.msgs) != 1 || string(dlq.msgs[0].Key) != "2" {
		t.Fatalf("dlq=%v", dlq.msgs)
	}
	if got := store.seen["e-1"]; got.Description != "MIL-spread" {
		t.Fatalf("stored=%+v", got)
	}
	if len(r.committed) != 3 {
		t.Fatalf("committed=%d want 3", len(r.committed))
	}
}

func TestProcessorRejectsEventWithoutIDs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedReader{
		msgs:   []segkafka.Message{eventMsg(t, events.BetChanged{Action: events.BetDeleted})},
		errs:   []error{nil},
		cancel: cancel,
	}
	var c counters
	newProcessor(r, &memAudit{seen: map[string]events.BetChanged{}}, &dlqWriter{}, &c).Run(ctx)
	if c.errors["decode"] != 1 || c.persisted != 0 {
		t.Fatalf("counters=%+v", c)
	}
}

func TestProcessorKeepsGoingAfterReadFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ev := events.BetChanged{EventID: "e-2", Action: events.BetUpdated, BetID: 2, Ts: time.Now()}
	r := &scriptedReader{
		msgs:   []segkafka.Message{{}, eventMsg(t, ev)},
		errs:   []error{errors.New("broker unavailable"), nil},
		cancel: cancel,
	}
	var c counters
	newProcessor(r, &memAudit{seen: map[string]events.BetChanged{}}, &dlqWriter{}, &c).Run(ctx)

	if c.errors["read"] != 1 || c.consumed != 1 || c.persisted != 1 {
		t.Fatalf("counters=%+v", c)
	}
}

func TestProcessorRetriesInsertBeforeCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ev := events.BetChanged{EventID: "e-4", Action: events.BetReplaced, BetID: 4, Ts: time.Now()}
	r := &scriptedReader{
		msgs:   []segkafka.Message{eventMsg(t, ev)},
		errs:   []error{nil},
		cancel: cancel,
	}
	store := &memAudit{seen: map[string]events.BetChanged{}, err: errors.New("pg down"), fails: 1}
	var c counters
	newProcessor(r, store, &dlqWriter{}, &c).Run(ctx)

	if c.errors["db_insert"] != 1 || store.calls != 2 {
		t.Fatalf("errors=%v calls=%d", c.errors, store.calls)
	}
	if _, ok := store.seen["e-4"]; !ok || c.persisted != 1 {
		t.Fatalf("event not stored after retry: %+v", c)
	}
	if len(r.committed) != 1 {
		t.Fatalf("committed=%d want 1", len(r.committed))
	}
}

func TestProcessorStopsRetryingOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ev := events.BetChanged{EventID: "e-5", Action: events.BetDeleted, BetID: 5, Ts: time.Now()}
	r := &scriptedReader{
		msgs:   []segkafka.Message{eventMsg(t, ev)},
		errs:   []error{nil},
		cancel: cancel,
	}
	store := &memAudit{seen: map[string]events.BetChanged{}, err: errors.New("pg down"), fails: -1}
	var c counters
	p := newProcessor(r, store, &dlqWriter{}, &c)
	p.OnError = func(string) { cancel() }

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run err=%v", err)
	}
	if len(r.committed) != 0 {
		t.Fatalf("offset committed without insert: %v", r.committed)
	}
}
