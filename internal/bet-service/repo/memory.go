package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

// Memory guarda as apostas em um map protegido por mutex.
// Usado com STORE_DRIVER=memory (dev local) e nos testes de handler.
type Memory struct {
	mu   sync.Mutex
	seq  int64
	bets map[int64]domain.Bet
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		bets: map[int64]domain.Bet{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock troca o relógio (testes)
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Create(_ context.Context, b domain.Bet) (domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	domain.ResolveDescription(&b)
	m.seq++
	b.ID = m.seq
	b.CreatedAt = m.now()
	b.UpdatedAt = nil
	m.bets[b.ID] = b
	return b, nil
}

func (m *Memory) Get(_ context.Context, id int64) (domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bets[id]
	if !ok {
		return domain.Bet{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) List(_ context.Context, f domain.Filter, offset, limit int) ([]domain.Bet, error) {
	m.mu.Lock()
	matched := make([]domain.Bet, 0, len(m.bets))
	for _, b := range m.bets {
		if f.Match(b) {
			matched = append(matched, b)
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.BetPlacedDate.Equal(b.BetPlacedDate) {
			return a.BetPlacedDate.After(b.BetPlacedDate)
		}
		return a.ID > b.ID
	})

	if offset >= len(matched) {
		return []domain.Bet{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// Update lê, aplica e grava sob o mesmo lock
func (m *Memory) Update(_ context.Context, id int64, patch domain.BetPatch) (domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.bets[id]
	if !ok {
		return domain.Bet{}, ErrNotFound
	}
	next, err := domain.ApplyPatch(cur, patch, m.now())
	if err != nil {
		return domain.Bet{}, err
	}
	m.bets[id] = next
	return next, nil
}

func (m *Memory) Replace(_ context.Context, id int64, b domain.Bet) (domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.bets[id]
	if !ok {
		return domain.Bet{}, ErrNotFound
	}
	domain.ResolveDescription(&b)
	b.ID = id
	b.CreatedAt = cur.CreatedAt
	ts := m.now()
	b.UpdatedAt = &ts
	m.bets[id] = b
	return b, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bets[id]; !ok {
		return ErrNotFound
	}
	delete(m.bets, id)
	return nil
}

func (m *Memory) Clear(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.bets))
	m.bets = map[int64]domain.Bet{}
	return n, nil
}

func (m *Memory) Summary(context.Context) (domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var player, other domain.Tally
	for _, b := range m.bets {
		if b.BetType == domain.BetTypePlayerProp {
			player.Add(b.Result)
		} else {
			other.Add(b.Result)
		}
	}
	return domain.NewSummary(player, other), nil
}
