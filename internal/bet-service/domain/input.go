package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FlexTime aceita RFC3339 e também o formato sem fuso ("2025-10-07T18:00:00"),
// que é o que os clientes antigos enviam. Sem fuso = UTC.
type FlexTime struct{ time.Time }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string")
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Optional marca se o campo veio no payload (Set) e com qual valor;
// Value == nil com Set == true significa null explícito
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some monta um Optional preenchido (útil em testes e no seed)
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null monta um Optional com null explícito
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

// BetInput é o payload de POST /bets e PUT /bets/{id}
type BetInput struct {
	BetType       BetType   `json:"bet_type" validate:"required,oneof=player_prop team_prop spread moneyline"`
	BetPlacedDate *FlexTime `json:"bet_placed_date"`
	GameDate      *FlexTime `json:"game_date" validate:"required"`
	Team          string    `json:"team" validate:"required"`
	Opponent      string    `json:"opponent" validate:"required"`

	PlayerName  *string          `json:"player_name"`
	PropType    *PropType        `json:"prop_type" validate:"omitempty,oneof=points rebounds assists steals blocks turnovers threes pra pr pa ra field_goals_made free_throws_made double_double triple_double"`
	PropLine    *decimal.Decimal `json:"prop_line"`
	OverUnder   *OverUnder       `json:"over_under" validate:"omitempty,oneof=over under"`
	Description *string          `json:"description"`

	WagerAmount *decimal.Decimal `json:"wager_amount" validate:"required"`
	Odds        int              `json:"odds" validate:"required"`
	Result      BetResult        `json:"result" validate:"omitempty,oneof=win loss push pending cancelled"`
	ActualValue *decimal.Decimal `json:"actual_value"`
	Payout      *decimal.Decimal `json:"payout"`
	Notes       *string          `json:"notes"`
}

// ToBet monta o registro candidato: aplica defaults, normaliza opcionais
// vazios e resolve a descrição (explícita vence, senão deriva)
func (in BetInput) ToBet(now time.Time) Bet {
	b := Bet{
		BetType:     in.BetType,
		Team:        in.Team,
		Opponent:    in.Opponent,
		PlayerName:  nonEmpty(in.PlayerName),
		PropType:    in.PropType,
		PropLine:    roundPtr(in.PropLine, 1),
		OverUnder:   in.OverUnder,
		Description: str(in.Description),
		Odds:        in.Odds,
		Result:      in.Result,
		ActualValue: roundPtr(in.ActualValue, 1),
		Payout:      roundPtr(in.Payout, 2),
		Notes:       in.Notes,
		CreatedAt:   now,
	}
	if in.WagerAmount != nil {
		b.WagerAmount = in.WagerAmount.Round(2)
	}
	if in.GameDate != nil {
		b.GameDate = in.GameDate.Time
	}
	b.BetPlacedDate = now
	if in.BetPlacedDate != nil {
		b.BetPlacedDate = in.BetPlacedDate.Time
	}
	if b.Result == "" {
		b.Result = ResultPending
	}
	ResolveDescription(&b)
	return b
}

// BetPatch é o payload de PATCH /bets/{id}; só os campos presentes são aplicados
type BetPatch struct {
	BetType       Optional[BetType]         `json:"bet_type"`
	BetPlacedDate Optional[FlexTime]        `json:"bet_placed_date"`
	GameDate      Optional[FlexTime]        `json:"game_date"`
	Team          Optional[string]          `json:"team"`
	Opponent      Optional[string]          `json:"opponent"`
	PlayerName    Optional[string]          `json:"player_name"`
	PropType      Optional[PropType]        `json:"prop_type"`
	PropLine      Optional[decimal.Decimal] `json:"prop_line"`
	OverUnder     Optional[OverUnder]       `json:"over_under"`
	Description   Optional[string]          `json:"description"`
	WagerAmount   Optional[decimal.Decimal] `json:"wager_amount"`
	Odds          Optional[int]             `json:"odds"`
	Result        Optional[BetResult]       `json:"result"`
	ActualValue   Optional[decimal.Decimal] `json:"actual_value"`
	Payout        Optional[decimal.Decimal] `json:"payout"`
	Notes         Optional[string]          `json:"notes"`
}

// ApplyPatch aplica o patch sobre o registro atual e reconcilia a descrição:
//   - descrição explícita não vazia no patch vence, sem recálculo;
//   - senão, se algum campo que afeta a descrição veio no patch, recalcula
//     usando o valor novo quando presente e o atual caso contrário;
//   - senão, a descrição fica como está.
//
// updated_at recebe now sempre.
func ApplyPatch(cur Bet, p BetPatch, now time.Time) (Bet, error) {
	if err := p.Validate(); err != nil {
		return Bet{}, err
	}

	next := cur
	if p.BetType.Set {
		next.BetType = *p.BetType.Value
	}
	if p.BetPlacedDate.Set {
		next.BetPlacedDate = p.BetPlacedDate.Value.Time
	}
	if p.GameDate.Set {
		next.GameDate = p.GameDate.Value.Time
	}
	if p.Team.Set {
		next.Team = *p.Team.Value
	}
	if p.Opponent.Set {
		next.Opponent = *p.Opponent.Value
	}
	if p.PlayerName.Set {
		next.PlayerName = nonEmpty(p.PlayerName.Value)
	}
	if p.PropType.Set {
		next.PropType = p.PropType.Value
	}
	if p.PropLine.Set {
		next.PropLine = roundPtr(p.PropLine.Value, 1)
	}
	if p.OverUnder.Set {
		next.OverUnder = p.OverUnder.Value
	}
	if p.WagerAmount.Set {
		next.WagerAmount = p.WagerAmount.Value.Round(2)
	}
	if p.Odds.Set {
		next.Odds = *p.Odds.Value
	}
	if p.Result.Set {
		next.Result = *p.Result.Value
	}
	if p.ActualValue.Set {
		next.ActualValue = roundPtr(p.ActualValue.Value, 1)
	}
	if p.Payout.Set {
		next.Payout = roundPtr(p.Payout.Value, 2)
	}
	if p.Notes.Set {
		next.Notes = p.Notes.Value
	}

	if d, ok := p.explicitDescription(); ok {
		next.Description = d
	} else if p.touchesDescription() {
		next.Description = next.DeriveDescription()
	}

	if err := checkRecord(next); err != nil {
		return Bet{}, err
	}

	ts := now
	next.UpdatedAt = &ts
	return next, nil
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

func roundPtr(d *decimal.Decimal, places int32) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(places)
	return &r
}
