// Package seed monta o conjunto de apostas de exemplo usado em dev e demo.
package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

// Store é o que o seed precisa do repositório
type Store interface {
	Create(ctx context.Context, b domain.Bet) (domain.Bet, error)
	Clear(ctx context.Context) (int64, error)
}

type sample struct {
	betType   domain.BetType
	placedDay int
	gameDay   int
	team      string
	opponent  string
	player    string
	prop      domain.PropType
	line      string
	overUnder domain.OverUnder
	wager     string
	odds      int
	result    domain.BetResult
	actual    string
	payout    string
	notes     string
}

var samples = []sample{
	{domain.BetTypePlayerProp, 0, 0, "LAL", "GSW", "LeBron James", domain.PropPoints, "25.5", domain.Over, "50.00", -110, domain.ResultWin, "28.0", "95.45", "Strong performance against Warriors"},
	{domain.BetTypePlayerProp, 1, 1, "LAL", "PHX", "LeBron James", domain.PropAssists, "7.5", domain.Under, "25.00", 105, domain.ResultLoss, "9.0", "0.00", "Had 9 assists, bet lost"},
	{domain.BetTypePlayerProp, 2, 2, "GSW", "LAC", "Stephen Curry", domain.PropThreePointers, "4.5", domain.Over, "75.00", 120, domain.ResultWin, "6.0", "165.00", "Hot shooting night - 6 threes"},
	{domain.BetTypePlayerProp, 3, 3, "BOS", "MIA", "Jayson Tatum", domain.PropRebounds, "8.5", domain.Under, "40.00", -105, domain.ResultPush, "8.0", "40.00", "Exactly 8 rebounds - push"},
	{domain.BetTypePlayerProp, 3, 4, "MIL", "CHI", "Giannis Antetokounmpo", domain.PropPoints, "30.5", domain.Over, "60.00", 110, domain.ResultWin, "35.0", "126.00", "Dominant performance with 35 points"},
	{domain.BetTypeTeamProp, 0, 0, "BOS", "MIA", "", domain.PropPoints, "112.5", domain.Over, "50.00", -110, domain.ResultWin, "118.0", "95.45", "Celtics team points over 112.5 - scored 118"},
	{domain.BetTypeTeamProp, 1, 1, "LAL", "GSW", "", domain.PropRebounds, "45.5", domain.Under, "75.00", 105, domain.ResultLoss, "48.0", "0.00", "Lakers team rebounds - had 48, over the line"},
	{domain.BetTypePlayerProp, 4, 4, "GSW", "DEN", "Draymond Green", domain.PropSteals, "1.5", domain.Over, "30.00", 140, domain.ResultWin, "3.0", "72.00", "Great defensive game - 3 steals"},
	{domain.BetTypeTeamProp, 5, 5, "MIL", "BKN", "", domain.PropThreePointers, "12.5", domain.Over, "45.00", -120, domain.ResultPending, "", "", "Milwaukee team 3-pointers made"},
	{domain.BetTypeSpread, 3, 3, "MIL", "CHI", "", "", "5.5", "", "100.00", -110, domain.ResultWin, "8.0", "190.91", "Bucks won by 8 - covered the spread"},
}

// Bets devolve as apostas de exemplo relativas a now: apostas feitas há
// 10 dias, jogos há 7. A descrição fica vazia para ser derivada.
func Bets(now time.Time) []domain.Bet {
	placedBase := now.AddDate(0, 0, -10)
	gameBase := now.AddDate(0, 0, -7)

	out := make([]domain.Bet, 0, len(samples))
	for _, s := range samples {
		b := domain.Bet{
			BetType:       s.betType,
			BetPlacedDate: placedBase.AddDate(0, 0, s.placedDay),
			GameDate:      gameBase.AddDate(0, 0, s.gameDay),
			Team:          s.team,
			Opponent:      s.opponent,
			WagerAmount:   decimal.RequireFromString(s.wager),
			Odds:          s.odds,
			Result:        s.result,
			PropLine:      dec(s.line),
			ActualValue:   dec(s.actual),
			Payout:        dec(s.payout),
		}
		if s.player != "" {
			b.PlayerName = ptr(s.player)
		}
		if s.prop != "" {
			b.PropType = ptr(s.prop)
		}
		if s.overUnder != "" {
			b.OverUnder = ptr(s.overUnder)
		}
		if s.notes != "" {
			b.Notes = ptr(s.notes)
		}
		out = append(out, b)
	}
	return out
}

// Run opcionalmente limpa a base e grava as apostas de exemplo
func Run(ctx context.Context, st Store, now time.Time, clear bool) ([]domain.Bet, error) {
	if clear {
		if _, err := st.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear bets: %w", err)
		}
	}
	var created []domain.Bet
	for _, b := range Bets(now) {
		saved, err := st.Create(ctx, b)
		if err != nil {
			return created, fmt.Errorf("create %s bet for %s: %w", b.BetType, b.Team, err)
		}
		created = append(created, saved)
	}
	return created, nil
}

// Report resume o que foi gravado
type Report struct {
	ByResult     map[domain.BetResult]int
	ByType       map[domain.BetType]int
	TotalWagered decimal.Decimal
	TotalPayout  decimal.Decimal
}

func NewReport(bets []domain.Bet) Report {
	r := Report{ByResult: map[domain.BetResult]int{}, ByType: map[domain.BetType]int{}}
	for _, b := range bets {
		r.ByResult[b.Result]++
		r.ByType[b.BetType]++
		r.TotalWagered = r.TotalWagered.Add(b.WagerAmount)
		if b.Payout != nil {
			r.TotalPayout = r.TotalPayout.Add(*b.Payout)
		}
	}
	return r
}

// Net é payout - wager (positivo = lucro)
func (r Report) Net() decimal.Decimal { return r.TotalPayout.Sub(r.TotalWagered) }

// Lines formata o relatório em linhas estáveis (ordem alfabética)
func (r Report) Lines() []string {
	var lines []string
	for _, k := range sortedKeys(r.ByResult) {
		lines = append(lines, fmt.Sprintf("result %s: %d", k, r.ByResult[k]))
	}
	for _, k := range sortedKeys(r.ByType) {
		lines = append(lines, fmt.Sprintf("type %s: %d", k, r.ByType[k]))
	}
	lines = append(lines,
		"total wagered: "+r.TotalWagered.StringFixed(2),
		"total payout: "+r.TotalPayout.StringFixed(2),
		"net: "+r.Net().StringFixed(2),
	)
	return lines
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func dec(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	return ptr(decimal.RequireFromString(s))
}

func ptr[T any](v T) *T { return &v }
