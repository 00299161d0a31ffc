package seed

import (
	"context"
	"testing"
	"time"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
	"github.com/radieske/bet-tracker/internal/bet-service/repo"
)

func TestRunDerivesSampleDescriptions(t *testing.T) {
	ctx := context.Background()
	st := repo.NewMemory()
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)

	created, err := Run(ctx, st, now, true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"LeBron James-points",
		"LeBron James-assists",
		"Stephen Curry-threes",
		"Jayson Tatum-rebounds",
		"Giannis Antetokounmpo-points",
		"BOS-points",
		"LAL-rebounds",
		"Draymond Green-steals",
		"MIL-threes",
		"MIL-spread",
	}
	if len(created) != len(want) {
		t.Fatalf("created=%d want %d", len(created), len(want))
	}
	for i, b := range created {
		if b.Description != want[i] {
			t.Fatalf("bet %d description=%q want %q", i, b.Description, want[i])
		}
	}
	if got := created[0].BetPlacedDate; !got.Equal(now.AddDate(0, 0, -10)) {
		t.Fatalf("placed=%v", got)
	}
}

func TestRunClearReplacesData(t *testing.T) {
	ctx := context.Background()
	st := repo.NewMemory()
	now := time.Now().UTC()

	if _, err := Run(ctx, st, now, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := Run(ctx, st, now, true); err != nil {
		t.Fatalf("second run: %v", err)
	}
	all, _ := st.List(ctx, domain.Filter{}, 0, 1000)
	if len(all) != len(samples) {
		t.Fatalf("bets=%d want %d", len(all), len(samples))
	}
}

func TestReport(t *testing.T) {
	r := NewReport(Bets(time.Now()))
	if r.ByResult[domain.ResultWin] != 6 || r.ByResult[domain.ResultPending] != 1 {
		t.Fatalf("by result=%v", r.ByResult)
	}
	if r.ByType[domain.BetTypePlayerProp] != 6 || r.ByType[domain.BetTypeTeamProp] != 3 || r.ByType[domain.BetTypeSpread] != 1 {
		t.Fatalf("by type=%v", r.ByType)
	}
	if r.TotalWagered.StringFixed(2) != "550.00" {
		t.Fatalf("wagered=%s", r.TotalWagered)
	}
	if r.TotalPayout.StringFixed(2) != "784.81" {
		t.Fatalf("payout=%s", r.TotalPayout)
	}
	if r.Net().StringFixed(2) != "234.81" {
		t.Fatalf("net=%s", r.Net())
	}
	if lines := r.Lines(); lines[len(lines)-1] != "net: 234.81" {
		t.Fatalf("lines=%v", lines)
	}
}
