package repo

import (
	"strings"
	"testing"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

func TestBuildListQueryNoFilters(t *testing.T) {
	q, args := buildListQuery(domain.Filter{}, 0, 100)
	if strings.Contains(q, "WHERE") {
		t.Fatalf("unexpected WHERE: %s", q)
	}
	if !strings.Contains(q, "ORDER BY bet_placed_date DESC, id DESC OFFSET $1 LIMIT $2") {
		t.Fatalf("query=%s", q)
	}
	if len(args) != 2 || args[0] != 0 || args[1] != 100 {
		t.Fatalf("args=%v", args)
	}
}

func TestBuildListQueryAllFilters(t *testing.T) {
	f := domain.Filter{
		BetType:    domain.BetTypePlayerProp,
		Team:       "lal",
		PlayerName: "le_bron%",
		PropType:   domain.PropPoints,
		Result:     domain.ResultWin,
	}
	q, args := buildListQuery(f, 20, 10)

	for _, frag := range []string{
		"bet_type = $1",
		"team ILIKE $2",
		"player_name ILIKE $3",
		"prop_type = $4",
		"result = $5",
		"OFFSET $6 LIMIT $7",
	} {
		if !strings.Contains(q, frag) {
			t.Fatalf("missing %q in %s", frag, q)
		}
	}
	if got := strings.Count(q, " AND "); got != 4 {
		t.Fatalf("AND count=%d want 4", got)
	}
	if args[1] != "%lal%" {
		t.Fatalf("team arg=%v", args[1])
	}
	if args[2] != `%le\_bron\%%` {
		t.Fatalf("player arg=%v", args[2])
	}
	if args[5] != 20 || args[6] != 10 {
		t.Fatalf("paging args=%v", args[5:])
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"LAL":     "LAL",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Fatalf("escapeLike(%q)=%q want %q", in, got, want)
		}
	}
}
