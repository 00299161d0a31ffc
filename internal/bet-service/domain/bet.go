package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetType é o tipo da aposta; define quais campos opcionais fazem sentido
type BetType string

const (
	BetTypePlayerProp BetType = "player_prop"
	BetTypeTeamProp   BetType = "team_prop"
	BetTypeSpread     BetType = "spread"
	BetTypeMoneyline  BetType = "moneyline"
)

func (t BetType) Valid() bool {
	switch t {
	case BetTypePlayerProp, BetTypeTeamProp, BetTypeSpread, BetTypeMoneyline:
		return true
	}
	return false
}

// IsProp indica se o tipo usa linha (prop_line) e over/under
func (t BetType) IsProp() bool {
	return t == BetTypePlayerProp || t == BetTypeTeamProp
}

// PropType é a categoria estatística de uma prop
type PropType string

const (
	PropPoints        PropType = "points"
	PropRebounds      PropType = "rebounds"
	PropAssists       PropType = "assists"
	PropSteals        PropType = "steals"
	PropBlocks        PropType = "blocks"
	PropTurnovers     PropType = "turnovers"
	PropThreePointers PropType = "threes"
	PropPRA           PropType = "pra"
	PropPR            PropType = "pr"
	PropPA            PropType = "pa"
	PropRA            PropType = "ra"

	// legados, ainda aceitos na leitura e escrita
	PropFieldGoalsMade PropType = "field_goals_made"
	PropFreeThrowsMade PropType = "free_throws_made"
	PropDoubleDouble   PropType = "double_double"
	PropTripleDouble   PropType = "triple_double"
)

var propTypes = []PropType{
	PropPoints, PropRebounds, PropAssists, PropSteals, PropBlocks, PropTurnovers,
	PropThreePointers, PropPRA, PropPR, PropPA, PropRA,
	PropFieldGoalsMade, PropFreeThrowsMade, PropDoubleDouble, PropTripleDouble,
}

// PropTypes retorna todos os valores aceitos de prop_type
func PropTypes() []PropType {
	out := make([]PropType, len(propTypes))
	copy(out, propTypes)
	return out
}

func (p PropType) Valid() bool {
	for _, v := range propTypes {
		if p == v {
			return true
		}
	}
	return false
}

// BetResult é o resultado da aposta; o default é pending
type BetResult string

const (
	ResultWin       BetResult = "win"
	ResultLoss      BetResult = "loss"
	ResultPush      BetResult = "push"
	ResultPending   BetResult = "pending"
	ResultCancelled BetResult = "cancelled"
)

func (r BetResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultPush, ResultPending, ResultCancelled:
		return true
	}
	return false
}

// OverUnder é a direção da prop em relação à linha
type OverUnder string

const (
	Over  OverUnder = "over"
	Under OverUnder = "under"
)

func (o OverUnder) Valid() bool { return o == Over || o == Under }

// Bet é o registro unificado persistido para todos os tipos de aposta
type Bet struct {
	ID            int64            `json:"id"`
	BetType       BetType          `json:"bet_type"`
	BetPlacedDate time.Time        `json:"bet_placed_date"`
	GameDate      time.Time        `json:"game_date"`
	Team          string           `json:"team"`
	Opponent      string           `json:"opponent"`
	PlayerName    *string          `json:"player_name"`
	PropType      *PropType        `json:"prop_type"`
	PropLine      *decimal.Decimal `json:"prop_line"`
	OverUnder     *OverUnder       `json:"over_under"`
	Description   string           `json:"description"`

	WagerAmount decimal.Decimal  `json:"wager_amount"`
	Odds        int              `json:"odds"` // formato americano (-110, +150)
	Result      BetResult        `json:"result"`
	Payout      *decimal.Decimal `json:"payout"`
	ActualValue *decimal.Decimal `json:"actual_value"`
	Notes       *string          `json:"notes"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DeriveDescription calcula a descrição a partir dos campos atuais da aposta
func (b *Bet) DeriveDescription() string {
	return Derive(b.BetType, b.Team, str(b.PlayerName), propValue(b.PropType))
}

// Filter agrupa os filtros opcionais da listagem; zero value = sem filtro
type Filter struct {
	BetType    BetType
	Team       string
	PlayerName string
	PropType   PropType
	Result     BetResult
}

// Match aplica o filtro em memória com a mesma semântica do SQL
// (igualdade para enums, substring case-insensitive para nomes)
func (f Filter) Match(b Bet) bool {
	if f.BetType != "" && b.BetType != f.BetType {
		return false
	}
	if f.Team != "" && !containsFold(b.Team, f.Team) {
		return false
	}
	if f.PlayerName != "" && !containsFold(str(b.PlayerName), f.PlayerName) {
		return false
	}
	if f.PropType != "" && propValue(b.PropType) != f.PropType {
		return false
	}
	if f.Result != "" && b.Result != f.Result {
		return false
	}
	return true
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func propValue(p *PropType) PropType {
	if p == nil {
		return ""
	}
	return *p
}
