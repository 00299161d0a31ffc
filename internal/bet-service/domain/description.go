package domain

import "strings"

// UnknownDescription é o último fallback de Derive
const UnknownDescription = "Unknown"

// Derive gera o rótulo legível de uma aposta. Função pura e total: sempre
// retorna string não vazia. Regras avaliadas em ordem, a primeira vence:
//
//  1. player_prop com jogador e prop  -> "{player}-{prop}"
//  2. team_prop com time e prop       -> "{team}-{prop}"
//  3. spread/moneyline com time       -> "{team}-{bet_type}"
//  4. jogador preenchido              -> "{player}"
//  5. time preenchido                 -> "{team}"
//  6. "Unknown"
//
// String vazia significa campo ausente.
func Derive(betType BetType, team, playerName string, propType PropType) string {
	switch betType {
	case BetTypePlayerProp:
		if playerName != "" && propType != "" {
			return playerName + "-" + string(propType)
		}
	case BetTypeTeamProp:
		if team != "" && propType != "" {
			return team + "-" + string(propType)
		}
	case BetTypeSpread, BetTypeMoneyline:
		if team != "" {
			return team + "-" + string(betType)
		}
	}

	switch {
	case playerName != "":
		return playerName
	case team != "":
		return team
	}
	return UnknownDescription
}

// ResolveDescription aplica a política de create/put: descrição explícita
// (não vazia) é mantida como veio; ausente ou "" é derivada dos campos do
// próprio registro. Retorna true quando derivou.
func ResolveDescription(b *Bet) bool {
	if b.Description != "" {
		return false
	}
	b.Description = b.DeriveDescription()
	return true
}

// touchesDescription indica se o patch altera algum campo que entra em Derive
func (p BetPatch) touchesDescription() bool {
	return p.BetType.Set || p.Team.Set || p.PlayerName.Set || p.PropType.Set
}

// explicitDescription retorna a descrição enviada no patch, se não vazia
func (p BetPatch) explicitDescription() (string, bool) {
	if !p.Description.Set || p.Description.Value == nil {
		return "", false
	}
	d := *p.Description.Value
	if d == "" {
		return "", false
	}
	return d, true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
