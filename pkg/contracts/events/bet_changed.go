package events

import (
	"encoding/json"
	"time"
)

// BetAction é a mutação que originou o evento
type BetAction string

const (
	BetCreated  BetAction = "created"
	BetUpdated  BetAction = "updated"
	BetReplaced BetAction = "replaced"
	BetDeleted  BetAction = "deleted"
)

// BetChanged é publicado no tópico "bet_changes" a cada mutação bem-sucedida.
// Bet carrega o registro completo após a mutação (vazio em deleted).
type BetChanged struct {
	EventID     string          `json:"event_id"`
	Action      BetAction       `json:"action"`
	BetID       int64           `json:"bet_id"`
	Description string          `json:"description,omitempty"`
	Bet         json.RawMessage `json:"bet,omitempty"`
	Ts          time.Time       `json:"ts"`
}
