package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

//go:embed schema.sql
var schema string

// PostgresRepo grava o histórico de mudanças das apostas (bet_audit_log)
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Insert grava o evento. event_id é único, então reentregas do Kafka
// (at-least-once) não duplicam linhas; retorna false quando já existia.
func (r *PostgresRepo) Insert(ctx context.Context, e events.BetChanged) (bool, error) {
	const q = `
		INSERT INTO bet_audit_log
		  (event_id, action, bet_id, description, payload, occurred_at)
		VALUES
		  ($1,$2,$3,NULLIF($4,''),$5,$6)
		ON CONFLICT (event_id) DO NOTHING
	`
	var payload any
	if len(e.Bet) > 0 {
		payload = string(e.Bet)
	}
	res, err := r.DB.ExecContext(ctx, q,
		e.EventID, e.Action, e.BetID, e.Description, payload, e.Ts,
	)
	if err != nil {
		return false, fmt.Errorf("insert audit %s: %w", e.EventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
