package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound indica que não existe aposta com o id informado
var ErrNotFound = errors.New("bet not found")

const betColumns = `id, bet_type, bet_placed_date, game_date, team, opponent,
	player_name, prop_type, prop_line, over_under, description,
	wager_amount, odds, result, payout, actual_value, notes,
	created_at, updated_at`

// Postgres implementa o armazenamento de apostas em banco Postgres
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema cria as tabelas se ainda não existirem (não é migração)
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping valida a conexão (usado no /healthz)
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Create insere a aposta; id e created_at são definidos aqui
func (p *Postgres) Create(ctx context.Context, b domain.Bet) (domain.Bet, error) {
	domain.ResolveDescription(&b)
	b.CreatedAt = p.now()
	b.UpdatedAt = nil

	row := p.db.QueryRowContext(ctx, `
		INSERT INTO bets (bet_type, bet_placed_date, game_date, team, opponent,
			player_name, prop_type, prop_line, over_under, description,
			wager_amount, odds, result, payout, actual_value, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING `+betColumns,
		b.BetType, b.BetPlacedDate, b.GameDate, b.Team, b.Opponent,
		b.PlayerName, b.PropType, b.PropLine, b.OverUnder, b.Description,
		b.WagerAmount, b.Odds, b.Result, b.Payout, b.ActualValue, b.Notes, b.CreatedAt,
	)
	out, err := scanBet(row)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("insert bet: %w", err)
	}
	return out, nil
}

// Get retorna a aposta pelo id
func (p *Postgres) Get(ctx context.Context, id int64) (domain.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, ErrNotFound
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("get bet %d: %w", id, err)
	}
	return b, nil
}

// List aplica filtros, ordena por bet_placed_date desc e pagina
func (p *Postgres) List(ctx context.Context, f domain.Filter, offset, limit int) ([]domain.Bet, error) {
	q, args := buildListQuery(f, offset, limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	out := []domain.Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update aplica um patch parcial. Lê a linha com FOR UPDATE e grava na mesma
// transação, então dois patches na mesma aposta são serializados pelo banco.
func (p *Postgres) Update(ctx context.Context, id int64, patch domain.BetPatch) (domain.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := scanBet(tx.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, ErrNotFound
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("lock bet %d: %w", id, err)
	}

	next, err := domain.ApplyPatch(cur, patch, p.now())
	if err != nil {
		return domain.Bet{}, err
	}

	saved, err := writeBet(ctx, tx, id, next)
	if err != nil {
		return domain.Bet{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Bet{}, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// Replace substitui todos os campos (PUT). id e created_at são preservados.
// Um único UPDATE; nenhuma linha afetada = não encontrada.
func (p *Postgres) Replace(ctx context.Context, id int64, b domain.Bet) (domain.Bet, error) {
	domain.ResolveDescription(&b)
	ts := p.now()
	b.UpdatedAt = &ts

	saved, err := writeBet(ctx, p.db, id, b)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, ErrNotFound
	}
	return saved, err
}

// Delete remove a aposta; irrecuperável
func (p *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete bet %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bet %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear apaga todas as apostas (usado pelo seed)
func (p *Postgres) Clear(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets`)
	if err != nil {
		return 0, fmt.Errorf("clear bets: %w", err)
	}
	return res.RowsAffected()
}

// Summary conta vitórias/derrotas por grupo (player_prop x demais) numa query só
func (p *Postgres) Summary(ctx context.Context) (domain.Summary, error) {
	var player, other domain.Tally
	err := p.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE bet_type = $1),
			COUNT(*) FILTER (WHERE bet_type = $1 AND result = $2),
			COUNT(*) FILTER (WHERE bet_type = $1 AND result = $3),
			COUNT(*) FILTER (WHERE bet_type <> $1),
			COUNT(*) FILTER (WHERE bet_type <> $1 AND result = $2),
			COUNT(*) FILTER (WHERE bet_type <> $1 AND result = $3)
		FROM bets`,
		domain.BetTypePlayerProp, domain.ResultWin, domain.ResultLoss,
	).Scan(&player.Total, &player.Wins, &player.Losses, &other.Total, &other.Wins, &other.Losses)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("bet summary: %w", err)
	}
	return domain.NewSummary(player, other), nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// writeBet grava todos os campos mutáveis e retorna a linha resultante
func writeBet(ctx context.Context, q queryRower, id int64, b domain.Bet) (domain.Bet, error) {
	row := q.QueryRowContext(ctx, `
		UPDATE bets SET
			bet_type=$1, bet_placed_date=$2, game_date=$3, team=$4, opponent=$5,
			player_name=$6, prop_type=$7, prop_line=$8, over_under=$9, description=$10,
			wager_amount=$11, odds=$12, result=$13, payout=$14, actual_value=$15, notes=$16,
			updated_at=$17
		WHERE id=$18
		RETURNING `+betColumns,
		b.BetType, b.BetPlacedDate, b.GameDate, b.Team, b.Opponent,
		b.PlayerName, b.PropType, b.PropLine, b.OverUnder, b.Description,
		b.WagerAmount, b.Odds, b.Result, b.Payout, b.ActualValue, b.Notes,
		b.UpdatedAt, id,
	)
	out, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, err
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("update bet %d: %w", id, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(s scanner) (domain.Bet, error) {
	var (
		b                                      domain.Bet
		playerName, propType, overUnder, notes sql.NullString
		propLine, payout, actualValue          decimal.NullDecimal
		updatedAt                              sql.NullTime
	)
	err := s.Scan(
		&b.ID, &b.BetType, &b.BetPlacedDate, &b.GameDate, &b.Team, &b.Opponent,
		&playerName, &propType, &propLine, &overUnder, &b.Description,
		&b.WagerAmount, &b.Odds, &b.Result, &payout, &actualValue, &notes,
		&b.CreatedAt, &updatedAt,
	)
	if err != nil {
		return domain.Bet{}, err
	}

	b.PlayerName = nullString(playerName)
	b.Notes = nullString(notes)
	if propType.Valid {
		v := domain.PropType(propType.String)
		b.PropType = &v
	}
	if overUnder.Valid {
		v := domain.OverUnder(overUnder.String)
		b.OverUnder = &v
	}
	b.PropLine = nullDecimal(propLine)
	b.Payout = nullDecimal(payout)
	b.ActualValue = nullDecimal(actualValue)
	if updatedAt.Valid {
		t := updatedAt.Time
		b.UpdatedAt = &t
	}
	return b, nil
}

// buildListQuery monta o SELECT com os filtros presentes (AND entre eles)
func buildListQuery(f domain.Filter, offset, limit int) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.BetType != "" {
		where = append(where, "bet_type = "+arg(f.BetType))
	}
	if f.Team != "" {
		where = append(where, "team ILIKE "+arg("%"+escapeLike(f.Team)+"%"))
	}
	if f.PlayerName != "" {
		where = append(where, "player_name ILIKE "+arg("%"+escapeLike(f.PlayerName)+"%"))
	}
	if f.PropType != "" {
		where = append(where, "prop_type = "+arg(f.PropType))
	}
	if f.Result != "" {
		where = append(where, "result = "+arg(f.Result))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + betColumns + " FROM bets")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY bet_placed_date DESC, id DESC")
	sb.WriteString(" OFFSET " + arg(offset) + " LIMIT " + arg(limit))
	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike evita que % e _ digitados pelo usuário virem curingas
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullDecimal(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	v := nd.Decimal
	return &v
}
