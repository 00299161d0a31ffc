package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
	"github.com/radieske/bet-tracker/internal/bet-service/producer"
	"github.com/radieske/bet-tracker/internal/bet-service/repo"
	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	var in domain.BetInput
	if berr := decodeBody(w, r, &in); berr != nil {
		berr.write(w)
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	b, err := s.store.Create(r.Context(), in.ToBet(s.now()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r.Context(), events.BetCreated, b.ID, &b)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	f, offset, limit, verr := parseListQuery(r)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	bets, err := s.store.List(r.Context(), f, offset, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}
	b, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// patchBet aplica só os campos enviados; a reconciliação da descrição
// acontece no store, junto da leitura do registro atual
func (s *Server) patchBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}
	var p domain.BetPatch
	if berr := decodeBody(w, r, &p); berr != nil {
		berr.write(w)
		return
	}
	if err := p.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	b, err := s.store.Update(r.Context(), id, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r.Context(), events.BetUpdated, b.ID, &b)
	writeJSON(w, http.StatusOK, b)
}

// replaceBet é o PUT: o payload completo substitui o registro e a descrição
// é resolvida de novo (explícita vence, senão deriva)
func (s *Server) replaceBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}
	var in domain.BetInput
	if berr := decodeBody(w, r, &in); berr != nil {
		berr.write(w)
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	b, err := s.store.Replace(r.Context(), id, in.ToBet(s.now()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r.Context(), events.BetReplaced, b.ID, &b)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r.Context(), events.BetDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// summary usa cache-aside; falha no Redis não derruba a resposta
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if cached, ok, err := s.cache.GetSummary(ctx); err != nil {
		s.log.Warn("summary cache get", zap.Error(err))
	} else if ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	sum, err := s.store.Summary(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cache.SetSummary(ctx, sum); err != nil {
		s.log.Warn("summary cache set", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, sum)
}

// changed roda depois de toda mutação bem-sucedida: derruba o resumo em
// cache e publica o evento. Falhas aqui só geram log; a escrita já foi feita.
func (s *Server) changed(ctx context.Context, action events.BetAction, id int64, b *domain.Bet) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("summary cache invalidate", zap.Int64("bet_id", id), zap.Error(err))
	}
	e, err := producer.NewBetChanged(action, id, b, s.now())
	if err == nil {
		err = s.publ.Publish(ctx, e)
	}
	if err != nil {
		s.log.Error("publish bet_changed", zap.String("action", string(action)), zap.Int64("bet_id", id), zap.Error(err))
	}
}

// fail traduz o erro do domínio/store para a resposta HTTP
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr)
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, repo.ErrNotFound.Error())
	default:
		s.log.Error("store failure",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func betID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeValidation(w, domain.NewValidationError("id", "must be an integer"))
		return 0, false
	}
	return id, true
}

// parseListQuery lê skip/limit e os filtros; valores de enum desconhecidos
// são rejeitados em vez de devolver lista vazia
func parseListQuery(r *http.Request) (domain.Filter, int, int, *domain.ValidationError) {
	q := r.URL.Query()
	var fields []domain.FieldError
	bad := func(field, msg string) { fields = append(fields, domain.FieldError{Field: field, Message: msg}) }

	offset := 0
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			bad("skip", "must be an integer greater than or equal to 0")
		} else {
			offset = n
		}
	}
	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			bad("limit", "must be an integer between 1 and "+strconv.Itoa(maxLimit))
		} else {
			limit = n
		}
	}

	f := domain.Filter{
		BetType:    domain.BetType(q.Get("bet_type")),
		Team:       q.Get("team"),
		PlayerName: q.Get("player_name"),
		PropType:   domain.PropType(q.Get("prop_type")),
		Result:     domain.BetResult(q.Get("result")),
	}
	if f.BetType != "" && !f.BetType.Valid() {
		bad("bet_type", "unknown bet type")
	}
	if f.PropType != "" && !f.PropType.Valid() {
		bad("prop_type", "unknown prop type")
	}
	if f.Result != "" && !f.Result.Valid() {
		bad("result", "unknown result")
	}

	if len(fields) > 0 {
		return domain.Filter{}, 0, 0, &domain.ValidationError{Fields: fields}
	}
	return f, offset, limit, nil
}
