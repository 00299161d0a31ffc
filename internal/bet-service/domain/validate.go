package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError descreve o problema de um campo específico do payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrega os erros por campo; nada é persistido quando ocorre
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError cria um erro de validação de um único campo
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// usa o nome do json nas mensagens, que é o que o cliente enviou
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate valida o payload de create/put
func (in BetInput) Validate() error {
	var fields []FieldError
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: message(fe.Tag(), fe.Param())})
		}
	}

	if in.WagerAmount != nil && !in.WagerAmount.IsPositive() {
		fields = append(fields, FieldError{Field: "wager_amount", Message: "must be greater than 0"})
	}
	if in.BetType.IsProp() && in.PropLine == nil {
		fields = append(fields, FieldError{Field: "prop_line", Message: "field required for " + string(in.BetType)})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate valida só os campos presentes no patch. Campos obrigatórios do
// registro não podem ser anulados.
func (p BetPatch) Validate() error {
	var fields []FieldError
	add := func(field, msg string) { fields = append(fields, FieldError{Field: field, Message: msg}) }

	notNull := func(field string, set bool, isNull bool) bool {
		if set && isNull {
			add(field, "cannot be null")
			return false
		}
		return set
	}

	if notNull("bet_type", p.BetType.Set, p.BetType.Value == nil) && !p.BetType.Value.Valid() {
		add("bet_type", message("oneof", "player_prop team_prop spread moneyline"))
	}
	notNull("bet_placed_date", p.BetPlacedDate.Set, p.BetPlacedDate.Value == nil)
	notNull("game_date", p.GameDate.Set, p.GameDate.Value == nil)
	if notNull("team", p.Team.Set, p.Team.Value == nil) && *p.Team.Value == "" {
		add("team", message("required", ""))
	}
	if notNull("opponent", p.Opponent.Set, p.Opponent.Value == nil) && *p.Opponent.Value == "" {
		add("opponent", message("required", ""))
	}
	if p.PropType.Set && p.PropType.Value != nil && !p.PropType.Value.Valid() {
		add("prop_type", message("oneof", joinProps()))
	}
	if p.OverUnder.Set && p.OverUnder.Value != nil && !p.OverUnder.Value.Valid() {
		add("over_under", message("oneof", "over under"))
	}
	if notNull("wager_amount", p.WagerAmount.Set, p.WagerAmount.Value == nil) && !p.WagerAmount.Value.IsPositive() {
		add("wager_amount", "must be greater than 0")
	}
	if notNull("odds", p.Odds.Set, p.Odds.Value == nil) && *p.Odds.Value == 0 {
		add("odds", message("required", ""))
	}
	if notNull("result", p.Result.Set, p.Result.Value == nil) && !p.Result.Value.Valid() {
		add("result", message("oneof", "win loss push pending cancelled"))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// checkRecord valida as regras entre campos do registro já mesclado
func checkRecord(b Bet) error {
	if b.BetType.IsProp() && b.PropLine == nil {
		return NewValidationError("prop_line", "field required for "+string(b.BetType))
	}
	return nil
}

func message(tag, param string) string {
	switch tag {
	case "required":
		return "field required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "failed on '" + tag + "'"
	}
}

func joinProps() string {
	parts := make([]string, len(propTypes))
	for i, p := range propTypes {
		parts[i] = string(p)
	}
	return strings.Join(parts, " ")
}
