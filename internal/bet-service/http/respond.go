package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
	"github.com/radieske/bet-tracker/internal/bet-service/dto"
)

const maxBodyBytes = 1 << 20

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func writeValidation(w http.ResponseWriter, verr *domain.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
		Error:  "validation failed",
		Fields: verr.Fields,
	})
}

// bodyError é um corpo que não deu para decodificar; status decide 400 ou 422
type bodyError struct {
	status int
	verr   *domain.ValidationError
	msg    string
}

func (e *bodyError) Error() string { return e.msg }

func (e *bodyError) write(w http.ResponseWriter) {
	if e.verr != nil {
		writeValidation(w, e.verr)
		return
	}
	writeError(w, e.status, e.msg)
}

// decodeBody lê o JSON do corpo. JSON malformado vira 400; tipo errado num
// campo vira 422 com o nome do campo.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) *bodyError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &bodyError{status: http.StatusBadRequest, msg: "request body is empty"}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &bodyError{status: http.StatusBadRequest, msg: "invalid json"}
	case errors.As(err, &sizeErr):
		return &bodyError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &bodyError{
			status: http.StatusUnprocessableEntity,
			verr:   domain.NewValidationError(field, fmt.Sprintf("must be of type %s", typeErr.Type.Kind())),
		}
	default:
		// erros dos UnmarshalJSON próprios (datas, decimais)
		return &bodyError{
			status: http.StatusUnprocessableEntity,
			verr:   domain.NewValidationError("body", err.Error()),
		}
	}
}
