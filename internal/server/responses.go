package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
)

type errorResponse struct {
	Error   string                   `json:"error"`
	Fields  []ledger.FieldError      `json:"fields,omitempty"`
	Records []accounting.RecordError `json:"records,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps err to a status and carries field-level detail when err is
// a validation failure.
func writeErr(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, mapError(err), resp)
}

func writeRecordErrors(w http.ResponseWriter, res accounting.Result) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   res.Err().Error(),
		Records: res.Errors,
	})
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrPeriodClosed),
		errors.Is(err, ledger.ErrPeriodAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotPostable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidDocument),
		errors.Is(err, ledger.ErrInvalidPeriod),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrInvalidTurnoverBasis),
		errors.Is(err, ledger.ErrUnknownAccount),
		errors.Is(err, ledger.ErrMissingPayrollDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
