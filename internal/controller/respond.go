package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WriteJSON writes v with status. Bodies follow the {success, ...} envelope.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a {success, message} envelope.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"success": status < 400, "message": msg})
}

// WriteError maps service errors onto HTTP status codes. Unexpected errors
// are logged and reported without detail.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case appErrors.IsValidation(err):
		WriteMessage(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		WriteMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, appErrors.ErrInvalidTransition):
		WriteMessage(w, http.StatusConflict, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		WriteMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeBody reads a JSON body into dst and runs its validate tags.
func DecodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.NewValidation("", "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return appErrors.NewValidation(fe.Field(), fmt.Sprintf("failed %s validation", fe.Tag()))
		}
		return appErrors.NewValidation("", err.Error())
	}
	return nil
}

// PathID reads a UUID route parameter. Anything that is not a UUID cannot
// name a record, so it is answered with 404.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if uuid.Validate(id) != nil {
		WriteMessage(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", strings.TrimSuffix(name, "ID"), id))
		return "", false
	}
	return id, true
}
