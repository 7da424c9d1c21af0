package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/floorwarden/warden/internal/services"
)

// Human-readable texts for the error keys clients switch on.
var errText = map[string]string{
	"not_found":     "Not found.",
	"forbidden":     "You do not have permission to perform this action.",
	"invalid":       "Invalid input.",
	"conflict":      "Conflicts with existing data.",
	"unauthorized":  "Authentication credentials were not provided or are invalid.",
	"bad_json":      "Malformed JSON body.",
	"bad_id":        "Invalid id.",
	"internal":      "Something went wrong. Please try again.",
	"missing_token": "Authentication credentials were not provided.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names, not Go ones
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func writeDetail(w http.ResponseWriter, status int, code, detail string) {
	if detail == "" {
		detail = errText[code]
	}
	writeJSON(w, status, errorBody{Detail: detail, Code: code})
}

// writeError maps service sentinels onto HTTP status codes. Anything else
// is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrInvalid):
		writeDetail(w, http.StatusBadRequest, "invalid", err.Error())
	case errors.Is(err, services.ErrConflict):
		writeDetail(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusInternalServerError, "internal", "")
	}
}

// decode reads a JSON body into dst and runs struct validation. It writes
// the 400 itself and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := io.LimitReader(r.Body, 1<<20)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad_json", fmt.Sprintf("%s: %v", errText["bad_json"], err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		p := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			p += "=" + fe.Param()
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}

func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeDetail(w, http.StatusBadRequest, "bad_id", "")
		return 0, false
	}
	return uint(id), true
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
