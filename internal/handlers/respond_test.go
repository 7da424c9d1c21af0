package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/services"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
		key  string
	}{
		{fmt.Errorf("student 4: %w", services.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("other floor: %w", services.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("amount: %w", services.ErrInvalid), http.StatusBadRequest, "invalid"},
		{fmt.Errorf("username taken: %w", services.ErrConflict), http.StatusConflict, "conflict"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x/", nil)
		rec := httptest.NewRecorder()
		writeError(rec, req, c.err)
		if rec.Code != c.code {
			t.Errorf("%v: status %d, want %d", c.err, rec.Code, c.code)
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad body %q", c.err, rec.Body.String())
		}
		if body.Code != c.key || body.Detail == "" {
			t.Errorf("%v: body %+v", c.err, body)
		}
	}

	// internal details stay in the log
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret dsn"))
	if strings.Contains(rec.Body.String(), "secret dsn") {
		t.Fatalf("500 leaked the cause: %s", rec.Body.String())
	}
}

type sampleForm struct {
	Name   string `json:"name" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

func TestDecodeValidation(t *testing.T) {
	cases := []struct {
		body string
		ok   bool
		want string
	}{
		{`{"name":"x","amount":5}`, true, ""},
		{`{"name":"","amount":5}`, false, "name: required"},
		{`{"name":"x","amount":0}`, false, "amount: gt=0"},
		{`{"name":`, false, "bad_json"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(c.body))
		rec := httptest.NewRecorder()
		var f sampleForm
		if got := decode(rec, req, &f); got != c.ok {
			t.Fatalf("%s: decode = %v", c.body, got)
		}
		if c.ok {
			continue
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", c.body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), c.want) {
			t.Errorf("%s: body %s lacks %q", c.body, rec.Body.String(), c.want)
		}
	}
}

func TestWebhookSecret(t *testing.T) {
	orig := config.Conf.GetString("TG_WEBHOOK_SECRET")
	defer config.Conf.Set("TG_WEBHOOK_SECRET", orig)

	config.Conf.Set("TG_WEBHOOK_SECRET", "")
	req := httptest.NewRequest(http.MethodPost, "/tg/webhook?secret=", nil)
	if webhookSecretOK(req) {
		t.Fatal("webhook accepted with no secret configured")
	}

	config.Conf.Set("TG_WEBHOOK_SECRET", "s3cret")
	req = httptest.NewRequest(http.MethodPost, "/tg/webhook", nil)
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")
	if !webhookSecretOK(req) {
		t.Fatal("header secret rejected")
	}
	if !webhookSecretOK(httptest.NewRequest(http.MethodPost, "/tg/webhook?secret=s3cret", nil)) {
		t.Fatal("query secret rejected")
	}
	if webhookSecretOK(httptest.NewRequest(http.MethodPost, "/tg/webhook?secret=nope", nil)) {
		t.Fatal("wrong secret accepted")
	}

	rec := httptest.NewRecorder()
	TelegramWebhook(rec, httptest.NewRequest(http.MethodPost, "/tg/webhook", strings.NewReader("{}")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
}

func TestBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	if got := bearer(req); got != "abc.def" {
		t.Fatalf("bearer = %q", got)
	}
	req.Header.Set("Authorization", "Basic xyz")
	if got := bearer(req); got != "" {
		t.Fatalf("basic auth read as bearer: %q", got)
	}
}
