//go:build !integration

package mango_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/infra/adapters/mango"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*mango.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := mango.NewClient("client-1", "passphrase", true)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.SetBaseURL(srv.URL)
	return c, srv
}

func TestClient_Create(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2.01/client-1/cardregistrations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-1" || pass != "passphrase" {
			t.Error("basic auth not set")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["UserId"] != "mango-77" || body["Currency"] != "EUR" || body["CardType"] != "CB_VISA_MASTERCARD" {
			t.Errorf("unexpected payload: %v", body)
		}
		_ = json.NewEncoder(w).Encode(model.CardRegistration{
			ID:                  "reg-9",
			AccessKey:           "ak",
			PreregistrationData: "pd",
			CardRegistrationURL: "https://pay.example.test/form",
			Status:              model.RegistrationStatusCreated,
		})
	})

	reg, err := c.Create(ctx, adapter.CardRegistrationCreate{
		UserID: "mango-77", Currency: "EUR", CardType: "CB_VISA_MASTERCARD",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if reg.ID != "reg-9" || reg.AccessKey != "ak" {
		t.Errorf("unexpected registration: %+v", reg)
	}
}

func TestClient_Get(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2.01/client-1/cardregistrations/reg-9" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(model.CardRegistration{ID: "reg-9", CardID: "c1", Status: model.RegistrationStatusValidated})
	})

	reg, err := c.Get(context.Background(), "reg-9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reg.Validated() {
		t.Errorf("expected a validated registration, got %+v", reg)
	}
}

func TestClient_Update(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v2.01/client-1/cardregistrations/reg-9" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["RegistrationData"] != "data=tok" {
			t.Errorf("unexpected payload: %v", body)
		}
		_ = json.NewEncoder(w).Encode(model.CardRegistration{ID: "reg-9", CardID: "c1", Status: model.RegistrationStatusValidated})
	})

	reg, err := c.Update(context.Background(), &model.CardRegistration{ID: "reg-9", RegistrationData: "data=tok"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if reg.CardID != "c1" {
		t.Errorf("unexpected registration: %+v", reg)
	}
}

func TestClient_HTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Message":"ressource not found"}`, http.StatusNotFound)
	})

	if _, err := c.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}
