package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "helpdesk-service", Version: "test", Store: config.StoreMemory},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		Seed: config.SeedConfig{OnStart: true, Password: "123"},
	}
	a := New(Options{Config: cfg, Stores: MemoryStores(), Clock: func() time.Time { return fixedNow }})
	require.NoError(t, a.SeedIfEnabled(context.Background(), cfg.Seed))
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

type result struct {
	status int
	header http.Header
	body   any
}

func (r result) object(t *testing.T) map[string]any {
	t.Helper()
	obj, ok := r.body.(map[string]any)
	require.Truef(t, ok, "expected object, got %T", r.body)
	return obj
}

func (r result) list(t *testing.T) []any {
	t.Helper()
	list, ok := r.body.([]any)
	require.Truef(t, ok, "expected list, got %T", r.body)
	return list
}

func call(t *testing.T, a *App, method, path, token string, payload any) result {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := result{status: resp.StatusCode, header: resp.Header}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func login(t *testing.T, a *App, email string) string {
	t.Helper()
	res := call(t, a, http.MethodPost, "/login", "", map[string]string{"email": email, "senha": "123"})
	require.Equal(t, http.StatusOK, res.status)
	header := res.header.Get("Authorization")
	require.Contains(t, header, "Bearer ")
	assert.Equal(t, "Authorization", res.header.Get("Access-Control-Expose-Headers"))
	return header[len("Bearer "):]
}

func TestLoginFailures(t *testing.T) {
	a := newTestApp(t)
	res := call(t, a, http.MethodPost, "/login", "", map[string]string{"email": "admin@mail.com", "senha": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	body := res.object(t)
	assert.Equal(t, "invalid email or password", body["message"])
	assert.Equal(t, "/login", body["path"])
	assert.EqualValues(t, 401, body["status"])
	assert.NotZero(t, body["timestamp"])
	assert.Equal(t, "Unauthorized", body["error"])

	res = call(t, a, http.MethodPost, "/login", "", map[string]string{"email": "admin@mail.com", "password": "123"})
	assert.Equal(t, http.StatusOK, res.status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/clientes", "/tecnicos", "/chamados", "/chamados/1"} {
		res := call(t, a, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.status, path)
	}
}

func TestClientSeesOnlyOwnData(t *testing.T) {
	a := newTestApp(t)
	linus := login(t, a, "linus@mail.com")

	clients := call(t, a, http.MethodGet, "/clientes", linus, nil)
	require.Equal(t, http.StatusOK, clients.status)
	list := clients.list(t)
	require.Len(t, list, 1)
	me := list[0].(map[string]any)
	assert.Equal(t, "linus@mail.com", me["email"])
	assert.NotContains(t, me, "senha")

	guidoID := int(me["id"].(float64)) + 1
	res := call(t, a, http.MethodGet, "/clientes/"+strconv.Itoa(guidoID), linus, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	tickets := call(t, a, http.MethodGet, "/chamados", linus, nil)
	require.Equal(t, http.StatusOK, tickets.status)
	ticketList := tickets.list(t)
	assert.Len(t, ticketList, 4)
	for _, item := range ticketList {
		assert.Equal(t, me["id"], item.(map[string]any)["cliente"])
	}

	// ticket 2 belongs to Guido
	res = call(t, a, http.MethodGet, "/chamados/2", linus, nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "you may only view your own tickets", res.object(t)["message"])

	res = call(t, a, http.MethodPut, "/chamados/1", linus, map[string]any{
		"prioridade": "LOW", "titulo": "x", "tecnico": 2, "cliente": me["id"],
	})
	assert.Equal(t, http.StatusForbidden, res.status)
}

func TestAdminClientLifecycle(t *testing.T) {
	a := newTestApp(t)
	admin := login(t, a, "admin@mail.com")

	created := call(t, a, http.MethodPost, "/clientes", admin, map[string]any{
		"nome": "Grace Hopper", "cpf": "111", "email": "grace@mail.com", "senha": "123",
	})
	require.Equal(t, http.StatusCreated, created.status)
	client := created.object(t)
	id := strconv.Itoa(int(client["id"].(float64)))
	assert.Contains(t, created.header.Get("Location"), "/clientes/"+id)
	assert.Equal(t, []any{"CLIENTE"}, client["perfis"])
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4}$`, client["dataCriacao"])

	dup := call(t, a, http.MethodPost, "/clientes", admin, map[string]any{
		"nome": "Other", "cpf": "111", "email": "other@mail.com", "senha": "123",
	})
	assert.Equal(t, http.StatusBadRequest, dup.status)
	assert.Equal(t, "CONFLICT", dup.object(t)["code"])

	crossKind := call(t, a, http.MethodPost, "/tecnicos", admin, map[string]any{
		"nome": "Other", "cpf": "999", "email": "grace@mail.com", "senha": "123",
	})
	assert.Equal(t, http.StatusBadRequest, crossKind.status)

	renamed := call(t, a, http.MethodPut, "/clientes/"+id, admin, map[string]any{
		"nome": "Grace B. Hopper", "cpf": "111", "email": "grace@mail.com",
	})
	require.Equal(t, http.StatusOK, renamed.status)
	assert.Equal(t, "Grace B. Hopper", renamed.object(t)["nome"])

	del := call(t, a, http.MethodDelete, "/clientes/"+id, admin, nil)
	assert.Equal(t, http.StatusNoContent, del.status)

	missing := call(t, a, http.MethodGet, "/clientes/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, missing.status)

	referenced := call(t, a, http.MethodDelete, "/clientes/6", admin, nil)
	assert.Equal(t, http.StatusBadRequest, referenced.status)
	assert.Equal(t, "CONFLICT", referenced.object(t)["code"])
}

func TestTechnicianRules(t *testing.T) {
	a := newTestApp(t)
	bill := login(t, a, "bill@mail.com")

	res := call(t, a, http.MethodDelete, "/clientes/6", bill, nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Access Denied", res.object(t)["error"])

	list := call(t, a, http.MethodGet, "/chamados", bill, nil)
	require.Equal(t, http.StatusOK, list.status)
	assert.Len(t, list.list(t), 2)

	closed := call(t, a, http.MethodPut, "/chamados/1", bill, map[string]any{
		"prioridade": "HIGH", "status": "CLOSED", "titulo": "VPN access error", "tecnico": 2, "cliente": 6,
	})
	require.Equal(t, http.StatusOK, closed.status)
	ticket := closed.object(t)
	assert.Equal(t, "15/03/2024", ticket["dataFechamento"])
	assert.Equal(t, "CLOSED", ticket["status"])
	assert.Equal(t, "Bill Gates", ticket["nomeTecnico"])

	reopened := call(t, a, http.MethodPut, "/chamados/1", bill, map[string]any{
		"prioridade": "HIGH", "status": "IN_PROGRESS", "titulo": "VPN access error", "tecnico": 2, "cliente": 6,
	})
	require.Equal(t, http.StatusOK, reopened.status)
	assert.Nil(t, reopened.object(t)["dataFechamento"])

	del := call(t, a, http.MethodDelete, "/chamados/1", bill, nil)
	assert.Equal(t, http.StatusForbidden, del.status)

	tech := call(t, a, http.MethodPost, "/tecnicos", bill, map[string]any{
		"nome": "Margaret", "cpf": "555", "email": "margaret@mail.com", "senha": "123", "perfis": []string{"ADMIN"},
	})
	assert.Equal(t, http.StatusForbidden, tech.status)
}

func TestTicketCreation(t *testing.T) {
	a := newTestApp(t)
	admin := login(t, a, "admin@mail.com")

	missing := call(t, a, http.MethodPost, "/chamados", admin, map[string]any{
		"prioridade": "LOW", "titulo": "x", "tecnico": 999, "cliente": 6,
	})
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "Technician not found: id 999", missing.object(t)["message"])

	created := call(t, a, http.MethodPost, "/chamados", admin, map[string]any{
		"prioridade": "MEDIUM", "titulo": "Keyboard broken", "observacoes": "desk 4", "tecnico": 3, "cliente": 7,
	})
	require.Equal(t, http.StatusCreated, created.status)
	ticket := created.object(t)
	assert.Equal(t, "OPEN", ticket["status"])
	assert.Equal(t, "15/03/2024", ticket["dataAbertura"])
	assert.Nil(t, ticket["dataFechamento"])
	assert.Contains(t, created.header.Get("Location"), "/chamados/10")

	invalid := call(t, a, http.MethodPost, "/chamados", admin, map[string]any{"titulo": "x"})
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	assert.Equal(t, "VALIDATION_FAILED", invalid.object(t)["code"])

	badID := call(t, a, http.MethodGet, "/chamados/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, badID.status)
}

func TestUnknownRouteAndHealth(t *testing.T) {
	a := newTestApp(t)
	admin := login(t, a, "admin@mail.com")

	res := call(t, a, http.MethodGet, "/nope", admin, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "/nope", res.object(t)["path"])

	live := call(t, a, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, live.status)
	ready := call(t, a, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.status)
	assert.Equal(t, "ready", ready.object(t)["status"])

	metrics := call(t, a, http.MethodGet, "/metrics", admin, nil)
	assert.Equal(t, http.StatusOK, metrics.status)
	assert.NotEmpty(t, metrics.object(t)["requests"])
}

func TestDeletedAccountLosesAccess(t *testing.T) {
	a := newTestApp(t)
	admin := login(t, a, "admin@mail.com")
	created := call(t, a, http.MethodPost, "/tecnicos", admin, map[string]any{
		"nome": "Temp", "cpf": "777", "email": "temp@mail.com", "senha": "123",
	})
	require.Equal(t, http.StatusCreated, created.status)
	id := strconv.Itoa(int(created.object(t)["id"].(float64)))

	temp := login(t, a, "temp@mail.com")
	assert.Equal(t, http.StatusOK, call(t, a, http.MethodGet, "/tecnicos", temp, nil).status)

	require.Equal(t, http.StatusNoContent, call(t, a, http.MethodDelete, "/tecnicos/"+id, admin, nil).status)
	assert.Equal(t, http.StatusUnauthorized, call(t, a, http.MethodGet, "/tecnicos", temp, nil).status)
}

func TestErrorMetricsUseRouteTemplate(t *testing.T) {
	a := newTestApp(t)
	admin := login(t, a, "admin@mail.com")

	for _, id := range []string{"998", "999"} {
		res := call(t, a, http.MethodGet, "/chamados/"+id, admin, nil)
		require.Equal(t, http.StatusNotFound, res.status)
	}

	errs := a.Metrics.Snapshot().Errors
	assert.Equal(t, int64(2), errs["/chamados/:id|GET|NOT_FOUND"])
	for key := range errs {
		assert.NotContains(t, key, "999")
	}
}
