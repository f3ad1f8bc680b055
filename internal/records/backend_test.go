package records_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/cadastro/internal/apiclient"
	"github.com/odyssey-erp/cadastro/internal/masterdata/customers"
	"github.com/odyssey-erp/cadastro/internal/records"
)

// fakeBackend is an in-memory clientes collection behind httptest.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int
	items    []customers.Customer
	failCode int
	failBody string
	lastBody map[string]any
	requests int
	// duringDelete runs while a DELETE is in flight.
	duringDelete func()
}

func newFakeBackend(t *testing.T, seed ...customers.Customer) (*fakeBackend, *apiclient.Client) {
	t.Helper()
	b := &fakeBackend{nextID: 100, items: seed}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	return b, client
}

func (b *fakeBackend) fail(code int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCode, b.failBody = code, body
}

func (b *fakeBackend) ids() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.items))
	for _, c := range b.items {
		out = append(out, c.ID.String())
	}
	return out
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests++

	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		b.lastBody = map[string]any{}
		_ = json.Unmarshal(raw, &b.lastBody)
	}
	if b.failCode != 0 {
		w.WriteHeader(b.failCode)
		_, _ = w.Write([]byte(b.failBody))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if parts[0] != "clientes" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(b.items)
		case http.MethodPost:
			var c customers.Customer
			_ = json.Unmarshal(raw, &c)
			b.nextID++
			c.ID = recordID(b.nextID)
			b.items = append(b.items, c)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(c)
		}
		return
	}

	idx := -1
	for i, c := range b.items {
		if c.ID.String() == parts[1] {
			idx = i
		}
	}
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"erro":"Cliente não encontrado"}`))
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(b.items[idx])
	case http.MethodPut:
		var c customers.Customer
		_ = json.Unmarshal(raw, &c)
		c.ID = b.items[idx].ID
		b.items[idx] = c
		_ = json.NewEncoder(w).Encode(c)
	case http.MethodDelete:
		if b.duringDelete != nil {
			b.duringDelete()
		}
		b.items = append(b.items[:idx], b.items[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func recordID(n int) records.ID {
	return records.ID(strconv.Itoa(n))
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *fakeBackend) sent(key string) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody[key]
}
