package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Token(context.Context) (string, error) {
	return "", errors.New("vault sealed")
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestBearerHeaderAttachedWhenTokenPresent(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, WithCredentials(StaticToken("abc123")))

	require.NoError(t, c.Delete(context.Background(), "/clientes/1"))
	assert.Equal(t, "Bearer abc123", got)
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	})

	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "/produtos", &out))
	assert.False(t, present)
	assert.Empty(t, out)
}

func TestCredentialFailureRejectsBeforeSending(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, WithCredentials(failingProvider{}))

	err := c.Post(context.Background(), "/clientes", map[string]string{"nome": "x"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
	assert.False(t, called)
}

func TestAbsolutePathRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	err := c.Get(context.Background(), "https://viacep.com.br/ws/01001000/json/", nil)
	assert.ErrorIs(t, err, ErrRequest)
}

func TestResponseErrorCarriesStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"cpf":"CPF inválido"}`))
	})

	err := c.Post(context.Background(), "/clientes", map[string]string{}, nil)
	respErr, ok := AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.JSONEq(t, `{"cpf":"CPF inválido"}`, string(respErr.Body))
	assert.False(t, respErr.IsServerError())
}

func TestPutSendsJSONBody(t *testing.T) {
	var body map[string]any
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.Put(context.Background(), "/fornecedores/9", map[string]any{"nome": "ACME"}, nil))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/fornecedores/9", path)
	assert.Equal(t, "ACME", body["nome"])
}

func TestObserverSeesStatus(t *testing.T) {
	var seen []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithObserver(func(method string, status int, _ time.Duration) {
		seen = append(seen, status)
	}))

	err := c.Get(context.Background(), "/clientes", nil)
	respErr, ok := AsResponseError(err)
	require.True(t, ok)
	assert.True(t, respErr.IsServerError())
	assert.Equal(t, []int{http.StatusInternalServerError}, seen)
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
}

func TestChainUsesFirstNonEmpty(t *testing.T) {
	token, err := Chain{NoCredentials{}, StaticToken("second"), StaticToken("third")}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestSignedTokenCarriesOperator(t *testing.T) {
	provider := NewSignedToken("s3cret", "cadastro", time.Minute)
	ctx := WithOperator(context.Background(), "maria")

	raw, err := provider.Token(ctx)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "maria", claims.Subject)
	assert.Equal(t, "cadastro", claims.Issuer)
}
