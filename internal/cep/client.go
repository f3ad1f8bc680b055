// Package cep resolves Brazilian postal codes (CEP) into street addresses.
package cep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/cadastro/internal/mask"
)

// Length is the number of digits of a complete CEP.
const Length = 8

var (
	// ErrNotFound is returned when the service flags the CEP as unknown.
	ErrNotFound = errors.New("cep: not found")
	// ErrInvalid is returned for inputs that do not reduce to 8 digits.
	ErrInvalid = errors.New("cep: invalid postal code")
)

// Address holds the fields the lookup service resolves.
type Address struct {
	PostalCode string `json:"cep"`
	Street     string `json:"logradouro"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
}

// Lookup resolves a CEP.
type Lookup interface {
	Lookup(ctx context.Context, cep string) (Address, error)
}

// Normalize strips punctuation and checks the digit count.
func Normalize(raw string) (string, error) {
	digits := mask.Digits(raw)
	if len(digits) != Length {
		return "", ErrInvalid
	}
	return digits, nil
}

// Client queries ViaCEP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a ViaCEP client. The client never carries backend
// credentials.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// viaCEPResponse mirrors the service payload. "erro" arrives either as a
// boolean or as the string "true" depending on the API revision.
type viaCEPResponse struct {
	CEP        string          `json:"cep"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	flag := bytes.Trim(bytes.TrimSpace(r.Erro), `"`)
	return string(flag) == "true"
}

// Lookup implements Lookup.
func (c *Client) Lookup(ctx context.Context, raw string) (Address, error) {
	digits, err := Normalize(raw)
	if err != nil {
		return Address{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits), nil)
	if err != nil {
		return Address{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("cep: lookup %s: %w", digits, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusBadRequest {
		return Address{}, ErrInvalid
	}
	if resp.StatusCode >= 400 {
		return Address{}, fmt.Errorf("cep: lookup %s returned status %d", digits, resp.StatusCode)
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Address{}, fmt.Errorf("cep: decode %s: %w", digits, err)
	}
	if payload.notFound() {
		return Address{}, ErrNotFound
	}
	return Address{
		PostalCode: payload.CEP,
		Street:     payload.Logradouro,
		District:   payload.Bairro,
		City:       payload.Localidade,
		State:      payload.UF,
	}, nil
}
