package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/odyssey-erp/cadastro/internal/apiclient"
	"github.com/odyssey-erp/cadastro/internal/cep"
)

// RespondError maps lookup and backend errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var respErr *apiclient.ResponseError
	switch {
	case errors.Is(err, cep.ErrInvalid):
		Problem(w, http.StatusBadRequest, "CEP inválido", "O CEP deve ter 8 dígitos.")
	case errors.Is(err, cep.ErrNotFound):
		Problem(w, http.StatusNotFound, "CEP não encontrado", "")
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Tempo esgotado", "")
	case errors.As(err, &respErr):
		Problem(w, http.StatusBadGateway, "Falha no serviço", respErr.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Erro interno", "")
	}
}
