package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/cadastro/internal/platform/httpx"
	"github.com/odyssey-erp/cadastro/internal/records"
)

// PostalCode answers the autofill requests of the customer form.
type PostalCode struct {
	lookup records.AddressLookup
}

// NewPostalCode builds the lookup endpoint.
func NewPostalCode(lookup records.AddressLookup) *PostalCode {
	return &PostalCode{lookup: lookup}
}

// MountRoutes registers GET /cep/{cep}.
func (h *PostalCode) MountRoutes(r chi.Router) {
	r.Get("/cep/{cep}", h.lookupAddress)
}

func (h *PostalCode) lookupAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := h.lookup.Lookup(r.Context(), chi.URLParam(r, "cep"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, addr)
}
