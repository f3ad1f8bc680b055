package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/cadastro/internal/view"
)

// Home renders the landing page with one card per entity.
type Home struct {
	deps     *Deps
	sections []view.NavItem
}

// NewHome builds the landing page.
func NewHome(deps *Deps, sections []view.NavItem) *Home {
	return &Home{deps: deps, sections: sections}
}

// MountRoutes registers "/".
func (h *Home) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

func (h *Home) show(w http.ResponseWriter, r *http.Request) {
	h.deps.render(w, r, http.StatusOK, "pages/home.html", "Início", "", map[string]any{
		"Sections": h.sections,
	})
}
