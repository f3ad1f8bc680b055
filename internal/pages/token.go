package pages

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/cadastro/internal/shared"
)

const maxOperatorLength = 80

// Token lets the operator identify themselves and store the bearer token
// sent to the backend.
type Token struct {
	deps *Deps
}

// NewToken builds the credential page.
func NewToken(deps *Deps) *Token {
	return &Token{deps: deps}
}

// MountRoutes registers the credential routes.
func (h *Token) MountRoutes(r chi.Router) {
	r.Get("/token", h.show)
	r.Post("/token", h.save)
	r.Post("/token/limpar", h.clear)
}

func (h *Token) show(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	data := map[string]any{
		"HasToken": h.deps.Vault.HasToken(sess),
		"Operator": h.deps.operator(r),
	}
	h.deps.render(w, r, http.StatusOK, "pages/token.html", "Credenciais", "", data)
}

func (h *Token) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Sessão indisponível", http.StatusInternalServerError)
		return
	}

	operator := strings.TrimSpace(r.PostFormValue("operador"))
	if utf8.RuneCountInString(operator) > maxOperatorLength {
		h.deps.redirectWithFlash(w, r, "/token", shared.FlashError, "O nome do operador deve ter no máximo 80 caracteres.")
		return
	}
	sess.SetOperator(operator)

	if token := strings.TrimSpace(r.PostFormValue("token")); token != "" {
		if err := h.deps.Vault.StoreToken(sess, token); err != nil {
			h.deps.logger().Error("store api token", slog.Any("error", err))
			h.deps.redirectWithFlash(w, r, "/token", shared.FlashError, "Não foi possível guardar o token.")
			return
		}
	}
	h.deps.redirectWithFlash(w, r, "/token", shared.FlashSuccess, "Credenciais salvas.")
}

func (h *Token) clear(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		_ = h.deps.Vault.StoreToken(sess, "")
	}
	h.deps.redirectWithFlash(w, r, "/token", shared.FlashInfo, "Token removido.")
}
