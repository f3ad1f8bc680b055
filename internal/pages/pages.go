// Package pages serves the HTML console: the generic entity pages, the home
// page, the credential page and the postal code lookup endpoint.
package pages

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/cadastro/internal/shared"
	"github.com/odyssey-erp/cadastro/internal/view"
)

// Mounter is implemented by every handler of this package.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// Deps groups what every page handler needs to render.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Vault     *shared.TokenVault
	Audit     *shared.AuditLogger
	Nav       []view.NavItem
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Deps) render(w http.ResponseWriter, r *http.Request, status int, name, title, failure string, data any) {
	sess := shared.SessionFromContext(r.Context())
	viewData := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Nav:         d.Nav,
		Failure:     failure,
		Data:        data,
	}
	if sess != nil {
		if d.CSRF != nil {
			token, err := d.CSRF.EnsureToken(sess)
			if err != nil {
				d.logger().Error("csrf token", slog.Any("error", err))
			}
			viewData.CSRFToken = token
		}
		viewData.Flash = sess.PopFlash()
		viewData.Operator = sess.Operator()
		viewData.HasToken = d.Vault.HasToken(sess)
	}
	if err := d.Templates.Render(w, status, name, viewData); err != nil {
		d.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (d *Deps) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (d *Deps) operator(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.Operator()
	}
	return ""
}
