package pages

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/cadastro/internal/records"
	"github.com/odyssey-erp/cadastro/internal/shared"
	"github.com/odyssey-erp/cadastro/internal/view"
)

// Form actions posted by the buttons of the record form.
const (
	actionSave       = "salvar"
	actionPostalCode = "cep"
	actionAddAnother = "outro"
	actionClose      = "fechar"
	actionCloseError = "fechar-erro"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Entity serves the list, create and edit pages of one entity.
type Entity[T records.Record] struct {
	deps      *Deps
	desc      *records.Descriptor[T]
	api       records.API
	lookup    records.AddressLookup
	validator *records.Validator
}

// NewEntity builds the pages of desc. lookup may be nil for entities
// without an address.
func NewEntity[T records.Record](deps *Deps, desc *records.Descriptor[T], api records.API, lookup records.AddressLookup, validator *records.Validator) *Entity[T] {
	return &Entity[T]{deps: deps, desc: desc, api: api, lookup: lookup, validator: validator}
}

// NavItem is the navigation entry of the list page.
func (e *Entity[T]) NavItem() view.NavItem {
	return view.NavItem{Label: e.desc.Plural, Path: e.desc.ListPath()}
}

// MountRoutes registers the entity pages.
func (e *Entity[T]) MountRoutes(r chi.Router) {
	list := e.desc.ListPath()
	r.Get(list, e.showList)
	r.Get(list+"/exportar.xlsx", e.exportList)
	r.Post(list+"/excluir/{id}", e.deleteRecord)

	r.Get(e.desc.AddPath(), e.showForm)
	r.Post(e.desc.AddPath(), e.submitForm)
	r.Get("/edit-"+e.desc.Slug+"/{id}", e.showForm)
	r.Post("/edit-"+e.desc.Slug+"/{id}", e.submitForm)
}

func (e *Entity[T]) newList() *records.List[T] {
	return records.NewList(e.desc, e.api, e.deps.logger())
}

func (e *Entity[T]) newForm() *records.Form[T] {
	return records.NewForm(e.desc, e.api, e.lookup, e.validator, e.deps.logger())
}

func (e *Entity[T]) lower() string {
	return strings.ToLower(e.desc.Singular)
}

// ============================================================================
// LIST
// ============================================================================

type rowView struct {
	ID         string
	Cells      []string
	EditPath   string
	DeletePath string
	InfoPath   string
}

type lineView struct {
	Label string
	Value string
}

type listDialogView struct {
	Kind          string
	Title         string
	Question      string
	Name          string
	Lines         []lineView
	ConfirmAction string
	CancelPath    string
}

type noticeView struct {
	Visible        bool
	Message        string
	DismissAfterMS int64
}

type listView struct {
	Title      string
	AddPath    string
	AddLabel   string
	ListPath   string
	ExportPath string
	Query      string
	InfoAction string
	Headers    []string
	Rows       []rowView
	Dialog     listDialogView
	Notice     noticeView
}

func (e *Entity[T]) showList(w http.ResponseWriter, r *http.Request) {
	l := e.newList()
	defer l.Close()

	status, failure := http.StatusOK, ""
	if err := l.Load(r.Context()); err != nil {
		if contextEnded(r.Context()) {
			return
		}
		status, failure = http.StatusBadGateway, "Não foi possível carregar a lista de "+strings.ToLower(e.desc.Plural)+"."
	}

	query := r.URL.Query()
	if raw := query.Get("excluir"); raw != "" {
		if err := e.selectRecord(raw, l.AskDelete); err != nil && failure == "" {
			status, failure = http.StatusNotFound, "Registro não encontrado."
		}
	} else if raw := query.Get("info"); raw != "" && e.desc.HasInfo() {
		if err := e.selectRecord(raw, l.ShowInfo); err != nil && failure == "" {
			status, failure = http.StatusNotFound, "Registro não encontrado."
		}
	}
	e.renderList(w, r, status, l, query.Get("q"), failure)
}

func (e *Entity[T]) selectRecord(raw string, open func(records.ID) error) error {
	id, err := records.ParseID(raw)
	if err != nil {
		return err
	}
	return open(id)
}

func (e *Entity[T]) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := records.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Identificador inválido", http.StatusBadRequest)
		return
	}

	l := e.newList()
	defer l.Close()
	ctx := r.Context()
	if err := l.Load(ctx); err != nil {
		if contextEnded(ctx) {
			return
		}
		e.renderList(w, r, http.StatusBadGateway, l, "", "Não foi possível carregar a lista de "+strings.ToLower(e.desc.Plural)+".")
		return
	}
	if err := l.AskDelete(id); err != nil {
		e.renderList(w, r, http.StatusNotFound, l, "", "Registro não encontrado.")
		return
	}
	if err := l.ConfirmDelete(ctx); err != nil {
		if contextEnded(ctx) {
			return
		}
		e.renderList(w, r, http.StatusBadGateway, l, "", "Não foi possível excluir o "+e.lower()+". Tente novamente.")
		return
	}

	e.audit(ctx, r, shared.AuditDelete, id)
	e.deps.redirectWithFlash(w, r, e.desc.ListPath(), shared.FlashNotice, e.desc.DeletedMessage())
}

func (e *Entity[T]) exportList(w http.ResponseWriter, r *http.Request) {
	l := e.newList()
	defer l.Close()
	if err := l.Load(r.Context()); err != nil {
		if contextEnded(r.Context()) {
			return
		}
		e.deps.redirectWithFlash(w, r, e.desc.ListPath(), shared.FlashError, "Não foi possível exportar a lista de "+strings.ToLower(e.desc.Plural)+".")
		return
	}

	var buf bytes.Buffer
	if err := l.ExportXLSX(&buf); err != nil {
		e.deps.logger().Error("export list", slog.String("entity", e.desc.Slug), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+e.desc.Slug+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (e *Entity[T]) renderList(w http.ResponseWriter, r *http.Request, status int, l *records.List[T], query, failure string) {
	desc := e.desc
	data := listView{
		Title:      desc.ListTitle(),
		AddPath:    desc.AddPath(),
		AddLabel:   desc.AddLabel(),
		ListPath:   desc.ListPath(),
		ExportPath: desc.ListPath() + "/exportar.xlsx",
		Query:      query,
		Headers:    desc.Headers(),
	}
	if desc.HasInfo() {
		data.InfoAction = desc.InfoAction
	}
	for _, rec := range l.Search(query) {
		rec := rec
		id := rec.RecordID()
		data.Rows = append(data.Rows, rowView{
			ID:         id.String(),
			Cells:      desc.Cells(&rec),
			EditPath:   desc.EditPath(id),
			DeletePath: desc.ListPath() + "?excluir=" + url.QueryEscape(id.String()),
			InfoPath:   desc.ListPath() + "?info=" + url.QueryEscape(id.String()),
		})
	}

	dialog := l.Dialog()
	if rec, ok := dialog.Record(); ok {
		data.Dialog = listDialogView{
			Kind:       dialog.Kind().String(),
			Name:       desc.DisplayName(&rec),
			CancelPath: desc.ListPath(),
		}
		switch dialog.Kind() {
		case records.DialogConfirm:
			data.Dialog.Question = desc.ConfirmQuestion()
			data.Dialog.ConfirmAction = desc.ListPath() + "/excluir/" + url.PathEscape(rec.RecordID().String())
		case records.DialogInfo:
			data.Dialog.Title = desc.InfoTitle
			for _, line := range desc.Info {
				data.Dialog.Lines = append(data.Dialog.Lines, lineView{Label: line.Label, Value: line.Value(&rec)})
			}
		}
	}

	notice := l.Notice()
	if !notice.Visible {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			if flash := sess.PopFlashKind(shared.FlashNotice); flash != nil {
				notice = records.Notice{Visible: true, Message: flash.Message}
			}
		}
	}
	if notice.Visible {
		data.Notice = noticeView{
			Visible:        true,
			Message:        notice.Message,
			DismissAfterMS: records.NoticeDuration.Milliseconds(),
		}
	}
	e.deps.render(w, r, status, "pages/record_list.html", data.Title, failure, data)
}

// ============================================================================
// FORM
// ============================================================================

type fieldView struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Mask     string
	Pattern  string
	Title    string
	Autofill bool
	Required bool
}

type formDialogView struct {
	Kind            string
	Message         string
	Messages        []string
	AddAnother      bool
	AddAnotherLabel string
}

type formView struct {
	Title       string
	HelpText    string
	HelpOpen    bool
	Action      string
	SubmitLabel string
	CEPEndpoint string
	Fields      []fieldView
	Dialog      formDialogView
}

// formID reads the record id of the edit route. The create route has none.
func formID(r *http.Request) (records.ID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return "", nil
	}
	return records.ParseID(raw)
}

func (e *Entity[T]) showForm(w http.ResponseWriter, r *http.Request) {
	id, err := formID(r)
	if err != nil {
		http.Error(w, "Identificador inválido", http.StatusBadRequest)
		return
	}
	form := e.newForm()
	status, failure := http.StatusOK, ""
	if err := form.Load(r.Context(), id); err != nil {
		if contextEnded(r.Context()) {
			return
		}
		status, failure = http.StatusBadGateway, "Não foi possível carregar o "+e.lower()+"."
	}
	if r.URL.Query().Get("ajuda") == "1" {
		form.ToggleHelp()
	}
	e.renderForm(w, r, status, form, failure)
}

func (e *Entity[T]) submitForm(w http.ResponseWriter, r *http.Request) {
	id, err := formID(r)
	if err != nil {
		http.Error(w, "Identificador inválido", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	form := e.newForm()
	action := r.PostFormValue("acao")
	switch action {
	case actionClose:
		http.Redirect(w, r, form.CloseSuccess(), http.StatusSeeOther)
		return
	case actionAddAnother:
		if !id.IsZero() {
			http.Redirect(w, r, e.desc.EditPath(id), http.StatusSeeOther)
			return
		}
		form.AddAnother()
		e.renderForm(w, r, http.StatusOK, form, "")
		return
	}

	// Edit mode starts from the stored record so fields the page does not
	// post keep their values.
	if err := form.Load(ctx, id); err != nil {
		if contextEnded(ctx) {
			return
		}
		e.renderForm(w, r, http.StatusBadGateway, form, "Não foi possível carregar o "+e.lower()+".")
		return
	}
	_ = form.EditAll(r.PostForm)

	switch action {
	case actionPostalCode:
		if e.desc.Autofill != nil {
			form.ChangePostalCode(ctx, r.PostFormValue(e.desc.Autofill.Field))
		}
		if contextEnded(ctx) {
			return
		}
		e.renderForm(w, r, http.StatusOK, form, "")
		return
	case actionCloseError:
		form.CloseError()
		e.renderForm(w, r, http.StatusOK, form, "")
		return
	}

	if err := form.Submit(ctx); err != nil {
		if contextEnded(ctx) {
			return
		}
		e.deps.logger().Error("submit record", slog.String("entity", e.desc.Slug), slog.Any("error", err))
		e.renderForm(w, r, http.StatusBadGateway, form, "Não foi possível salvar o "+e.lower()+". Tente novamente.")
		return
	}

	status := http.StatusOK
	switch form.Dialog().Kind() {
	case records.DialogSuccess:
		action := shared.AuditUpdate
		if form.IsNew() {
			action = shared.AuditCreate
		}
		e.audit(ctx, r, action, form.SavedID())
	case records.DialogError:
		status = http.StatusUnprocessableEntity
	}
	e.renderForm(w, r, status, form, "")
}

func (e *Entity[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, form *records.Form[T], failure string) {
	action := e.desc.AddPath()
	if !form.IsNew() {
		action = e.desc.EditPath(form.ID())
	}
	data := formView{
		Title:       form.Title(),
		HelpText:    form.HelpText(),
		HelpOpen:    form.HelpOpen(),
		Action:      action,
		SubmitLabel: form.SubmitLabel(),
		CEPEndpoint: "/cep/",
	}
	for _, f := range e.desc.Fields {
		data.Fields = append(data.Fields, fieldView{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Value:    form.Value(f.Name),
			Mask:     string(f.Mask),
			Pattern:  f.Pattern,
			Title:    f.Title,
			Autofill: e.desc.Autofill != nil && e.desc.Autofill.Field == f.Name,
			Required: f.Required,
		})
	}

	dialog := form.Dialog()
	data.Dialog.Kind = dialog.Kind().String()
	switch dialog.Kind() {
	case records.DialogSuccess:
		data.Dialog.Message = form.SuccessMessage()
		data.Dialog.AddAnother = form.IsNew()
		data.Dialog.AddAnotherLabel = form.AddAnotherLabel()
	case records.DialogError:
		data.Dialog.Messages = dialog.Messages()
	}
	e.deps.render(w, r, status, "pages/record_form.html", data.Title, failure, data)
}

func (e *Entity[T]) audit(ctx context.Context, r *http.Request, action string, id records.ID) {
	if !e.deps.Audit.Enabled() {
		return
	}
	_ = e.deps.Audit.Record(ctx, shared.AuditEntry{
		Operator: e.deps.operator(r),
		Action:   action,
		Entity:   e.desc.Slug,
		EntityID: id.String(),
	})
}

func contextEnded(ctx context.Context) bool {
	err := ctx.Err()
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
