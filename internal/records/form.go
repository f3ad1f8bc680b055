package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/odyssey-erp/cadastro/internal/cep"
	"github.com/odyssey-erp/cadastro/internal/mask"
)

// Form is the create/edit form of one record. It owns the draft; callers only
// ever see copies of it.
type Form[T Record] struct {
	desc      *Descriptor[T]
	api       API
	lookup    AddressLookup
	validator *Validator
	logger    *slog.Logger

	mu       sync.Mutex
	id       ID
	draft    T
	invalid  map[string]string
	helpOpen bool
	errors   []string
	dialog   Dialog[T]
	saved    ID
}

// NewForm constructs a form in create mode with a default draft. lookup and
// validator may be nil.
func NewForm[T Record](desc *Descriptor[T], api API, lookup AddressLookup, validator *Validator, logger *slog.Logger) *Form[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Form[T]{
		desc:      desc,
		api:       api,
		lookup:    lookup,
		validator: validator,
		logger:    logger.With(slog.String("entity", desc.Slug)),
		draft:     desc.New(),
		invalid:   make(map[string]string),
	}
}

// Load prepares the form. An empty id starts a new record; otherwise the
// record is fetched. On fetch failure the draft keeps its defaults and the
// error is returned so the page can show it.
func (f *Form[T]) Load(ctx context.Context, id ID) error {
	f.mu.Lock()
	f.id = id
	f.draft = f.desc.New()
	f.invalid = make(map[string]string)
	f.errors = nil
	f.dialog = NoDialog[T]()
	f.mu.Unlock()
	if id.IsZero() {
		return nil
	}

	var rec T
	if err := f.api.Get(ctx, f.desc.ItemEndpoint(id), &rec); err != nil {
		f.logger.Error("load record", slog.String("id", id.String()), slog.Any("error", err))
		return fmt.Errorf("load %s %s: %w", f.desc.Slug, id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.draft = rec
	f.mu.Unlock()
	return nil
}

// Edit sets one field of the draft. Every other field keeps its value; a
// value the field cannot parse leaves the draft untouched and blocks submit
// until the field is edited again.
func (f *Form[T]) Edit(name, value string) error {
	field, ok := f.desc.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.draft
	if err := field.Set(&next, value); err != nil {
		f.invalid[name] = fmt.Sprintf("%s: %v", field.Label, err)
		return fmt.Errorf("%s: %w", field.Label, err)
	}
	delete(f.invalid, name)
	f.draft = next
	return nil
}

// EditAll applies every declared field present in values.
func (f *Form[T]) EditAll(values url.Values) error {
	var errs []error
	for _, field := range f.desc.Fields {
		if _, ok := values[field.Name]; !ok {
			continue
		}
		if err := f.Edit(field.Name, values.Get(field.Name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChangePostalCode stores raw verbatim and, once it holds exactly eight
// digits, looks the address up and merges street, district, city and state
// into the draft. It reports whether a lookup was made. Lookup failures leave
// the draft as typed.
func (f *Form[T]) ChangePostalCode(ctx context.Context, raw string) bool {
	af := f.desc.Autofill
	if af == nil {
		return false
	}
	field, ok := f.desc.Field(af.Field)
	if !ok {
		return false
	}
	f.mu.Lock()
	next := f.draft
	if err := field.Set(&next, raw); err == nil {
		f.draft = next
	}
	f.mu.Unlock()

	digits := mask.Digits(raw)
	if len(digits) != cep.Length || f.lookup == nil {
		return false
	}
	addr, err := f.lookup.Lookup(ctx, digits)
	if err != nil {
		f.logger.Warn("postal code lookup", slog.String("cep", digits), slog.Any("error", err))
		return true
	}
	if ctx.Err() != nil {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if mask.Digits(field.Get(&f.draft)) != digits {
		f.logger.Debug("stale postal code lookup dropped", slog.String("cep", digits))
		return true
	}
	next = f.draft
	af.Apply(&next, addr)
	f.draft = next
	return true
}

// Submit validates the draft and creates or updates the record. Validation
// and backend messages open the error dialog and return nil. Failures that
// carry no message are returned. If ctx ends first the outcome is dropped.
func (f *Form[T]) Submit(ctx context.Context) error {
	f.mu.Lock()
	f.errors = nil
	f.dialog = NoDialog[T]()
	f.saved = ""
	payload := f.payloadLocked()
	id := f.id
	var rejected []string
	for _, field := range f.desc.Fields {
		if msg, ok := f.invalid[field.Name]; ok {
			rejected = append(rejected, msg)
		}
	}
	f.mu.Unlock()

	if len(rejected) > 0 {
		f.fail(rejected)
		return nil
	}
	if f.validator != nil {
		if msgs := f.validator.Messages(payload); len(msgs) > 0 {
			f.fail(msgs)
			return nil
		}
	}

	var err error
	saved := id
	if id.IsZero() {
		var created T
		err = f.api.Post(ctx, f.desc.Endpoint(), payload, &created)
		saved = created.RecordID()
	} else {
		err = f.api.Put(ctx, f.desc.ItemEndpoint(id), payload, nil)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil {
		f.mu.Lock()
		f.saved = saved
		f.dialog = SuccessDialog[T]()
		f.mu.Unlock()
		return nil
	}
	if msgs, ok := failureMessages(err); ok {
		f.fail(msgs)
		return nil
	}
	f.logger.Error("submit record", slog.String("id", id.String()), slog.Any("error", err))
	return fmt.Errorf("submit %s: %w", f.desc.Slug, err)
}

// Payload returns the draft as it would be sent, identification numbers
// reduced to digits.
func (f *Form[T]) Payload() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloadLocked()
}

func (f *Form[T]) payloadLocked() T {
	payload := f.draft
	for _, field := range f.desc.Fields {
		if !field.Digits {
			continue
		}
		_ = field.Set(&payload, mask.Digits(field.Get(&payload)))
	}
	return payload
}

func (f *Form[T]) fail(msgs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append([]string(nil), msgs...)
	f.dialog = ErrorDialog[T](msgs)
}

// CloseSuccess closes the success dialog and returns the list path to go to.
func (f *Form[T]) CloseSuccess() string {
	f.mu.Lock()
	f.dialog = NoDialog[T]()
	f.mu.Unlock()
	return f.desc.ListPath()
}

// AddAnother resets the draft after a create. It does nothing in edit mode.
func (f *Form[T]) AddAnother() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.id.IsZero() {
		return false
	}
	f.draft = f.desc.New()
	f.invalid = make(map[string]string)
	f.dialog = NoDialog[T]()
	return true
}

// CloseError closes the error dialog; the draft stays for correction.
func (f *Form[T]) CloseError() {
	f.mu.Lock()
	f.dialog = NoDialog[T]()
	f.mu.Unlock()
}

func (f *Form[T]) ToggleHelp() {
	f.mu.Lock()
	f.helpOpen = !f.helpOpen
	f.mu.Unlock()
}

func (f *Form[T]) HelpOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.helpOpen
}

func (f *Form[T]) HelpText() string {
	if f.IsNew() {
		return f.desc.HelpNew
	}
	return f.desc.HelpEdit
}

func (f *Form[T]) Title() string {
	if f.IsNew() {
		return "Adicionar " + f.desc.Singular
	}
	return "Editar " + f.desc.Singular
}

func (f *Form[T]) SubmitLabel() string {
	if f.IsNew() {
		return "Adicionar"
	}
	return "Editar"
}

func (f *Form[T]) SuccessMessage() string {
	if f.IsNew() {
		return f.desc.Singular + " adicionado com sucesso!"
	}
	return f.desc.Singular + " atualizado com sucesso!"
}

func (f *Form[T]) AddAnotherLabel() string {
	return "Adicionar outro " + f.desc.Singular
}

func (f *Form[T]) IsNew() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id.IsZero()
}

func (f *Form[T]) ID() ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// SavedID is the id of the record stored by the last successful submit. It
// is empty when the backend did not echo the created record.
func (f *Form[T]) SavedID() ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

// Draft returns a copy of the working record.
func (f *Form[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Value reads one field of the draft as displayed in the form.
func (f *Form[T]) Value(name string) string {
	field, ok := f.desc.Field(name)
	if !ok {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := field.Get(&f.draft)
	if !field.Mask.IsZero() {
		return field.Mask.Format(v)
	}
	return v
}

// Errors returns the messages of the last failed submit.
func (f *Form[T]) Errors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors...)
}

func (f *Form[T]) Dialog() Dialog[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dialog
}

func (f *Form[T]) Descriptor() *Descriptor[T] {
	return f.desc
}
