// Package records holds the generic form and list behaviour shared by every
// entity of the console. Entities plug in through a Descriptor.
package records

import (
	"context"
	"errors"
	"strings"

	"github.com/odyssey-erp/cadastro/internal/cep"
	"github.com/odyssey-erp/cadastro/internal/mask"
)

var (
	// ErrUnknownField is returned when an edit targets a field the descriptor
	// does not declare.
	ErrUnknownField = errors.New("records: unknown field")
	// ErrUnknownRecord is returned when an id is not part of the loaded list.
	ErrUnknownRecord = errors.New("records: unknown record")
	// ErrNoSelection is returned when a delete is confirmed with no target.
	ErrNoSelection = errors.New("records: nothing selected")
)

// Record is implemented by every entity the console manages.
type Record interface {
	RecordID() ID
}

// API is the subset of the backend client the records core needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
}

// AddressLookup resolves a postal code.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (cep.Address, error)
}

// Field binds one form input to a value inside T.
type Field[T any] struct {
	Name  string // form name, nested fields use "endereco.cep"
	Label string
	Type  string // html input type
	Mask  mask.Pattern
	// Digits strips everything but digits before the record is sent.
	Digits   bool
	Required bool
	Pattern  string
	Title    string
	Get      func(*T) string
	Set      func(*T, string) error
}

// Column is one display column of the list page.
type Column[T any] struct {
	Header string
	Value  func(*T) string
}

// InfoLine is one row of the info dialog.
type InfoLine[T any] struct {
	Label string
	Value func(*T) string
}

// Autofill merges a resolved address into the draft when the named postal
// code field changes.
type Autofill[T any] struct {
	Field string
	Apply func(*T, cep.Address)
}

// Descriptor configures the generic form and list for one entity.
type Descriptor[T Record] struct {
	Slug     string // backend collection and url suffix, e.g. "clientes"
	Singular string // "Cliente"
	Plural   string // "Clientes"
	New      func() T
	Display  func(*T) string
	Fields   []Field[T]
	Columns  []Column[T]

	InfoTitle  string
	InfoAction string
	Info       []InfoLine[T]

	Autofill *Autofill[T]
	HelpNew  string
	HelpEdit string
}

// Field looks up a field by form name.
func (d *Descriptor[T]) Field(name string) (Field[T], bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// HasInfo reports whether the list offers an info dialog.
func (d *Descriptor[T]) HasInfo() bool {
	return len(d.Info) > 0
}

func (d *Descriptor[T]) Endpoint() string { return "/" + d.Slug }

func (d *Descriptor[T]) ItemEndpoint(id ID) string { return "/" + d.Slug + "/" + string(id) }

func (d *Descriptor[T]) ListPath() string { return "/listar-" + d.Slug }

func (d *Descriptor[T]) AddPath() string { return "/add-" + d.Slug }

func (d *Descriptor[T]) EditPath(id ID) string { return "/edit-" + d.Slug + "/" + string(id) }

func (d *Descriptor[T]) lower() string { return strings.ToLower(d.Singular) }

// ListTitle is the heading of the list page.
func (d *Descriptor[T]) ListTitle() string { return "Lista de " + d.Plural }

// AddLabel labels the link to the create form.
func (d *Descriptor[T]) AddLabel() string { return "Adicionar " + d.Singular }

// DeletedMessage is the notice shown after a delete.
func (d *Descriptor[T]) DeletedMessage() string { return d.Singular + " excluído com sucesso!" }

// ConfirmQuestion is the body of the delete confirmation.
func (d *Descriptor[T]) ConfirmQuestion() string {
	return "Tem certeza que deseja excluir o " + d.lower()
}

// DisplayName is the label used for rec in dialogs.
func (d *Descriptor[T]) DisplayName(rec *T) string {
	return d.display(rec)
}

func (d *Descriptor[T]) display(rec *T) string {
	if d.Display == nil {
		return string((*rec).RecordID())
	}
	return d.Display(rec)
}

// TextField builds a field bound to a string inside T.
func TextField[T any](name, label string, ref func(*T) *string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Type:  "text",
		Get:   func(rec *T) string { return *ref(rec) },
		Set: func(rec *T, v string) error {
			*ref(rec) = v
			return nil
		},
	}
}

// Require marks the input as required in the browser.
func (f Field[T]) Require() Field[T] {
	f.Required = true
	return f
}

// Masked attaches an input mask.
func (f Field[T]) Masked(p mask.Pattern) Field[T] {
	f.Mask = p
	return f
}

// DigitsOnly strips punctuation before the record is sent.
func (f Field[T]) DigitsOnly() Field[T] {
	f.Digits = true
	return f
}

// Input overrides the html input type.
func (f Field[T]) Input(kind string) Field[T] {
	f.Type = kind
	return f
}

// Hint sets the browser validation pattern and its message.
func (f Field[T]) Hint(pattern, title string) Field[T] {
	f.Pattern = pattern
	f.Title = title
	return f
}
