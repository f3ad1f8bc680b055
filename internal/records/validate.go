package records

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/shopspring/decimal"
)

// Validator checks a draft against its `validate` struct tags and reports
// failures in Brazilian Portuguese, naming fields by their `label` tag.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator constructs a Validator with pt-BR messages.
func NewValidator() *Validator {
	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator(locale.Locale())

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = ptBRTranslations.RegisterDefaultTranslations(v, trans)
	return &Validator{validate: v, trans: trans}
}

// Messages returns one message per failed rule, in struct field order.
func (v *Validator) Messages(rec any) []string {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fe.Translate(v.trans))
	}
	return out
}
