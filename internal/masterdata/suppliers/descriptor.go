package suppliers

import (
	"github.com/odyssey-erp/cadastro/internal/mask"
	"github.com/odyssey-erp/cadastro/internal/masterdata/shared"
	"github.com/odyssey-erp/cadastro/internal/records"
)

// Descriptor configures the supplier pages.
func Descriptor() *records.Descriptor[Supplier] {
	return &records.Descriptor[Supplier]{
		Slug:     "fornecedores",
		Singular: "Fornecedor",
		Plural:   "Fornecedores",
		New:      func() Supplier { return Supplier{} },
		Display:  func(s *Supplier) string { return s.Nome },
		Fields: []records.Field[Supplier]{
			records.TextField("nome", "Nome do fornecedor", func(s *Supplier) *string { return &s.Nome }).Require(),
			records.TextField("cnpj", "CNPJ do fornecedor", func(s *Supplier) *string { return &s.CNPJ }).
				Masked(mask.CNPJ).DigitsOnly().Require(),
			records.TextField("email", "Email do fornecedor", func(s *Supplier) *string { return &s.Email }).
				Input("email").Hint(shared.EmailPattern, shared.EmailTitle).Require(),
			records.TextField("telefone", "Telefone do fornecedor", func(s *Supplier) *string { return &s.Telefone }).
				Input("tel").Masked(mask.Phone).DigitsOnly(),
		},
		Columns: []records.Column[Supplier]{
			{Header: "Nome", Value: func(s *Supplier) string { return s.Nome }},
			{Header: "CNPJ", Value: func(s *Supplier) string { return mask.CNPJ.Format(s.CNPJ) }},
			{Header: "Email", Value: func(s *Supplier) string { return s.Email }},
			{Header: "Telefone", Value: func(s *Supplier) string { return formatPhone(s.Telefone) }},
		},
		HelpNew:  "Nesta tela, você pode adicionar um novo fornecedor ao sistema.",
		HelpEdit: "Nesta tela, você pode editar as informações de um fornecedor existente.",
	}
}

// formatPhone handles both mobile (11 digits) and landline (10 digits)
// numbers.
func formatPhone(v string) string {
	if len(v) == 10 {
		return mask.Pattern("(99) 9999-9999").Format(v)
	}
	return mask.Phone.Format(v)
}
