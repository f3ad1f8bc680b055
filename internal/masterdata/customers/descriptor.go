package customers

import (
	"github.com/odyssey-erp/cadastro/internal/cep"
	"github.com/odyssey-erp/cadastro/internal/mask"
	"github.com/odyssey-erp/cadastro/internal/masterdata/shared"
	"github.com/odyssey-erp/cadastro/internal/records"
)

// PostalCodeField is the form name of the autofilled postal code.
const PostalCodeField = "endereco.cep"

func addressField(name, label string, ref func(a *Address) *string) records.Field[Customer] {
	return records.TextField("endereco."+name, label, func(c *Customer) *string { return ref(&c.Endereco) })
}

// Descriptor configures the customer pages.
func Descriptor() *records.Descriptor[Customer] {
	return &records.Descriptor[Customer]{
		Slug:     "clientes",
		Singular: "Cliente",
		Plural:   "Clientes",
		New:      New,
		Display:  func(c *Customer) string { return c.Nome },
		Fields: []records.Field[Customer]{
			records.TextField("nome", "Nome do cliente", func(c *Customer) *string { return &c.Nome }).Require(),
			records.TextField("cpf", "CPF do Cliente", func(c *Customer) *string { return &c.CPF }).
				Masked(mask.CPF).DigitsOnly().Require(),
			records.TextField("email", "Email do cliente", func(c *Customer) *string { return &c.Email }).
				Input("email").Hint(shared.EmailPattern, shared.EmailTitle).Require(),
			addressField("cep", "CEP", func(a *Address) *string { return &a.CEP }).Masked(mask.CEP).Require(),
			addressField("logradouro", "Logradouro", func(a *Address) *string { return &a.Logradouro }).Require(),
			addressField("numero", "Número", func(a *Address) *string { return &a.Numero }).Require(),
			addressField("complemento", "Complemento", func(a *Address) *string { return &a.Complemento }),
			addressField("bairro", "Bairro", func(a *Address) *string { return &a.Bairro }).Require(),
			addressField("cidade", "Cidade", func(a *Address) *string { return &a.Cidade }).Require(),
			addressField("estado", "Estado", func(a *Address) *string { return &a.Estado }).Require(),
			addressField("pais", "País", func(a *Address) *string { return &a.Pais }).Require(),
		},
		Columns: []records.Column[Customer]{
			{Header: "Nome", Value: func(c *Customer) string { return c.Nome }},
			{Header: "CPF", Value: func(c *Customer) string { return mask.CPF.Format(c.CPF) }},
			{Header: "Email", Value: func(c *Customer) string { return c.Email }},
		},
		InfoTitle:  "Endereço do Cliente",
		InfoAction: "Ver Endereço",
		Info: []records.InfoLine[Customer]{
			{Label: "CEP", Value: func(c *Customer) string { return mask.CEP.Format(c.Endereco.CEP) }},
			{Label: "Rua", Value: func(c *Customer) string { return c.Endereco.Logradouro }},
			{Label: "Número", Value: func(c *Customer) string { return c.Endereco.Numero }},
			{Label: "Complemento", Value: func(c *Customer) string { return c.Endereco.Complemento }},
			{Label: "Bairro", Value: func(c *Customer) string { return c.Endereco.Bairro }},
			{Label: "Cidade", Value: func(c *Customer) string { return c.Endereco.Cidade }},
			{Label: "Estado", Value: func(c *Customer) string { return c.Endereco.Estado }},
			{Label: "País", Value: func(c *Customer) string { return c.Endereco.Pais }},
		},
		Autofill: &records.Autofill[Customer]{
			Field: PostalCodeField,
			Apply: func(c *Customer, addr cep.Address) {
				c.Endereco.Logradouro = addr.Street
				c.Endereco.Bairro = addr.District
				c.Endereco.Cidade = addr.City
				c.Endereco.Estado = addr.State
			},
		},
		HelpNew:  "Nesta tela, você pode adicionar um novo cliente ao sistema.",
		HelpEdit: "Nesta tela, você pode editar as informações de um cliente existente.",
	}
}
