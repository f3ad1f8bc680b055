package products

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/odyssey-erp/cadastro/internal/masterdata/shared"
	"github.com/odyssey-erp/cadastro/internal/records"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Descriptor configures the product pages.
func Descriptor() *records.Descriptor[Product] {
	return &records.Descriptor[Product]{
		Slug:     "produtos",
		Singular: "Produto",
		Plural:   "Produtos",
		New:      func() Product { return Product{} },
		Display:  func(p *Product) string { return p.Nome },
		Fields: []records.Field[Product]{
			records.TextField("nome", "Nome do produto", func(p *Product) *string { return &p.Nome }).Require(),
			records.TextField("descricao", "Descrição do produto", func(p *Product) *string { return &p.Descricao }),
			{
				Name:     "preco",
				Label:    "Preço do produto",
				Type:     "text",
				Required: true,
				Get:      func(p *Product) string { return p.Preco.StringFixed(2) },
				Set: func(p *Product, v string) error {
					d, err := shared.ParseDecimal(v)
					if err != nil {
						return err
					}
					p.Preco = d
					return nil
				},
			},
			{
				Name:     "quantidade",
				Label:    "Quantidade em estoque",
				Type:     "number",
				Required: true,
				Get:      func(p *Product) string { return strconv.Itoa(p.Quantidade) },
				Set: func(p *Product, v string) error {
					n, err := shared.ParseInt(v)
					if err != nil {
						return err
					}
					p.Quantidade = n
					return nil
				},
			},
		},
		Columns: []records.Column[Product]{
			{Header: "Nome", Value: func(p *Product) string { return p.Nome }},
			{Header: "Descrição", Value: func(p *Product) string { return p.Descricao }},
			{Header: "Preço", Value: func(p *Product) string { return FormatPrice(p) }},
			{Header: "Quantidade", Value: func(p *Product) string { return strconv.Itoa(p.Quantidade) }},
		},
		HelpNew:  "Nesta tela, você pode adicionar um novo produto ao sistema.",
		HelpEdit: "Nesta tela, você pode editar as informações de um produto existente.",
	}
}

// FormatPrice renders the price with Brazilian separators.
func FormatPrice(p *Product) string {
	f, _ := p.Preco.Float64()
	return printer.Sprintf("R$ %v", number.Decimal(f, number.Scale(2)))
}
