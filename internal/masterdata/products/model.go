package products

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/cadastro/internal/records"
)

func init() {
	// The backend reads preco as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a record of the produtos collection.
type Product struct {
	ID         records.ID      `json:"id,omitempty"`
	Nome       string          `json:"nome" label:"Nome do produto" validate:"required,max=200"`
	Descricao  string          `json:"descricao" label:"Descrição do produto" validate:"max=1000"`
	Preco      decimal.Decimal `json:"preco" label:"Preço do produto" validate:"gte=0"`
	Quantidade int             `json:"quantidade" label:"Quantidade em estoque" validate:"gte=0"`
}

func (p Product) RecordID() records.ID {
	return p.ID
}
