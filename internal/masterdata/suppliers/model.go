package suppliers

import "github.com/odyssey-erp/cadastro/internal/records"

// Supplier is a record of the fornecedores collection.
type Supplier struct {
	ID       records.ID `json:"id,omitempty"`
	Nome     string     `json:"nome" label:"Nome do fornecedor" validate:"required,max=200"`
	CNPJ     string     `json:"cnpj" label:"CNPJ do fornecedor" validate:"required,numeric,len=14"`
	Email    string     `json:"email" label:"Email do fornecedor" validate:"required,email"`
	Telefone string     `json:"telefone" label:"Telefone do fornecedor" validate:"omitempty,numeric,min=10,max=11"`
}

func (s Supplier) RecordID() records.ID {
	return s.ID
}
