package customers

import "github.com/odyssey-erp/cadastro/internal/records"

// DefaultCountry pre-fills the address of a new customer.
const DefaultCountry = "Brasil"

// Address is owned by a Customer.
type Address struct {
	CEP         string `json:"cep" label:"CEP" validate:"required"`
	Logradouro  string `json:"logradouro" label:"Logradouro" validate:"required"`
	Numero      string `json:"numero" label:"Número" validate:"required"`
	Complemento string `json:"complemento" label:"Complemento"`
	Bairro      string `json:"bairro" label:"Bairro" validate:"required"`
	Cidade      string `json:"cidade" label:"Cidade" validate:"required"`
	Estado      string `json:"estado" label:"Estado" validate:"required"`
	Pais        string `json:"pais" label:"País" validate:"required"`
}

// Customer is a record of the clientes collection.
type Customer struct {
	ID       records.ID `json:"id,omitempty"`
	Nome     string     `json:"nome" label:"Nome do cliente" validate:"required,max=200"`
	CPF      string     `json:"cpf" label:"CPF do cliente" validate:"required,numeric,len=11"`
	Email    string     `json:"email" label:"Email do cliente" validate:"required,email"`
	Endereco Address    `json:"endereco" label:"Endereço"`
}

func (c Customer) RecordID() records.ID {
	return c.ID
}

// New returns an empty customer with the default country.
func New() Customer {
	return Customer{Endereco: Address{Pais: DefaultCountry}}
}
