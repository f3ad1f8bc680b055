package shared

import "errors"

var (
	ErrInvalidNumber  = errors.New("número inválido")
	ErrInvalidDecimal = errors.New("valor decimal inválido")
)
