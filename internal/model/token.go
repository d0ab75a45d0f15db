package model

// NativeAddress marks the chain's native currency in a token table.
const NativeAddress = "native"

// Token describes a token tracked by the portfolio view.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	Address  string `json:"address"`
}

// IsNative reports whether the token is the native currency.
func (t Token) IsNative() bool {
	return t.Address == NativeAddress
}
