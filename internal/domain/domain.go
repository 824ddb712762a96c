// Package domain holds the entities shared by the repositories, the HTTP
// handlers and the API client. JSON field names are the external contract.
package domain

import "github.com/shopspring/decimal"

func init() {
	// Money travels as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
