// Package model holds the wire-level data types shared by the order book,
// the engine pipeline, and the external adapters: products, orders, and the
// small enums that describe them.
package model

// Product identifies the single tradable instrument a running engine
// serves. It is immutable for the lifetime of a process.
type Product struct {
	ID            string `json:"id"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
	BaseScale     int32  `json:"base_scale"`
	QuoteScale    int32  `json:"quote_scale"`
}
