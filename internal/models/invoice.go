// internal/models/invoice.go
package models

type Invoice struct {
	InvoiceID         int64   `json:"InvoiceId"`
	CustomerID        int64   `json:"CustomerId"`
	InvoiceDate       string  `json:"InvoiceDate"`
	BillingAddress    *string `json:"BillingAddress"`
	BillingCity       *string `json:"BillingCity"`
	BillingState      *string `json:"BillingState"`
	BillingCountry    *string `json:"BillingCountry"`
	BillingPostalCode *string `json:"BillingPostalCode"`
	Total             float64 `json:"Total"`
}

// InvoiceLinePrice is an invoice repeated once per line item with that line's unit price.
type InvoiceLinePrice struct {
	Invoice
	UnitPrice float64 `json:"UnitPrice"`
}

// SupportEmployee is the support representative assigned to an invoice's customer.
type SupportEmployee struct {
	FirstName string  `json:"FirstName"`
	Title     *string `json:"Title"`
	Email     *string `json:"Email"`
}
