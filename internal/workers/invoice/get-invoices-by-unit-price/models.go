// internal/workers/invoice/get-invoices-by-unit-price/models.go
package getinvoicesbyunitprice

import "music-store-agent/internal/models"

type Input struct {
	CustomerID int64 `json:"customer_id"`
}

// Output lists one entry per invoice line, highest unit price first.
type Output struct {
	Invoices []models.InvoiceLinePrice `json:"invoices"`
	RowCount int                       `json:"rowCount"`
}
