// internal/workers/invoice/get-invoices-by-date/models.go
package getinvoicesbydate

import "music-store-agent/internal/models"

// Input holds only the session customer set by the verification step.
type Input struct {
	CustomerID int64 `json:"customer_id"`
}

type Output struct {
	Invoices []models.Invoice `json:"invoices"`
	RowCount int              `json:"rowCount"`
}
