// internal/workers/invoice/get-employee-by-invoice/models.go
package getemployeebyinvoice

import "music-store-agent/internal/models"

type Input struct {
	InvoiceID  int64 `json:"invoice_id"`
	CustomerID int64 `json:"customer_id"`
}

// Output holds the employee, or a message when the invoice does not belong
// to the customer.
type Output struct {
	Employee *models.SupportEmployee `json:"employee"`
	Message  string                  `json:"message,omitempty"`
}
