// internal/workers/identity/resolve-customer/models.go
package resolvecustomer

type Input struct {
	Identifier string `json:"identifier"`
}

// Output leaves customer_id null when the identifier matched no customer.
type Output struct {
	Found      bool   `json:"found"`
	CustomerID *int64 `json:"customer_id"`
	Ambiguous  bool   `json:"ambiguous,omitempty"`
}
