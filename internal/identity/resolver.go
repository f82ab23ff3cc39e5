// Package identity maps a free-form customer identifier to a customer ID.
package identity

import (
	"context"
	"strconv"
	"strings"

	"music-store-agent/internal/common/logger"
)

// Kind is the shape an identifier was classified as.
type Kind string

const (
	KindCustomerID Kind = "customer_id"
	KindPhone      Kind = "phone"
	KindEmail      Kind = "email"
	KindUnknown    Kind = "unknown"
)

// CustomerLookup finds customers by exact contact value. Implementations
// return matching IDs lowest first; more than one means the value is shared.
type CustomerLookup interface {
	CustomerIDsByPhone(ctx context.Context, phone string) ([]int64, error)
	CustomerIDsByEmail(ctx context.Context, email string) ([]int64, error)
}

// Result is the outcome of resolving an identifier.
type Result struct {
	CustomerID int64
	Found      bool
	Kind       Kind
	Ambiguous  bool
}

type Resolver struct {
	lookup CustomerLookup
	logger logger.Logger
}

func NewResolver(lookup CustomerLookup, log logger.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: log}
}

// Classify reports which lookup an identifier selects. Digits win over the
// other shapes, then a leading "+", then "@".
func Classify(identifier string) Kind {
	switch {
	case isDigits(identifier):
		return KindCustomerID
	case strings.HasPrefix(identifier, "+"):
		return KindPhone
	case strings.Contains(identifier, "@"):
		return KindEmail
	default:
		return KindUnknown
	}
}

// Resolve returns the customer ID for identifier. An unmatched or
// unclassifiable identifier is not found, never an error; errors come only
// from the store.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Result, error) {
	kind := Classify(identifier)
	result := Result{Kind: kind}

	var (
		ids []int64
		err error
	)
	switch kind {
	case KindCustomerID:
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return result, nil
		}
		result.CustomerID = id
		result.Found = true
		return result, nil
	case KindPhone:
		ids, err = r.lookup.CustomerIDsByPhone(ctx, identifier)
	case KindEmail:
		ids, err = r.lookup.CustomerIDsByEmail(ctx, identifier)
	default:
		return result, nil
	}
	if err != nil {
		return result, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	result.CustomerID = ids[0]
	result.Found = true
	if len(ids) > 1 {
		result.Ambiguous = true
		r.logger.Warn("identifier matches more than one customer, using the lowest id", map[string]interface{}{
			"kind":       string(kind),
			"customerId": ids[0],
			"otherId":    ids[1],
		})
	}
	return result, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
