package enums

import "fmt"

// StockAuditReason maps to the stock_audit_reason_enum enum in Postgres.
type StockAuditReason string

const (
	StockAuditReasonDelivery StockAuditReason = "delivery"
	StockAuditReasonSale     StockAuditReason = "sale"
	StockAuditReasonWaste    StockAuditReason = "waste"
)

var validStockAuditReasons = []StockAuditReason{
	StockAuditReasonDelivery,
	StockAuditReasonSale,
	StockAuditReasonWaste,
}

// String implements fmt.Stringer.
func (r StockAuditReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StockAuditReason.
func (r StockAuditReason) IsValid() bool {
	for _, candidate := range validStockAuditReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockAuditReason converts raw input into a StockAuditReason.
func ParseStockAuditReason(value string) (StockAuditReason, error) {
	for _, candidate := range validStockAuditReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock audit reason %q", value)
}
