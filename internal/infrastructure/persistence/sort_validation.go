package persistence

import (
	"strings"
)

// Sort parameters arrive from query strings and are interpolated into
// ORDER BY clauses, so both the field and the direction are validated
// against whitelists before they reach SQL.

// ValidateSortOrder normalizes the sort direction to ASC or DESC,
// defaulting to DESC for anything unrecognized
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted in
// allowedFields, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"month":        true,
	"year":         true,
	"total_amount": true,
	"paid_amount":  true,
	"status":       true,
}

// BillDetailSortFields contains allowed sort fields for bill detail lines
var BillDetailSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"service_type": true,
	"amount":       true,
}

// TransactionSortFields contains allowed sort fields for payment transactions
var TransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"amount":     true,
	"status":     true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"role":          true,
	"last_login_at": true,
}
