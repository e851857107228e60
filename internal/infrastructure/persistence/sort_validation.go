package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

// likePattern builds a case-insensitive LIKE pattern. LOWER(...) LIKE is
// used instead of ILIKE so that queries also run on SQLite.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// PartnerSortFields contains allowed sort fields for partners
var PartnerSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"city":       true,
	"status":     true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"reference":     true,
	"designation":   true,
	"unit_price_ht": true,
	"tva_rate":      true,
	"status":        true,
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"number":       true,
	"issue_date":   true,
	"due_date":     true,
	"partner_name": true,
	"status":       true,
	"total_ttc":    true,
	"net_to_pay":   true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"number":      true,
	"incurred_at": true,
	"category":    true,
	"amount_ht":   true,
	"amount_ttc":  true,
	"status":      true,
}

// EmployeeSortFields contains allowed sort fields for employees
var EmployeeSortFields = map[string]bool{
	"created_at":  true,
	"code":        true,
	"full_name":   true,
	"position":    true,
	"hire_date":   true,
	"base_salary": true,
}

// PayslipSortFields contains allowed sort fields for payslips
var PayslipSortFields = map[string]bool{
	"created_at":   true,
	"period_start": true,
	"gross_salary": true,
	"net_salary":   true,
	"status":       true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"created_at": true,
	"code":       true,
	"name":       true,
	"start_date": true,
	"budget":     true,
	"status":     true,
}
