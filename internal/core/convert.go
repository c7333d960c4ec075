package core

// convert.go normalizes messy CSV cell values before validation.
//
// These functions handle the reality of spreadsheet exports:
//   - Currency symbols and thousand separators in budgets
//   - Excel formula prefixes (="value")
//   - Legacy snake_case column names
//
// Lenient parsers return ok=false instead of an error; the import pipeline
// treats that as an absent value.

import (
	"regexp"
	"strconv"
	"strings"
)

var integerRegex = regexp.MustCompile(`^\d+$`)

// ExportColumns is the canonical CSV column order for both export and import.
var ExportColumns = []string{
	"id", FieldFullName, FieldEmail, FieldPhone, FieldCity, FieldPropertyType, FieldBHK,
	FieldPurpose, FieldBudgetMin, FieldBudgetMax, FieldTimeline, FieldSource, FieldStatus,
	FieldNotes, FieldTags, "ownerId", "updatedAt",
}

// columnAliases maps accepted legacy headers to canonical column names.
var columnAliases = map[string]string{
	"full_name":     FieldFullName,
	"property_type": FieldPropertyType,
	"budget_min":    FieldBudgetMin,
	"budget_max":    FieldBudgetMax,
}

// CanonicalColumn resolves a CSV header cell to its canonical column name.
// Matching is case-insensitive. Unknown headers are returned cleaned and
// lowercased with ok=false.
func CanonicalColumn(header string) (string, bool) {
	h := CleanCell(header)
	for _, col := range ExportColumns {
		if strings.EqualFold(col, h) {
			return col, true
		}
	}
	if col, ok := columnAliases[strings.ToLower(h)]; ok {
		return col, true
	}
	return strings.ToLower(h), false
}

// ParseBudget converts budget text to a non-negative integer.
// Currency symbols, thousands separators and a trailing ".00" are removed.
func ParseBudget(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	for _, sym := range []string{"$", "₹", "€", "£", "Rs.", "Rs", "INR", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if whole, frac, found := strings.Cut(s, "."); found && strings.Trim(frac, "0") == "" {
		s = whole
	}

	if !integerRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SplitTags splits a comma-separated tag cell, trimming and dropping empties.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

// JoinTags is the inverse of SplitTags for export.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// CleanCell trims whitespace and unwraps the Excel text wrapper (="...").
// Quote characters inside the value are content and are kept.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// InputFromRow maps an import row to raw lead input. Budgets are coerced
// leniently: text that does not parse is treated as absent.
func InputFromRow(row ImportRow) BuyerInput {
	in := BuyerInput{
		FullName:     CleanCell(row[FieldFullName]),
		Email:        CleanCell(row[FieldEmail]),
		Phone:        CleanCell(row[FieldPhone]),
		City:         CleanCell(row[FieldCity]),
		PropertyType: CleanCell(row[FieldPropertyType]),
		BHK:          CleanCell(row[FieldBHK]),
		Purpose:      CleanCell(row[FieldPurpose]),
		Timeline:     CleanCell(row[FieldTimeline]),
		Source:       CleanCell(row[FieldSource]),
		Status:       CleanCell(row[FieldStatus]),
		Notes:        strings.TrimSpace(row[FieldNotes]),
		Tags:         SplitTags(row[FieldTags]),
	}
	if n, ok := ParseBudget(row[FieldBudgetMin]); ok {
		in.BudgetMin = NumericText(strconv.Itoa(n))
	}
	if n, ok := ParseBudget(row[FieldBudgetMax]); ok {
		in.BudgetMax = NumericText(strconv.Itoa(n))
	}
	return in
}
