package core

import "strings"

// FieldType represents the expected data type for a lead field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldNumeric
	FieldList
)

// FieldSpec defines validation rules for a single lead field.
type FieldSpec struct {
	Name       string   // Field name as used in JSON and CSV (camelCase)
	DBColumn   string   // Database column name
	Type       FieldType
	Required   bool     // Empty values are rejected
	MinLen     int      // Minimum length in characters (FieldText)
	MaxLen     int      // Maximum length in characters (FieldText), 0 = unbounded
	EnumValues []string // Valid values for FieldEnum
	Default    string   // Applied when the submitted value is empty
}

// Field names. These are the keys of ValidationError.Fields and the
// canonical CSV column names.
const (
	FieldFullName     = "fullName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldCity         = "city"
	FieldPropertyType = "propertyType"
	FieldBHK          = "bhk"
	FieldPurpose      = "purpose"
	FieldBudgetMin    = "budgetMin"
	FieldBudgetMax    = "budgetMax"
	FieldTimeline     = "timeline"
	FieldSource       = "source"
	FieldStatus       = "status"
	FieldNotes        = "notes"
	FieldTags         = "tags"
)

// Enumerated domains.
var (
	Cities          = []string{"Chandigarh", "Mohali", "Zirakpur", "Panchkula", "Other"}
	PropertyTypes   = []string{"Apartment", "Villa", "Plot", "Office", "Retail"}
	BHKOptions      = []string{"1", "2", "3", "4", "Studio"}
	PurposeOptions  = []string{"Buy", "Rent"}
	TimelineOptions = []string{"0-3m", "3-6m", ">6m", "Exploring"}
	SourceOptions   = []string{"Website", "Referral", "Walk-in", "Call", "Other"}
	StatusOptions   = []string{"New", "Qualified", "Contacted", "Visited", "Negotiation", "Converted", "Dropped"}
)

const (
	DefaultSource = "Website"
	DefaultStatus = "New"
)

// BuyerFields lists every editable lead field in validation and export order.
var BuyerFields = []FieldSpec{
	{Name: FieldFullName, DBColumn: "full_name", Type: FieldText, Required: true, MinLen: 2, MaxLen: 80},
	{Name: FieldEmail, DBColumn: "email", Type: FieldText, MaxLen: 254},
	{Name: FieldPhone, DBColumn: "phone", Type: FieldText, Required: true, MinLen: 10, MaxLen: 15},
	{Name: FieldCity, DBColumn: "city", Type: FieldEnum, Required: true, EnumValues: Cities},
	{Name: FieldPropertyType, DBColumn: "property_type", Type: FieldEnum, Required: true, EnumValues: PropertyTypes},
	{Name: FieldBHK, DBColumn: "bhk", Type: FieldEnum, EnumValues: BHKOptions},
	{Name: FieldPurpose, DBColumn: "purpose", Type: FieldEnum, Required: true, EnumValues: PurposeOptions},
	{Name: FieldBudgetMin, DBColumn: "budget_min", Type: FieldNumeric},
	{Name: FieldBudgetMax, DBColumn: "budget_max", Type: FieldNumeric},
	{Name: FieldTimeline, DBColumn: "timeline", Type: FieldEnum, Required: true, EnumValues: TimelineOptions},
	{Name: FieldSource, DBColumn: "source", Type: FieldEnum, Required: true, EnumValues: SourceOptions, Default: DefaultSource},
	{Name: FieldStatus, DBColumn: "status", Type: FieldEnum, Required: true, EnumValues: StatusOptions, Default: DefaultStatus},
	{Name: FieldNotes, DBColumn: "notes", Type: FieldText, MaxLen: 1000},
	{Name: FieldTags, DBColumn: "tags", Type: FieldList},
}

// FieldByName returns the spec for a field name (case-insensitive).
func FieldByName(name string) (FieldSpec, bool) {
	for _, spec := range BuyerFields {
		if strings.EqualFold(spec.Name, name) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// RequiresBHK reports whether a property type needs a bedroom category.
func RequiresBHK(propertyType string) bool {
	return strings.EqualFold(propertyType, "Apartment") || strings.EqualFold(propertyType, "Villa")
}

// canonicalEnum returns the canonical spelling of value within values.
func canonicalEnum(value string, values []string) (string, bool) {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return "", false
}

// fieldOrder maps field names to their position in BuyerFields.
func fieldOrder(name string) int {
	for i, spec := range BuyerFields {
		if spec.Name == name {
			return i
		}
	}
	return len(BuyerFields)
}
