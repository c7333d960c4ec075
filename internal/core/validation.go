package core

// validation.go turns raw lead input into a normalized Buyer.
//
// Validation happens at two levels:
//  1. Field checks: every field is checked against its FieldSpec and all
//     failures are collected, keyed by field name
//  2. Cross-field rules: the BHK and budget rules run only when the fields
//     they read passed their own checks
//
// Enum values match case-insensitively and are stored in canonical spelling.

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var phoneRegex = regexp.MustCompile(`^\d{10,15}$`)

// Messages for rules with fixed wording.
const (
	MsgPhoneFormat  = "Phone must be numeric and 10-15 digits"
	MsgBHKRequired  = "bhk is required for Apartment and Villa"
	MsgBudgetOrder  = "budgetMax must be greater than or equal to budgetMin"
	MsgEmailInvalid = "email must be a valid email address"
	MsgTagComma     = "tags cannot contain commas"
)

// Validate checks in and returns the normalized lead. On failure the error
// is a *ValidationError and the returned Buyer is the zero value.
// Identity, owner and timestamp fields are left for the caller to set.
func Validate(in BuyerInput) (Buyer, error) {
	errs := make(map[string]string)
	var b Buyer

	b.FullName = checkText(errs, FieldFullName, in.FullName)
	b.Email = checkEmail(errs, in.Email)
	b.Phone = checkPhone(errs, in.Phone)
	b.City = checkEnum(errs, FieldCity, in.City)
	b.PropertyType = checkEnum(errs, FieldPropertyType, in.PropertyType)
	bhk := checkEnum(errs, FieldBHK, in.BHK)
	b.Purpose = checkEnum(errs, FieldPurpose, in.Purpose)
	b.BudgetMin = checkBudget(errs, FieldBudgetMin, string(in.BudgetMin))
	b.BudgetMax = checkBudget(errs, FieldBudgetMax, string(in.BudgetMax))
	b.Timeline = checkEnum(errs, FieldTimeline, in.Timeline)
	b.Source = checkEnum(errs, FieldSource, in.Source)
	b.Status = checkEnum(errs, FieldStatus, in.Status)
	b.Notes = checkText(errs, FieldNotes, in.Notes)
	b.Tags = NormalizeTags(in.Tags)
	for _, t := range b.Tags {
		// Tags are comma-joined in CSV exports.
		if strings.Contains(t, ",") {
			errs[FieldTags] = MsgTagComma
			break
		}
	}

	// BHK rule. Only meaningful once the property type itself is valid.
	if _, bad := errs[FieldPropertyType]; !bad {
		if RequiresBHK(b.PropertyType) {
			if _, bad := errs[FieldBHK]; !bad && bhk == "" {
				errs[FieldBHK] = MsgBHKRequired
			}
			b.BHK = bhk
		} else {
			delete(errs, FieldBHK)
			b.BHK = ""
		}
	}

	// Budget rule.
	_, minBad := errs[FieldBudgetMin]
	_, maxBad := errs[FieldBudgetMax]
	if !minBad && !maxBad && b.BudgetMin != nil && b.BudgetMax != nil && *b.BudgetMax < *b.BudgetMin {
		errs[FieldBudgetMax] = MsgBudgetOrder
	}

	if len(errs) > 0 {
		return Buyer{}, &ValidationError{FieldErrors: errs}
	}
	return b, nil
}

func mustSpec(name string) FieldSpec {
	spec, ok := FieldByName(name)
	if !ok {
		panic("core: unknown field " + name)
	}
	return spec
}

func checkText(errs map[string]string, name, raw string) string {
	spec := mustSpec(name)
	v := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(v)

	switch {
	case v == "" && spec.Required:
		errs[name] = name + " is required"
	case v == "":
	case spec.MinLen > 0 && n < spec.MinLen, spec.MaxLen > 0 && n > spec.MaxLen:
		errs[name] = lengthMessage(spec)
	}
	return v
}

func lengthMessage(spec FieldSpec) string {
	if spec.MinLen > 0 {
		return fmt.Sprintf("%s must be between %d and %d characters", spec.Name, spec.MinLen, spec.MaxLen)
	}
	return fmt.Sprintf("%s must be at most %d characters", spec.Name, spec.MaxLen)
}

func checkEmail(errs map[string]string, raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if len(v) > mustSpec(FieldEmail).MaxLen {
		errs[FieldEmail] = MsgEmailInvalid
		return v
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndexByte(v, '@')+1:], ".") {
		errs[FieldEmail] = MsgEmailInvalid
	}
	return v
}

func checkPhone(errs map[string]string, raw string) string {
	v := strings.TrimSpace(raw)
	if !phoneRegex.MatchString(v) {
		errs[FieldPhone] = MsgPhoneFormat
	}
	return v
}

func checkEnum(errs map[string]string, name, raw string) string {
	spec := mustSpec(name)
	v := strings.TrimSpace(raw)
	if v == "" {
		v = spec.Default
	}
	if v == "" {
		if spec.Required {
			errs[name] = name + " is required"
		}
		return ""
	}

	canon, ok := canonicalEnum(v, spec.EnumValues)
	if !ok {
		errs[name] = fmt.Sprintf("%s must be one of: %s", name, strings.Join(spec.EnumValues, ", "))
		return ""
	}
	return canon
}

func checkBudget(errs map[string]string, name, raw string) *int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		errs[name] = name + " must be a non-negative whole number"
		return nil
	}
	if n > math.MaxInt32 {
		errs[name] = fmt.Sprintf("%s must be at most %d", name, math.MaxInt32)
		return nil
	}
	return &n
}

// NormalizeTags trims each tag and drops empty ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
