package core

import (
	"errors"
	"strings"
	"testing"
)

func validInput() BuyerInput {
	return BuyerInput{
		FullName:     "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		BudgetMin:    "5000000",
		BudgetMax:    "7000000",
		Timeline:     "0-3m",
		Source:       "Referral",
		Status:       "New",
		Notes:        "Prefers sector 22",
		Tags:         []string{"hot", "nri"},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	return valErr.FieldErrors
}

func TestValidate_Valid(t *testing.T) {
	b, err := Validate(validInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if b.FullName != "Asha Verma" || b.BHK != "2" || b.City != "Chandigarh" {
		t.Errorf("unexpected lead: %+v", b)
	}
	if b.BudgetMin == nil || *b.BudgetMin != 5000000 {
		t.Errorf("BudgetMin = %v, want 5000000", b.BudgetMin)
	}
	if b.BudgetMax == nil || *b.BudgetMax != 7000000 {
		t.Errorf("BudgetMax = %v, want 7000000", b.BudgetMax)
	}
}

func TestValidate_Normalizes(t *testing.T) {
	in := validInput()
	in.FullName = "  Asha Verma  "
	in.City = "mohali"
	in.PropertyType = "VILLA"
	in.BHK = "studio"
	in.Source = ""
	in.Status = ""
	in.Email = ""
	in.BudgetMin = ""
	in.BudgetMax = ""
	in.Tags = []string{" hot ", "", "  "}

	b, err := Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	checks := map[string][2]string{
		"fullName":     {b.FullName, "Asha Verma"},
		"city":         {b.City, "Mohali"},
		"propertyType": {b.PropertyType, "Villa"},
		"bhk":          {b.BHK, "Studio"},
		"source":       {b.Source, DefaultSource},
		"status":       {b.Status, DefaultStatus},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if b.BudgetMin != nil || b.BudgetMax != nil {
		t.Errorf("empty budgets should be absent, got %v / %v", b.BudgetMin, b.BudgetMax)
	}
	if len(b.Tags) != 1 || b.Tags[0] != "hot" {
		t.Errorf("Tags = %q, want [hot]", b.Tags)
	}
}

func TestValidate_BHKClearedForOtherTypes(t *testing.T) {
	in := validInput()
	in.PropertyType = "Plot"
	in.BHK = "not-a-bhk"

	b, err := Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if b.BHK != "" {
		t.Errorf("BHK = %q, want empty for Plot", b.BHK)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BuyerInput)
		field   string
		message string
	}{
		{"name too short", func(in *BuyerInput) { in.FullName = "A" }, FieldFullName, "fullName must be between 2 and 80 characters"},
		{"name too long", func(in *BuyerInput) { in.FullName = strings.Repeat("a", 81) }, FieldFullName, "fullName must be between 2 and 80 characters"},
		{"name missing", func(in *BuyerInput) { in.FullName = "  " }, FieldFullName, "fullName is required"},
		{"phone letters", func(in *BuyerInput) { in.Phone = "98765abcde" }, FieldPhone, MsgPhoneFormat},
		{"phone short", func(in *BuyerInput) { in.Phone = "123456789" }, FieldPhone, MsgPhoneFormat},
		{"phone long", func(in *BuyerInput) { in.Phone = "1234567890123456" }, FieldPhone, MsgPhoneFormat},
		{"email no domain dot", func(in *BuyerInput) { in.Email = "asha@example" }, FieldEmail, MsgEmailInvalid},
		{"email display name", func(in *BuyerInput) { in.Email = "Asha <asha@example.com>" }, FieldEmail, MsgEmailInvalid},
		{"city unknown", func(in *BuyerInput) { in.City = "Delhi" }, FieldCity, "city must be one of: Chandigarh, Mohali, Zirakpur, Panchkula, Other"},
		{"bhk required for apartment", func(in *BuyerInput) { in.BHK = "" }, FieldBHK, MsgBHKRequired},
		{"bhk invalid for villa", func(in *BuyerInput) { in.PropertyType = "Villa"; in.BHK = "7" }, FieldBHK, "bhk must be one of: 1, 2, 3, 4, Studio"},
		{"purpose missing", func(in *BuyerInput) { in.Purpose = "" }, FieldPurpose, "purpose is required"},
		{"budget not numeric", func(in *BuyerInput) { in.BudgetMin = "50L" }, FieldBudgetMin, "budgetMin must be a non-negative whole number"},
		{"budget negative", func(in *BuyerInput) { in.BudgetMax = "-1"; in.BudgetMin = "" }, FieldBudgetMax, "budgetMax must be a non-negative whole number"},
		{"budget beyond int4", func(in *BuyerInput) { in.BudgetMin = ""; in.BudgetMax = "5000000000" }, FieldBudgetMax, "budgetMax must be at most 2147483647"},
		{"budget order", func(in *BuyerInput) { in.BudgetMin = "900"; in.BudgetMax = "100" }, FieldBudgetMax, MsgBudgetOrder},
		{"tag with comma", func(in *BuyerInput) { in.Tags = []string{"hot", "a,b"} }, FieldTags, MsgTagComma},
		{"timeline unknown", func(in *BuyerInput) { in.Timeline = "soon" }, FieldTimeline, "timeline must be one of: 0-3m, 3-6m, >6m, Exploring"},
		{"status unknown", func(in *BuyerInput) { in.Status = "Closed" }, FieldStatus, "status must be one of: New, Qualified, Contacted, Visited, Negotiation, Converted, Dropped"},
		{"notes too long", func(in *BuyerInput) { in.Notes = strings.Repeat("n", 1001) }, FieldNotes, "notes must be at most 1000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			b, err := Validate(in)
			errs := fieldErrors(t, err)
			if got := errs[tt.field]; got != tt.message {
				t.Errorf("FieldErrors[%s] = %q, want %q", tt.field, got, tt.message)
			}
			if len(errs) != 1 {
				t.Errorf("expected exactly one field error, got %v", errs)
			}
			if b.FullName != "" {
				t.Error("failed validation should return the zero Buyer")
			}
		})
	}
}

func TestValidate_EqualBudgetsAllowed(t *testing.T) {
	in := validInput()
	in.BudgetMin = "100"
	in.BudgetMax = "100"
	if _, err := Validate(in); err != nil {
		t.Errorf("equal budgets should pass: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	errs := fieldErrors(t, mustFail(BuyerInput{}))

	for _, field := range []string{FieldFullName, FieldPhone, FieldCity, FieldPropertyType, FieldPurpose, FieldTimeline} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %s", field)
		}
	}
	// The BHK rule depends on a valid property type.
	if _, ok := errs[FieldBHK]; ok {
		t.Error("bhk should not be reported while propertyType is invalid")
	}
	// Source and status have defaults.
	if _, ok := errs[FieldSource]; ok {
		t.Error("source should default")
	}
}

func mustFail(in BuyerInput) error {
	_, err := Validate(in)
	return err
}

func TestValidationError_MessagesInFieldOrder(t *testing.T) {
	err := &ValidationError{FieldErrors: map[string]string{
		FieldTimeline: "t",
		FieldFullName: "n",
		FieldPhone:    "p",
	}}

	got := strings.Join(err.Messages(), ",")
	if got != "n,p,t" {
		t.Errorf("Messages() = %q, want %q", got, "n,p,t")
	}
	if err.Error() != "validation failed: n; p; t" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNumericText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want NumericText
	}{
		{`5000000`, "5000000"},
		{`"7500000"`, "7500000"},
		{`null`, ""},
		{`""`, ""},
	}
	for _, tt := range tests {
		var n NumericText
		if err := n.UnmarshalJSON([]byte(tt.raw)); err != nil {
			t.Errorf("UnmarshalJSON(%s): %v", tt.raw, err)
			continue
		}
		if n != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %q, want %q", tt.raw, n, tt.want)
		}
	}

	var n NumericText
	if err := n.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Error("expected error for object")
	}
}

func TestInputFromBuyer_RoundTrip(t *testing.T) {
	b, err := Validate(validInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	again, err := Validate(InputFromBuyer(b))
	if err != nil {
		t.Fatalf("Validate(InputFromBuyer): %v", err)
	}
	if changes := FindChanges(b, again); len(changes) != 0 {
		t.Errorf("round trip changed fields: %+v", changes)
	}
}
