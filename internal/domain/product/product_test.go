package product

import (
	"reflect"
	"strings"
	"testing"
)

func price(v float64) *float64 { return &v }

func validRow() Row {
	return Row{
		ID:              7,
		Name:            "Ultrasound Scanner",
		Brand:           "Acme",
		Model:           "ABC-123",
		Condition:       "Used",
		Price:           price(300),
		CategoryName:    "Imaging",
		SubcategoryName: "Ultrasound",
		SalesArea:       "Texas",
		Year:            2019,
		SupplierID:      3,
		Description:     "Portable unit",
		ImageURL:        "https://img.example/7.jpg",
	}
}

func TestNew_Valid(t *testing.T) {
	row := validRow()
	rec, err := New(&row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != 7 {
		t.Errorf("ID = %d, want 7", rec.ID())
	}
	if !reflect.DeepEqual(rec.NameTokens(), []string{"ultrasound", "scanner"}) {
		t.Errorf("NameTokens = %q", rec.NameTokens())
	}
	if !reflect.DeepEqual(rec.SalesAreaTokens(), []string{"texas"}) {
		t.Errorf("SalesAreaTokens = %q", rec.SalesAreaTokens())
	}
	if rec.Condition() != ConditionUsed {
		t.Errorf("Condition = %q, want used", rec.Condition())
	}
	if rec.Price() != 300 {
		t.Errorf("Price = %v, want 300", rec.Price())
	}
	if rec.Name() != "Ultrasound Scanner" {
		t.Errorf("Name = %q", rec.Name())
	}
}

func TestNew_SalesAreaJoined(t *testing.T) {
	row := validRow()
	row.SalesArea = "United States, Texas"
	rec, err := New(&row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SalesArea() != "united states texas" {
		t.Errorf("SalesArea = %q, want %q", rec.SalesArea(), "united states texas")
	}
}

func TestNew_EmptyConditionAllowed(t *testing.T) {
	row := validRow()
	row.Condition = ""
	rec, err := New(&row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Condition() != ConditionNone {
		t.Errorf("Condition = %q, want empty", rec.Condition())
	}
}

func TestNew_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Row)
		wantErr string
	}{
		{"missing name", func(r *Row) { r.Name = "" }, "name is required"},
		{"blank name", func(r *Row) { r.Name = "   " }, "name is required"},
		{"missing area", func(r *Row) { r.SalesArea = "" }, "sales area is required"},
		{"null price", func(r *Row) { r.Price = nil }, "price is required"},
		{"negative price", func(r *Row) { r.Price = price(-1) }, "invalid price"},
		{"unknown condition", func(r *Row) { r.Condition = "refurbished" }, "unknown condition"},
		{"name without tokens", func(r *Row) { r.Name = "---" }, "no searchable tokens"},
		{"area without tokens", func(r *Row) { r.SalesArea = "!!" }, "no searchable tokens"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(&row)
			_, err := New(&row)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCondition_IsValid(t *testing.T) {
	for _, c := range []Condition{ConditionNone, ConditionNew, ConditionUsed} {
		if !c.IsValid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Condition("broken").IsValid() {
		t.Error("broken should be invalid")
	}
}
