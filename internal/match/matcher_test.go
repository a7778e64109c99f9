package match

import (
	"testing"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

func agencies(names ...string) []entity.Agency {
	out := make([]entity.Agency, len(names))
	for i, n := range names {
		out[i] = entity.Agency{ID: n, Name: n}
	}
	return out
}

func TestMatchAgency(t *testing.T) {
	m := NewMatcher(nil)
	cases := []struct {
		extracted string
		existing  string
		want      bool
	}{
		{"ARCHER RESOURCING", "Archer Resourcing Ltd", true},
		{"Archer Resourcing Ltd", "ARCHER RESOURCING", true},
		{"Archer", "Archer Resourcing Ltd", true},
		{"Beta Corp", "Archer Resourcing Ltd", false},
		{"", "Archer Resourcing Ltd", false},
	}
	for _, c := range cases {
		got, _ := m.MatchAgency(c.extracted, agencies(c.existing))
		if (got != nil) != c.want {
			t.Errorf("MatchAgency(%q, %q) matched=%v, want %v", c.extracted, c.existing, got != nil, c.want)
		}
	}
}

func TestMatchAgencyRulePriority(t *testing.T) {
	m := NewMatcher(nil)
	list := agencies("Northwind Staffing", "northwind staffing ltd")

	got, rule := m.MatchAgency("  Northwind   STAFFING Ltd ", list)
	if got == nil || got.ID != "northwind staffing ltd" || rule != RuleExact {
		t.Fatalf("expected exact hit on second candidate, got %+v rule=%q", got, rule)
	}

	got, rule = m.MatchAgency("Northwind Staffing Limited.", agencies("Northwind Staffing PLC"))
	if got == nil || rule != RuleSuffix {
		t.Fatalf("expected suffix-stripped hit, got %+v rule=%q", got, rule)
	}
}

func TestMatchEmployee(t *testing.T) {
	m := NewMatcher(nil)
	employees := []entity.Employee{
		{ID: "e1", FirstName: "Zoë", LastName: "Adams"},
		{ID: "e2", FirstName: "John", LastName: "Smith"},
		{ID: "e3", FirstName: "", LastName: ""},
	}

	if got := m.MatchEmployee("JOHN SMITH", employees); got == nil || got.ID != "e2" {
		t.Fatalf("expected e2, got %+v", got)
	}
	if got := m.MatchEmployee("Mr John Smith (agency)", employees); got == nil || got.ID != "e2" {
		t.Fatalf("expected containment hit on e2, got %+v", got)
	}
	if got := m.MatchEmployee("zoe adams", employees); got == nil || got.ID != "e1" {
		t.Fatalf("expected accent-insensitive hit on e1, got %+v", got)
	}
	if got := m.MatchEmployee("Jane Doe", employees); got != nil {
		t.Fatalf("unexpected match %+v", got)
	}
	if got := m.MatchEmployee("   ", employees); got != nil {
		t.Fatalf("blank names must not match")
	}
}
