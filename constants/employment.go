package constants

import "strings"

type EmploymentType string

const (
	PAYE EmploymentType = "PAYE"
	LTD  EmploymentType = "LTD"
)

// CanonicalEmploymentType maps free-text employment labels onto PAYE or LTD.
func CanonicalEmploymentType(input string) (EmploymentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	for _, s := range employmentSynonyms {
		if normalized == s.label {
			return s.kind, true
		}
	}
	// "Umbrella company", "Ltd company" and the like
	for _, s := range employmentSynonyms {
		if strings.Contains(normalized, s.label) {
			return s.kind, true
		}
	}
	return "", false
}

// ordered: multi-word labels must be tried before the words they contain
var employmentSynonyms = []struct {
	label string
	kind  EmploymentType
}{
	{"self-employed", LTD},
	{"self employed", LTD},
	{"paye", PAYE},
	{"umbrella", PAYE},
	{"payroll", PAYE},
	{"employed", PAYE},
	{"ltd", LTD},
	{"limited", LTD},
	{"contractor", LTD},
	{"freelance", LTD},
}
