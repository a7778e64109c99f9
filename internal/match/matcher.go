// Package match links extracted person and organisation names to existing store records.
package match

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

// Rule names the agency matching step that produced a hit.
type Rule string

const (
	RuleNone     Rule = ""
	RuleExact    Rule = "exact"
	RuleContains Rule = "contains"
	RuleSuffix   Rule = "suffix_stripped"
)

var corporateSuffixes = map[string]struct{}{
	"ltd":          {},
	"limited":      {},
	"inc":          {},
	"incorporated": {},
	"llc":          {},
	"plc":          {},
}

// Matcher is read-only: it never creates or modifies the records it is given.
type Matcher struct {
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// MatchEmployee returns the first employee whose "first last" name contains the extracted
// name or is contained by it. Comparison ignores case, accents and repeated whitespace.
func (m *Matcher) MatchEmployee(name string, employees []entity.Employee) *entity.Employee {
	needle := m.fold(name)
	if needle == "" {
		return nil
	}
	for i := range employees {
		full := m.fold(employees[i].FullName())
		if full == "" {
			continue
		}
		if strings.Contains(full, needle) || strings.Contains(needle, full) {
			m.logger.Debug("match.employee.hit", "name", name, "employee_id", employees[i].ID)
			return &employees[i]
		}
	}
	m.logger.Debug("match.employee.miss", "name", name, "candidates", len(employees))
	return nil
}

// MatchAgency tries exact, then containment, then suffix-stripped comparison.
// The first rule with any hit wins and the first candidate in slice order is returned.
func (m *Matcher) MatchAgency(name string, agencies []entity.Agency) (*entity.Agency, Rule) {
	needle := m.fold(name)
	if needle == "" {
		return nil, RuleNone
	}

	for i := range agencies {
		if m.fold(agencies[i].Name) == needle {
			return m.agencyHit(name, &agencies[i], RuleExact)
		}
	}

	for i := range agencies {
		cand := m.fold(agencies[i].Name)
		if cand == "" {
			continue
		}
		if strings.Contains(cand, needle) || strings.Contains(needle, cand) {
			return m.agencyHit(name, &agencies[i], RuleContains)
		}
	}

	bare := stripSuffixes(needle)
	if bare != "" {
		for i := range agencies {
			cand := stripSuffixes(m.fold(agencies[i].Name))
			if cand == "" {
				continue
			}
			if cand == bare || strings.Contains(cand, bare) || strings.Contains(bare, cand) {
				return m.agencyHit(name, &agencies[i], RuleSuffix)
			}
		}
	}

	m.logger.Debug("match.agency.miss", "name", name, "candidates", len(agencies))
	return nil, RuleNone
}

func (m *Matcher) agencyHit(name string, a *entity.Agency, rule Rule) (*entity.Agency, Rule) {
	m.logger.Debug("match.agency.hit", "name", name, "agency_id", a.ID, "rule", rule)
	return a, rule
}

// fold lowercases, strips accents and collapses whitespace.
func (m *Matcher) fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// a Caser keeps state, so one per call
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// stripSuffixes drops corporate suffix tokens and trailing punctuation from an already folded name.
func stripSuffixes(folded string) string {
	fields := strings.Fields(folded)
	kept := fields[:0]
	for _, f := range fields {
		f = strings.TrimRightFunc(f, unicode.IsPunct)
		if f == "" {
			continue
		}
		if _, ok := corporateSuffixes[f]; ok {
			continue
		}
		kept = append(kept, f)
	}
	return strings.TrimRightFunc(strings.Join(kept, " "), unicode.IsPunct)
}
