package heuristic

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
)

// Sentinels written when a field cannot be found.
const (
	UnknownEmployee = "Unknown Employee"
	ZeroAmount      = "0"
)

// Output keys. They match the timesheet extraction schema so fallback records flow
// through the same narrowing as AI records.
const (
	KeyEmployeeName = "employee_name"
	KeyAgencyName   = "agency_name"
	KeyHoursWorked  = "hours_worked"
	KeyPayRate      = "pay_rate"
	KeyGrossPay     = "gross_pay"
	KeyWeekEnding   = "week_ending"
	KeyFallbackMode = "fallback_mode"
)

const money = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`

// field is one target with patterns ordered from most specific to most generic.
type field struct {
	key      string
	patterns []*regexp.Regexp
	fallback any
	accept   func(string) (any, bool)
}

var fields = []field{
	{
		key: KeyEmployeeName,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^[ \t]*(?i:employee|worker|candidate|operative|contractor|temp)(?i:[ \t]+name)?[ \t]*[:\-][ \t]*(\p{Lu}[\p{L}'\-]+(?:[ \t]+\p{Lu}[\p{L}'\-]+){0,3})`),
			regexp.MustCompile(`(?m)^[ \t]*(?i:name|staff|person)[ \t]*[:\-][ \t]*(\p{Lu}[\p{L}'\-]+(?:[ \t]+\p{Lu}[\p{L}'\-]+){0,3})`),
			regexp.MustCompile(`(?m)^[ \t]*(\p{Lu}[\p{L}'\-]+[ \t]+\p{Lu}[\p{L}'\-]+)[ \t]*$`),
		},
		fallback: UnknownEmployee,
		accept:   acceptName,
	},
	{
		key: KeyHoursWorked,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total[ \t]+hours(?:[ \t]+worked)?[ \t]*[:\-]?[ \t]*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(?i)hours(?:[ \t]+(?:worked|charged))?[ \t]*[:\-][ \t]*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)[ \t]*(?:hrs|hours)\b`),
		},
		fallback: ZeroAmount,
		accept:   acceptNumber,
	},
	{
		key: KeyPayRate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:pay[ \t]*rate|hourly[ \t]*rate|rate[ \t]+per[ \t]+hour)[ \t]*[:\-]?[ \t]*[£$€]?[ \t]*` + money),
			regexp.MustCompile(`(?i)[£$€][ \t]*` + money + `[ \t]*(?:/|per)[ \t]*(?:hr|hour|h)\b`),
			regexp.MustCompile(`(?i)\brate[ \t]*[:\-]?[ \t]*[£$€]?[ \t]*` + money),
		},
		fallback: ZeroAmount,
		accept:   acceptNumber,
	},
	{
		key: KeyGrossPay,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:total[ \t]+)?gross(?:[ \t]+(?:pay|amount|wages))?[ \t]*[:\-]?[ \t]*[£$€]?[ \t]*` + money),
			regexp.MustCompile(`(?i)total[ \t]*(?:pay|amount|due|paid)?[ \t]*[:\-]?[ \t]*[£$€][ \t]*` + money),
			regexp.MustCompile(`[£$€][ \t]*(\d{1,3}(?:,\d{3})*\.\d{2})`),
		},
		fallback: ZeroAmount,
		accept:   acceptNumber,
	},
	{
		key: KeyAgencyName,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^[ \t]*(?i:agency|supplier|recruitment[ \t]+agency)(?i:[ \t]+name)?[ \t]*[:\-][ \t]*(\S.*?)[ \t]*$`),
			regexp.MustCompile(`(\p{Lu}[\p{L}&'\-]*(?:[ \t]+\p{Lu}[\p{L}&'\-]*){0,4}[ \t]+(?:Ltd|LTD|Limited|LIMITED|LLP|PLC|Plc|Recruitment|RECRUITMENT|Resourcing|RESOURCING|Staffing|STAFFING))\b`),
		},
		fallback: nil,
		accept:   acceptAgency,
	},
	{
		key: KeyWeekEnding,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:week[ \t]*ending|w/e|period[ \t]*end(?:ing)?|pay[ \t]*period[ \t]*end)(?:[ \t]+date)?[ \t]*[:\-]?[ \t]*(\d{4}-\d{2}-\d{2}|\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{1,2}[ \t]+\p{L}+[ \t]+\d{4})`),
			regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
			regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
		},
		fallback: nil,
		accept:   acceptDate,
	},
}

// headerTokens are boilerplate words that never appear in a person's name.
var headerTokens = map[string]struct{}{
	"timesheet": {}, "time": {}, "sheet": {}, "remittance": {}, "advice": {}, "invoice": {},
	"total": {}, "totals": {}, "summary": {}, "statement": {}, "payslip": {}, "pay": {}, "slip": {},
	"street": {}, "road": {}, "lane": {}, "avenue": {}, "house": {}, "unit": {}, "floor": {},
	"company": {}, "limited": {}, "ltd": {}, "agency": {}, "recruitment": {}, "resourcing": {},
	"payroll": {}, "page": {}, "date": {}, "week": {}, "ending": {}, "hours": {}, "rate": {},
	"gross": {}, "net": {}, "address": {}, "dear": {}, "regards": {}, "client": {}, "services": {},
	"employee": {}, "name": {}, "signature": {}, "approved": {}, "authorised": {}, "period": {},
}

// Extractor is the regex path used when the structured-extraction service is unavailable.
type Extractor struct {
	Logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

// ExtractFallback always returns exactly one record. For every field the first pattern
// with an accepted match anywhere in text wins; unmatched fields keep their sentinel.
func (x *Extractor) ExtractFallback(text string) map[string]any {
	rec := make(map[string]any, len(fields)+1)
	matched := 0
	for _, f := range fields {
		v, ok := firstAccepted(text, f)
		if !ok {
			rec[f.key] = f.fallback
			continue
		}
		rec[f.key] = v
		matched++
	}
	rec[KeyFallbackMode] = true

	x.Logger.Info("heuristic.extract.done",
		"text_len", len(text),
		"fields_matched", matched,
		"fields_total", len(fields),
		"employee_name", rec[KeyEmployeeName],
	)
	return rec
}

func firstAccepted(text string, f field) (any, bool) {
	for _, re := range f.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if v, ok := f.accept(strings.TrimSpace(m[1])); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// acceptName cuts the candidate at the first boilerplate word and needs something left.
func acceptName(s string) (any, bool) {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if isHeaderToken(w) {
			break
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 || (len(kept) < len(words) && len(kept) < 2) {
		return nil, false
	}
	return strings.Join(kept, " "), true
}

func isHeaderToken(w string) bool {
	_, ok := headerTokens[strings.ToLower(strings.Trim(w, ".,:;'-"))]
	return ok
}

func acceptNumber(s string) (any, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil, false
	}
	return s, true
}

func acceptAgency(s string) (any, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), ".,;:")
	if len(s) < 2 || isHeaderToken(s) {
		return nil, false
	}
	return s, true
}

func acceptDate(s string) (any, bool) {
	d, ok := normalize.ParseDate(s)
	if !ok {
		return nil, false
	}
	return normalize.FormatDate(d), true
}
