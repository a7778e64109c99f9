package llm

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

// MaxPromptTextChars caps the document text embedded in a single request.
const MaxPromptTextChars = 60000

// BuildSystemPrompt composes the task, the exact output shape and the field-mapping rules for kind.
func BuildSystemPrompt(kind constants.DocumentKind) string {
	keys := RecordKeys(kind)
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = `"` + k + `"`
	}

	parts := []string{
		"You are an expert in extracting structured payroll data from OCR and spreadsheet text.",
		taskLine(kind),
		"Return exactly one JSON object with a \"records\" array. Each record is one object.",
		"Every record must contain exactly these keys: [" + strings.Join(quoted, ", ") + "].",
		"If a field is missing, set it to an empty string. Never output null.",
		"If the same person appears several times (different periods or pay types), emit one record per entry.",
		"Return values exactly as found in the text; do not calculate totals.",
		"Dates: keep the document's date, prefer YYYY-MM-DD when unambiguous; dates are UK day-first.",
		"Employment type mapping: umbrella, PAYE or payroll -> \"" + string(constants.PAYE) + "\"; " +
			"limited, Ltd, contractor or self-employed -> \"" + string(constants.LTD) + "\".",
	}
	parts = append(parts, kindRules(kind)...)
	parts = append(parts, "Required output shape:\n"+mustJSON(BuildOutputShape(kind)))
	return strings.Join(parts, "\n")
}

// BuildUserPrompt embeds the literal document text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if fn := strings.TrimSpace(req.FilenameHint); fn != "" {
		b.WriteString("Filename: ")
		b.WriteString(fn)
		b.WriteString("\n")
	}
	text := strings.TrimSpace(req.Text)
	b.WriteString("\nHere is the document text:\n")
	if len(text) > MaxPromptTextChars {
		b.WriteString(truncateUTF8(text, MaxPromptTextChars))
		b.WriteString("\n...(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func taskLine(kind constants.DocumentKind) string {
	switch kind {
	case constants.KindRemittance:
		return "The text is an agency remittance advice listing payments for multiple people, usually followed by a summary or totals section."
	case constants.KindTimesheet:
		return "The text is one or more timesheets: extract one record per person per period worked."
	case constants.KindEmployeeBulk:
		return "The text is a bulk list of employees: extract one record per employee with personal, employment and bank details."
	case constants.KindAgencyBulk:
		return "The text is a bulk list of staffing agencies: extract one record per agency with contact, payment and bank details."
	default:
		return "Extract every record found in the text."
	}
}

func kindRules(kind constants.DocumentKind) []string {
	switch kind {
	case constants.KindRemittance:
		return []string{
			"Also return \"" + RemittanceSummaryKey + "\": a single object whose only key is the real agency name and whose value holds document-level totals (Total Gross Pay, Net Pay, Fee, Total Hours, Total Amount Paid, VAT Rate).",
			"There is only one agency per document. Never use \"Others\" as an agency name.",
			"Do not create a record where the person name is \"Other\" or \"Others\".",
			"A field called \"Manual Total Gross Pays\" is added later by the system; do not produce it.",
		}
	case constants.KindTimesheet:
		return []string{
			"\"week_ending\" is the last day of the period worked. \"hours_worked\" excludes overtime when overtime is listed separately.",
			"\"gross_pay\" is the pay before deductions for that record.",
		}
	case constants.KindEmployeeBulk:
		return []string{
			"Split full names into \"first_name\" and \"last_name\".",
			"\"sort_code\" keeps the form 12-34-56; \"account_number\" keeps leading zeros.",
		}
	case constants.KindAgencyBulk:
		return []string{
			"\"payment_terms_days\" is a whole number of days, e.g. \"30\" for 30 days net.",
		}
	default:
		return nil
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
