package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate         = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr         = regexp.MustCompile(`\bgbp\b|[£$€]`)
	reAmount       = regexp.MustCompile(`\b\d{1,3}(,\d{3})*\.\d{2}\b|\b\d+\.\d{2}\b`)
	rePayrollTerms = regexp.MustCompile(`\b(hours|rate|gross|net pay|timesheet|remittance|week ending|paye|umbrella)\b`)
)

// heuristicConfidence scores text by how much it looks like a payroll document.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if rePayrollTerms.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights engine confidence higher when we have it.
func blendConfidence(ocrConf, heurConf float32) float32 {
	if ocrConf <= 0 {
		return heurConf
	}
	conf := 0.7*ocrConf + 0.3*heurConf
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
