package constants

import "strings"

// Format is the declared shape of an uploaded source document.
type Format string

const (
	IMAGE       Format = "image"
	PDF         Format = "pdf"
	SPREADSHEET Format = "spreadsheet"
	CSV         Format = "csv"
	UNKNOWN     Format = ""
)

// AllowedExtensions holds the file extensions accepted for payroll intake.
var AllowedExtensions = map[string]Format{
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
	"pdf":  PDF,
	"xlsx": SPREADSHEET,
	"xlsm": SPREADSHEET,
	"csv":  CSV,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns UNKNOWN for anything outside AllowedExtensions.
func MapExtToFormat(ext string) Format {
	if f, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return f
	}
	return UNKNOWN
}
