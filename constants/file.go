package constants

import "strings"

// MaxResumeBytes caps uploaded resume files.
const MaxResumeBytes = 10 * 1024 * 1024

// AllowedResumeTypes maps sniffed MIME types to the extension we upload with.
var AllowedResumeTypes = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// AllowedResumeExtensions holds the extensions accepted from the file picker.
var AllowedResumeExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
