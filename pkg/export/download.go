package export

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Attachment is a rendered payload ready to be handed to the client's save dialog.
type Attachment struct {
	Filename string
	MIMEType string
	Body     []byte
}

// NewCSVAttachment wraps delimited text as a CSV download.
func NewCSVAttachment(filename, text string) Attachment {
	return Attachment{Filename: filename, MIMEType: CSVMIMEType, Body: []byte(text)}
}

// WriteTo sends the attachment with download headers. No byte-order mark is written.
func (a Attachment) WriteTo(w http.ResponseWriter) error {
	mime := a.MIMEType
	if mime == "" {
		mime = CSVMIMEType
	}
	h := w.Header()
	h.Set("Content-Type", mime)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename))
	h.Set("Content-Length", strconv.Itoa(len(a.Body)))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(a.Body); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	return nil
}

// Filename builds "<subject>_<qualifier>.<ext>", falling back to "all" for an empty qualifier.
func Filename(subject, qualifier, ext string) string {
	subject = SanitizeFilename(subject)
	if subject == "" {
		subject = "export"
	}
	qualifier = SanitizeFilename(qualifier)
	if qualifier == "" {
		qualifier = "all"
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "csv"
	}
	return fmt.Sprintf("%s_%s.%s", subject, qualifier, ext)
}

const maxFilenameBytes = 100

// SanitizeFilename strips path and header-breaking characters and caps the
// length without splitting a UTF-8 sequence.
func SanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "\"", "", "\n", "", "\r", "", ",", "-")
	result := replacer.Replace(raw)
	for strings.Contains(result, "..") {
		result = strings.ReplaceAll(result, "..", ".")
	}
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.TrimLeft(result, ".")
	if len(result) <= maxFilenameBytes {
		return result
	}
	cut := maxFilenameBytes
	for cut > 0 && !utf8.RuneStart(result[cut]) {
		cut--
	}
	return result[:cut]
}
