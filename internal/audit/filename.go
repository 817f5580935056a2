package audit

import (
	"regexp"
	"strings"
)

// filenamePattern matches <model>_audit_results_<YYYYMMDD>_<HHMMSS>.json.
// The model segment never holds a path separator, so a matching name always
// stays inside the data directory.
var filenamePattern = regexp.MustCompile(`^([^/\\]+)_audit_results_(\d{8})_(\d{6})\.json$`)

// MatchesPattern reports whether name looks like a per-run audit file.
func MatchesPattern(name string) bool {
	return filenamePattern.MatchString(name)
}

// ParseFilename extracts the model and the ISO-like timestamp from an audit
// file name. The model segment has underscores replaced by slashes.
func ParseFilename(name string) (model, timestamp string, ok bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return strings.ReplaceAll(m[1], "_", "/"), FormatTimestamp(m[2], m[3]), true
}

// FormatTimestamp turns an 8-digit date and a 6-digit time into
// YYYY-MM-DDTHH:MM:SS.
func FormatTimestamp(date, clock string) string {
	var b strings.Builder
	b.Grow(19)
	b.WriteString(date[0:4])
	b.WriteByte('-')
	b.WriteString(date[4:6])
	b.WriteByte('-')
	b.WriteString(date[6:8])
	b.WriteByte('T')
	b.WriteString(clock[0:2])
	b.WriteByte(':')
	b.WriteString(clock[2:4])
	b.WriteByte(':')
	b.WriteString(clock[4:6])
	return b.String()
}
