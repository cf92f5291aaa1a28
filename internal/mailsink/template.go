package mailsink

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultSubject stands in for a missing subject in %s.
const defaultSubject = "no-subject"

// tokenRegex matches a placeholder with an optional {N} length limit.
// Alternation is leftmost-first, so %dt and %ts win over %d, %t and %s.
var tokenRegex = regexp.MustCompile(`%(dt|ts|fn|fa|d|t|s)(?:\{(\d+)\})?`)

// pathSeparators keeps substituted values from introducing subdirectories.
var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// TemplateData is everything a file name template can reference.
type TemplateData struct {
	Now         time.Time
	Subject     string
	FromName    string
	FromAddress string
}

// Expand substitutes every placeholder in template:
//
//	%ts  seconds since the Unix epoch
//	%dt  UTC date and time, 2006-01-02T15-04-05
//	%d   UTC date, 2006-01-02
//	%t   UTC time, 15-04-05
//	%fn  sender display name
//	%fa  sender address
//	%s   subject, or "no-subject"
//
// A trailing {N} keeps the first N characters of the value. {0} leaves the
// value untouched. Anything else, including unknown placeholders, is copied
// as is.
func Expand(template string, data TemplateData) string {
	matches := tokenRegex.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(template[last:m[0]])

		value := data.value(template[m[2]:m[3]])
		if m[4] >= 0 {
			if n, err := strconv.Atoi(template[m[4]:m[5]]); err == nil && n > 0 {
				value = truncate(value, n)
			}
		}
		b.WriteString(pathSeparators.Replace(value))

		last = m[1]
	}
	b.WriteString(template[last:])

	return b.String()
}

func (d TemplateData) value(token string) string {
	now := d.Now.UTC()
	switch token {
	case "ts":
		return strconv.FormatInt(now.Unix(), 10)
	case "dt":
		return now.Format("2006-01-02T15-04-05")
	case "d":
		return now.Format("2006-01-02")
	case "t":
		return now.Format("15-04-05")
	case "fn":
		return d.FromName
	case "fa":
		return d.FromAddress
	case "s":
		if d.Subject == "" {
			return defaultSubject
		}
		return d.Subject
	}
	return ""
}

// safeFileName replaces a name that path.Join would clean away or resolve
// to a parent directory.
func safeFileName(name string) string {
	switch name {
	case "", ".", "..":
		return "_"
	}
	return name
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
