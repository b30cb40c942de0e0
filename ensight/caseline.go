package ensight

import (
	"regexp"
	"strconv"
	"strings"
)

// Case file line parts. Each pattern captures the value in group 1 and the
// rest of the line continues at the end of that group, so the whitespace
// separating two values is kept for the next match.
var (
	lineTypeRegEx   = regexp.MustCompile(`(?:^|\s)([[:alpha:]_\s]+:)(\s|$)`)
	intRegEx        = regexp.MustCompile(`^\s+(\d+)(\s|$)`)
	numRegEx        = regexp.MustCompile(`(?:^|\s)(-?\d*\.?\d*[eE]?[+-]?\d*[^\s])(\s|$)`)
	fileNameRegEx   = regexp.MustCompile(`(?:^|\s)([[:alnum:]/_.*-]+)(\s|$)`)
	gridOptionRegEx = regexp.MustCompile(`(?:^|\s)([[:alpha:]_]+)(\s|$)`)
	idOptionRegEx   = regexp.MustCompile(`(?:^|\s)(off|given|assign|ignore)(\s|$)`)
	qualifierRegEx  = regexp.MustCompile(`^[^ ]+ ([^ ]+)`)
)

// extractPart returns the first value matched by rx and the remainder of line
func extractPart(rx *regexp.Regexp, line string) (value, rest string, ok bool) {
	loc := rx.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", line, false
	}
	return line[loc[2]:loc[3]], line[loc[3]:], true
}

func extractLineType(line string) (string, string, bool) {
	v, rest, ok := extractPart(lineTypeRegEx, line)
	return strings.TrimSpace(v), rest, ok
}

func extractInt(line string) (int, string, bool) {
	v, rest, ok := extractPart(intRegEx, line)
	if !ok {
		return 0, line, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, line, false
	}
	return n, rest, true
}

func extractNumber(line string) (float64, string, bool) {
	v, rest, ok := extractPart(numRegEx, line)
	if !ok {
		return 0, line, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, line, false
	}
	return f, rest, true
}

// extractFileName handles quoted names, which may contain spaces
func extractFileName(line string) (string, string, bool) {
	begin := strings.IndexByte(line, '"')
	if begin < 0 {
		return extractPart(fileNameRegEx, line)
	}
	end := strings.IndexByte(line[begin+1:], '"')
	if end < 0 {
		return "", line, false
	}
	return line[begin+1 : begin+1+end], line[begin+1+end+1:], true
}

// sanitize drops quotes and surrounding whitespace
func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

var sectionHeaders = map[string]bool{
	"FORMAT": true, "GEOMETRY": true, "VARIABLE": true, "TIME": true, "FILE": true,
	"MATERIAL": true, "BLOCK_CONTINUATION": true, "SCRIPTS": true,
}

// IsSectionHeader reports whether line is a bare case file section keyword
func IsSectionHeader(line string) bool {
	key := strings.Map(func(r rune) rune {
		if r == ':' || r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, line)
	return sectionHeaders[key]
}

// isNumericLine is true for lines holding only numbers, i.e. the
// continuation of a list of values
func isNumericLine(line string) bool {
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9', c == ' ', c == '\t', c == '.', c == 'e', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

// variableQualifier returns "undef" or "partial" when the section header of a
// variable file carries one
func variableQualifier(header string) string {
	m := qualifierRegEx.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return m[1]
}
