package formatting

import "strings"

var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"`", "`"},
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	return newlines.Replace(s)
}

// CleanText trims whitespace and strips one layer of matching surrounding
// quotes from model output, along with a leading label such as "Question:".
func CleanText(s string, labels ...string) string {
	s = strings.TrimSpace(s)

	for _, label := range labels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}

	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
			break
		}
	}

	return s
}
