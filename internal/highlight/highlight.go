package highlight

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiCSI = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

type Result struct {
	Text  string
	Count int
	Lines []int
}

// FirstLine returns the line index of the first match, or -1 when the
// query matched nothing.
func (r Result) FirstLine() int {
	if len(r.Lines) == 0 {
		return -1
	}
	return r.Lines[0]
}

// ApplyANSI wraps every case-insensitive occurrence of query in wrap while
// leaving existing CSI escape sequences intact, so already styled terminal
// output can be re-highlighted without corrupting it.
func ApplyANSI(input, query string, wrap func(string) string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Text: input}
	}
	if wrap == nil {
		wrap = func(s string) string { return s }
	}

	lines := strings.Split(input, "\n")
	out := make([]string, len(lines))
	res := Result{}
	for i, line := range lines {
		rendered, count := highlightSegments(line, query, wrap)
		out[i] = rendered
		if count > 0 {
			res.Lines = append(res.Lines, i)
			res.Count += count
		}
	}
	res.Text = strings.Join(out, "\n")
	return res
}

// highlightSegments splits a line around CSI sequences and highlights only
// the plain text between them.
func highlightSegments(line, query string, wrap func(string) string) (string, int) {
	escapes := ansiCSI.FindAllStringIndex(line, -1)
	if len(escapes) == 0 {
		return highlightPlain(line, query, wrap)
	}

	var b strings.Builder
	total, pos := 0, 0
	for _, esc := range escapes {
		plain, n := highlightPlain(line[pos:esc[0]], query, wrap)
		b.WriteString(plain)
		b.WriteString(line[esc[0]:esc[1]])
		total += n
		pos = esc[1]
	}
	plain, n := highlightPlain(line[pos:], query, wrap)
	b.WriteString(plain)
	total += n
	return b.String(), total
}

func highlightPlain(s, query string, wrap func(string) string) (string, int) {
	if s == "" || query == "" {
		return s, 0
	}

	var b strings.Builder
	count, pos := 0, 0
	for {
		at, n := foldIndex(s, query, pos)
		if at < 0 {
			b.WriteString(s[pos:])
			break
		}
		b.WriteString(s[pos:at])
		b.WriteString(wrap(s[at : at+n]))
		count++
		pos = at + n
	}
	if count == 0 {
		return s, 0
	}
	return b.String(), count
}

// foldIndex finds the first case-insensitive occurrence of query in s at
// or after byte offset from, matching rune windows of s directly. Offsets
// and lengths therefore always land on s's own rune boundaries, even when
// a case fold changes a rune's encoded size. Returns -1 on no match.
func foldIndex(s, query string, from int) (int, int) {
	for i := from; i < len(s); {
		if n := foldPrefixLen(s[i:], query); n >= 0 {
			return i, n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

// foldPrefixLen reports how many bytes of s a case-insensitive match of
// query covers when one starts at the beginning of s, else -1.
func foldPrefixLen(s, query string) int {
	n := 0
	for _, qr := range query {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || !strings.EqualFold(string(r), string(qr)) {
			return -1
		}
		n += size
	}
	return n
}
