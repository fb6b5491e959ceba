package search

import "bytes"

// text is anything fold can copy from without conversion.
type text interface {
	~string | ~[]byte
}

// matcher folds operands into fixed scratch buffers before comparing.
// Operands that do not fit fail closed.
type matcher struct {
	term     []byte
	haystack []byte
}

func newMatcher(termCap, haystackCap int) *matcher {
	return &matcher{
		term:     make([]byte, termCap),
		haystack: make([]byte, haystackCap),
	}
}

// fold copies src into dst, ASCII-lowercased. It reports false when src
// does not fit.
func fold[S text](dst []byte, src S) ([]byte, bool) {
	if len(src) > len(dst) {
		return nil, false
	}
	out := dst[:len(src)]
	for i := 0; i < len(src); i++ {
		b := src[i]
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return out, true
}

// termMatches reports whether term occurs in content on word boundaries,
// ignoring ASCII case.
func termMatches[T, C text](m *matcher, term T, content C) bool {
	if len(term) == 0 {
		return false
	}
	t, ok := fold(m.term, term)
	if !ok {
		return false
	}
	c, ok := fold(m.haystack, content)
	if !ok {
		return false
	}
	return wordMatch(t, c)
}

// wordMatch finds t in c where neither neighbour is alphanumeric.
func wordMatch(t, c []byte) bool {
	for off := 0; off+len(t) <= len(c); {
		i := bytes.Index(c[off:], t)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(t)
		before := start == 0 || !isAlnum(c[start-1])
		after := end == len(c) || !isAlnum(c[end])
		if before && after {
			return true
		}
		off = start + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// eachTerm calls fn for up to max whitespace-separated terms of query.
// It returns the number of terms visited.
func eachTerm(query string, max int, fn func(term string)) int {
	n := 0
	for i := 0; i < len(query) && n < max; {
		for i < len(query) && isSpace(query[i]) {
			i++
		}
		start := i
		for i < len(query) && !isSpace(query[i]) {
			i++
		}
		if i > start {
			fn(query[start:i])
			n++
		}
	}
	return n
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
