// Package textdetect decides whether a byte buffer is indexable text
// and what kind of text it is, by inspecting a fixed-size sample.
package textdetect

import (
	"bytes"
	"unicode/utf8"
)

var binaryHeaders = [][]byte{
	[]byte("PK\x03\x04"),
	[]byte("\x7FELF"),
	[]byte("\x89PNG"),
}

// Detector classifies content. It owns a scratch buffer that is reused
// across calls, so a Detector must not be shared between goroutines.
type Detector struct {
	sample [SampleSize]byte
	n      int
	stats  Stats
}

// NewDetector returns a ready Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Stats returns the statistics computed by the last Validate call.
func (d *Detector) Stats() Stats {
	return d.stats
}

// Validate classifies content.
func (d *Detector) Validate(content []byte) Verdict {
	d.stats = Stats{FirstUTF8Error: -1}
	d.n = 0

	if len(content) == 0 || len(content) > MaxInputSize {
		return binary()
	}

	d.n = copy(d.sample[:], content)
	d.analyze(len(content) > SampleSize)

	if d.hasBinaryHeader() || d.stats.NullBytes > 0 {
		return binary()
	}

	return Verdict{
		Confidence: d.confidence(),
		Encoding:   EncodingUTF8,
		Category:   d.category(),
	}
}

func (d *Detector) analyze(truncated bool) {
	s := d.sample[:d.n]
	st := &d.stats
	st.SampleLen = d.n

	ascii := 0
	for _, b := range s {
		switch {
		case b == 0:
			st.NullBytes++
		case b == '\n':
			st.LineBreaks++
		case b < 32 && b != '\r' && b != '\t':
			st.ControlChars++
		}
		if b < utf8.RuneSelf {
			ascii++
		}
	}
	st.ASCIIRatio = ascii * 100 / d.n

	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(s[i:])
		if r == utf8.RuneError && size <= 1 {
			// A multi-byte sequence cut off by the sample boundary is not an error.
			if truncated && !utf8.FullRune(s[i:]) {
				break
			}
			if st.FirstUTF8Error < 0 {
				st.FirstUTF8Error = i
			}
			st.UTF8Errors++
			i++
			continue
		}
		i += size
	}
}

func (d *Detector) hasBinaryHeader() bool {
	s := d.sample[:d.n]
	for _, h := range binaryHeaders {
		if bytes.HasPrefix(s, h) {
			return true
		}
	}
	return false
}

func (d *Detector) confidence() int {
	st := d.stats
	c := 100
	c -= st.ControlChars
	c -= st.UTF8Errors * 10
	if st.LineBreaks < 2 {
		c -= 20
	}
	if st.ASCIIRatio < 90 {
		c -= 90 - st.ASCIIRatio
	}
	return max(0, min(100, c))
}

// category applies the byte-pattern heuristics in priority order.
func (d *Detector) category() Category {
	s := d.sample[:d.n]
	has := func(b byte) bool { return bytes.IndexByte(s, b) >= 0 }

	switch {
	case bytes.HasPrefix(s, []byte("#!")), bytes.HasPrefix(s, []byte("<?")):
		return Source
	case bytes.HasPrefix(s, []byte("[")),
		bytes.HasPrefix(s, []byte("# ")) && has('['):
		return Config
	case bytes.HasPrefix(s, []byte("# ")), bytes.HasPrefix(s, []byte("## ")):
		return Markdown
	case has('#') && (has('*') || has('-') || has('[') || has('`')):
		return Markdown
	case has('{'), has('}'), has('='), has(';'):
		return Source
	default:
		return Plain
	}
}
