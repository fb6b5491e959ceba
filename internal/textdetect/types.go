package textdetect

// SampleSize is the number of leading bytes inspected per input.
const SampleSize = 512

// MaxInputSize is the largest input Validate will sample. Larger inputs
// are rejected without being read.
const MaxInputSize = SampleSize * 1024

// MinConfidence is the confidence at or above which content is text.
const MinConfidence = 50

// Category is the inferred kind of a text sample.
type Category int

const (
	// Unknown means binary, empty, or unclassifiable content.
	Unknown Category = iota
	// Plain is prose or unstructured text.
	Plain
	// Markdown is text carrying heading or list markers.
	Markdown
	// Source is program source or markup.
	Source
	// Config is an INI/TOML style configuration file.
	Config
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Plain:
		return "plain"
	case Markdown:
		return "markdown"
	case Source:
		return "source"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Encoding is the detected character encoding.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingUTF8
)

// String returns the encoding name.
func (e Encoding) String() string {
	if e == EncodingUTF8 {
		return "utf-8"
	}
	return "unknown"
}

// Verdict is the classification of one input.
type Verdict struct {
	Confidence int
	Encoding   Encoding
	Category   Category
}

// IsText reports whether the content should be indexed.
func (v Verdict) IsText() bool {
	return v.Confidence >= MinConfidence
}

// binary is the verdict for content that must never be indexed.
func binary() Verdict {
	return Verdict{Confidence: 0, Encoding: EncodingUnknown, Category: Unknown}
}

// Stats are the byte statistics of the last sample.
type Stats struct {
	SampleLen    int
	NullBytes    int
	ControlChars int
	LineBreaks   int
	// ASCIIRatio is the percentage (0-100) of bytes below 0x80.
	ASCIIRatio int
	UTF8Errors int
	// FirstUTF8Error is the offset of the first invalid sequence, or -1.
	FirstUTF8Error int
}
