package search

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
)

// Index file layout, little-endian:
//
//	magic    [4]byte "SNAP"
//	version  uint8   1
//	count    uint32
//	count records of:
//	  path_len    uint16
//	  path        [path_len]byte
//	  content_len uint16
//	  content     [content_len]byte
const (
	Magic   = "SNAP"
	Version = 1

	// DefaultIndexFile is the index file name inside an indexed directory.
	DefaultIndexFile = ".snapfind_index"
)

// Encode writes the engine in the index format.
func (e *Engine) Encode(w io.Writer) error {
	if uint64(e.docs.Len()) > math.MaxUint32 {
		return snaperrors.TooManyDocuments(e.limits.MaxDocuments)
	}

	bw := bufio.NewWriter(w)
	var hdr [9]byte
	copy(hdr[:4], Magic)
	hdr[4] = Version
	binary.LittleEndian.PutUint32(hdr[5:], uint32(e.docs.Len()))
	if _, err := bw.Write(hdr[:]); err != nil {
		return snaperrors.IOError("failed to write index header", err)
	}

	var n [2]byte
	for _, en := range e.docs.Items() {
		path, content := en.doc.Path, en.doc.Content
		if len(path) > e.limits.MaxPathBytes || len(path) > math.MaxUint16 {
			return snaperrors.PathTooLong(path, len(path), e.limits.MaxPathBytes)
		}
		if len(content) > math.MaxUint16 {
			return snaperrors.ContentTooLarge(len(content), math.MaxUint16)
		}

		binary.LittleEndian.PutUint16(n[:], uint16(len(path)))
		bw.Write(n[:])
		bw.WriteString(path)
		binary.LittleEndian.PutUint16(n[:], uint16(len(content)))
		bw.Write(n[:])
		if _, err := bw.Write(content); err != nil {
			return snaperrors.IOError("failed to write index record", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return snaperrors.IOError("failed to flush index", err)
	}
	return nil
}

// Decode reads an index into a new engine sized by l. Any malformed or
// out-of-bounds field aborts the decode and no engine is returned.
func Decode(r io.Reader, l limits.Limits) (*Engine, error) {
	br := bufio.NewReader(r)

	var hdr [9]byte
	if err := readFull(br, hdr[:], "header"); err != nil {
		return nil, err
	}
	if string(hdr[:4]) != Magic {
		return nil, snaperrors.InvalidIndexFormat(fmt.Sprintf("bad magic %q", hdr[:4]), nil)
	}
	if hdr[4] != Version {
		return nil, snaperrors.InvalidIndexFormat(fmt.Sprintf("unsupported version %d", hdr[4]), nil)
	}
	count := binary.LittleEndian.Uint32(hdr[5:])
	if uint64(count) > uint64(l.MaxDocuments) {
		return nil, snaperrors.TooManyDocuments(l.MaxDocuments).
			WithDetail("count", fmt.Sprint(count))
	}

	e := NewEngine(l)
	pathBuf := make([]byte, l.MaxPathBytes)
	var n [2]byte
	for i := uint32(0); i < count; i++ {
		if err := readFull(br, n[:], "path length"); err != nil {
			return nil, err
		}
		pathLen := int(binary.LittleEndian.Uint16(n[:]))
		if pathLen > l.MaxPathBytes {
			return nil, snaperrors.PathTooLong(fmt.Sprintf("record %d", i), pathLen, l.MaxPathBytes)
		}
		if err := readFull(br, pathBuf[:pathLen], "path"); err != nil {
			return nil, err
		}

		if err := readFull(br, n[:], "content length"); err != nil {
			return nil, err
		}
		contentLen := int(binary.LittleEndian.Uint16(n[:]))
		if contentLen > l.MaxContentLength {
			return nil, snaperrors.ContentTooLarge(contentLen, l.MaxContentLength).
				WithDetail("record", fmt.Sprint(i))
		}
		content := make([]byte, contentLen)
		if err := readFull(br, content, "content"); err != nil {
			return nil, err
		}

		path := lossyUTF8(pathBuf[:pathLen])
		if err := e.AddDocument(path, content); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// lossyUTF8 replaces each maximal ill-formed subsequence of b with one
// U+FFFD. "\xff\xfe" becomes two replacement characters, while a
// truncated three-byte sequence such as "\xe2\x82" becomes one.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefixLen(b):]
	}
	return sb.String()
}

// invalidPrefixLen is the length of the maximal subpart at the start of
// b: the lead byte plus the continuation bytes that could still have
// completed it.
func invalidPrefixLen(b []byte) int {
	var need int
	lo, hi := byte(0x80), byte(0xBF)
	switch lead := b[0]; {
	case lead >= 0xC2 && lead <= 0xDF:
		need = 1
	case lead == 0xE0:
		need, lo = 2, 0xA0
	case lead == 0xED:
		need, hi = 2, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		need = 2
	case lead == 0xF0:
		need, lo = 3, 0x90
	case lead == 0xF4:
		need, hi = 3, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		need = 3
	default:
		return 1
	}
	n := 1
	for ; n <= need && n < len(b); n++ {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return n
}

func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return snaperrors.InvalidIndexFormat("truncated "+what, err)
		}
		return snaperrors.IOError("failed to read index "+what, err)
	}
	return nil
}

// Save writes the engine to path atomically: the index is written to a
// temporary file and renamed into place while holding the file lock.
func (e *Engine) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return snaperrors.IOError("failed to create index directory", err).WithDetail("path", dir)
	}

	release, err := lockIndex(path, false)
	if err != nil {
		return snaperrors.IOError("failed to lock index", err).WithDetail("path", path)
	}
	defer release()

	tmpPath := path + TempSuffix
	file, err := os.Create(tmpPath)
	if err != nil {
		return snaperrors.IOError("failed to create index file", err).WithDetail("path", tmpPath)
	}

	if err := e.Encode(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return snaperrors.IOError("failed to close index file", err).WithDetail("path", tmpPath)
	}

	// Rename to final path (atomic on most filesystems)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return snaperrors.IOError("failed to rename index file", err).WithDetail("path", path)
	}
	return nil
}

// Load reads the index at path into a new engine sized by l.
// A missing file yields ErrIndexNotFound.
func Load(path string, l limits.Limits) (*Engine, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, snaperrors.New(snaperrors.ErrCodeIndexNotFound, "no index at "+path, err)
		}
		return nil, snaperrors.IOError("failed to stat index", err).WithDetail("path", path)
	}

	// Read-only directories cannot hold a lock file; read unlocked there.
	if release, err := lockIndex(path, true); err != nil {
		slog.Debug("reading index without lock", slog.String("path", path), snaperrors.LogAttr(err))
	} else {
		defer release()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, snaperrors.IOError("failed to open index", err).WithDetail("path", path)
	}
	defer file.Close()

	return Decode(file, l)
}
