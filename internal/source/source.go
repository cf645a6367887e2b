// Package source loads a hand history stream into memory as UTF-8 text.
// Whole-file zstd and gzip compression is detected by file extension or magic bytes and
// removed transparently; a leading byte-order mark is stripped.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// DefaultMaxBytes caps the size of the text after decompression.
const DefaultMaxBytes int64 = 256 << 20

// Compression identifies the container format of an input.
type Compression string

const (
	None Compression = "none"
	Zstd Compression = "zstd"
	Gzip Compression = "gzip"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

var (
	// ErrInvalidUTF8 is returned when the (decompressed) input is not UTF-8 text
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

	// ErrTooLarge is returned when the text exceeds the configured maximum
	ErrTooLarge = errors.New("input exceeds maximum size")
)

// ReadError reports that no readable text could be obtained from an input.
// It is always fatal for a verification run.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsReadError returns true if err is or wraps a ReadError.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// Options controls how an input is loaded.
type Options struct {
	MaxBytes int64     // Defaults to DefaultMaxBytes when zero or negative
	Stdin    io.Reader // Used for the "-" path; defaults to os.Stdin
}

// Load reads the file at path, or standard input when path is "-".
func Load(path string, opts Options) (string, error) {
	if path == Stdin {
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Read(in, "stdin", opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	return Read(f, path, opts)
}

// Read loads all of r. name is used for extension-based compression detection and in
// error messages.
func Read(r io.Reader, name string, opts Options) (string, error) {
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	br := bufio.NewReader(r)
	kind := Detect(name, br)

	var body io.Reader = br
	switch kind {
	case Zstd:
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return "", &ReadError{Path: name, Err: fmt.Errorf("zstd: %w", err)}
		}
		defer dec.Close()
		body = dec
	case Gzip:
		dec, err := gzip.NewReader(br)
		if err != nil {
			return "", &ReadError{Path: name, Err: fmt.Errorf("gzip: %w", err)}
		}
		defer dec.Close()
		body = dec
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		if kind != None {
			err = fmt.Errorf("%s: %w", kind, err)
		}
		return "", &ReadError{Path: name, Err: err}
	}
	if int64(len(data)) > limit {
		return "", &ReadError{Path: name, Err: fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)}
	}

	text, err := Decode(data)
	if err != nil {
		return "", &ReadError{Path: name, Err: err}
	}
	return text, nil
}

// Detect picks the compression of an input from its name, falling back to the magic
// bytes at the head of br. br is not advanced.
func Detect(name string, br *bufio.Reader) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return Zstd
	case strings.HasSuffix(name, ".gz"):
		return Gzip
	}
	if head, _ := br.Peek(len(zstdMagic)); bytes.Equal(head, zstdMagic) {
		return Zstd
	}
	if head, _ := br.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
		return Gzip
	}
	return None
}

// Decode checks that data is UTF-8 and strips a leading byte-order mark.
func Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("strip byte-order mark: %w", err)
	}
	return string(out), nil
}
