package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// DecodeBody turns a raw response body into UTF-8 text.
//
// Release assets are sometimes published compressed, so zstd (by content
// type, .zst suffix or magic bytes) and gzip (by magic bytes) payloads are
// inflated first. The result is then decoded using the charset declared in
// contentType; a byte order mark overrides the declared charset and is
// stripped.
func DecodeBody(body []byte, contentType, rawURL string) ([]byte, error) {
	var err error

	switch {
	case isZstd(body, contentType, rawURL):
		body, err = decompressZstd(body)
	case bytes.HasPrefix(body, gzipMagic):
		body, err = decompressGzip(body)
	}
	if err != nil {
		return nil, err
	}

	var fallback transform.Transformer = transform.Nop
	if enc := lookupCharset(contentType); enc != nil {
		fallback = enc
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(fallback), body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return decoded, nil
}

func isZstd(body []byte, contentType, rawURL string) bool {
	return strings.Contains(contentType, "zstd") ||
		strings.HasSuffix(rawURL, ".zst") ||
		bytes.HasPrefix(body, zstdMagic)
}

func decompressZstd(body []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress zstd: %w", err)
	}
	return out, nil
}

func decompressGzip(body []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip: %w", err)
	}
	return out, nil
}

// lookupCharset returns a decoder for the charset parameter of contentType,
// or nil when it is absent, unknown or already UTF-8.
func lookupCharset(contentType string) transform.Transformer {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	label := params["charset"]
	if label == "" {
		return nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return nil
	}
	return enc.NewDecoder()
}
