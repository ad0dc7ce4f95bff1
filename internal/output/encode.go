package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/octonezd/altmerge/internal/altstore"
)

// Indent is the indentation used for the merged manifest
const Indent = "  "

// Encode writes m as indented UTF-8 JSON followed by a newline.
// HTML characters and non-ASCII text are written literally, including text
// that a source manifest stored as \u escapes.
func Encode(w io.Writer, m *altstore.Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal returns the encoded form of m
func Marshal(m *altstore.Manifest) ([]byte, error) {
	compact, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	literal, err := unescapeStrings(compact)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode merged manifest: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, literal, "", Indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type frame struct {
	object bool
	n      int
}

// unescapeStrings rewrites compact JSON so that every string is encoded
// without HTML or non-ASCII escapes. Key order and number text are kept.
func unescapeStrings(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out, scratch bytes.Buffer
	str := json.NewEncoder(&scratch)
	str.SetEscapeHTML(false)

	var stack []frame
	separate := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		switch {
		case top.object && top.n%2 == 1:
			out.WriteByte(':')
		case top.n > 0:
			out.WriteByte(',')
		}
		top.n++
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				separate()
				out.WriteRune(rune(v))
				stack = append(stack, frame{object: v == '{'})
			default:
				out.WriteRune(rune(v))
				stack = stack[:len(stack)-1]
			}
		case string:
			separate()
			scratch.Reset()
			if err := str.Encode(v); err != nil {
				return nil, err
			}
			out.Write(bytes.TrimSuffix(scratch.Bytes(), []byte{'\n'}))
		case json.Number:
			separate()
			out.WriteString(v.String())
		case bool:
			separate()
			if v {
				out.WriteString("true")
			} else {
				out.WriteString("false")
			}
		case nil:
			separate()
			out.WriteString("null")
		}
	}
	return out.Bytes(), nil
}
