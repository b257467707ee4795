// Package csv reads delimited sales exports. encoding/csv is too strict for
// these files: they may use ';' or tab as the delimiter and escape quotes
// and delimiters with a backslash, which the standard reader does not
// understand. The tokenizer here handles both and reports structural
// problems with the physical line they started on.
package csv

import (
	"bufio"
	"io"
	"strings"
)

const (
	defaultQuote  = '"'
	defaultEscape = '\\'
)

// Reader tokenizes delimited records.
//
//   - Quote opens a quoted field only at the start of a field; elsewhere it
//     is literal.
//   - Inside quotes, a doubled quote is a literal quote and newlines are
//     part of the field.
//   - Escape makes the next character literal, inside or outside quotes.
//   - Blank lines between records are skipped.
//
// Reader is not safe for concurrent use.
type Reader struct {
	Comma  rune
	Quote  rune
	Escape rune

	br   *bufio.Reader
	line int // physical lines fully consumed so far
}

// NewReader returns a Reader with ',' as delimiter, '"' as quote and '\' as
// escape character.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Comma:  ',',
		Quote:  defaultQuote,
		Escape: defaultEscape,
		br:     bufio.NewReaderSize(r, 64*1024),
	}
}

// Read returns the next record and the physical line it starts on. At the
// end of input it returns io.EOF. A quoted field still open at EOF yields
// ErrUnterminatedQuote.
func (r *Reader) Read() ([]string, int, error) {
	var (
		fields       []string
		field        strings.Builder
		inQuotes     bool
		atFieldStart = true
		touched      bool // any content (including delimiters or quotes) seen
		start        = r.line + 1
	)

	for {
		ch, _, err := r.br.ReadRune()
		if err == io.EOF {
			if inQuotes {
				return nil, start, ErrUnterminatedQuote
			}
			if !touched {
				return nil, start, io.EOF
			}
			r.line++
			return append(fields, field.String()), start, nil
		}
		if err != nil {
			return nil, start, err
		}

		switch {
		case r.Escape != 0 && ch == r.Escape:
			touched = true
			atFieldStart = false
			next, _, err := r.br.ReadRune()
			if err == io.EOF {
				field.WriteRune(ch)
				continue
			}
			if err != nil {
				return nil, start, err
			}
			if next == '\n' {
				r.line++
			}
			field.WriteRune(next)

		case inQuotes:
			if ch == r.Quote {
				next, _, err := r.br.ReadRune()
				if err == nil && next == r.Quote {
					field.WriteRune(r.Quote)
					continue
				}
				if err == nil {
					_ = r.br.UnreadRune()
				}
				inQuotes = false
				continue
			}
			if ch == '\n' {
				r.line++
			}
			field.WriteRune(ch)

		case ch == r.Quote && atFieldStart:
			touched = true
			inQuotes = true
			atFieldStart = false

		case ch == r.Comma:
			touched = true
			fields = append(fields, field.String())
			field.Reset()
			atFieldStart = true

		case ch == '\r' || ch == '\n':
			if ch == '\r' {
				if next, _, err := r.br.ReadRune(); err == nil && next != '\n' {
					_ = r.br.UnreadRune()
				}
			}
			r.line++
			if !touched {
				start = r.line + 1
				continue
			}
			return append(fields, field.String()), start, nil

		default:
			touched = true
			atFieldStart = false
			field.WriteRune(ch)
		}
	}
}
