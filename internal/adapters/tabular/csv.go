package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

type textDecoder struct {
	name   string
	decode func([]byte) (string, error)
}

// decoders are tried in order; the first that accepts the bytes wins.
// Windows-1252 accepts any input, so it must stay last.
var decoders = []textDecoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "windows-1252", decode: func(b []byte) (string, error) { return charmap.Windows1252.NewDecoder().String(string(b)) }},
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("invalid utf-8")
	}
	return string(data), nil
}

// DecodeText converts raw file bytes to UTF-8 text and reports the
// encoding that was used.
func DecodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	for _, d := range decoders {
		text, err := d.decode(data)
		if err == nil {
			return text, d.name, nil
		}
	}
	return "", "", errors.New("unable to decode text with supported encodings")
}

// ReadCSV reads a delimited file whose first record is the header. The
// delimiter is sniffed from the header line (comma, semicolon or tab).
func ReadCSV(r io.Reader, maxRows int) (domain.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv: %w", err)
	}
	text, _, err := DecodeText(raw)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader([]byte(text)))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, fmt.Errorf("read csv: %w", domain.ErrEmptyTable)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv header: %w", err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read csv: %w", err)
		}
		if len(records) >= maxRows {
			return domain.Table{}, fmt.Errorf("read csv: more than %d rows", maxRows)
		}
		records = append(records, rec)
	}
	return buildTable(header, records), nil
}

// sniffDelimiter picks the candidate that occurs most often in the first line.
func sniffDelimiter(text string) rune {
	line := text
	if i := bytes.IndexByte([]byte(text), '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t'} {
		n := 0
		for _, r := range line {
			if r == c {
				n++
			}
		}
		if n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
