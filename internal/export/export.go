// Package export serializes a view to CSV text and writes it to disk.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/aidanlsb/tabula/internal/atomicfile"
	"github.com/aidanlsb/tabula/internal/record"
)

// Filename returns the suggested file name for an export of table.
func Filename(table string) string {
	return table + "_export.csv"
}

// Serialize renders rows as CSV with the given headers.
//
// The header line is emitted as-is. A cell is quoted when it is empty or holds
// a comma, a double quote, or a newline, so blank cells always come out as ""
// and the output is byte-for-byte reproducible. Null cells are written bare
// and empty. Lines are joined by \n with no trailing newline.
func Serialize(rows []record.Record, headers []string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		sb.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				sb.WriteByte(',')
			}
			v, ok := row.Lookup(h)
			sb.WriteString(Cell(v, ok))
		}
	}
	return sb.String()
}

// Cell renders one CSV cell. present is false when the row has no such column.
func Cell(v record.Value, present bool) string {
	if present && v.IsNull() {
		return ""
	}
	s := ""
	if present {
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// WriteFile writes content to path atomically. With compress set the content
// is gzipped and ".gz" is appended to path. It returns the path written.
func WriteFile(path, content string, compress bool) (string, error) {
	if !compress {
		if err := atomicfile.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("write export %s: %w", path, err)
		}
		return path, nil
	}

	path += ".gz"
	err := atomicfile.Write(path, 0o644, func(w io.Writer) error {
		zw := gzip.NewWriter(w)
		zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		if _, err := io.WriteString(zw, content); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}
