package csvextractor

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"
)

const utf8BOM = "\ufeff"

// Rows yields the records of r one at a time. Iteration stops after the
// first error, which is yielded with a nil record.
func Rows(r io.Reader) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		first := true
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if first {
				record[0] = strings.TrimPrefix(record[0], utf8BOM)
				first = false
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}
