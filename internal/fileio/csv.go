package fileio

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sovcrm/crm-cli/internal/reconcile"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads CSV rows and sends them to a channel. The caller must
// consume the returned row channel; errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSVRecords reads a headered CSV stream into raw records, pairing each
// data row with the header row. Files without a header row cannot be
// imported as leads.
func ReadCSVRecords(ctx context.Context, r io.Reader) ([]reconcile.RawRecord, error) {
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{TrimSpace: true, LazyQuotes: true})

	var headers []string
	var records []reconcile.RawRecord
	for row := range rowCh {
		if headers == nil {
			headers = row
			continue
		}
		records = append(records, reconcile.MapRow(headers, row))
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if headers == nil {
		return nil, eris.New("csv: file has no header row")
	}
	return records, nil
}
