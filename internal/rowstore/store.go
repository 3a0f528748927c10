// Package rowstore provides an ordered, append-capable table of string
// cells, addressed by 1-based row number. It mirrors the shape of a
// spreadsheet tab: a header row followed by data rows, with random-access
// cell updates and row deletion that shifts later rows up.
package rowstore

import "context"

// HeaderOffset is the row number of the first data row. Row 1 is the header,
// so data rows are numbered starting at 2.
const HeaderOffset = 2

// Record is one data row keyed by the header, plus its row number.
// Columns present in the header but absent from the row decode as "".
type Record struct {
	RowNumber int
	Fields    map[string]string
}

// Store is the row-store collaborator. All field values are serialized to
// text; numeric and date parsing on read is the caller's responsibility.
//
// The store assumes a single writer. Concurrent sessions mutating the same
// store follow last-write-wins with no conflict detection.
type Store interface {
	// Header returns the column names in display order.
	Header(ctx context.Context) ([]string, error)

	// Append adds a data row after the current last row. The row is an
	// ordered list of string fields matching the header order.
	Append(ctx context.Context, row []string) error

	// UpdateCell overwrites a single cell. rowNumber is HeaderOffset-based,
	// columnNumber is 1-based.
	UpdateCell(ctx context.Context, rowNumber, columnNumber int, value string) error

	// DeleteRow removes a data row; rows below it shift up by one.
	DeleteRow(ctx context.Context, rowNumber int) error

	// ReadAll returns every data row keyed by the header, in row order.
	ReadAll(ctx context.Context) ([]Record, error)
}

// Batcher is implemented by stores that can apply several mutations
// atomically. Multi-row lifecycle steps (mutate one row, append its derived
// row) run inside a single batch so a failure never leaves one half
// committed.
type Batcher interface {
	Batch(ctx context.Context, fn func(Store) error) error
}
