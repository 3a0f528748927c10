package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// allowing the same store code to run standalone or inside a batch.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is a Store backed by the sheet/sheet_row tables. One store
// instance is bound to a single named sheet.
type SQLiteStore struct {
	db    *sql.DB // nil when running inside a batch
	q     querier
	sheet string
}

// NewSQLiteStore opens (or creates) the named sheet with the given header.
// An existing sheet keeps its stored header; callers are expected to default
// missing columns on read.
func NewSQLiteStore(db *sql.DB, sheet string, header []string) (*SQLiteStore, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO sheet (id, name, header) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		uuid.New().String(), sheet, string(headerJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	return &SQLiteStore{db: db, q: db, sheet: sheet}, nil
}

// Header returns the sheet's column names in display order.
func (s *SQLiteStore) Header(ctx context.Context) ([]string, error) {
	var headerJSON string
	err := s.q.QueryRowContext(ctx, `SELECT header FROM sheet WHERE name = ?`, s.sheet).Scan(&headerJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	var header []string
	if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
		return nil, fmt.Errorf("failed to decode sheet header: %w", err)
	}
	return header, nil
}

// Append adds a data row after the current last row.
func (s *SQLiteStore) Append(ctx context.Context, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO sheet_row (id, sheet_id, pos, cells)
		SELECT ?, sh.id, COALESCE((SELECT MAX(r.pos) FROM sheet_row r WHERE r.sheet_id = sh.id), 0) + 1, ?
		FROM sheet sh WHERE sh.name = ?`,
		uuid.New().String(), string(cells), s.sheet,
	)
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// UpdateCell overwrites one cell in place. The row is extended with empty
// cells if the column lies past its current width.
func (s *SQLiteStore) UpdateCell(ctx context.Context, rowNumber, columnNumber int, value string) error {
	if columnNumber < 1 {
		return fmt.Errorf("column number must be >= 1, got %d", columnNumber)
	}
	pos := rowNumber - HeaderOffset + 1
	if pos < 1 {
		return fmt.Errorf("row number %d precedes the first data row", rowNumber)
	}

	var id, cellsJSON string
	err := s.q.QueryRowContext(ctx, `
		SELECT r.id, r.cells FROM sheet_row r
		JOIN sheet sh ON r.sheet_id = sh.id
		WHERE sh.name = ? AND r.pos = ?`,
		s.sheet, pos,
	).Scan(&id, &cellsJSON)
	if err == sql.ErrNoRows {
		return fmt.Errorf("row %d not found", rowNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to read row %d: %w", rowNumber, err)
	}

	var cells []string
	if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
		return fmt.Errorf("failed to decode row %d: %w", rowNumber, err)
	}
	for len(cells) < columnNumber {
		cells = append(cells, "")
	}
	cells[columnNumber-1] = value

	updated, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("failed to encode row %d: %w", rowNumber, err)
	}
	if _, err := s.q.ExecContext(ctx, `UPDATE sheet_row SET cells = ? WHERE id = ?`, string(updated), id); err != nil {
		return fmt.Errorf("failed to update row %d: %w", rowNumber, err)
	}
	return nil
}

// DeleteRow removes a data row and shifts later rows up by one, the way a
// spreadsheet does.
func (s *SQLiteStore) DeleteRow(ctx context.Context, rowNumber int) error {
	pos := rowNumber - HeaderOffset + 1
	if pos < 1 {
		return fmt.Errorf("row number %d precedes the first data row", rowNumber)
	}

	res, err := s.q.ExecContext(ctx, `
		DELETE FROM sheet_row
		WHERE sheet_id = (SELECT id FROM sheet WHERE name = ?) AND pos = ?`,
		s.sheet, pos,
	)
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", rowNumber, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", rowNumber, err)
	}
	if affected == 0 {
		return fmt.Errorf("row %d not found", rowNumber)
	}

	_, err = s.q.ExecContext(ctx, `
		UPDATE sheet_row SET pos = pos - 1
		WHERE sheet_id = (SELECT id FROM sheet WHERE name = ?) AND pos > ?`,
		s.sheet, pos,
	)
	if err != nil {
		return fmt.Errorf("failed to renumber rows after %d: %w", rowNumber, err)
	}
	return nil
}

// ReadAll returns every data row keyed by the stored header, in row order.
// Cells past the header width are dropped; header columns past the row's
// width decode as "".
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]Record, error) {
	header, err := s.Header(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT r.pos, r.cells FROM sheet_row r
		JOIN sheet sh ON r.sheet_id = sh.id
		WHERE sh.name = ?
		ORDER BY r.pos ASC`,
		s.sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var pos int
		var cellsJSON string
		if err := rows.Scan(&pos, &cellsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", pos+HeaderOffset-1, err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(cells) {
				fields[col] = cells[i]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, Record{RowNumber: pos + HeaderOffset - 1, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Batch runs fn against a transaction-backed view of the store. Either every
// mutation inside fn commits or none do.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fmt.Errorf("nested batch not supported")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}

	txStore := &SQLiteStore{q: tx, sheet: s.sheet}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("batch failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
