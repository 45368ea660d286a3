package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// ErrNotFound is returned when an extraction id does not exist.
var ErrNotFound = errors.New("extraction not found")

// Extraction is one row of the extractions table.
type Extraction struct {
	ID             string
	Source         string
	Format         string
	ContentHash    string
	SettingsHash   string
	Success        bool
	Error          sql.NullString
	TableCount     int
	SectionCount   int
	WarningCount   int
	ResortName     sql.NullString
	ValidityPeriod sql.NullString
	Currency       sql.NullString
	Language       sql.NullString
	ResultJSON     sql.NullString
	OutputPath     sql.NullString
	Duration       time.Duration
	CreatedAt      time.Time
}

// TableRecord is one classified table of a stored extraction.
type TableRecord struct {
	ExtractionID   string   `json:"extraction_id"`
	Source         string   `json:"source"`
	TableID        int      `json:"table_id"`
	Category       string   `json:"category"`
	MatchedKeyword string   `json:"matched_keyword,omitempty"`
	Page           int      `json:"page"`
	RowCount       int      `json:"row_count"`
	Headers        []string `json:"headers"`
}

// TableQuery filters QueryTables. Zero values match everything.
type TableQuery struct {
	Categories   []string
	MinRows      int
	Source       string // substring match
	ExtractionID string
	Limit        int
}

// RecordInput is what the extract command knows about one processed document.
// SettingsHash identifies the rules and converter options it was extracted
// with; Response is the unfiltered envelope.
type RecordInput struct {
	Source       string
	Format       string
	ContentHash  string
	SettingsHash string
	Response     models.Response
	OutputPath   string
	Duration     time.Duration
}

// RecordExtraction stores a processed document with its tables and offers in
// one transaction and returns the new extraction id.
func (db *DB) RecordExtraction(in RecordInput) (string, error) {
	id := uuid.NewString()

	resultJSON, err := json.Marshal(in.Response)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	rec := Extraction{
		ID:           id,
		Source:       in.Source,
		Format:       in.Format,
		ContentHash:  in.ContentHash,
		SettingsHash: in.SettingsHash,
		Success:      in.Response.Success,
		ResultJSON:   sql.NullString{String: string(resultJSON), Valid: true},
		OutputPath:   sql.NullString{String: in.OutputPath, Valid: in.OutputPath != ""},
		Duration:     in.Duration,
	}
	if in.Response.Error != "" {
		rec.Error = sql.NullString{String: in.Response.Error, Valid: true}
	}
	if in.Response.Summary != nil && in.Response.Summary.Language != "" {
		rec.Language = sql.NullString{String: in.Response.Summary.Language, Valid: true}
	}

	result := in.Response.ExtractedData
	var tables []models.ClassifiedTable
	if result != nil {
		tables = result.AllTables()
		rec.TableCount = len(tables)
		rec.SectionCount = len(result.DocumentSections)
		rec.WarningCount = len(result.Warnings)
		rec.ResortName = NewNullString(result.KeyInformation.ResortName)
		rec.ValidityPeriod = NewNullString(result.KeyInformation.ValidityPeriod)
		rec.Currency = NewNullString(result.KeyInformation.Currency)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO extractions (
			extraction_id, source, format, content_hash, settings_hash, success, error,
			table_count, section_count, warning_count,
			resort_name, validity_period, currency, language,
			result_json, output_path, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Source, rec.Format, rec.ContentHash, rec.SettingsHash, rec.Success, rec.Error,
		rec.TableCount, rec.SectionCount, rec.WarningCount,
		rec.ResortName, rec.ValidityPeriod, rec.Currency, rec.Language,
		rec.ResultJSON, rec.OutputPath, rec.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("failed to insert extraction: %w", err)
	}

	for _, t := range tables {
		headers, err := json.Marshal(t.Headers)
		if err != nil {
			return "", fmt.Errorf("failed to marshal headers: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO extraction_tables (extraction_id, table_id, category, matched_keyword, page, row_count, headers)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, t.ID, string(t.Category), t.MatchedKeyword, t.Position.Page, t.RowCount, string(headers))
		if err != nil {
			return "", fmt.Errorf("failed to insert table %d: %w", t.ID, err)
		}
	}

	if result != nil {
		for i, offer := range result.KeyInformation.SpecialOffers {
			_, err = tx.Exec(`
				INSERT INTO extraction_offers (extraction_id, position, offer)
				VALUES (?, ?, ?)
			`, id, i, offer)
			if err != nil {
				return "", fmt.Errorf("failed to insert offer: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit extraction: %w", err)
	}
	return id, nil
}

const extractionColumns = `
	extraction_id, source, format, content_hash, settings_hash, success, error,
	table_count, section_count, warning_count,
	resort_name, validity_period, currency, language,
	result_json, output_path, duration_ms, created_at`

func scanExtraction(row interface{ Scan(...any) error }) (Extraction, error) {
	var (
		e  Extraction
		ms int64
	)
	err := row.Scan(&e.ID, &e.Source, &e.Format, &e.ContentHash, &e.SettingsHash, &e.Success, &e.Error,
		&e.TableCount, &e.SectionCount, &e.WarningCount,
		&e.ResortName, &e.ValidityPeriod, &e.Currency, &e.Language,
		&e.ResultJSON, &e.OutputPath, &ms, &e.CreatedAt)
	e.Duration = time.Duration(ms) * time.Millisecond
	return e, err
}

// GetExtraction returns one extraction. A unique id prefix is accepted.
func (db *DB) GetExtraction(idOrPrefix string) (*Extraction, error) {
	rows, err := db.Query(`SELECT`+extractionColumns+` FROM extractions WHERE extraction_id LIKE ? || '%' LIMIT 2`, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction: %w", err)
	}
	defer rows.Close()

	var found []Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read extractions: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("extraction id prefix %q is ambiguous", idOrPrefix)
	}
}

// ListExtractions returns the newest extractions first. failedOnly limits
// the list to failed documents.
func (db *DB) ListExtractions(limit int, failedOnly bool) ([]Extraction, error) {
	query := `SELECT` + extractionColumns + ` FROM extractions`
	if failedOnly {
		query += ` WHERE success = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByContentHash returns the newest successful extraction of identical
// input made with the same settings, or ErrNotFound.
func (db *DB) FindByContentHash(hash, settingsHash string) (*Extraction, error) {
	row := db.QueryRow(`SELECT`+extractionColumns+` FROM extractions
		WHERE content_hash = ? AND settings_hash = ? AND success = 1
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, hash, settingsHash)
	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find extraction by hash: %w", err)
	}
	return &e, nil
}

// GetOffers returns the special offers of an extraction in document order.
func (db *DB) GetOffers(extractionID string) ([]string, error) {
	rows, err := db.Query(`SELECT offer FROM extraction_offers WHERE extraction_id = ? ORDER BY position`, extractionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// QueryTables searches stored tables across all extractions.
func (db *DB) QueryTables(q TableQuery) ([]TableRecord, error) {
	var (
		where []string
		args  []any
	)
	if len(q.Categories) > 0 {
		where = append(where, "t.category IN (?"+strings.Repeat(", ?", len(q.Categories)-1)+")")
		for _, c := range q.Categories {
			args = append(args, c)
		}
	}
	if q.MinRows > 0 {
		where = append(where, "t.row_count >= ?")
		args = append(args, q.MinRows)
	}
	if q.Source != "" {
		where = append(where, "e.source LIKE ?")
		args = append(args, "%"+q.Source+"%")
	}
	if q.ExtractionID != "" {
		where = append(where, "t.extraction_id = ?")
		args = append(args, q.ExtractionID)
	}

	query := `
		SELECT t.extraction_id, e.source, t.table_id, t.category, COALESCE(t.matched_keyword, ''),
		       t.page, t.row_count, COALESCE(t.headers, '[]')
		FROM extraction_tables t
		JOIN extractions e ON e.extraction_id = t.extraction_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.created_at DESC, t.extraction_id, t.table_id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var out []TableRecord
	for rows.Next() {
		var (
			r       TableRecord
			headers string
		)
		if err := rows.Scan(&r.ExtractionID, &r.Source, &r.TableID, &r.Category, &r.MatchedKeyword,
			&r.Page, &r.RowCount, &headers); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		if err := json.Unmarshal([]byte(headers), &r.Headers); err != nil {
			return nil, fmt.Errorf("failed to decode headers: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteExtraction removes an extraction and its tables and offers.
func (db *DB) DeleteExtraction(id string) error {
	res, err := db.Exec(`DELETE FROM extractions WHERE extraction_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete extraction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
