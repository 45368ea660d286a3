package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Extractions: one row per processed document, successful or not
CREATE TABLE IF NOT EXISTS extractions (
    extraction_id TEXT PRIMARY KEY,          -- uuid
    source TEXT NOT NULL,
    format TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    settings_hash TEXT NOT NULL DEFAULT '',  -- rules and converter options in effect
    success BOOLEAN NOT NULL,
    error TEXT,

    -- Result counts
    table_count INTEGER DEFAULT 0,
    section_count INTEGER DEFAULT 0,
    warning_count INTEGER DEFAULT 0,

    -- Key information, NULL when not found
    resort_name TEXT,
    validity_period TEXT,
    currency TEXT,
    language TEXT,

    -- Full envelope as JSON
    result_json TEXT,
    output_path TEXT,
    duration_ms INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_extractions_source ON extractions(source);
CREATE INDEX IF NOT EXISTS idx_extractions_hash ON extractions(content_hash, settings_hash);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
CREATE INDEX IF NOT EXISTS idx_extractions_failed ON extractions(success) WHERE success = 0;

-- Classified tables of successful extractions
CREATE TABLE IF NOT EXISTS extraction_tables (
    row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    extraction_id TEXT NOT NULL,
    table_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    matched_keyword TEXT,
    page INTEGER NOT NULL,
    row_count INTEGER NOT NULL,
    headers TEXT,                             -- JSON array
    FOREIGN KEY (extraction_id) REFERENCES extractions(extraction_id) ON DELETE CASCADE,
    UNIQUE(extraction_id, table_id)
);

CREATE INDEX IF NOT EXISTS idx_tables_category ON extraction_tables(category);

-- Special offers, in document order
CREATE TABLE IF NOT EXISTS extraction_offers (
    row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    extraction_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    offer TEXT NOT NULL,
    FOREIGN KEY (extraction_id) REFERENCES extractions(extraction_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_offers_extraction ON extraction_offers(extraction_id);
`
