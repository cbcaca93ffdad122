// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litgraph/pkg/types"
)

// SQLite implements Repository on a single database file.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists. WAL mode keeps concurrent ingestion workers from serializing
// on reads; busy_timeout covers short write contention.
func Open(cfg types.StoreConfig) (*SQLite, error) {
	path := cfg.Path
	if path == "" {
		path = "litgraph.db"
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Concurrent ingestion workers share this handle. A single
	// connection serializes transactions in the driver instead of
	// surfacing SQLITE_BUSY when two deferred transactions both try to
	// take the write lock.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			lid TEXT PRIMARY KEY,
			doi TEXT UNIQUE,
			arxiv_id TEXT UNIQUE,
			pmid TEXT UNIQUE,
			fingerprint TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			year INTEGER,
			venue TEXT,
			source_urls TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_fingerprint ON records(fingerprint)`,
		`CREATE TABLE IF NOT EXISTS metadata_fields (
			lid TEXT NOT NULL REFERENCES records(lid),
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			source TEXT NOT NULL,
			priority INTEGER NOT NULL,
			PRIMARY KEY (lid, field)
		)`,
		`CREATE TABLE IF NOT EXISTS placeholders (
			key TEXT PRIMARY KEY,
			signature TEXT NOT NULL UNIQUE,
			title TEXT,
			citing_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_lid TEXT NOT NULL REFERENCES records(lid),
			to_key TEXT NOT NULL,
			to_kind TEXT NOT NULL CHECK (to_kind IN ('record', 'placeholder')),
			confidence REAL NOT NULL,
			source TEXT NOT NULL,
			PRIMARY KEY (from_lid, to_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_key)`,
		`CREATE TABLE IF NOT EXISTS review_flags (
			id TEXT PRIMARY KEY,
			title TEXT,
			candidate_lid TEXT,
			title_score REAL NOT NULL,
			author_score REAL NOT NULL,
			created_at TEXT NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// nullable maps "" to NULL so the unique identifier indexes only bind
// rows that actually carry the identifier.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// InsertRecord writes a new record. On a unique-constraint violation it
// re-reads to find which record holds the conflicting identifier and
// returns *IdentifierConflictError (the insert-then-verify pattern).
func (s *SQLite) InsertRecord(ctx context.Context, rec types.LiteratureRecord) error {
	authorsJSON, _ := json.Marshal(rec.Authors)
	urlsJSON, _ := json.Marshal(rec.Identifiers.SourceURLs)
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (lid, doi, arxiv_id, pmid, fingerprint, title, authors, year, venue, source_urls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.LID, nullable(rec.Identifiers.DOI), nullable(rec.Identifiers.ArxivID),
		nullable(rec.Identifiers.PMID), rec.Identifiers.Fingerprint,
		rec.Title, string(authorsJSON), rec.Year, rec.Venue, string(urlsJSON),
		createdAt.Format(time.RFC3339Nano),
	)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("inserting record: %w", err)
	}
	return s.conflictFor(ctx, rec)
}

// conflictFor identifies which existing record caused a unique
// violation for rec.
func (s *SQLite) conflictFor(ctx context.Context, rec types.LiteratureRecord) error {
	lookups := []struct {
		kind  IdentifierKind
		value string
	}{
		{KindDOI, rec.Identifiers.DOI},
		{KindArxiv, rec.Identifiers.ArxivID},
		{KindPMID, rec.Identifiers.PMID},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		existing, err := s.FindByIdentifier(ctx, l.kind, l.value)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		if existing.LID != rec.LID {
			return &IdentifierConflictError{Kind: string(l.kind), LID: existing.LID}
		}
	}
	return &IdentifierConflictError{Kind: "lid", LID: rec.LID}
}

// UpsertRecord refreshes an existing record's descriptive fields and
// identifiers, preserving LID and created_at.
func (s *SQLite) UpsertRecord(ctx context.Context, rec types.LiteratureRecord) error {
	authorsJSON, _ := json.Marshal(rec.Authors)
	urlsJSON, _ := json.Marshal(rec.Identifiers.SourceURLs)

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET
			doi = COALESCE(?, doi),
			arxiv_id = COALESCE(?, arxiv_id),
			pmid = COALESCE(?, pmid),
			fingerprint = ?,
			title = ?, authors = ?, year = ?, venue = ?, source_urls = ?
		 WHERE lid = ?`,
		nullable(rec.Identifiers.DOI), nullable(rec.Identifiers.ArxivID),
		nullable(rec.Identifiers.PMID), rec.Identifiers.Fingerprint,
		rec.Title, string(authorsJSON), rec.Year, rec.Venue, string(urlsJSON),
		rec.LID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return s.conflictFor(ctx, rec)
		}
		return fmt.Errorf("upserting record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("record %s: %w", rec.LID, ErrNotFound)
	}
	return nil
}

const recordColumns = `lid, doi, arxiv_id, pmid, fingerprint, title, authors, year, venue, source_urls, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*types.LiteratureRecord, error) {
	var rec types.LiteratureRecord
	var doi, arxiv, pmid, title, authors, venue, urls sql.NullString
	var year sql.NullInt64
	var createdAt string

	err := row.Scan(&rec.LID, &doi, &arxiv, &pmid, &rec.Identifiers.Fingerprint,
		&title, &authors, &year, &venue, &urls, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.Identifiers.DOI = doi.String
	rec.Identifiers.ArxivID = arxiv.String
	rec.Identifiers.PMID = pmid.String
	rec.Title = title.String
	rec.Venue = venue.String
	rec.Year = int(year.Int64)
	if authors.String != "" {
		json.Unmarshal([]byte(authors.String), &rec.Authors)
	}
	if urls.String != "" {
		json.Unmarshal([]byte(urls.String), &rec.Identifiers.SourceURLs)
	}
	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}

// FindByLID returns the record with the given LID, or ErrNotFound.
func (s *SQLite) FindByLID(ctx context.Context, lid string) (*types.LiteratureRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE lid = ?`, lid)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", lid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding record by lid: %w", err)
	}
	return rec, nil
}

// FindByIdentifier returns the record holding the exact identifier.
func (s *SQLite) FindByIdentifier(ctx context.Context, kind IdentifierKind, value string) (*types.LiteratureRecord, error) {
	var column string
	switch kind {
	case KindDOI:
		column = "doi"
	case KindArxiv:
		column = "arxiv_id"
	case KindPMID:
		column = "pmid"
	default:
		return nil, fmt.Errorf("unknown identifier kind %q", kind)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE `+column+` = ?`, value)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", kind, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding record by %s: %w", kind, err)
	}
	return rec, nil
}

// FindByFingerprint returns all records sharing the fingerprint, oldest
// first.
func (s *SQLite) FindByFingerprint(ctx context.Context, fingerprint string) ([]types.LiteratureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE fingerprint = ? ORDER BY created_at ASC, lid ASC`,
		fingerprint)
	if err != nil {
		return nil, fmt.Errorf("finding records by fingerprint: %w", err)
	}
	defer rows.Close()

	var records []types.LiteratureRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// LIDExists reports whether the LID is taken.
func (s *SQLite) LIDExists(ctx context.Context, lid string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM records WHERE lid = ?`, lid).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking lid: %w", err)
	}
	return n > 0, nil
}

// Fields returns the record's per-field provenance.
func (s *SQLite) Fields(ctx context.Context, lid string) (map[string]types.FieldProvenance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value, source, priority FROM metadata_fields WHERE lid = ?`, lid)
	if err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]types.FieldProvenance)
	for rows.Next() {
		var name string
		var fp types.FieldProvenance
		if err := rows.Scan(&name, &fp.Value, &fp.Source, &fp.Priority); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		fields[name] = fp
	}
	return fields, rows.Err()
}

// PutField writes one field value with provenance.
func (s *SQLite) PutField(ctx context.Context, lid, field string, fp types.FieldProvenance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metadata_fields (lid, field, value, source, priority)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(lid, field) DO UPDATE SET
			value = excluded.value, source = excluded.source, priority = excluded.priority`,
		lid, field, fp.Value, fp.Source, fp.Priority)
	if err != nil {
		return fmt.Errorf("writing field %s: %w", field, err)
	}
	return nil
}

// CreateEdge inserts one edge; a duplicate (from, to) pair is a no-op.
func (s *SQLite) CreateEdge(ctx context.Context, edge types.CitationEdge) error {
	return s.ApplyReferences(ctx, []types.CitationEdge{edge}, nil)
}

// ApplyReferences commits one record's edges and any new placeholders
// in a single transaction. Placeholder upserts are keyed by signature,
// so two ingestions racing on the same cited work converge on one node.
func (s *SQLite) ApplyReferences(ctx context.Context, edges []types.CitationEdge, placeholders []types.PlaceholderNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, ph := range placeholders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO placeholders (key, signature, title, citing_count, created_at)
			 VALUES (?, ?, ?, 0, ?)
			 ON CONFLICT DO NOTHING`,
			ph.Key, ph.Signature, ph.Title, now)
		if err != nil {
			return fmt.Errorf("upserting placeholder %s: %w", ph.Key, err)
		}
	}

	for _, edge := range edges {
		if edge.ToKind == types.KindPlaceholder {
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT count(*) FROM placeholders WHERE key = ?`, edge.ToKey).Scan(&n); err != nil {
				return fmt.Errorf("checking placeholder %s: %w", edge.ToKey, err)
			}
			if n == 0 {
				return fmt.Errorf("placeholder %s: %w", edge.ToKey, ErrPlaceholderGone)
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO edges (from_lid, to_key, to_kind, confidence, source)
			 VALUES (?, ?, ?, ?, ?)`,
			edge.FromLID, edge.ToKey, string(edge.ToKind), edge.Confidence, edge.Source)
		if err != nil {
			return fmt.Errorf("inserting edge %s -> %s: %w", edge.FromLID, edge.ToKey, err)
		}

		// Each new edge is a distinct citing record (the pair is unique).
		if inserted, _ := res.RowsAffected(); inserted > 0 && edge.ToKind == types.KindPlaceholder {
			if _, err := tx.ExecContext(ctx,
				`UPDATE placeholders SET citing_count = citing_count + 1 WHERE key = ?`,
				edge.ToKey); err != nil {
				return fmt.Errorf("updating citing count: %w", err)
			}
		}
	}

	return tx.Commit()
}

func scanPlaceholder(row interface{ Scan(...any) error }) (*types.PlaceholderNode, error) {
	var ph types.PlaceholderNode
	var title sql.NullString
	var createdAt string
	if err := row.Scan(&ph.Key, &ph.Signature, &title, &ph.CitingCount, &createdAt); err != nil {
		return nil, err
	}
	ph.Title = title.String
	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		ph.CreatedAt = t
	}
	return &ph, nil
}

// FindPlaceholder returns the placeholder with the given signature.
func (s *SQLite) FindPlaceholder(ctx context.Context, signature string) (*types.PlaceholderNode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, signature, title, citing_count, created_at FROM placeholders WHERE signature = ?`,
		signature)
	ph, err := scanPlaceholder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("placeholder signature %s: %w", signature, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding placeholder: %w", err)
	}
	return ph, nil
}

// ListPlaceholders returns all placeholders, oldest first.
func (s *SQLite) ListPlaceholders(ctx context.Context) ([]types.PlaceholderNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, signature, title, citing_count, created_at FROM placeholders ORDER BY created_at ASC, key ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing placeholders: %w", err)
	}
	defer rows.Close()

	var nodes []types.PlaceholderNode
	for rows.Next() {
		ph, err := scanPlaceholder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning placeholder: %w", err)
		}
		nodes = append(nodes, *ph)
	}
	return nodes, rows.Err()
}

// UpgradePlaceholder redirects every inbound edge of oldKey to newLID
// and deletes the node, as one transaction. Edge confidence and source
// are preserved. Only one of two racing upgrades can succeed; the loser
// sees ErrPlaceholderGone.
func (s *SQLite) UpgradePlaceholder(ctx context.Context, oldKey, newLID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM placeholders WHERE key = ?`, oldKey).Scan(&n); err != nil {
		return 0, fmt.Errorf("checking placeholder: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("placeholder %s: %w", oldKey, ErrPlaceholderGone)
	}

	// A citer that already has a direct edge to the new record would
	// collide on redirect; its placeholder edge is dropped instead.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM edges WHERE to_key = ?
		 AND from_lid IN (SELECT from_lid FROM edges WHERE to_key = ?)`,
		oldKey, newLID); err != nil {
		return 0, fmt.Errorf("dropping pre-linked edges: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE edges SET to_key = ?, to_kind = 'record' WHERE to_key = ?`,
		newLID, oldKey)
	if err != nil {
		return 0, fmt.Errorf("redirecting edges: %w", err)
	}
	redirected, _ := res.RowsAffected()

	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM edges WHERE to_key = ?`, oldKey).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("verifying redirect: %w", err)
	}
	if remaining > 0 {
		return 0, fmt.Errorf("placeholder %s still has %d edges after redirect: %w",
			oldKey, remaining, ErrNotOrphan)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM placeholders WHERE key = ?`, oldKey); err != nil {
		return 0, fmt.Errorf("deleting placeholder: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing upgrade: %w", err)
	}
	return int(redirected), nil
}

// DeleteIfOrphan removes the placeholder only when it has no inbound
// edges. A node that still has citers is kept and ErrNotOrphan returned.
func (s *SQLite) DeleteIfOrphan(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var edges int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM edges WHERE to_key = ?`, key).Scan(&edges); err != nil {
		return fmt.Errorf("counting edges: %w", err)
	}
	if edges > 0 {
		return fmt.Errorf("placeholder %s has %d edges: %w", key, edges, ErrNotOrphan)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM placeholders WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting placeholder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("placeholder %s: %w", key, ErrNotFound)
	}
	return tx.Commit()
}

// OrphanPlaceholderKeys lists placeholders with zero inbound edges.
func (s *SQLite) OrphanPlaceholderKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM placeholders p
		 WHERE NOT EXISTS (SELECT 1 FROM edges e WHERE e.to_key = p.key)`)
	if err != nil {
		return nil, fmt.Errorf("listing orphans: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLite) queryEdges(ctx context.Context, where string, arg any) ([]types.CitationEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_lid, to_key, to_kind, confidence, source FROM edges WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []types.CitationEdge
	for rows.Next() {
		var e types.CitationEdge
		var kind string
		if err := rows.Scan(&e.FromLID, &e.ToKey, &kind, &e.Confidence, &e.Source); err != nil {
			return nil, err
		}
		e.ToKind = types.NodeKind(kind)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// EdgesTo returns all inbound edges of a node (record or placeholder).
func (s *SQLite) EdgesTo(ctx context.Context, key string) ([]types.CitationEdge, error) {
	return s.queryEdges(ctx, `to_key = ?`, key)
}

// EdgesFrom returns a record's outgoing edges.
func (s *SQLite) EdgesFrom(ctx context.Context, lid string) ([]types.CitationEdge, error) {
	return s.queryEdges(ctx, `from_lid = ?`, lid)
}

// SaveReviewFlag records a near-threshold match for manual review.
func (s *SQLite) SaveReviewFlag(ctx context.Context, flag types.ReviewFlag) error {
	createdAt := flag.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO review_flags (id, title, candidate_lid, title_score, author_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		flag.ID, flag.Title, flag.CandidateLID, flag.TitleScore, flag.AuthorScore,
		createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving review flag: %w", err)
	}
	return nil
}

// PendingReviewFlags lists unresolved review flags, oldest first.
func (s *SQLite) PendingReviewFlags(ctx context.Context) ([]types.ReviewFlag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, candidate_lid, title_score, author_score, created_at
		 FROM review_flags WHERE resolved = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing review flags: %w", err)
	}
	defer rows.Close()

	var flags []types.ReviewFlag
	for rows.Next() {
		var f types.ReviewFlag
		var title, lid sql.NullString
		var createdAt string
		if err := rows.Scan(&f.ID, &title, &lid, &f.TitleScore, &f.AuthorScore, &createdAt); err != nil {
			return nil, err
		}
		f.Title = title.String
		f.CandidateLID = lid.String
		if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			f.CreatedAt = t
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// Counts summarizes the stored graph.
func (s *SQLite) Counts(ctx context.Context) (GraphCounts, error) {
	var c GraphCounts
	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT count(*) FROM records`, &c.Records},
		{`SELECT count(*) FROM placeholders`, &c.Placeholders},
		{`SELECT count(*) FROM edges`, &c.Edges},
		{`SELECT count(*) FROM review_flags WHERE resolved = 0`, &c.PendingReview},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return GraphCounts{}, fmt.Errorf("counting: %w", err)
		}
	}
	return c, nil
}
