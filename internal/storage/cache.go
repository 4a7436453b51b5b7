package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Fingerprint identifies one version of an archive file on disk.
type Fingerprint struct {
	Size    int64
	ModTime int64 // Unix nanoseconds
}

// FingerprintOf returns the fingerprint of a stat result.
func FingerprintOf(info fs.FileInfo) Fingerprint {
	return Fingerprint{Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

// Record is the persisted outcome of loading one archive.
type Record struct {
	Documented bool
	Entries    map[string]string
	LoadError  string
}

// payload is the msgpack body stored (zstd-compressed) in archive_docs.
type payload struct {
	Entries map[string]string `msgpack:"entries"`
}

// CacheStats summarizes the archive_docs table.
type CacheStats struct {
	Archives     int   `json:"archives" yaml:"archives"`
	Documented   int   `json:"documented" yaml:"documented"`
	Failed       int   `json:"failed" yaml:"failed"`
	Entries      int   `json:"entries" yaml:"entries"`
	PayloadBytes int64 `json:"payloadBytes" yaml:"payloadBytes"`
}

// ArchiveCache stores archive metadata keyed by path and fingerprint.
// It is safe for concurrent use.
type ArchiveCache struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewArchiveCache creates an ArchiveCache over db.
func NewArchiveCache(db *DB) (*ArchiveCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	return &ArchiveCache{db: db, enc: enc, dec: dec}, nil
}

// Close releases the codec resources. The DB is owned by the caller.
func (c *ArchiveCache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

// Get returns the record for path if it was stored for the same
// fingerprint. A stale or missing row is a miss.
func (c *ArchiveCache) Get(path string, fp Fingerprint) (*Record, bool, error) {
	var (
		size, modTime int64
		blob          []byte
		loadError     sql.NullString
	)
	err := c.db.QueryRow(`
		SELECT size, mod_time, payload, load_error
		FROM archive_docs
		WHERE path = ?
	`, path).Scan(&size, &modTime, &blob, &loadError)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("archive cache lookup failed: %w", err)
	}
	if size != fp.Size || modTime != fp.ModTime {
		return nil, false, nil
	}

	rec := &Record{LoadError: loadError.String}
	if blob != nil {
		entries, err := c.decode(blob)
		if err != nil {
			return nil, false, err
		}
		rec.Documented = true
		rec.Entries = entries
	}
	return rec, true, nil
}

// Put stores rec for path, replacing any previous row.
func (c *ArchiveCache) Put(path string, fp Fingerprint, rec *Record) error {
	var (
		blob      any
		loadError sql.NullString
	)
	if rec.Documented {
		encoded, err := c.encode(rec.Entries)
		if err != nil {
			return err
		}
		blob = encoded
	}
	if rec.LoadError != "" {
		loadError = sql.NullString{String: rec.LoadError, Valid: true}
	}

	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO archive_docs (path, size, mod_time, entries, payload, load_error, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, path, fp.Size, fp.ModTime, len(rec.Entries), blob, loadError, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("archive cache store failed: %w", err)
	}
	return nil
}

// Delete removes the row for path.
func (c *ArchiveCache) Delete(path string) error {
	_, err := c.db.Exec("DELETE FROM archive_docs WHERE path = ?", path)
	return err
}

// Stats summarizes the stored rows.
func (c *ArchiveCache) Stats() (CacheStats, error) {
	var s CacheStats
	err := c.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN payload IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN load_error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(entries), 0),
			COALESCE(SUM(LENGTH(payload)), 0)
		FROM archive_docs
	`).Scan(&s.Archives, &s.Documented, &s.Failed, &s.Entries, &s.PayloadBytes)
	if err != nil {
		return CacheStats{}, fmt.Errorf("archive cache stats failed: %w", err)
	}
	return s, nil
}

func (c *ArchiveCache) encode(entries map[string]string) ([]byte, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	raw, err := msgpack.Marshal(&payload{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *ArchiveCache) decode(blob []byte) (map[string]string, error) {
	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	var p payload
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if p.Entries == nil {
		p.Entries = map[string]string{}
	}
	return p.Entries, nil
}
