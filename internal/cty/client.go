// Package cty loads the AD1C country files (the CTY edition for the DXCC
// list and the DARC-derived edition for the WAE list), caches the parsed
// records in SQLite between runs, and publishes immutable prefix tables to
// the resolution engine.
package cty

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html/charset"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/config"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/db"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/logging"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/version"
)

const (
	DBFileName        = "cty.db" // Public for use in main and tests
	prefixesTableName = "cty_prefixes"
	metadataTableName = "cty_metadata"

	apiTimeout = 60 * time.Second
)

// Edition names one of the two independently curated reference lists.
type Edition string

const (
	EditionDXCC Edition = "dxcc"
	EditionWAE  Edition = "wae"
)

// HTTPDoer is a minimal interface for http clients used in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client manages country-file data: downloads, the SQLite cache, and the
// in-memory prefix tables. The tables are immutable once published; a
// refresh builds new ones and swaps the pointers, so Resolve callers never
// need a lock.
type Client struct {
	cfg        config.Config
	dbClient   db.DBClient
	httpClient *http.Client
	clock      clockwork.Clock

	dxcc atomic.Pointer[entity.PrefixTable]
	wae  atomic.Pointer[entity.PrefixTable]

	updateStop chan struct{}
	updateDone chan struct{}

	// Testing hook to override http client behavior
	HTTPClient HTTPDoer
}

// NewClient creates and returns a new country-file client.
func NewClient(ctx context.Context, cfg config.Config, dbClient db.DBClient) (*Client, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}

	client := &Client{
		cfg:      cfg,
		dbClient: dbClient,
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		clock: clockwork.NewRealClock(),
	}

	if err := client.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create country-file tables: %w", err)
	}

	return client, nil
}

// SetClock replaces the wall clock; tests install a fake clock to drive the
// updater deterministically.
func (c *Client) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// DxccTable returns the current DXCC prefix table; nil until loaded.
func (c *Client) DxccTable() *entity.PrefixTable {
	return c.dxcc.Load()
}

// WaeTable returns the current WAE prefix table; nil until loaded.
func (c *Client) WaeTable() *entity.PrefixTable {
	return c.wae.Load()
}

// Close stops the periodic updater (if running) and closes the database.
func (c *Client) Close() error {
	if c.updateStop != nil {
		close(c.updateStop)
		<-c.updateDone
		c.updateStop = nil
		c.updateDone = nil
	}
	return c.dbClient.Close()
}

// createTables creates the cache tables if they don't exist.
func (c *Client) createTables() error {
	queries := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				edition TEXT NOT NULL,
				key TEXT NOT NULL,
				exact INTEGER NOT NULL,
				name TEXT NOT NULL,
				prefix TEXT NOT NULL,
				cqz INTEGER NOT NULL,
				ituz INTEGER NOT NULL,
				cont TEXT NOT NULL,
				lat REAL NOT NULL,
				lng REAL NOT NULL,
				tz REAL NOT NULL,
				wae_override INTEGER NOT NULL,
				UNIQUE(edition, key, exact)
			);
		`, prefixesTableName),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				edition TEXT PRIMARY KEY,
				last_updated TEXT NOT NULL,
				file_size INTEGER,
				source_url TEXT
			);
		`, metadataTableName),
	}

	sqlDB := c.dbClient.GetDB()
	for _, query := range queries {
		if _, err := sqlDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
	}
	return nil
}

// GetLastDownloadTime retrieves when the given edition was last downloaded.
// A zero time means never.
func (c *Client) GetLastDownloadTime(ctx context.Context, edition Edition) (time.Time, error) {
	query := fmt.Sprintf("SELECT last_updated FROM %s WHERE edition = ?", metadataTableName)

	var lastUpdated string
	err := c.dbClient.GetDB().QueryRowContext(ctx, query, string(edition)).Scan(&lastUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to query %s download metadata: %w", edition, err)
	}

	t, err := time.Parse(time.RFC3339, lastUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last download time: %w", err)
	}
	return t, nil
}

// NeedsUpdate reports whether either edition is missing, empty, or older
// than the configured update interval.
func (c *Client) NeedsUpdate(ctx context.Context) (bool, error) {
	for _, edition := range []Edition{EditionDXCC, EditionWAE} {
		lastUpdate, err := c.GetLastDownloadTime(ctx, edition)
		if err != nil {
			return false, err
		}
		if lastUpdate.IsZero() || c.clock.Since(lastUpdate) >= c.cfg.UpdateInterval {
			return true, nil
		}

		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE edition = ?", prefixesTableName)
		if err := c.dbClient.GetDB().QueryRowContext(ctx, query, string(edition)).Scan(&count); err != nil {
			logging.Warn("Failed to count %s prefixes, assuming update needed: %v", edition, err)
			return true, nil
		}
		// Metadata can say "fresh" while the cache is empty, e.g. after an
		// interrupted import. Force a re-download in that case.
		if count == 0 {
			logging.Info("Country-file cache for %s is empty despite recent update - forcing re-download", edition)
			return true, nil
		}
	}
	return false, nil
}

// LoadFromDB rebuilds both prefix tables from the SQLite cache and swaps
// them in.
func (c *Client) LoadFromDB(ctx context.Context) error {
	for _, edition := range []Edition{EditionDXCC, EditionWAE} {
		records, err := c.loadRecords(ctx, edition)
		if err != nil {
			return err
		}
		c.install(edition, BuildTable(records))
	}

	dxccLen := c.DxccTable().Len()
	waeLen := c.WaeTable().Len()
	if dxccLen > 0 || waeLen > 0 {
		logging.Notice("Country-file data loaded: %d DXCC keys, %d WAE keys.", dxccLen, waeLen)
	} else {
		logging.Debug("Country-file data loaded: empty tables (will check for updates).")
	}
	return nil
}

// loadRecords reads one edition's records from the cache.
func (c *Client) loadRecords(ctx context.Context, edition Edition) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT key, exact, name, prefix, cqz, ituz, cont, lat, lng, tz, wae_override FROM %s WHERE edition = ?",
		prefixesTableName)
	rows, err := c.dbClient.GetDB().QueryContext(ctx, query, string(edition))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s prefixes: %w", edition, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var exact, waeOverride int
		if err := rows.Scan(&rec.Key, &exact, &rec.Entity.Name, &rec.Entity.Prefix,
			&rec.Entity.CQZone, &rec.Entity.ITUZone, &rec.Entity.Continent,
			&rec.Entity.Latitude, &rec.Entity.Longitude, &rec.Entity.TimeZone,
			&waeOverride); err != nil {
			return nil, fmt.Errorf("failed to scan %s prefix row: %w", edition, err)
		}
		rec.Exact = exact != 0
		rec.Entity.ExactMatchOnly = rec.Exact
		rec.Entity.WAEOverride = waeOverride != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s prefix rows: %w", edition, err)
	}
	return records, nil
}

// install publishes a freshly built table by atomic pointer swap.
func (c *Client) install(edition Edition, table *entity.PrefixTable) {
	switch edition {
	case EditionDXCC:
		c.dxcc.Store(table)
	case EditionWAE:
		c.wae.Store(table)
	}
}

// FetchAndStore downloads both country-file editions, replaces the cache
// contents, and installs the new tables. A failure for one edition aborts
// before the cache is touched for it; the previously published table stays
// in service.
func (c *Client) FetchAndStore(ctx context.Context) error {
	sources := []struct {
		edition Edition
		url     string
	}{
		{EditionDXCC, c.cfg.CtyURL},
		{EditionWAE, c.cfg.WAEURL},
	}

	for _, src := range sources {
		logging.Info("Fetching %s country file from %s...", src.edition, src.url)

		var data []byte
		op := func() error {
			var err error
			data, err = c.download(ctx, src.url)
			return err
		}
		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
		if err := backoff.Retry(op, bo); err != nil {
			return fmt.Errorf("failed to download %s country file: %w", src.edition, err)
		}

		records, err := Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s country file: %w", src.edition, err)
		}
		if len(records) == 0 {
			return fmt.Errorf("%s country file parsed to zero records", src.edition)
		}

		if err := c.replaceRecords(ctx, src.edition, records); err != nil {
			return fmt.Errorf("failed to store %s country file: %w", src.edition, err)
		}
		if err := c.updateLastDownloadTime(ctx, src.edition, src.url, len(data)); err != nil {
			logging.Warn("Failed to update %s download metadata: %v", src.edition, err)
		}

		c.install(src.edition, BuildTable(records))
		logging.Notice("Loaded %d %s keys from %s.", len(records), src.edition, src.url)
	}

	return nil
}

// download fetches one country file. The published files are ISO-8859-1
// encoded; the charset reader transcodes to UTF-8.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent)

	// Use injected HTTPDoer when provided (for tests)
	var resp *http.Response
	if c.HTTPClient != nil {
		resp, err = c.HTTPClient.Do(req)
	} else {
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned non-OK status: %s", resp.Status)
	}

	reader, err := charset.NewReaderLabel("iso-8859-1", resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create charset reader: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read country file body: %w", err)
	}
	return data, nil
}

// replaceRecords swaps one edition's cache contents in a single transaction.
func (c *Client) replaceRecords(ctx context.Context, edition Edition, records []Record) (err error) {
	tx, err := c.dbClient.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE edition = ?", prefixesTableName), string(edition)); err != nil {
		return fmt.Errorf("failed to truncate %s records: %w", edition, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (edition, key, exact, name, prefix, cqz, ituz, cont, lat, lng, tz, wae_override) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		prefixesTableName))
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		e := rec.Entity
		_, err = stmt.ExecContext(ctx, string(edition), rec.Key, boolToInt(rec.Exact),
			e.Name, e.Prefix, e.CQZone, e.ITUZone, e.Continent,
			e.Latitude, e.Longitude, e.TimeZone, boolToInt(e.WAEOverride))
		if err != nil {
			return fmt.Errorf("failed to insert key %s: %w", rec.Key, err)
		}
	}

	return nil // Commit in defer
}

// updateLastDownloadTime records a successful download for one edition.
func (c *Client) updateLastDownloadTime(ctx context.Context, edition Edition, sourceURL string, fileSize int) error {
	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (edition, last_updated, file_size, source_url)
		VALUES (?, ?, ?, ?)
	`, metadataTableName)

	_, err := c.dbClient.GetDB().ExecContext(ctx, query, string(edition),
		c.clock.Now().UTC().Format(time.RFC3339), fileSize, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to update %s download metadata: %w", edition, err)
	}
	return nil
}

// StartUpdater starts the periodic refresh job. It does not perform an
// initial check; main handles that synchronously before calling this.
func (c *Client) StartUpdater(ctx context.Context) {
	if c.updateStop != nil {
		return // already running
	}
	c.updateStop = make(chan struct{})
	c.updateDone = make(chan struct{})

	go func() {
		ticker := c.clock.NewTicker(c.cfg.UpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if err := c.FetchAndStore(ctx); err != nil {
					logging.Error("Scheduled country-file update failed: %v", err)
				}
			case <-c.updateStop:
				close(c.updateDone)
				return
			case <-ctx.Done():
				close(c.updateDone)
				return
			}
		}
	}()
	logging.Notice("Country-file updater started. Will refresh every %s.", c.cfg.UpdateInterval)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
