package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/log"
	"github.com/cuemby/secwall/pkg/portfolio"
)

// CurrentVersion is written into every database file this package saves.
const CurrentVersion = 1

type fileFormat struct {
	Version    int             `json:"version"`
	Portfolios []portfolioFile `json:"portfolios"`
}

type portfolioFile struct {
	Name      string                   `json:"name"`
	Documents []map[string]interface{} `json:"documents"`
}

// Database is the loaded, in-memory form of one database file: the
// schema version it was read with, plus its portfolios keyed by name in
// file order.
type Database struct {
	Version    int
	Portfolios []*portfolio.Portfolio
}

func encodeDocument(d document.Document) map[string]interface{} {
	return map[string]interface{}{
		document.KeyID:      d.ID(),
		document.KeyName:    d.Name(),
		document.KeyType:    d.Type(),
		document.KeyTags:    d.Tags(),
		document.KeyUsages:  d.Usages(),
		document.KeyPublic:  d.SerializePublic(),
		document.KeyPrivate: d.SerializePrivate(),
	}
}

// decodeDocument builds a Document from one parsed JSON document object.
// It never returns a validation failure silently: callers decide whether
// to skip it, per the read protocol's reject-and-log behavior.
func decodeDocument(raw map[string]interface{}, v document.CertValidator) (document.Document, error) {
	typ, _ := raw[document.KeyType].(string)
	d, err := document.New(typ)
	if err != nil {
		return nil, err
	}

	if id, ok := raw[document.KeyID].(string); ok {
		d.SetID(id)
	}
	if name, ok := raw[document.KeyName].(string); ok {
		d.SetName(name)
	}
	if tags, ok := raw[document.KeyTags].([]interface{}); ok {
		d.SetTags(toStringSlice(tags))
	}
	if usages, ok := raw[document.KeyUsages].([]interface{}); ok {
		d.SetUsages(toStringSlice(usages))
	}

	if pub, ok := raw[document.KeyPublic].(map[string]interface{}); ok {
		if err := d.UpdateFromPublic(document.Fields(pub)); err != nil {
			return nil, err
		}
	}
	if priv, ok := raw[document.KeyPrivate].(map[string]interface{}); ok {
		if err := d.UpdateFromPrivate(document.Fields(priv)); err != nil {
			return nil, err
		}
	}

	if err := d.Validate(v); err != nil {
		return nil, err
	}
	return d, nil
}

func toStringSlice(in []interface{}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Load reads and parses the database file at path. A document that fails
// to parse or fails Validate is skipped with a warning log line rather
// than failing the whole load, so one corrupted record never denies
// service to the rest of the wallet (spec.md §4.4). A missing file yields
// an empty, version-1 Database rather than an error, so a fresh
// deployment can start without pre-seeding one.
func Load(path string, v document.CertValidator) (*Database, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Database{Version: CurrentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading database %s: %w", path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing database %s: %w", path, err)
	}

	db := &Database{Version: ff.Version, Portfolios: make([]*portfolio.Portfolio, 0, len(ff.Portfolios))}
	for _, pf := range ff.Portfolios {
		logger := log.WithPortfolio(pf.Name)
		docs := make([]document.Document, 0, len(pf.Documents))
		for _, raw := range pf.Documents {
			d, err := decodeDocument(raw, v)
			if err != nil {
				logger.Warn().Err(err).Msg("skipping document that failed to load")
				continue
			}
			docs = append(docs, d)
		}
		db.Portfolios = append(db.Portfolios, portfolio.New(pf.Name, docs))
	}
	return db, nil
}

// Save writes db to path using the crash-safe protocol from spec.md §4.4:
// serialize, write to "<path>.tmp" (truncate+write+fsync), atomically
// rename over path, then fsync the containing directory.
func Save(path string, db *Database) error {
	ff := fileFormat{Version: db.Version, Portfolios: make([]portfolioFile, 0, len(db.Portfolios))}
	for _, p := range db.Portfolios {
		all := p.GetAll()
		docs := make([]map[string]interface{}, 0, len(all))
		for _, d := range all {
			docs = append(docs, encodeDocument(d))
		}
		ff.Portfolios = append(ff.Portfolios, portfolioFile{Name: p.Name(), Documents: docs})
	}

	buf, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing database: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := writeAndSync(tmpPath, buf); err != nil {
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}

	if err := syncDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("syncing directory for %s: %w", path, err)
	}
	return nil
}

func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
