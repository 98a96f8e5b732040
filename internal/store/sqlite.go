package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/directory-indexer/directory-indexer/internal/errs"
)

// SQLiteStore is the embedded-relational MetadataStore implementation,
// backed by the pure-Go modernc.org/sqlite driver. Every mutation is
// additionally serialized across processes by a short-lived advisory
// lock file in the same data directory.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	lockPath string
}

// Open opens (creating if absent) the metadata store at dbPath,
// running schema creation and configuring WAL mode, a busy timeout,
// and single-writer semantics.
func Open(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "cannot create data directory", err).WithIdentifier(filepath.Dir(dbPath))
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to open metadata store", err).WithIdentifier(dbPath)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, path: dbPath, lockPath: dbPath + ".write.lock"}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS directories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT UNIQUE NOT NULL,
	status TEXT NOT NULL,
	indexed_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT UNIQUE NOT NULL,
	size INTEGER NOT NULL,
	modified_time INTEGER NOT NULL,
	hash TEXT NOT NULL,
	parent_dirs TEXT NOT NULL,
	chunks TEXT NOT NULL,
	errors TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return errs.Wrap(errs.KindStorage, "schema migration failed", err).WithIdentifier(s.path)
	}
	return nil
}

// withLock acquires the per-mutation advisory lock for the duration
// of fn, mirroring the short-lived lock spec §5 requires around every
// metadata mutation.
func (s *SQLiteStore) withLock(fn func() error) error {
	fl := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := fl.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil || !locked {
		return errs.Wrap(errs.KindStorage, "could not acquire metadata write lock", err).WithIdentifier(s.lockPath)
	}
	defer fl.Unlock()
	return fn()
}

func (s *SQLiteStore) UpsertDirectory(ctx context.Context, path string, status DirectoryStatus, indexedAt int64) error {
	return s.withLock(func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO directories (path, status, indexed_at) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET status = excluded.status, indexed_at = excluded.indexed_at
`, path, string(status), indexedAt)
		if err != nil {
			return errs.Wrap(errs.KindStorage, "failed to upsert directory", err).WithIdentifier(path)
		}
		return nil
	})
}

func (s *SQLiteStore) GetDirectory(ctx context.Context, path string) (*Directory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT path, status, indexed_at FROM directories WHERE path = ?`, path)
	var d Directory
	var status string
	if err := row.Scan(&d.Path, &status, &d.IndexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindStorage, "failed to read directory", err).WithIdentifier(path)
	}
	d.Status = DirectoryStatus(status)
	return &d, nil
}

func (s *SQLiteStore) ListDirectories(ctx context.Context) ([]*Directory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, status, indexed_at FROM directories ORDER BY path`)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to list directories", err)
	}
	defer rows.Close()
	var out []*Directory
	for rows.Next() {
		var d Directory
		var status string
		if err := rows.Scan(&d.Path, &status, &d.IndexedAt); err != nil {
			return nil, errs.Wrap(errs.KindStorage, "failed to scan directory row", err)
		}
		d.Status = DirectoryStatus(status)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertFile(ctx context.Context, f *File) error {
	parentDirs, err := json.Marshal(f.ParentDirs)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to encode parent_dirs", err).WithIdentifier(f.Path)
	}
	chunks, err := json.Marshal(f.Chunks)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to encode chunks", err).WithIdentifier(f.Path)
	}
	fileErrors, err := json.Marshal(f.Errors)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to encode errors", err).WithIdentifier(f.Path)
	}

	return s.withLock(func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO files (path, size, modified_time, hash, parent_dirs, chunks, errors)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	size = excluded.size,
	modified_time = excluded.modified_time,
	hash = excluded.hash,
	parent_dirs = excluded.parent_dirs,
	chunks = excluded.chunks,
	errors = excluded.errors
`, f.Path, f.Size, f.ModifiedTime, f.ContentHash, string(parentDirs), string(chunks), string(fileErrors))
		if err != nil {
			return errs.Wrap(errs.KindStorage, "failed to upsert file", err).WithIdentifier(f.Path)
		}
		return nil
	})
}

func (s *SQLiteStore) GetFile(ctx context.Context, path string) (*File, error) {
	row := s.db.QueryRowContext(ctx, `SELECT path, size, modified_time, hash, parent_dirs, chunks, errors FROM files WHERE path = ?`, path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to read file", err).WithIdentifier(path)
	}
	return f, nil
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	return s.withLock(func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
		if err != nil {
			return errs.Wrap(errs.KindStorage, "failed to delete file", err).WithIdentifier(path)
		}
		return nil
	})
}

func (s *SQLiteStore) FilesUnder(ctx context.Context, prefix string) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, size, modified_time, hash, parent_dirs, chunks, errors FROM files WHERE path = ? OR path LIKE ? ORDER BY path`,
		prefix, prefix+"/%")
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to query files_under", err).WithIdentifier(prefix)
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (s *SQLiteStore) AllFiles(ctx context.Context) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, size, modified_time, hash, parent_dirs, chunks, errors FROM files ORDER BY path`)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to list files", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM directories`).Scan(&st.Directories); err != nil {
		return st, errs.Wrap(errs.KindStorage, "failed to count directories", err)
	}
	var files []*File
	rows, err := s.db.QueryContext(ctx, `SELECT path, size, modified_time, hash, parent_dirs, chunks, errors FROM files`)
	if err != nil {
		return st, errs.Wrap(errs.KindStorage, "failed to count files", err)
	}
	files, err = scanFiles(rows)
	rows.Close()
	if err != nil {
		return st, err
	}
	st.Files = int64(len(files))
	for _, f := range files {
		st.Chunks += int64(len(f.Chunks))
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	return s.withLock(func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
			return errs.Wrap(errs.KindStorage, "failed to truncate files", err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM directories`); err != nil {
			return errs.Wrap(errs.KindStorage, "failed to truncate directories", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var f File
	var parentDirs, chunks, fileErrors string
	if err := row.Scan(&f.Path, &f.Size, &f.ModifiedTime, &f.ContentHash, &parentDirs, &chunks, &fileErrors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(parentDirs), &f.ParentDirs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chunks), &f.Chunks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fileErrors), &f.Errors); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFiles(rows *sql.Rows) ([]*File, error) {
	var out []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errs.Wrap(errs.KindStorage, "failed to scan file row", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
