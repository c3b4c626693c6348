package library

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
)

const (
	snapshotFormat        = "library-snapshot"
	snapshotFormatVersion = "1"
)

// Borrow list names in user_publications.
const (
	listBorrowed = "borrowed"
	listHistory  = "history"
)

// SnapshotBackend stores the whole catalog, borrow lists included, as a
// single SQLite database file. Export builds the file next to the target and
// renames it into place, so a snapshot is replaced all at once or not at all.
type SnapshotBackend struct {
	path string
}

// NewSnapshotBackend returns a snapshot backend rooted at opts.
func NewSnapshotBackend(opts StorageOptions) *SnapshotBackend {
	return &SnapshotBackend{path: opts.snapshotPath()}
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

const publicationColumns = `kind TEXT NOT NULL,
            title TEXT NOT NULL,
            publisher TEXT NOT NULL,
            year INTEGER NOT NULL,
            author TEXT NOT NULL DEFAULT '',
            pages INTEGER NOT NULL DEFAULT 0,
            isbn TEXT NOT NULL DEFAULT '',
            month INTEGER NOT NULL DEFAULT 0,
            day INTEGER NOT NULL DEFAULT 0,
            language TEXT NOT NULL DEFAULT ''`

var schema = []string{
	`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
	`CREATE TABLE publications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ` + publicationColumns + `,
            UNIQUE(title)
        );`,
	`CREATE TABLE users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            pesel TEXT NOT NULL UNIQUE
        );`,
	`CREATE TABLE user_publications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pesel TEXT NOT NULL REFERENCES users(pesel),
            list TEXT NOT NULL CHECK (list IN ('borrowed','history')),
            position INTEGER NOT NULL,
            ` + publicationColumns + `
        );`,
}

const pubColumnList = `kind,title,publisher,year,author,pages,isbn,month,day,language`

// pubRow is the flattened column form of a Publication.
type pubRow struct {
	Kind      string
	Title     string
	Publisher string
	Year      int
	Author    string
	Pages     int
	ISBN      string
	Month     int
	Day       int
	Language  string
}

func toPubRow(p Publication) pubRow {
	h := p.Info()
	r := pubRow{Kind: string(p.Type()), Title: h.Title, Publisher: h.Publisher, Year: h.Year}
	switch v := p.(type) {
	case Book:
		r.Author, r.Pages, r.ISBN = v.Author, v.Pages, v.ISBN
	case Magazine:
		r.Month, r.Day, r.Language = v.Month, v.Day, v.Language
	}
	return r
}

func (r pubRow) publication() (Publication, error) {
	switch PublicationType(r.Kind) {
	case TypeBook:
		return NewBook(r.Title, r.Author, r.Year, r.Pages, r.Publisher, r.ISBN), nil
	case TypeMagazine:
		return NewMagazine(r.Title, r.Language, r.Day, r.Month, r.Year, r.Publisher), nil
	default:
		return nil, &UnknownTypeError{Token: r.Kind}
	}
}

func (r pubRow) args() []any {
	return []any{r.Kind, r.Title, r.Publisher, r.Year, r.Author, r.Pages, r.ISBN, r.Month, r.Day, r.Language}
}

func (r *pubRow) dest() []any {
	return []any{&r.Kind, &r.Title, &r.Publisher, &r.Year, &r.Author, &r.Pages, &r.ISBN, &r.Month, &r.Day, &r.Language}
}

// digestRow feeds one row into h. Export and import visit rows in the same
// order, so equal catalogs produce equal digests.
func digestRow(h hash.Hash, tag string, vals ...any) {
	h.Write([]byte(tag))
	for _, v := range vals {
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case int:
			s = strconv.Itoa(x)
		default:
			s = fmt.Sprint(x)
		}
		h.Write([]byte{0x1f})
		h.Write([]byte(strconv.Quote(s)))
	}
	h.Write([]byte{0x1e})
}

func newDigest() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only fails for an oversized key.
		panic(err)
	}
	return h
}

// sqliteDSN builds a file: URI for path. The path is made absolute and
// percent-encoded so '?', '#' and '%' in directory names stay part of it.
func sqliteDSN(path string, params url.Values) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: params.Encode()}
	return u.String(), nil
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export writes c to a temporary database file and renames it over the
// snapshot.
func (b *SnapshotBackend) Export(c *Catalog) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ExportError{Resource: b.path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}

	tmp := b.path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &ExportError{Resource: b.path, Err: fmt.Errorf("remove stale temp file: %w", err)}
	}

	if err := writeSnapshot(tmp, c); err != nil {
		os.Remove(tmp)
		return &ExportError{Resource: b.path, Err: err}
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return &ExportError{Resource: b.path, Err: fmt.Errorf("replace snapshot: %w", err)}
	}
	return nil
}

func writeSnapshot(path string, c *Catalog) error {
	dsn, err := sqliteDSN(path, url.Values{"_foreign_keys": {"1"}})
	if err != nil {
		return err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	addPub, err := tx.Prepare(`INSERT INTO publications(` + pubColumnList + `) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer addPub.Close()
	addUser, err := tx.Prepare(`INSERT INTO users(first_name,last_name,pesel) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer addUser.Close()
	addLoan, err := tx.Prepare(`INSERT INTO user_publications(pesel,list,position,` + pubColumnList + `) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer addLoan.Close()

	h := newDigest()

	for _, p := range c.SortedPublications(ByTitle) {
		r := toPubRow(p)
		if _, err := addPub.Exec(r.args()...); err != nil {
			return fmt.Errorf("insert publication %q: %w", r.Title, err)
		}
		digestRow(h, "p", r.args()...)
	}

	users := c.SortedUsers(ByLastName)
	for _, u := range users {
		if _, err := addUser.Exec(u.FirstName, u.LastName, u.Pesel); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Pesel, err)
		}
		digestRow(h, "u", u.FirstName, u.LastName, u.Pesel)
	}
	for _, u := range users {
		for _, list := range []struct {
			name string
			pubs []Publication
		}{{listBorrowed, u.Borrowed}, {listHistory, u.History}} {
			for i, p := range list.pubs {
				args := append([]any{u.Pesel, list.name, i}, toPubRow(p).args()...)
				if _, err := addLoan.Exec(args...); err != nil {
					return fmt.Errorf("insert %s entry for %s: %w", list.name, u.Pesel, err)
				}
				digestRow(h, "l", args...)
			}
		}
	}

	meta := [][2]string{
		{"format", snapshotFormat},
		{"format_version", snapshotFormatVersion},
		{"digest", hex.EncodeToString(h.Sum(nil))},
	}
	for _, kv := range meta {
		if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES(?,?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

// Import reads the whole snapshot in one read transaction.
func (b *SnapshotBackend) Import() (*Catalog, error) {
	if _, err := os.Stat(b.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ResourceNotFoundError{Resource: b.path}
		}
		return nil, &ImportError{Resource: b.path, Reason: "stat", Err: err}
	}

	dsn, err := sqliteDSN(b.path, url.Values{"mode": {"ro"}, "_busy_timeout": {"5000"}})
	if err != nil {
		return nil, &ImportError{Resource: b.path, Reason: "open", Err: err}
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &ImportError{Resource: b.path, Reason: "open", Err: err}
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return nil, &ImportError{Resource: b.path, Reason: "corrupt snapshot", Err: err}
	}
	defer tx.Rollback()

	if err := checkFormat(tx); err != nil {
		return nil, &ImportError{Resource: b.path, Reason: err.reason, Err: err.err}
	}

	c, err := readSnapshot(tx)
	if err != nil {
		return nil, &ImportError{Resource: b.path, Reason: "corrupt snapshot", Err: err}
	}
	return c, nil
}

type formatErr struct {
	reason string
	err    error
}

func metaValue(tx *sql.Tx, key string) (string, error) {
	var v string
	err := tx.QueryRow(`SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	return v, err
}

func checkFormat(tx *sql.Tx) *formatErr {
	format, err := metaValue(tx, "format")
	if err != nil {
		return &formatErr{reason: "corrupt snapshot", err: fmt.Errorf("read format: %w", err)}
	}
	version, err := metaValue(tx, "format_version")
	if err != nil {
		return &formatErr{reason: "corrupt snapshot", err: fmt.Errorf("read format version: %w", err)}
	}
	if format != snapshotFormat || version != snapshotFormatVersion {
		return &formatErr{
			reason: "incompatible data format",
			err:    fmt.Errorf("found %s v%s, want %s v%s", format, version, snapshotFormat, snapshotFormatVersion),
		}
	}
	return nil
}

func readSnapshot(tx *sql.Tx) (*Catalog, error) {
	want, err := metaValue(tx, "digest")
	if err != nil {
		return nil, fmt.Errorf("read digest: %w", err)
	}

	c := NewCatalog()
	h := newDigest()

	rows, err := tx.Query(`SELECT ` + pubColumnList + ` FROM publications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r pubRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		digestRow(h, "p", r.args()...)
		p, err := r.publication()
		if err != nil {
			return nil, err
		}
		if err := c.AddPublication(p); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := readUsers(tx, h)
	if err != nil {
		return nil, err
	}

	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return nil, fmt.Errorf("digest mismatch: stored %s, computed %s", want, got)
	}

	for _, u := range users {
		if err := c.AddUser(u); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// readUsers loads users with their borrow lists in insertion order.
func readUsers(tx *sql.Tx, h hash.Hash) ([]*User, error) {
	rows, err := tx.Query(`SELECT first_name,last_name,pesel FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	byPesel := make(map[string]*User)
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.FirstName, &u.LastName, &u.Pesel); err != nil {
			return nil, err
		}
		digestRow(h, "u", u.FirstName, u.LastName, u.Pesel)
		users = append(users, u)
		byPesel[u.Pesel] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loans, err := tx.Query(`SELECT pesel,list,position,` + pubColumnList + ` FROM user_publications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer loans.Close()
	for loans.Next() {
		var (
			pesel, list string
			position    int
			r           pubRow
		)
		if err := loans.Scan(append([]any{&pesel, &list, &position}, r.dest()...)...); err != nil {
			return nil, err
		}
		digestRow(h, "l", append([]any{pesel, list, position}, r.args()...)...)

		u, ok := byPesel[pesel]
		if !ok {
			return nil, fmt.Errorf("borrow entry for unknown user %s", pesel)
		}
		p, err := r.publication()
		if err != nil {
			return nil, err
		}
		switch list {
		case listBorrowed:
			u.Borrowed = append(u.Borrowed, p)
		case listHistory:
			u.History = append(u.History, p)
		default:
			return nil, fmt.Errorf("unknown borrow list %q", list)
		}
	}
	return users, loans.Err()
}
