package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// DB is a *sql.DB that remembers which SQL dialect it speaks. Stores write
// their queries with '?' placeholders and pass them through Rebind.
type DB struct {
	*sql.DB
	dialect Dialect
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Rebind rewrites '?' placeholders into the numbered form postgres expects.
// Queries are assumed not to contain literal question marks.
func (d *DB) Rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Open connects to the database named by uri and brings its schema up to
// date. Accepted forms are "sqlite://<path>", "postgres://..." or
// "postgresql://...", and a bare filesystem path which is treated as sqlite.
func Open(uri string) (*DB, error) {
	dialect, dsn := parseURI(uri)

	var (
		sqlDB *sql.DB
		err   error
	)
	switch dialect {
	case Postgres:
		sqlDB, err = sql.Open("postgres", dsn)
	default:
		sqlDB, err = sql.Open("sqlite", sqliteDSN(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return setup(sqlDB, dialect)
}

// OpenForTesting returns a migrated, private in-memory sqlite database.
func OpenForTesting() (*DB, error) {
	dsn := fmt.Sprintf("file:hgdesk_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A shared-cache memory database disappears with its last connection
	// and locks per table across connections; one connection avoids both.
	sqlDB.SetMaxOpenConns(1)
	return setup(sqlDB, SQLite)
}

func setup(sqlDB *sql.DB, dialect Dialect) (*DB, error) {
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(sqlDB, dialect); err != nil {
		if cerr := sqlDB.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{DB: sqlDB, dialect: dialect}, nil
}

func parseURI(uri string) (Dialect, string) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return Postgres, uri
	case strings.HasPrefix(uri, "sqlite://"):
		return SQLite, strings.TrimPrefix(uri, "sqlite://")
	default:
		return SQLite, uri
	}
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?mode=rwc&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// runMigrations applies the embedded migrations for dialect. The migrate
// instance is deliberately not closed: closing it would close sqlDB too.
func runMigrations(sqlDB *sql.DB, dialect Dialect) error {
	src, err := iofs.New(migrationsFS, "migrations/"+dialect.String())
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	default:
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect.String(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
