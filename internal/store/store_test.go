package store

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T, dialect Dialect) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return New(db, dialect), mock, func() { db.Close() }
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{name: "sqlite untouched", dialect: SQLite, in: "SELECT 1 WHERE a = ? AND b = ?", want: "SELECT 1 WHERE a = ? AND b = ?"},
		{name: "postgres numbered", dialect: Postgres, in: "SELECT 1 WHERE a = ? AND b = ?", want: "SELECT 1 WHERE a = $1 AND b = $2"},
		{name: "no placeholders", dialect: Postgres, in: "SELECT 1", want: "SELECT 1"},
		{name: "double digits", dialect: Postgres, in: "?,?,?,?,?,?,?,?,?,?,?", want: "$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := rebind(tc.dialect, tc.in); got != tc.want {
				t.Fatalf("rebind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		url     string
		dialect Dialect
		dsn     string
	}{
		{"postgres://u:p@localhost/db", Postgres, "postgres://u:p@localhost/db"},
		{"postgresql://localhost/db?sslmode=disable", Postgres, "postgresql://localhost/db?sslmode=disable"},
		{"youtube.db", SQLite, "file:youtube.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
		{"file:data/yt.db?cache=shared", SQLite, "file:data/yt.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
	}

	for _, tc := range tests {
		if got := DialectFor(tc.url); got != tc.dialect {
			t.Fatalf("DialectFor(%q) = %v, want %v", tc.url, got, tc.dialect)
		}
		if got := DataSourceName(tc.url); got != tc.dsn {
			t.Fatalf("DataSourceName(%q) = %q, want %q", tc.url, got, tc.dsn)
		}
	}
	if SQLite.DriverName() != "sqlite" || Postgres.DriverName() != "pgx" {
		t.Fatalf("unexpected driver names")
	}
}

func TestTimePtr(t *testing.T) {
	if timePtr(sql.NullTime{}) != nil {
		t.Fatalf("expected nil for invalid NullTime")
	}
}
