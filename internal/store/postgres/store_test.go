package postgres

import (
	"context"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestQueryCollectsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT \\* FROM \\(SELECT name, email FROM customers\\) AS q LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).
			AddRow("Alice Johnson", "alice@email.com").
			AddRow([]byte("Bob Smith"), "bob@email.com"))

	s := New(db)
	res, err := s.Query(context.Background(), "SELECT name, email FROM customers;", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", res.RowCount())
	}
	if res.Columns[0] != "name" || res.Columns[1] != "email" {
		t.Fatalf("unexpected columns %v", res.Columns)
	}
	// Byte slices come back as strings.
	if got, ok := res.Rows[1][0].(string); !ok || got != "Bob Smith" {
		t.Fatalf("expected normalized string, got %T %v", res.Rows[1][0], res.Rows[1][0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELEC customers").WillReturnError(strErr("syntax error"))

	s := New(db)
	if _, err := s.Query(context.Background(), "SELEC customers", 0); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "execute query") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	s := New(db)
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

type strErr string

func (e strErr) Error() string { return string(e) }
