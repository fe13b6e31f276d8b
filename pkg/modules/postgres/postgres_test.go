package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestNewAppliesDefaults(t *testing.T) {
	m, err := New("pg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.database != defaultDatabase || m.user != defaultUser || m.password != defaultPassword {
		t.Errorf("expected defaults, got database=%q user=%q password=%q", m.database, m.user, m.password)
	}
}

func TestNewWithCredentialsOverridesDefaults(t *testing.T) {
	m, err := New("pg", WithCredentials("orders", "svc", "secret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.database != "orders" || m.user != "svc" || m.password != "secret" {
		t.Errorf("expected overridden credentials, got database=%q user=%q password=%q", m.database, m.user, m.password)
	}
}

func TestNewWithInitScriptSucceeds(t *testing.T) {
	_, err := New("pg", WithInitScript("001-schema.sql", []byte("CREATE TABLE orders (id int);")))
	if err != nil {
		t.Fatalf("New with init script: %v", err)
	}
}

func TestConnStringFailsBeforeStart(t *testing.T) {
	m, err := New("pg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.ConnString(); err == nil {
		t.Error("expected ConnString to fail before Start")
	}
}

func TestVerifySchemaQueriesExpectedStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := VerifySchema(context.Background(), db, "orders")
	if err != nil {
		t.Fatalf("VerifySchema: %v", err)
	}
	if !exists {
		t.Error("expected VerifySchema to report true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerifySchemaReportsAbsence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := VerifySchema(context.Background(), db, "ghost")
	if err != nil {
		t.Fatalf("VerifySchema: %v", err)
	}
	if exists {
		t.Error("expected VerifySchema to report false")
	}
}
