package database

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"
)

type recordingExec struct {
	stmts []string
	err   error
}

func (r *recordingExec) Exec(sql string, values ...interface{}) *gorm.DB {
	r.stmts = append(r.stmts, sql)
	return &gorm.DB{Error: r.err}
}

func TestCreateUnscopedIndexesCoversCustomerMobile(t *testing.T) {
	db := &recordingExec{}
	if err := createUnscopedIndexes(db); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, stmt := range db.stmts {
		if strings.Contains(stmt, "UNIQUE INDEX") &&
			strings.Contains(stmt, "customers (mobile)") &&
			strings.HasSuffix(stmt, "WHERE org_id IS NULL") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no partial unique index on customers.mobile for rows without an org: %v", db.stmts)
	}
}

func TestCreateUnscopedIndexesReturnsError(t *testing.T) {
	boom := errors.New("boom")
	if err := createUnscopedIndexes(&recordingExec{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
