package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubDBStoresAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS documents (project_id TEXT)", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(conn.Created) != 1 {
		t.Fatalf("expected create to be recorded")
	}

	upsert := "INSERT INTO documents(project_id,payload) VALUES($1,$2) ON CONFLICT(project_id) DO UPDATE SET payload=EXCLUDED.payload"
	for _, payload := range []string{"v1", "v2"} {
		if _, err := conn.ExecContext(ctx, upsert, []driver.NamedValue{{Value: "p1"}, {Value: payload}}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	rows := conn.Rows("documents")
	if len(rows) != 1 || rows[0]["payload"] != "v2" {
		t.Fatalf("expected upsert to replace row, got %v", rows)
	}

	qr, err := conn.QueryContext(ctx, "SELECT project_id, payload FROM documents", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := qr.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "p1" || dest[1] != "v2" {
		t.Fatalf("unexpected row %v", dest)
	}

	if _, err := conn.ExecContext(ctx, "DELETE FROM documents WHERE project_id = $1", []driver.NamedValue{{Value: "p1"}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(conn.Rows("documents")) != 0 {
		t.Fatalf("expected row deleted")
	}
}

func TestStubDBFailureSwitches(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailPing = true
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
	conn.FailBegin = true
	if _, err := conn.Begin(); err == nil {
		t.Fatalf("expected begin failure")
	}
	conn.FailTables = map[string]bool{"documents": true}
	if _, err := conn.QueryContext(ctx, "SELECT project_id FROM documents", nil); err == nil {
		t.Fatalf("expected query failure")
	}
	if _, err := conn.QueryContext(ctx, "UPDATE documents", nil); err == nil {
		t.Fatalf("expected parse failure")
	}
}
