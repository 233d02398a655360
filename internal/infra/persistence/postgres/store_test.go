package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"fmeacore/internal/infra/persistence/postgres/testutil"
	"fmeacore/pkg/domain"
)

func sampleDoc(id string) domain.Document {
	project := domain.NewProject("Line " + id)
	project.ID = id
	project.Type = domain.TypeProcess
	root := domain.NewStructureNode(nil, "Press", domain.KindProcessStep)
	return domain.Document{Project: project, Structure: []domain.StructureNode{root}}
}

func openStub(t *testing.T) (*testutil.StubConn, func()) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %s", driverName)
		}
		return db, nil
	})
	return conn, restore
}

func TestNewStoreCreatesTableAndHydrates(t *testing.T) {
	ctx := context.Background()
	conn, restore := openStub(t)
	defer restore()

	store, err := NewStore(ctx, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if len(conn.Created) != 1 || !strings.Contains(conn.Created[0], "documents") {
		t.Fatalf("expected documents table DDL, got %v", conn.Created)
	}
	if err := store.Save(ctx, sampleDoc("p1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, sampleDoc("p1")); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if rows := conn.Rows("documents"); len(rows) != 1 {
		t.Fatalf("expected single upserted row, got %d", len(rows))
	}

	reopened, err := NewStore(ctx, "postgres://stub")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	doc, err := reopened.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if doc.Project.Type != domain.TypeProcess || doc.Structure[0].Kind != domain.KindProcessStep {
		t.Fatalf("unexpected hydrated document %+v", doc)
	}

	existed, err := reopened.Delete(ctx, "p1")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if rows := conn.Rows("documents"); len(rows) != 0 {
		t.Fatalf("expected row removed, got %v", rows)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	conn, restore := openStub(t)
	defer restore()
	conn.FailPing = true
	if _, err := NewStore(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewStoreOpenFailure(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") })
	defer restore()
	if _, err := NewStore(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStoreRejectsCorruptPayload(t *testing.T) {
	conn, restore := openStub(t)
	defer restore()
	conn.Tables["documents"] = []map[string]any{{"project_id": "bad", "payload": []byte(`{"project":{}}`), "updated_at": "2024-01-01T00:00:00Z"}}
	if _, err := NewStore(context.Background(), ""); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected invalid document error, got %v", err)
	}
}

func TestSaveCommitFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	conn, restore := openStub(t)
	defer restore()
	store, err := NewStore(ctx, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.FailCommit = true
	if err := store.Save(ctx, sampleDoc("p1")); err == nil {
		t.Fatalf("expected commit failure")
	}
	var nf domain.ErrNotFound
	if _, err := store.Load(ctx, "p1"); !errors.As(err, &nf) {
		t.Fatalf("expected cache rollback, got %v", err)
	}
	conn.FailCommit = false
	conn.FailBegin = true
	if err := store.Save(ctx, sampleDoc("p2")); err == nil || !strings.Contains(err.Error(), "begin") {
		t.Fatalf("expected begin failure, got %v", err)
	}
}
