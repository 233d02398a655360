package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fmeacore/pkg/domain"
)

func sampleDoc(id string) domain.Document {
	project := domain.NewProject("Pump " + id)
	project.ID = id
	root := domain.NewStructureNode(nil, "Pump", domain.KindSystem)
	fn := domain.NewFunction(root.ID, "Deliver flow", "10 l/min")
	failure := domain.NewFailure(fn.ID, "No flow")
	cause := domain.NewCause(failure.ID, "Impeller blocked")
	cause.Severity, cause.Occurrence, cause.Detection = 8, 6, 5
	failure.Causes = append(failure.Causes, domain.NormalizeCause(cause))
	fn.Failures = append(fn.Failures, failure)
	root.Functions = append(root.Functions, fn)
	return domain.Document{Project: project, Structure: []domain.StructureNode{root}}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fmea.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Path() != path || store.DB() == nil {
		t.Fatalf("unexpected store handles")
	}
	doc := sampleDoc("p1")
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, sampleDoc("p2")); err != nil {
		t.Fatalf("save p2: %v", err)
	}
	if existed, err := store.Delete(ctx, "p2"); err != nil || !existed {
		t.Fatalf("delete p2: existed=%v err=%v", existed, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	loaded, err := reopened.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cause := loaded.Structure[0].Functions[0].Failures[0].Causes[0]
	if cause.ActionPriority != domain.PriorityHigh || cause.ID != doc.Structure[0].Functions[0].Failures[0].Causes[0].ID {
		t.Fatalf("unexpected cause after reopen %+v", cause)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "p1" || list[0].UpdatedAt.IsZero() {
		t.Fatalf("unexpected list %+v", list)
	}
	var nf domain.ErrNotFound
	if _, err := reopened.Load(ctx, "p2"); !errors.As(err, &nf) {
		t.Fatalf("expected deleted document to be gone, got %v", err)
	}
}

func TestStoreSaveFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "fmea.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(ctx, sampleDoc("p1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = store.DB().Close()

	changed := sampleDoc("p1")
	changed.Project.Name = "changed"
	if err := store.Save(ctx, changed); err == nil {
		t.Fatalf("expected save on closed db to fail")
	}
	doc, err := store.Load(ctx, "p1")
	if err != nil || doc.Project.Name != "Pump p1" {
		t.Fatalf("expected cache to keep previous document, got %+v err=%v", doc.Project, err)
	}
	if err := store.Save(ctx, sampleDoc("p9")); err == nil {
		t.Fatalf("expected save of new doc to fail")
	}
	if _, err := store.Load(ctx, "p9"); err == nil {
		t.Fatalf("expected failed insert to be dropped from cache")
	}
}
