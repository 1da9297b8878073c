package app

import (
	"errors"
	"testing"

	"github.com/dshills/drawstorm/internal/engine/scene"
)

func TestDocumentManager(t *testing.T) {
	dm := NewDocumentManager()

	if _, err := dm.Get(""); !errors.Is(err, ErrNoActiveDocument) {
		t.Errorf("Get(\"\") on empty manager = %v", err)
	}

	a := scene.New(scene.WithID("a"))
	b := scene.New(scene.WithID("b"))
	c := scene.New(scene.WithID("c"))
	for _, doc := range []*scene.Document{a, b, c} {
		if err := dm.Add(doc); err != nil {
			t.Fatalf("Add(%s): %v", doc.ID(), err)
		}
	}
	if err := dm.Add(scene.New(scene.WithID("a"))); !errors.Is(err, ErrDocumentAlreadyOpen) {
		t.Errorf("duplicate Add = %v", err)
	}

	if got, _ := dm.Get(""); got != c {
		t.Error("last added document should be active")
	}
	if err := dm.SetActive("a"); err != nil {
		t.Fatal(err)
	}
	if dm.Active() != a {
		t.Error("SetActive did not switch")
	}
	if err := dm.SetActive("zzz"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("SetActive(zzz) = %v", err)
	}

	// Removing the active document falls back to the newest one.
	if _, err := dm.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if dm.Active() != c {
		t.Error("active should fall back to c")
	}
	if _, err := dm.Remove("b"); err != nil {
		t.Fatal(err)
	}
	if dm.Active() != c {
		t.Error("removing an inactive document should keep the active one")
	}

	docs := dm.List()
	if len(docs) != 1 || docs[0] != c || dm.Count() != 1 {
		t.Errorf("List() = %v", docs)
	}
	if _, err := dm.Get("b"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Get(b) = %v", err)
	}

	if _, err := dm.Remove("c"); err != nil {
		t.Fatal(err)
	}
	if dm.Active() != nil {
		t.Error("empty manager should have no active document")
	}
}
