package datastore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alnah/go-textpipe"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "textpipe.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func annotatedDocument(t *testing.T) *textpipe.Document {
	t.Helper()
	doc, err := textpipe.NewHTMLDocument("<p>My name is <b>John</b>.</p>", textpipe.WithDocumentName("intro"))
	if err != nil {
		t.Fatalf("NewHTMLDocument() error = %v", err)
	}
	if _, err := doc.Annotations().Add(textpipe.TypePerson, 11, 15, textpipe.FeatureMap{textpipe.FeatureRule: "PersonFirst"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return doc
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); !errors.Is(err, ErrOpen) {
		t.Errorf("Open(\"\") error = %v, want ErrOpen", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	doc := annotatedDocument(t)

	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load(ctx, doc.ID())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Name() != "intro" || got.Text() != doc.Text() || got.MimeType() != textpipe.MimeTextHTML {
		t.Errorf("Load() = {%q %q %q}", got.Name(), got.Text(), got.MimeType())
	}

	persons := got.Annotations().Get(textpipe.TypePerson)
	if len(persons) != 1 {
		t.Fatalf("Person annotations = %d, want 1", len(persons))
	}
	want := doc.Annotations().Get(textpipe.TypePerson)[0]
	if persons[0].ID() != want.ID() || got.Span(persons[0].Start(), persons[0].End()) != "John" {
		t.Errorf("restored Person = %v, want %v", persons[0], want)
	}
	if rule, _ := persons[0].Feature(textpipe.FeatureRule); rule != "PersonFirst" {
		t.Errorf("restored rule = %q, want PersonFirst", rule)
	}

	if n := got.AnnotationSet(textpipe.OriginalMarkupsSet).Size(); n != doc.AnnotationSet(textpipe.OriginalMarkupsSet).Size() {
		t.Errorf("original markups = %d, want %d", n, doc.AnnotationSet(textpipe.OriginalMarkupsSet).Size())
	}

	// New annotations must not reuse restored IDs
	id, err := got.Annotations().Add("Extra", 0, 2, nil)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	for _, a := range got.AnnotationSet(textpipe.OriginalMarkupsSet).All() {
		if a.ID() == id {
			t.Errorf("new annotation reused ID %d", id)
		}
	}
}

func TestSave_ReplacesAnnotations(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	doc := annotatedDocument(t)

	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	doc.Annotations().RemoveTypes(textpipe.TypePerson)
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx, doc.ID())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(got.Annotations().Get(textpipe.TypePerson)); n != 0 {
		t.Errorf("Person annotations after resave = %d, want 0", n)
	}
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	c := textpipe.NewCorpus("letters")
	c.Add(annotatedDocument(t), textpipe.NewDocument("plain", textpipe.WithDocumentName("plain")))
	if err := s.SaveCorpus(ctx, c); err != nil {
		t.Fatalf("SaveCorpus() error = %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(list))
	}
	counts := map[string]int{}
	for _, sum := range list {
		counts[sum.Name] = sum.Annotations
		if sum.SavedAt.IsZero() {
			t.Errorf("%s: SavedAt is zero", sum.Name)
		}
	}
	if counts["plain"] != 0 || counts["intro"] < 2 {
		t.Errorf("annotation counts = %v", counts)
	}

	plain := c.Documents()[1]
	if err := s.Delete(ctx, plain.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Load(ctx, plain.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, plain.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
