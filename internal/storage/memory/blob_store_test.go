package memory

import (
	"bytes"
	"context"
	"testing"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "runs/r1.json", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://runs/r1.json" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'C'

	body, contentType, ok := store.Object("runs/r1.json")
	if !ok {
		t.Fatal("expected object to be stored")
	}
	if string(body) != "content" {
		t.Fatalf("expected stored copy to be immutable, got %q", body)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}

	body[0] = 'X'
	if again, _, _ := store.Object("runs/r1.json"); string(again) != "content" {
		t.Fatal("expected Object() to return a copy")
	}
}

func TestBlobStorePaths(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	for _, p := range []string{"b.json", "a.json"} {
		if _, err := store.PutObject(context.Background(), p, "", bytes.NewReader(nil)); err != nil {
			t.Fatalf("PutObject() error = %v", err)
		}
	}
	paths := store.Paths()
	if len(paths) != 2 || paths[0] != "a.json" || paths[1] != "b.json" {
		t.Fatalf("unexpected paths %v", paths)
	}
	if _, _, ok := store.Object("missing.json"); ok {
		t.Fatal("expected missing object")
	}
}
