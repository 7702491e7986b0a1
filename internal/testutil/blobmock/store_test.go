package blobmock

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestStore_PutAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	url, err := s.Put(ctx, "prospects/p1/deed.pdf", []byte("content"), "application/pdf")
	if err != nil {
		t.Fatalf("Put: unexpected err: %v", err)
	}
	if url != "mem://prospects/p1/deed.pdf" {
		t.Fatalf("Put url = %q", url)
	}
	if !bytes.Equal(s.Objects["prospects/p1/deed.pdf"], []byte("content")) {
		t.Fatalf("Put did not record the object: %+v", s.Objects)
	}

	// stored bytes are a copy, not an alias of the caller's buffer
	data := []byte("mutable")
	if _, err := s.Put(ctx, "x", data, ""); err != nil {
		t.Fatalf("Put: unexpected err: %v", err)
	}
	data[0] = 'X'
	if !bytes.Equal(s.Objects["x"], []byte("mutable")) {
		t.Fatalf("Put aliased the input buffer: %q", s.Objects["x"])
	}

	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatalf("Delete: unexpected err: %v", err)
	}
	if _, ok := s.Objects["x"]; ok {
		t.Fatalf("Delete left the object behind")
	}
}

func TestStore_Overrides(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("bucket down")

	s := New()
	s.PutFn = func(ctx context.Context, path string, data []byte, contentType string) (string, error) {
		return "", sentinel
	}
	if _, err := s.Put(ctx, "p", nil, ""); !errors.Is(err, sentinel) {
		t.Fatalf("Put override: want %v, got %v", sentinel, err)
	}

	s.DeleteFn = func(ctx context.Context, path string) error { return sentinel }
	if err := s.Delete(ctx, "p"); !errors.Is(err, sentinel) {
		t.Fatalf("Delete override: want %v, got %v", sentinel, err)
	}
}
