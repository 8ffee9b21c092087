package errdef

import (
	"errors"
	"io/fs"
	"testing"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	err := Wrap(CodeStorage, fs.ErrNotExist, "open %s", "gallery.db")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped error to match fs.ErrNotExist")
	}
	if got := CodeOf(err); got != CodeStorage {
		t.Fatalf("expected code %q, got %q", CodeStorage, got)
	}
	if got := Message(err); got != "open gallery.db: file does not exist" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(CodeHTTP, nil, "ignored"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %q", got)
	}
	if got := CodeOf(New(CodeRPC, "status %d", 404)); got != CodeRPC {
		t.Fatalf("expected rpc code, got %q", got)
	}
}
