package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPasswordFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(path, []byte("s3cret\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	pw, err := readPassword(path)
	if err != nil || pw != "s3cret" {
		t.Fatalf("got %q, %v", pw, err)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPassword(empty); err == nil {
		t.Fatal("empty file accepted")
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	if err := run([]string{"create-admin", "--email", "a@example.com"}); err == nil {
		t.Fatal("missing --name accepted")
	}
	if err := run([]string{"drop-tables"}); err == nil {
		t.Fatal("unknown command accepted")
	}
}
