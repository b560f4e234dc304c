package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, size, err := store.Save(ctx, "user-1", "resume.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("pdf bytes")) {
		t.Errorf("Expected size %d, got %d", len("pdf bytes"), size)
	}
	if !strings.HasSuffix(key, "_resume.pdf") {
		t.Errorf("Expected key to end with sanitized name, got %q", key)
	}

	reader, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(content) != "pdf bytes" {
		t.Errorf("Content mismatch: %q", content)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Error("Expected open after delete to fail")
	}
}

func TestLocalStoreKeyDoesNotExposeUserID(t *testing.T) {
	store := newTestStore(t)

	key, _, err := store.Save(context.Background(), "user-with-visible-id", "a.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(key, "user-with-visible-id") {
		t.Errorf("Key leaks the user id: %q", key)
	}
}

func TestLocalStoreUniqueKeysPerSave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key1, _, err := store.Save(ctx, "user-1", "resume.pdf", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	key2, _, err := store.Save(ctx, "user-1", "resume.pdf", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if key1 == key2 {
		t.Errorf("Same name must produce distinct keys, got %q twice", key1)
	}
}

func TestLocalStoreRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"../escape", "a/../../b", "", "/etc/passwd"} {
		if _, err := store.Open(ctx, key); err == nil {
			t.Errorf("Expected key %q to be rejected", key)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"Plain", "resume.pdf", "resume.pdf"},
		{"Spaces", "my resume (final).pdf", "my_resume__final_.pdf"},
		{"PathStripped", "../../etc/passwd", "passwd"},
		{"WindowsPathStripped", `C:\Users\me\cv.docx`, "cv.docx"},
		{"HiddenDotTrimmed", ".hidden", "hidden"},
		{"AllInvalid", "///", "document"},
		{"Empty", "", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeName(tt.in); got != tt.expected {
				t.Errorf("sanitizeName(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "deadbeef/missing_file.txt"); err != nil {
		t.Errorf("Deleting a missing object must not error, got %v", err)
	}
}
