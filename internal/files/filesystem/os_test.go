package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Open(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "customers.csv")
	expected := "customer_id,name,email\n1,Alice,a@example.com\n"
	if err := os.WriteFile(filePath, []byte(expected), 0644); err != nil {
		t.Fatal(err)
	}

	provider := NewOSFileSystem()

	rc, err := provider.Open(filePath)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", filePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != expected {
		t.Errorf("content = %q, want %q", string(data), expected)
	}
}

func TestOSFileSystem_Open_NonexistentPath(t *testing.T) {
	provider := NewOSFileSystem()

	_, err := provider.Open(filepath.Join(t.TempDir(), "nonexistent.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(nonexistent) error = %v, want fs.ErrNotExist", err)
	}
}

func TestOSFileSystem_Open_Directory(t *testing.T) {
	provider := NewOSFileSystem()

	if _, err := provider.Open(t.TempDir()); err == nil {
		t.Error("Open(directory) should return error")
	}
}

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "products.csv")
	expected := "product_id,product_name,price\n"
	os.WriteFile(filePath, []byte(expected), 0644)

	provider := NewOSFileSystem()

	data, err := provider.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != expected {
		t.Errorf("ReadFile() = %q, want %q", string(data), expected)
	}
}

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "a.csv"), []byte("y"), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	provider := NewOSFileSystem()

	entries, err := provider.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ReadDir() returned %d entries, want 3", len(entries))
	}
	if entries[0].Name() != "a.csv" || entries[1].Name() != "b.csv" || !entries[2].IsDir() {
		t.Errorf("unexpected entries: %s, %s, %s", entries[0].Name(), entries[1].Name(), entries[2].Name())
	}
}

func TestOSFileSystem_Stat(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "orders.csv")
	os.WriteFile(filePath, []byte("order_id"), 0644)

	provider := NewOSFileSystem()

	info, err := provider.Stat(filePath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.IsDir() || info.Name() != "orders.csv" || info.Size() != 8 {
		t.Errorf("Stat() = {name=%s dir=%v size=%d}", info.Name(), info.IsDir(), info.Size())
	}

	if _, err := provider.Stat(filepath.Join(dir, "missing.csv")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(missing) error = %v, want fs.ErrNotExist", err)
	}
}
