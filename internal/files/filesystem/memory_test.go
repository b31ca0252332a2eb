package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_ReadFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/data")
	mfs.AddFile("customers.csv", "customer_id,name,email\n")

	content, err := mfs.ReadFile("/test/data/customers.csv")
	require.NoError(t, err)
	require.Equal(t, "customer_id,name,email\n", string(content))

	content, err = mfs.ReadFile("customers.csv")
	require.NoError(t, err, "relative paths resolve below the root")
	require.Equal(t, "customer_id,name,email\n", string(content))
}

func TestMemoryFileSystem_RelativeRoot(t *testing.T) {
	mfs := NewMemoryFileSystem("data")
	mfs.AddFile("orders.csv", "order_id\n")

	_, err := mfs.ReadFile("data/orders.csv")
	require.NoError(t, err)
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/data")
	mfs.AddFile("products.csv", "product_id,product_name,price\n")

	rc, err := mfs.Open("/test/data/products.csv")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "product_id,product_name,price\n", string(data))

	_, err = mfs.Open("/test/data/missing.csv")
	require.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.Open("/test/data")
	require.Error(t, err, "directories cannot be opened as files")
}

func TestMemoryFileSystem_ContentIsolation(t *testing.T) {
	mfs := NewMemoryFileSystem("/d")
	mfs.AddFile("a.csv", "abc")

	content, err := mfs.ReadFile("/d/a.csv")
	require.NoError(t, err)
	content[0] = 'X'

	again, err := mfs.ReadFile("/d/a.csv")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/data")
	mfs.AddFile("nested/orders.csv", "order_id\n")

	info, err := mfs.Stat("/test/data/nested/orders.csv")
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.Equal(t, "orders.csv", info.Name())
	require.Equal(t, int64(9), info.Size())

	info, err = mfs.Stat("/test/data/nested")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	info, err = mfs.Stat("/test/data")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = mfs.Stat("/test/data/missing.csv")
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/data")
	mfs.AddFile("orders.csv", "1")
	mfs.AddFile("customers.csv", "2")
	mfs.AddFile("archive/old.csv", "3")
	mfs.AddFile("archive/older.csv", "4")

	entries, err := mfs.ReadDir("/test/data")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"archive", "customers.csv", "orders.csv"}, names)
	require.True(t, entries[0].IsDir())

	_, err = mfs.ReadDir("/elsewhere")
	require.Error(t, err)
}

func TestMemoryFileSystem_RemoveFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/d")
	mfs.AddFile("a.csv", "x")
	mfs.RemoveFile("a.csv")
	mfs.RemoveFile("never-existed.csv")

	_, err := mfs.Stat("/d/a.csv")
	require.True(t, errors.Is(err, fs.ErrNotExist))
}
