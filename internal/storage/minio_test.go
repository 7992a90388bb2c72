package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/document"
	"github.com/stretchr/testify/require"
)

func TestArchiveKeyPartitionsByDay(t *testing.T) {
	d := &document.Document{ID: "abc12", CreatedAt: time.Date(2024, 2, 9, 23, 30, 0, 0, time.FixedZone("x", -2*3600))}
	// 23:30 at UTC-2 is the next day in UTC
	require.Equal(t, "expired/2024/02/10/abc12.json", ArchiveKey(d))
}

func TestEncodeOmitsDeleteCode(t *testing.T) {
	d := &document.Document{
		ID: "my-notes", DeleteCode: "SECRET12", Title: "T", Content: "C",
		FontSize: "16px", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b, err := Encode(d)
	require.NoError(t, err)
	require.NotContains(t, string(b), "SECRET12")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "my-notes", out["id"])
	require.Equal(t, "T", out["title"])
	require.Equal(t, "16px", out["fontSize"])
	require.NotContains(t, out, "delete_code")
}

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.ArchiveConfig{Bucket: "b"})
	require.Error(t, err)
}
