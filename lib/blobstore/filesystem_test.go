package blobstore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystemRoundtrip(t *testing.T) {
	store := NewFilesystem(t.TempDir())
	ctx := context.Background()

	exists, err := store.Exists(ctx, "trips/indego-trips-2023-4.zip")
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, exists)

	err = store.Write(ctx, "trips/indego-trips-2023-4.zip", strings.NewReader("archive bytes"))
	if err != nil {
		t.Fatal(err)
	}

	exists, err = store.Exists(ctx, "trips/indego-trips-2023-4.zip")
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, exists)

	r, err := store.Open(ctx, "trips/indego-trips-2023-4.zip")
	if err != nil {
		t.Fatal(err)
	}
	contents, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	require.Equal(t, "archive bytes", string(contents))
}

func TestFilesystemList(t *testing.T) {
	store := NewFilesystem(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{
		"trips/indego-trips-2023-3.zip",
		"trips/indego-trips-2023-4.zip",
		"year=2023/quarter=3/data.jsonl",
	} {
		err := store.Write(ctx, key, strings.NewReader("x"))
		if err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.List(ctx, "trips/")
	if err != nil {
		t.Fatal(err)
	}
	require.ElementsMatch(t, []string{
		"trips/indego-trips-2023-3.zip",
		"trips/indego-trips-2023-4.zip",
	}, keys)
}

func TestFilesystemDelete(t *testing.T) {
	store := NewFilesystem(t.TempDir())
	ctx := context.Background()

	err := store.Write(ctx, "trips/a.zip", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	err = store.Delete(ctx, "trips/a.zip")
	if err != nil {
		t.Fatal(err)
	}
	exists, err := store.Exists(ctx, "trips/a.zip")
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, exists)

	// deleting a missing key is not an error
	err = store.Delete(ctx, "trips/missing.zip")
	require.NoError(t, err)
}
