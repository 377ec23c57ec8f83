package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgodinho/skunav/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	router, err := NewRouter(nil)
	require.NoError(t, err)
	return NewClient(srv.URL, func() string { return "test-token" }, router, nil)
}

func TestLookupSuccess(t *testing.T) {
	var gotAuth, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"files":[{"id":"folder-123","name":"MOVIE_2023_TT1234567_M"}]}`)
	})

	rec, err := client.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	require.NoError(t, err)
	assert.Equal(t, "folder-123", rec.FolderID)
	assert.Equal(t, "MOVIE_2023_TT1234567_M", rec.SKU)
	assert.Equal(t, domain.SourceRemote, rec.Source)
	assert.Equal(t, DefaultRouting["G-N"], rec.SharedDriveID)
	assert.False(t, rec.ResolvedAt.IsZero())

	assert.Equal(t, "Bearer test-token", gotAuth)
	// Exact name match: "contains" would let sibling folders like
	// <SKU>_backup win the lookup.
	assert.Contains(t, gotQuery, "name = 'MOVIE_2023_TT1234567_M'")
}

func TestLookupNoMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files":[]}`)
	})

	_, err := client.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	assert.True(t, errors.Is(err, domain.ErrFolderNotFound))
}

func TestLookupAuthRequired(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
		assert.True(t, errors.Is(err, domain.ErrAuthRequired), "status %d", status)
	}
}

func TestLookupTransient(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
		assert.True(t, domain.IsTransient(err), "status %d", status)
	}
}

func TestLookupUnreachableServerIsTransient(t *testing.T) {
	router, err := NewRouter(nil)
	require.NoError(t, err)
	client := NewClient("http://127.0.0.1:1", nil, router, nil)

	_, err = client.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	assert.True(t, domain.IsTransient(err))
}

func TestResolveChildWalksSegments(t *testing.T) {
	var queries []string
	responses := []string{
		`{"files":[{"id":"folder-export","name":"EXPORT"}]}`,
		`{"files":[{"id":"folder-legendas","name":"02- LEGENDAS"}]}`,
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		fmt.Fprint(w, responses[len(queries)-1])
	})

	root := &domain.FolderRecord{
		SKU:           "MOVIE_2023_TT1234567_M",
		FolderID:      "folder-root",
		SharedDriveID: "drive-gn",
		Source:        domain.SourceRemote,
	}

	rec, err := client.ResolveChild(context.Background(), root, "EXPORT/02- LEGENDAS")
	require.NoError(t, err)
	assert.Equal(t, "folder-legendas", rec.FolderID)
	assert.Equal(t, "EXPORT/02- LEGENDAS", rec.Path)
	assert.Equal(t, "MOVIE_2023_TT1234567_M", rec.SKU)
	assert.Equal(t, "drive-gn", rec.SharedDriveID)

	// One exact-name query per segment, each chained to the previous
	// segment's folder ID.
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "name = 'EXPORT'")
	assert.Contains(t, queries[0], "'folder-root' in parents")
	assert.Contains(t, queries[1], "name = '02- LEGENDAS'")
	assert.Contains(t, queries[1], "'folder-export' in parents")
}

func TestResolveChildEmptyPathReturnsRoot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty path")
	})

	root := &domain.FolderRecord{SKU: "X_SOFA_20230101_0001", FolderID: "folder-root"}
	rec, err := client.ResolveChild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Same(t, root, rec)
}

func TestResolveChildMissingSegment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files":[]}`)
	})

	root := &domain.FolderRecord{FolderID: "folder-root", SharedDriveID: "drive-gn"}
	_, err := client.ResolveChild(context.Background(), root, "TEMP")
	assert.True(t, errors.Is(err, domain.ErrFolderNotFound))
}

func TestLookupUnroutableSKU(t *testing.T) {
	router, err := NewRouter(map[string]string{"A-F": "drive-af"})
	require.NoError(t, err)
	client := NewClient("http://unused.invalid", nil, router, nil)

	_, err = client.Lookup(context.Background(), "ZEBRA_SOFA_20230101_0001")
	assert.True(t, errors.Is(err, domain.ErrFolderNotFound))
}
