package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgodinho/skunav/internal/domain"
)

func TestSharedDriveFor(t *testing.T) {
	router, err := NewRouter(nil)
	require.NoError(t, err)

	tests := []struct {
		sku     string
		driveID string
	}{
		{"3RD_ROCK_2021_TT1234567_M", DefaultRouting["0-9"]},
		{"ALPHA_SOFA_20230101_0001", DefaultRouting["A-F"]},
		{"fargo_2020_tt7654321_m", DefaultRouting["A-F"]},
		{"GAMMA_SOFA_20230101_0002", DefaultRouting["G-N"]},
		{"OMEGA_SOFA_20230101_0003", DefaultRouting["O-S"]},
		{"ZETA_SOFA_20230101_0004", DefaultRouting["T-Z"]},
	}
	for _, tt := range tests {
		id, err := router.SharedDriveFor(tt.sku)
		require.NoError(t, err, tt.sku)
		assert.Equal(t, tt.driveID, id, tt.sku)
	}
}

func TestSharedDriveForUnmapped(t *testing.T) {
	router, err := NewRouter(map[string]string{"A-F": "drive-af"})
	require.NoError(t, err)

	_, err = router.SharedDriveFor("ZEBRA_SOFA_20230101_0001")
	assert.Error(t, err)

	_, err = router.SharedDriveFor("  ")
	assert.Error(t, err)
}

func TestNewRouterRejectsBadRanges(t *testing.T) {
	for _, key := range []string{"", "A", "AB-C", "A-BC"} {
		_, err := NewRouter(map[string]string{key: "x"})
		assert.Error(t, err, "range %q", key)
	}
}

func TestOfflineResolverDeterministic(t *testing.T) {
	router, err := NewRouter(nil)
	require.NoError(t, err)
	r := NewOfflineResolver(router, nil)

	first, err := r.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	require.NoError(t, err)
	second, err := r.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "offline:MOVIE_2023_TT1234567_M", first.FolderID)
	assert.Equal(t, domain.SourceOfflineStub, first.Source)
	assert.True(t, first.ResolvedAt.IsZero())
	assert.Equal(t, DefaultRouting["G-N"], first.SharedDriveID)
}

func TestStubChildPath(t *testing.T) {
	assert.Equal(t, "offline:X", StubChildPath("offline:X", ""))
	assert.Equal(t, "offline:X/TEMP", StubChildPath("offline:X", "TEMP"))
	assert.Equal(t, "offline:X/EXPORT/02- LEGENDAS", StubChildPath("offline:X", "/EXPORT/02- LEGENDAS/"))
}

func TestOfflineResolveChild(t *testing.T) {
	router, err := NewRouter(nil)
	require.NoError(t, err)
	r := NewOfflineResolver(router, nil)

	root, err := r.Lookup(context.Background(), "MOVIE_2023_TT1234567_M")
	require.NoError(t, err)

	first, err := r.ResolveChild(context.Background(), root, "EXPORT/02- LEGENDAS")
	require.NoError(t, err)
	second, err := r.ResolveChild(context.Background(), root, "EXPORT/02- LEGENDAS")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "offline:MOVIE_2023_TT1234567_M/EXPORT/02- LEGENDAS", first.FolderID)
	assert.Equal(t, "EXPORT/02- LEGENDAS", first.Path)
	assert.Equal(t, domain.SourceOfflineStub, first.Source)
	assert.Equal(t, root.SharedDriveID, first.SharedDriveID)

	same, err := r.ResolveChild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Same(t, root, same)
}
