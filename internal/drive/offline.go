package drive

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mgodinho/skunav/internal/domain"
)

// OfflineResolver synthesizes folder records without touching the network.
// Given the same SKU and routing table it always produces the same record:
// the folder ID is "offline:<SKU>" and ResolvedAt stays zero, so stub
// records are reproducible byte for byte.
type OfflineResolver struct {
	router *Router
	logger *slog.Logger
}

// NewOfflineResolver creates an offline resolver over the given router.
func NewOfflineResolver(router *Router, logger *slog.Logger) *OfflineResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &OfflineResolver{router: router, logger: logger}
}

// Lookup implements domain.Resolver.
func (r *OfflineResolver) Lookup(_ context.Context, sku string) (*domain.FolderRecord, error) {
	driveID, err := r.router.SharedDriveFor(sku)
	if err != nil {
		return nil, domain.ErrFolderNotFound
	}
	r.logger.Debug("offline lookup", "sku", sku)
	return &domain.FolderRecord{
		SKU:           sku,
		FolderID:      "offline:" + sku,
		Path:          "",
		SharedDriveID: driveID,
		Source:        domain.SourceOfflineStub,
	}, nil
}

// ResolveChild implements domain.PathResolver without any API calls: the
// child folder ID is the root ID with the path segments appended, so the
// same root and path always produce the same record.
func (r *OfflineResolver) ResolveChild(_ context.Context, root *domain.FolderRecord, relativePath string) (*domain.FolderRecord, error) {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return root, nil
	}
	return &domain.FolderRecord{
		SKU:           root.SKU,
		FolderID:      StubChildPath(root.FolderID, relativePath),
		Path:          strings.Join(segments, "/"),
		SharedDriveID: root.SharedDriveID,
		Source:        domain.SourceOfflineStub,
	}, nil
}

// StubChildPath joins relative path segments onto an offline stub folder
// ID, mirroring how the live backend resolves paths under the SKU root.
func StubChildPath(folderID, relativePath string) string {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return folderID
	}
	return folderID + "/" + strings.Join(segments, "/")
}

func splitPath(p string) []string {
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
