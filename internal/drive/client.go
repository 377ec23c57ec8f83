package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mgodinho/skunav/internal/domain"
)

const (
	defaultBaseURL = "https://www.googleapis.com"
	defaultTimeout = 30 * time.Second
	folderMIMEType = "application/vnd.google-apps.folder"
)

// TokenFunc supplies the current access token for each request. The auth
// collaborator owns refresh; the client just asks.
type TokenFunc func() string

// Client implements domain.Resolver against the Drive v3 files API.
type Client struct {
	baseURL    string
	token      TokenFunc
	router     *Router
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Drive API client. An empty baseURL selects the
// public Google endpoint; tests point it at a local server.
func NewClient(baseURL string, token TokenFunc, router *Router, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		router:     router,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// fileList is the subset of the files.list response the resolver needs.
type fileList struct {
	Files []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"files"`
}

// Lookup finds the root folder for sku on its shared drive. Failures map
// onto the domain taxonomy: ErrFolderNotFound when no folder matches,
// ErrAuthRequired on credential rejection, TransientError on network,
// rate-limit, and server failures.
func (c *Client) Lookup(ctx context.Context, sku string) (*domain.FolderRecord, error) {
	driveID, err := c.router.SharedDriveFor(sku)
	if err != nil {
		return nil, domain.ErrFolderNotFound
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", sku, folderMIMEType))
	query.Set("corpora", "drive")
	query.Set("driveId", driveID)
	query.Set("includeItemsFromAllDrives", "true")
	query.Set("supportsAllDrives", "true")
	query.Set("fields", "files(id,name)")
	query.Set("pageSize", "5")

	body, err := c.doRequest(ctx, "/drive/v3/files", query)
	if err != nil {
		return nil, err
	}

	var list fileList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, domain.Transient(fmt.Errorf("malformed files response: %w", err))
	}
	if len(list.Files) == 0 {
		c.logger.Debug("no folder for sku", "sku", sku, "driveId", driveID)
		return nil, domain.ErrFolderNotFound
	}

	f := list.Files[0]
	return &domain.FolderRecord{
		SKU:           sku,
		FolderID:      f.ID,
		Path:          f.Name,
		SharedDriveID: driveID,
		ResolvedAt:    time.Now(),
		Source:        domain.SourceRemote,
	}, nil
}

// ResolveChild implements domain.PathResolver: it walks relativePath one
// segment at a time under root, matching each child folder by exact name
// on the root's shared drive. A missing segment maps to ErrFolderNotFound.
func (c *Client) ResolveChild(ctx context.Context, root *domain.FolderRecord, relativePath string) (*domain.FolderRecord, error) {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return root, nil
	}

	current := root.FolderID
	for _, seg := range segments {
		query := url.Values{}
		query.Set("q", fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false", seg, folderMIMEType, current))
		query.Set("corpora", "drive")
		query.Set("driveId", root.SharedDriveID)
		query.Set("includeItemsFromAllDrives", "true")
		query.Set("supportsAllDrives", "true")
		query.Set("fields", "files(id,name)")
		query.Set("pageSize", "10")

		body, err := c.doRequest(ctx, "/drive/v3/files", query)
		if err != nil {
			return nil, err
		}

		var list fileList
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, domain.Transient(fmt.Errorf("malformed files response: %w", err))
		}
		if len(list.Files) == 0 {
			c.logger.Debug("path segment not found", "segment", seg, "parent", current)
			return nil, domain.ErrFolderNotFound
		}
		current = list.Files[0].ID
	}

	return &domain.FolderRecord{
		SKU:           root.SKU,
		FolderID:      current,
		Path:          strings.Join(segments, "/"),
		SharedDriveID: root.SharedDriveID,
		ResolvedAt:    time.Now(),
		Source:        domain.SourceRemote,
	}, nil
}

// doRequest performs an authenticated GET and maps HTTP failures onto the
// domain error taxonomy.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	c.logger.Debug("drive request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("drive request failed", "error", err)
		return nil, domain.Transient(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("failed to read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthRequired
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.logger.Warn("drive request throttled or failed", "status", resp.StatusCode)
		return nil, domain.Transient(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrFolderNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
