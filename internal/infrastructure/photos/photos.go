// Package photos reads node photos from a local directory.
package photos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wayfinder-backend/internal/domain/location"
)

// maxParallelReads bounds concurrent file reads when loading references.
const maxParallelReads = 8

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MimeType guesses the image type from the file extension, defaulting to
// JPEG.
func MimeType(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "image/jpeg"
}

// Supported reports whether mimeType is an image type the vision model accepts.
func Supported(mimeType string) bool {
	for _, mt := range mimeTypes {
		if mt == mimeType {
			return true
		}
	}
	return false
}

// Reference is a node photo loaded for comparison.
type Reference struct {
	NodeID   string
	Name     string
	MimeType string
	Data     []byte
}

// Store resolves photo references against a directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the photo directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the on-disk path of ref, refusing references that escape the
// directory.
func (s *Store) Path(ref string) (string, error) {
	clean := filepath.Clean("/" + ref)
	if clean == "/" {
		return "", fmt.Errorf("empty photo reference")
	}
	return filepath.Join(s.dir, clean), nil
}

// Read loads one photo.
func (s *Store) Read(ref string) ([]byte, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// References loads the photos of nodes in parallel, keeping node order.
// Nodes without a photo, or whose photo is missing on disk, are skipped. At
// most limit references are returned when limit is positive.
func (s *Store) References(ctx context.Context, nodes []location.Node, limit int) ([]Reference, error) {
	refs := make([]*Reference, len(nodes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)

	for i, n := range nodes {
		if n.PhotoRef == "" {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := s.Read(n.PhotoRef)
			if err != nil {
				if os.IsNotExist(err) {
					s.logger.Debug("Reference photo missing",
						zap.String("node_id", n.ID),
						zap.String("photo", n.PhotoRef),
					)
					return nil
				}
				return fmt.Errorf("read photo for %s: %w", n.ID, err)
			}
			refs[i] = &Reference{
				NodeID:   n.ID,
				Name:     n.Name,
				MimeType: MimeType(n.PhotoRef),
				Data:     data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if r == nil {
			continue
		}
		out = append(out, *r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ReferenceSet lazily loads the reference photos of a fixed node list and
// keeps them once loaded. A failed load is retried on the next call.
type ReferenceSet struct {
	store *Store
	nodes []location.Node
	limit int

	mu     sync.Mutex
	loaded []Reference
	ok     bool
}

// NewReferenceSet creates a set over nodes.
func NewReferenceSet(store *Store, nodes []location.Node, limit int) *ReferenceSet {
	return &ReferenceSet{store: store, nodes: nodes, limit: limit}
}

// References returns the loaded photos.
func (r *ReferenceSet) References(ctx context.Context) ([]Reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ok {
		return r.loaded, nil
	}

	refs, err := r.store.References(ctx, r.nodes, r.limit)
	if err != nil {
		return nil, err
	}
	r.store.logger.Info("Loaded reference photos",
		zap.String("dir", r.store.dir),
		zap.Int("count", len(refs)),
	)
	r.loaded, r.ok = refs, true
	return refs, nil
}
