package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"campaignkit/internal/assets"
	zipkit "campaignkit/pkg/zip"
)

// FileStore writes generated kits and images under a local directory. The
// CLI uses it to export results.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// WriteJSON stores v as indented JSON at key.
func (s *FileStore) WriteJSON(ctx context.Context, key string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Write(ctx, key, append(data, '\n'))
}

// SaveSnapshot writes every successful slot of snap below dir as
// "<field>-<index><ext>" and returns the stored keys in slot order.
func (s *FileStore) SaveSnapshot(ctx context.Context, dir string, snap assets.Snapshot) ([]string, error) {
	name := strings.ReplaceAll(snap.Field, ":", "-")
	if name == "" {
		name = "batch"
	}
	keys := make([]string, 0, snap.Succeeded)
	for _, slot := range snap.Slots {
		if slot.State != assets.SlotSuccess || slot.Payload.Empty() {
			continue
		}
		key := fmt.Sprintf("%s/%s-%d%s", strings.Trim(dir, "/"), name, slot.Index, zipkit.Extension(slot.Payload.MIMEType))
		stored, err := s.Write(ctx, key, slot.Payload.Data)
		if err != nil {
			return keys, err
		}
		keys = append(keys, stored)
	}
	return keys, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
