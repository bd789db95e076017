package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the URL path uploaded images are served from.
const PublicPrefix = "/uploads/"

// Provider stores question images and resolves their public URLs.
type Provider interface {
	// Save stores the upload under a generated collision-free name and
	// returns its public path ("/uploads/<name>").
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)

	// Remove deletes a previously stored file by its public path. Paths
	// outside PublicPrefix (external URLs) are ignored.
	Remove(ctx context.Context, publicPath string) error

	// Dir returns the local directory files are written to.
	Dir() string
}

// LocalProvider writes uploads to a directory on the local filesystem.
type LocalProvider struct {
	dir    string
	logger *slog.Logger
}

func NewLocalProvider(dir string, logger *slog.Logger) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalProvider{dir: dir, logger: logger}, nil
}

func (p *LocalProvider) Dir() string {
	return p.dir
}

func (p *LocalProvider) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := generateFilename(file.Filename)
	target := filepath.Join(p.dir, name)

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	p.logger.DebugContext(ctx, "Stored upload", "filename", name, "size", file.Size)

	return PublicPrefix + name, nil
}

// Remove deletes best-effort: a missing file is not an error, and external
// URLs are skipped entirely.
func (p *LocalProvider) Remove(ctx context.Context, publicPath string) error {
	name, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok || name == "" {
		return nil
	}
	// Refuse anything trying to escape the upload directory
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid upload path %q", publicPath)
	}

	if err := os.Remove(filepath.Join(p.dir, name)); err != nil && !os.IsNotExist(err) {
		p.logger.WarnContext(ctx, "Failed to remove upload", "filename", name, "error", err)
		return err
	}

	return nil
}

// generateFilename builds "<unix-millis>-<6 random base36 chars><ext>".
func generateFilename(original string) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; fall back to a fixed character rather than panic.
			suffix[i] = '0'
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}

	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}
