package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/nlsql/pkg/logger"
)

const (
	defaultDirPermission  = 0o750
	defaultFilePermission = 0o644
)

// Saver persists a downloaded payload under filename and returns where it went.
type Saver interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DirSaver writes downloads into Dir. The payload is streamed into a temporary
// file next to the target and renamed into place, so a failed save never
// leaves a partial file behind.
type DirSaver struct {
	Dir  string
	Perm os.FileMode
}

// Save implements Saver.
func (s *DirSaver) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	perm := s.Perm
	if perm == 0 {
		perm = defaultFilePermission
	}
	if err := tmp.Chmod(perm); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	committed = true
	return target, nil
}

// sanitizeFilename keeps a name inside the download directory.
func sanitizeFilename(filename string) (string, error) {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(filename))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}

// downloadBlob hands an in-memory payload to the saver.
func (c *Client) downloadBlob(ctx context.Context, blob []byte, filename, endpoint string) (string, error) {
	c.metrics.AddDownloadBytes(int64(len(blob)))

	path, err := c.saver.Save(ctx, filename, bytes.NewReader(blob))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSave, err)
		c.log.Error(ctx, "download save failed",
			logger.String("filename", filename),
			logger.String("endpoint", endpoint),
			logger.Error(err))
		c.metrics.RecordError(endpoint, "save")
		return "", err
	}

	c.metrics.RecordFileSaved(endpoint)
	c.log.Info(ctx, "download saved",
		logger.String("path", path),
		logger.Int("bytes", len(blob)))
	return path, nil
}
