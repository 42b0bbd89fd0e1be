package marketplace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nova-cli/nova/internal/git"
	"github.com/nova-cli/nova/internal/scope"
)

// DefaultFetchTimeout is the timeout applied to a single clone or copy
// operation when the caller does not override it (spec.md §4.7).
const DefaultFetchTimeout = 300 * time.Second

// Fetcher materializes a MarketplaceSource into a fresh local working
// directory. It never returns a partial directory: on any failure
// (including timeout) the destination is removed before the error returns.
type Fetcher struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewFetcher builds a Fetcher with the spec's default timeout.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{Timeout: DefaultFetchTimeout, Logger: logger}
}

// Fetch materializes src under a fresh temp directory and returns its path.
// The caller owns cleanup of the returned directory.
func (f *Fetcher) Fetch(ctx context.Context, src scope.MarketplaceSource) (string, error) {
	correlation := uuid.New()
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	dst, err := os.MkdirTemp("", "nova-fetch-*")
	if err != nil {
		return "", err
	}
	// MkdirTemp already creates dst; git clone requires a non-existent (or
	// empty) target, so remove it and let clone recreate it; the local
	// branch recreates it before copying into it.
	os.RemoveAll(dst)

	f.Logger.Info("fetch start",
		zap.String("correlation_id", correlation.String()),
		zap.String("source_type", string(src.Type)),
	)

	var fetchErr error
	switch src.Type {
	case scope.SourceGitHub:
		url := ExpandGitHubURL(src.Repo)
		fetchErr = f.cloneAndStrip(ctx, url, dst, timeout)
	case scope.SourceGit:
		fetchErr = f.cloneAndStrip(ctx, src.URL, dst, timeout)
	case scope.SourceLocal:
		if err := os.MkdirAll(dst, 0o755); err != nil {
			fetchErr = err
			break
		}
		fetchErr = f.copyWithTimeout(ctx, src.Path, dst, timeout)
	default:
		fetchErr = &unsupportedSourceError{kind: string(src.Type)}
	}

	if fetchErr != nil {
		os.RemoveAll(dst)
		f.Logger.Warn("fetch failed",
			zap.String("correlation_id", correlation.String()),
			zap.Error(fetchErr),
		)
		return "", fetchErr
	}

	f.Logger.Info("fetch complete", zap.String("correlation_id", correlation.String()), zap.String("dir", dst))
	return dst, nil
}

func (f *Fetcher) cloneAndStrip(ctx context.Context, url, dst string, timeout time.Duration) error {
	if err := git.ShallowClone(ctx, url, dst, timeout); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(dst, ".git"))
}

func (f *Fetcher) copyWithTimeout(ctx context.Context, src, dst string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := copyTree(ctx, src, dst)
	if ctx.Err() == context.DeadlineExceeded {
		return &git.TimeoutError{URL: src, Timeout: timeout}
	}
	return err
}

// copyTree recursively copies src into dst, following symlinks once
// (resolving them to their target's content rather than recreating the
// link) and refusing to recurse into a symlink's resolved target a second
// time, which rules out cycles.
func copyTree(ctx context.Context, src, dst string) error {
	visited := map[string]bool{}
	return copyTreeVisit(ctx, src, dst, visited)
}

func copyTreeVisit(ctx context.Context, src, dst string, visited map[string]bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	real, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	info, err := os.Stat(real)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(real)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyTreeVisit(ctx, filepath.Join(real, entry.Name()), filepath.Join(dst, entry.Name()), visited); err != nil {
				return err
			}
		}
		return nil
	}

	return copyFile(real, dst, info.Mode().Perm())
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

type unsupportedSourceError struct {
	kind string
}

func (e *unsupportedSourceError) Error() string {
	return "unsupported marketplace source kind: " + e.kind
}
