// Package fetch acquires the raw dataset extracts that feed the
// pipeline. It is the pipeline's precondition, not part of the
// transformation core: given a target directory, Ensure either finds
// delimited files already there and skips all work, or downloads the
// dataset archive and leaves a flat set of named raw files directly in
// that directory, whatever the archive's internal layout.
//
// Re-downloads are deduplicated by content: when an archive carries the
// same payload under two member names (a common artifact of re-packed
// datasets), only the first copy is written, decided by xxh3 hash.
package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config configures a Fetcher.
type Config struct {
	// URL of the dataset zip archive.
	URL string

	// Timeout bounds a single download attempt.
	Timeout time.Duration

	// MaxRetries is the retry budget after the initial attempt.
	MaxRetries int
}

// Fetcher downloads and normalizes raw extracts.
type Fetcher struct {
	cfg    Config
	client *client
	log    *zap.Logger
}

// New returns a Fetcher. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		cfg: cfg,
		client: newClient(clientConfig{
			timeout:    cfg.Timeout,
			maxRetries: cfg.MaxRetries,
		}),
		log: log,
	}
}

// Ensure makes sure dir contains the raw extracts. It returns
// downloaded=false when delimited files are already present (no work
// done, not a failure), and downloaded=true after a successful download
// and extraction. Any error is a genuine failure, distinct from the
// already-present case.
func (f *Fetcher) Ensure(ctx context.Context, dir string) (downloaded bool, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("fetch: mkdir %s: %w", dir, err)
	}

	existing, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return false, fmt.Errorf("fetch: glob %s: %w", dir, err)
	}
	if len(existing) > 0 {
		f.log.Info("raw extracts already present, skipping download",
			zap.String("dir", dir), zap.Int("files", len(existing)))
		return false, nil
	}

	if f.cfg.URL == "" {
		return false, fmt.Errorf("fetch: raw area %s is empty and no fetch URL is configured", dir)
	}

	archivePath, err := f.download(ctx, dir)
	if err != nil {
		return false, err
	}
	defer os.Remove(archivePath)

	n, err := f.extract(ctx, archivePath, dir)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, fmt.Errorf("fetch: archive from %s contained no delimited files", f.cfg.URL)
	}

	f.log.Info("raw extracts downloaded", zap.String("dir", dir), zap.Int("files", n))
	return true, nil
}

// download streams the archive to a temp file next to its destination.
func (f *Fetcher) download(ctx context.Context, dir string) (string, error) {
	resp, err := f.client.get(ctx, f.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("fetch: download %s: %w", f.cfg.URL, err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(dir, ".download*.zip")
	if err != nil {
		return "", fmt.Errorf("fetch: create temp: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch: download %s: %w", f.cfg.URL, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch: close temp: %w", err)
	}
	return tmp.Name(), nil
}

// extract writes every delimited archive member flat into dir,
// normalizing any nested folder layout (members keep only their base
// name) and skipping members whose content hash has already been
// written. Members are extracted concurrently; the hash set is the only
// shared state.
func (f *Fetcher) extract(ctx context.Context, archivePath, dir string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("fetch: open archive: %w", err)
	}
	defer zr.Close()

	var (
		mu      sync.Mutex
		written = map[uint64]string{}
		count   int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, member := range zr.File {
		member := member
		if member.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(member.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc, err := member.Open()
			if err != nil {
				return fmt.Errorf("fetch: open member %s: %w", member.Name, err)
			}
			defer rc.Close()

			data, err := io.ReadAll(rc)
			if err != nil {
				return fmt.Errorf("fetch: read member %s: %w", member.Name, err)
			}

			sum := xxh3.Hash(data)
			mu.Lock()
			if prev, dup := written[sum]; dup {
				mu.Unlock()
				f.log.Debug("skipping duplicate archive member",
					zap.String("member", member.Name), zap.String("same_as", prev))
				return nil
			}
			written[sum] = name
			count++
			mu.Unlock()

			dst := filepath.Join(dir, name)
			if err := os.WriteFile(dst, data, 0o644); err != nil {
				return fmt.Errorf("fetch: write %s: %w", dst, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}
