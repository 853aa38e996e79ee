// Package batch recognizes trainer card screenshots dropped into a directory
// and records them for one user, either once or continuously in watch mode.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
	"trainercard/pkg/queue"
)

// Store is the part of progress.Store a batch run needs.
type Store interface {
	IsProcessed(ctx context.Context, digest string) (bool, error)
	MarkProcessed(ctx context.Context, p models.ProcessedImage) error
	Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error)
}

const (
	debounceTick = 250 * time.Millisecond
	stableAfter  = 300 * time.Millisecond
)

// Runner processes image files found in Dir. Store is unused in dry-run mode.
type Runner struct {
	Dir     string
	UserID  uint
	Reader  queue.Recognizer
	Store   Store
	Workers int
	Timeout time.Duration
	DryRun  bool
	// MoveTo receives files that were handled for good. Empty keeps them in place.
	MoveTo string
}

// Stats counts what happened to each file of a run.
type Stats struct {
	Recorded int
	Stale    int
	Failed   int
	Skipped  int
	Errors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("recorded=%d stale=%d failed=%d skipped=%d errors=%d", s.Recorded, s.Stale, s.Failed, s.Skipped, s.Errors)
}

type result int

const (
	resRecorded result = iota
	resStale
	resFailed
	resSkipped
	resError
)

func (s *Stats) add(r result) {
	switch r {
	case resRecorded:
		s.Recorded++
	case resStale:
		s.Stale++
	case resFailed:
		s.Failed++
	case resSkipped:
		s.Skipped++
	default:
		s.Errors++
	}
}

// Scan processes every supported file currently in Dir, oldest first.
func (r *Runner) Scan(ctx context.Context) (Stats, error) {
	files, err := ListImageFiles(r.Dir)
	if err != nil {
		return Stats{}, err
	}
	log.Info().Str("dir", r.Dir).Int("files", len(files)).Int("workers", r.workers()).Bool("dry_run", r.DryRun).Msg("scanning")
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, f := range files {
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return r.pool(ctx, ch), nil
}

// Watch processes files created in Dir until ctx is done. A file is picked
// up once it has not changed for a short while.
func (r *Runner) Watch(ctx context.Context) (Stats, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Stats{}, err
	}
	defer w.Close()
	if err := w.Add(r.Dir); err != nil {
		return Stats{}, err
	}
	log.Info().Str("dir", r.Dir).Msg("watching")

	fileCh := make(chan string, 256)
	go func() {
		defer close(fileCh)
		pending := map[string]time.Time{}
		ticker := time.NewTicker(debounceTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > stableAfter {
						delete(pending, name)
						select {
						case fileCh <- name:
						case <-ctx.Done():
							return
						}
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("watch error")
			}
		}
	}()
	return r.pool(ctx, fileCh), nil
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return 1
	}
	return r.Workers
}

func (r *Runner) pool(ctx context.Context, names <-chan string) Stats {
	var (
		mu    sync.Mutex
		stats Stats
		wg    sync.WaitGroup
	)
	for i := 0; i < r.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				res := r.processFile(ctx, name)
				mu.Lock()
				stats.add(res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return stats
}

func (r *Runner) processFile(ctx context.Context, name string) result {
	full := filepath.Join(r.Dir, name)
	info, err := os.Stat(full)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("stat")
		return resError
	}
	data, err := os.ReadFile(full)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("read")
		return resError
	}
	digest := progress.Digest(data)
	logger := log.With().Str("file", name).Str("digest", digest[:12]).Logger()

	if !r.DryRun {
		done, err := r.Store.IsProcessed(ctx, digest)
		if err != nil {
			logger.Error().Err(err).Msg("check processed")
			return resError
		}
		if done {
			logger.Debug().Msg("skip, already processed")
			return resSkipped
		}
	}

	rctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	parsed, err := r.Reader.RecognizeContext(rctx, data)
	if err != nil && card.KindOf(err) == 0 {
		// engine trouble or timeout; leave unmarked so the next run retries
		logger.Error().Err(err).Msg("recognize")
		return resError
	}
	if r.DryRun {
		if err != nil {
			logger.Info().Str("kind", card.KindOf(err).String()).Msg("dry-run: no card")
			return resFailed
		}
		logger.Info().Str("name", parsed.Name).Int("badges", parsed.Badges).Str("time", parsed.Time).Int("pokedex", parsed.Pokedex).Msg("dry-run: card")
		return resRecorded
	}

	res := resFailed
	written := false
	if err == nil {
		written, err = r.Store.Record(ctx, r.UserID, parsed, info.ModTime(), name)
		if err != nil {
			logger.Error().Err(err).Msg("record")
			return resError
		}
		res = resStale
		if written {
			res = resRecorded
		}
		logger.Info().Str("name", parsed.Name).Int("badges", parsed.Badges).Bool("recorded", written).Msg("card")
		err = nil
	} else {
		logger.Info().Str("kind", card.KindOf(err).String()).Msg("no card")
	}

	outcome, reason := progress.Outcome(written, err)
	uid := r.UserID
	storePath := filepath.ToSlash(full)
	if r.MoveTo != "" {
		if moved, merr := moveFile(full, r.MoveTo); merr != nil {
			logger.Warn().Err(merr).Msg("move processed file")
		} else {
			storePath = filepath.ToSlash(moved)
		}
	}
	if merr := r.Store.MarkProcessed(ctx, models.ProcessedImage{
		Digest:    digest,
		UserID:    &uid,
		FileName:  name,
		StorePath: storePath,
		Outcome:   outcome,
		Reason:    reason,
	}); merr != nil {
		logger.Warn().Err(merr).Msg("mark processed")
	}
	return res
}

// ListImageFiles returns the supported image files in dir ordered by
// modification time, oldest first, then by name.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		name string
		mod  time.Time
	}
	var files []entry
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, entry{e.Name(), info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.Before(files[j].mod)
		}
		return files[i].name < files[j].name
	})
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.name
	}
	return out, nil
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}

// moveFile moves src into dir, trying a rename first and falling back to
// copy and remove across filesystems.
func moveFile(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, os.Remove(src)
}
