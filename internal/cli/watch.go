package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/runner"
)

// analysisCacheSize bounds the number of cached file analyses.
const analysisCacheSize = 1024

// analysisCache memoizes file analyses by path and content hash, so a file
// that is saved without changes is not analysed again.
type analysisCache struct {
	entries *lru.Cache[string, *annotation.FileAnnotations]
	hits    atomic.Int64
}

func newAnalysisCache(size int) (*analysisCache, error) {
	entries, err := lru.New[string, *annotation.FileAnnotations](size)
	if err != nil {
		return nil, err
	}
	return &analysisCache{entries: entries}, nil
}

// analyze is a runner.Analyzer.
func (c *analysisCache) analyze(file *discovery.DiscoveredFile, text string) *annotation.FileAnnotations {
	sum := sha256.Sum256([]byte(text))
	key := file.RelativePath + "\x00" + hex.EncodeToString(sum[:])
	if fa, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return fa
	}
	fa := runner.Analyze(file, text)
	c.entries.Add(key, fa)
	return fa
}

// Watcher re-scans embedded SQL files below the search path whenever they
// change and rewrites the annotations file after each batch.
type Watcher struct {
	config    *Config
	out       io.Writer
	matcher   *discovery.Matcher
	fsw       *fsnotify.Watcher
	cache     *analysisCache
	collector *annotation.Collector

	// OnBatch, if set, is called after each batch has been saved with the
	// relative paths it covered.
	OnBatch func(paths []string)
}

// NewWatcher creates a watcher for config.SearchPath
func NewWatcher(config *Config, out io.Writer) (*Watcher, error) {
	matcher, err := discovery.NewMatcher(config.Patterns, config.Ignore)
	if err != nil {
		return nil, err
	}
	cache, err := newAnalysisCache(analysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	collector := annotation.NewCollector()
	collector.Annotations().Root = config.SearchPath

	return &Watcher{
		config:    config,
		out:       out,
		matcher:   matcher,
		fsw:       fsw,
		cache:     cache,
		collector: collector,
	}, nil
}

// Watch scans everything once, then re-scans on change until ctx is done.
func Watch(ctx context.Context, config *Config, out io.Writer) error {
	w, err := NewWatcher(config, out)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Collector returns the live annotation set.
func (w *Watcher) Collector() *annotation.Collector {
	return w.collector
}

// CacheHits returns how many analyses were served from the cache.
func (w *Watcher) CacheHits() int64 {
	return w.cache.hits.Load()
}

// Run is the main event loop. It returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	root := w.config.SearchPath
	if err := w.addDirectories(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	files, err := discovery.Discover(root, w.config.Patterns, w.config.Ignore)
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	initial := make([]string, 0, len(files))
	for _, f := range files {
		initial = append(initial, f.RelativePath)
	}
	if err := w.rescan(ctx, initial); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Watching %s for changes (Ctrl+C to stop)\n", root)

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			// New directories are watched and their files queued
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.queueDirectory(event.Name, pending)
					timer.Reset(w.config.Debounce)
					continue
				}
			}

			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			if err := w.rescan(ctx, paths); err != nil {
				logger.Error("%v", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error: %v", err)
		}
	}
}

// relevant returns the relative path of an event on a selected file.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	if !discovery.IsEmbeddedSQL(filepath.Base(event.Name)) {
		return "", false
	}
	rel, err := filepath.Rel(w.config.SearchPath, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, w.matcher.Match(rel)
}

// rescan analyses the existing files among paths, drops the missing ones
// and saves the result.
func (w *Watcher) rescan(ctx context.Context, paths []string) error {
	root := w.config.SearchPath
	var files []discovery.DiscoveredFile
	removed := 0
	for _, rel := range paths {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		f, err := discovery.NewDiscoveredFile(root, abs)
		if err != nil {
			w.collector.Remove(rel)
			removed++
			continue
		}
		files = append(files, f)
	}

	runs := scanFiles(ctx, w.config, files, w.cache.analyze)
	runner.Collect(w.collector, runs)
	for _, run := range runs {
		if run.Status == runner.ScanFailed {
			logger.Error("%s: %v", run.File.RelativePath, run.Error)
		}
	}

	if err := annotation.SaveCollector(w.collector, w.config.AnnotationsFile); err != nil {
		return fmt.Errorf("failed to save annotations: %w", err)
	}

	s := runner.SummarizeRuns(runs)
	fmt.Fprintf(w.out, "[%s] %d scanned, %d failed, %d removed: %d host variables, %d references\n",
		time.Now().Format("15:04:05"), s.ScannedFiles, s.FailedFiles, removed,
		s.HostVariables, s.SQLReferences+s.BareReferences)

	if w.OnBatch != nil {
		w.OnBatch(paths)
	}
	return nil
}

// addDirectories adds root and every directory below it that is not ignored.
func (w *Watcher) addDirectories(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.config.SearchPath, path); err == nil && w.matcher.IgnoredDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logger.Warn("failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}

// queueDirectory watches a newly created directory and queues the files
// already inside it, which produce no events of their own.
func (w *Watcher) queueDirectory(dir string, pending map[string]struct{}) {
	if err := w.addDirectories(dir); err != nil {
		logger.Warn("failed to watch new directory %s: %v", dir, err)
		return
	}
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.config.SearchPath, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if discovery.IsEmbeddedSQL(info.Name()) && w.matcher.Match(rel) {
			pending[rel] = struct{}{}
		}
		return nil
	})
}
