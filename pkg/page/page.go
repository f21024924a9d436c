package page

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/foomo/gitpages/pkg/git"
	"github.com/foomo/gitpages/pkg/mediatype"
	"github.com/foomo/gitpages/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// indexCandidates are probed in this order when a folder path is requested.
var indexCandidates = []string{
	"index.html",
	"index.htm",
	"default.html",
	"default.htm",
	"home.html",
	"home.htm",
}

type (
	// Page owns one site's configuration and its currently served snapshot.
	Page struct {
		l       *zap.Logger
		config  Config
		mu      sync.RWMutex
		current *snapshot
	}
	// File is a single served file of a page.
	File struct {
		Path      string
		MediaType string
		Hash      string
		Data      []byte
	}
	// snapshot is the immutable file set of one commit. Update replaces it
	// wholesale, readers never observe a partially written one.
	snapshot struct {
		commit string
		files  map[string]*File
		paths  []string
	}
	// Fetcher produces the file set behind a repository ref.
	Fetcher interface {
		Fetch(ctx context.Context, opts git.Options) (*git.Snapshot, error)
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, config Config) (*Page, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Page{
		l:      l.Named("page").With(zap.String("prefix", config.Prefix)),
		config: config,
	}, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (p *Page) Config() Config {
	return p.config
}

func (p *Page) Prefix() string {
	return p.config.Prefix
}

// Loaded reports whether the page serves a snapshot.
func (p *Page) Loaded() bool {
	return p.snapshot() != nil
}

// Commit returns the commit hash of the currently served snapshot.
func (p *Page) Commit() string {
	if s := p.snapshot(); s != nil {
		return s.commit
	}
	return ""
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Update fetches the configured ref and swaps in the resulting file set. The
// fetch runs without any lock held, concurrent reads are never blocked. When
// the remote commit matches the served one the call is a no-op. On failure the
// previous snapshot stays untouched.
func (p *Page) Update(ctx context.Context, fetcher Fetcher, tempDir string) error {
	lastCommit := p.Commit()

	fetched, err := fetcher.Fetch(ctx, git.Options{
		Repo:     p.config.Repo,
		Ref:      p.config.Ref,
		WorkDir:  p.workDir(tempDir),
		MaxBytes: p.config.MaxBytes,
	})
	if err != nil {
		return errors.Wrap(err, "failed to fetch snapshot")
	}

	if lastCommit != "" && fetched.Commit == lastCommit {
		p.l.Debug("commit unchanged, keeping current snapshot", zap.String("commit", lastCommit))
		return nil
	}

	next := newSnapshot(fetched, p.config)
	if len(next.files) == 0 {
		return errors.Errorf("no files found for commit %s", fetched.Commit)
	}

	p.swap(next)

	var bytesSum int64
	for _, file := range next.files {
		bytesSum += int64(len(file.Data))
	}
	metrics.SnapshotFilesGauge.WithLabelValues(p.config.Prefix).Set(float64(len(next.files)))
	metrics.SnapshotBytesGauge.WithLabelValues(p.config.Prefix).Set(float64(bytesSum))

	p.l.Info("snapshot swapped",
		zap.String("commit", next.commit),
		zap.Int("files", len(next.files)),
		zap.Int64("bytes", bytesSum),
	)
	return nil
}

// FindFile looks up the file served at path. For folder paths with auto index
// enabled the index candidates are probed first.
func (p *Page) FindFile(path string) (*File, bool) {
	s := p.snapshot()
	if s == nil {
		return nil, false
	}

	if p.config.AutoIndex && strings.HasSuffix(path, "/") {
		for _, name := range indexCandidates {
			if file, ok := s.files[path+name]; ok {
				return file, true
			}
		}
	}

	file, ok := s.files[path]
	return file, ok
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (p *Page) snapshot() *snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Page) swap(s *snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
}

// workDir derives the page's scratch clone directory from its prefix, so
// concurrently updating pages never share one.
func (p *Page) workDir(tempDir string) string {
	folder := strings.TrimPrefix(p.config.Prefix, "/")
	if folder == "" {
		folder = "root"
	}
	return path.Join(tempDir, folder)
}

func newSnapshot(fetched *git.Snapshot, config Config) *snapshot {
	files := make(map[string]*File, len(fetched.Files))
	paths := make([]string, 0, len(fetched.Files))
	for _, file := range fetched.Files {
		relative := file.Path
		if config.Subfolder != "" {
			stripped, ok := strings.CutPrefix(relative, config.Subfolder)
			if !ok {
				continue
			}
			relative = stripped
		}
		served := &File{
			Path:      config.Prefix + relative,
			MediaType: mediatype.FromPath(relative),
			Hash:      file.Hash,
			Data:      file.Data,
		}
		files[served.Path] = served
		paths = append(paths, served.Path)
	}
	sort.Strings(paths)
	return &snapshot{
		commit: fetched.Commit,
		files:  files,
		paths:  paths,
	}
}
