package mock

import (
	"context"
	"sync"

	"github.com/foomo/gitpages/pkg/git"
	"github.com/pkg/errors"
)

// Fetcher is an in-memory snapshot fetcher to run pages without a remote.
// Configured snapshots are returned in order, the last one repeats.
type Fetcher struct {
	mu        sync.Mutex
	snapshots []*git.Snapshot
	err       error
	calls     int
	lastOpts  git.Options
}

func NewFetcher(snapshots ...*git.Snapshot) *Fetcher {
	return &Fetcher{snapshots: snapshots}
}

func NewFailingFetcher(err error) *Fetcher {
	return &Fetcher{err: err}
}

func (f *Fetcher) Fetch(_ context.Context, opts git.Options) (*git.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastOpts = opts

	if f.err != nil {
		return nil, f.err
	}
	if len(f.snapshots) == 0 {
		return nil, errors.New("mock fetcher has no snapshots")
	}
	i := f.calls - 1
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	snapshot := f.snapshots[i]

	if opts.MaxBytes > 0 {
		var bytesSum int64
		for _, file := range snapshot.Files {
			bytesSum += int64(len(file.Data))
			if bytesSum > opts.MaxBytes {
				return nil, errors.Errorf("files behind commit exceed the limit of %d bytes", opts.MaxBytes)
			}
		}
	}
	return snapshot, nil
}

// Fail makes all subsequent fetches return the given error.
func (f *Fetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fetcher) LastOptions() git.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

// Snapshot builds a snapshot for the given commit.
func Snapshot(commit string, files ...git.File) *git.Snapshot {
	return &git.Snapshot{
		Commit: commit,
		Files:  files,
	}
}

// File builds a snapshot file with a deterministic fake hash.
func File(path, data string) git.File {
	return git.File{
		Path: path,
		Hash: "blob-" + path,
		Data: []byte(data),
	}
}
