package git

import (
	"context"
	"io"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// Snapshot is the complete file set behind a single commit.
	Snapshot struct {
		Commit string
		Files  []File
	}
	// File is one blob reachable from the snapshot commit.
	File struct {
		Path string
		Hash string
		Data []byte
	}
	// Options describe a single fetch.
	Options struct {
		Repo     string
		Ref      string
		WorkDir  string
		MaxBytes int64
	}
	// Fetcher produces snapshots through shallow bare clones.
	Fetcher struct {
		l *zap.Logger
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewFetcher(l *zap.Logger) *Fetcher {
	return &Fetcher{
		l: l.Named("fetcher"),
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Fetch performs a shallow, single-commit clone of the requested ref into the
// scratch working directory and returns the resolved commit together with every
// blob reachable from its tree. The working directory is recreated before use
// and removed afterwards, regardless of the outcome.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) (*Snapshot, error) {
	if opts.Repo == "" {
		return nil, errors.New("repository url must not be empty")
	}
	if opts.WorkDir == "" {
		return nil, errors.New("working directory must not be empty")
	}

	if err := resetDir(opts.WorkDir); err != nil {
		return nil, errors.Wrap(err, "failed to prepare working directory")
	}
	defer func() {
		if err := os.RemoveAll(opts.WorkDir); err != nil {
			f.l.Warn("failed to clean working directory",
				zap.String("dir", opts.WorkDir),
				zap.Error(err),
			)
		}
	}()

	repo, err := f.clone(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clone %q", opts.Repo)
	}

	snapshot, err := collectFiles(repo, opts.MaxBytes)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// clone fetches the requested ref at depth one. A named ref is first tried as
// a branch and then as a tag, since the configuration does not distinguish.
func (f *Fetcher) clone(ctx context.Context, opts Options) (*gogit.Repository, error) {
	if opts.Ref == "" {
		return gogit.PlainCloneContext(ctx, opts.WorkDir, true, cloneOptions(opts.Repo, ""))
	}

	repo, err := gogit.PlainCloneContext(ctx, opts.WorkDir, true,
		cloneOptions(opts.Repo, plumbing.NewBranchReferenceName(opts.Ref)),
	)
	if err == nil {
		return repo, nil
	}
	f.l.Debug("ref is not a branch, retrying as tag",
		zap.String("ref", opts.Ref),
		zap.Error(err),
	)

	if err := resetDir(opts.WorkDir); err != nil {
		return nil, errors.Wrap(err, "failed to reset working directory")
	}
	return gogit.PlainCloneContext(ctx, opts.WorkDir, true,
		cloneOptions(opts.Repo, plumbing.NewTagReferenceName(opts.Ref)),
	)
}

func cloneOptions(repo string, ref plumbing.ReferenceName) *gogit.CloneOptions {
	return &gogit.CloneOptions{
		URL:           repo,
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         1,
		Tags:          gogit.NoTags,
	}
}

// collectFiles resolves HEAD of the cloned repository and enumerates every
// blob reachable from its tree. The cumulative byte budget is checked before
// each blob is read, so an over-budget fetch aborts early.
func collectFiles(repo *gogit.Repository, maxBytes int64) (*Snapshot, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve HEAD")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve tree")
	}

	var (
		files    []File
		bytesSum int64
	)
	err = tree.Files().ForEach(func(file *object.File) error {
		bytesSum += file.Size
		if maxBytes > 0 && bytesSum > maxBytes {
			return errors.Errorf("files behind commit exceed the limit of %d bytes", maxBytes)
		}
		reader, err := file.Blob.Reader()
		if err != nil {
			return errors.Wrapf(err, "failed to open blob %q", file.Name)
		}
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			return errors.Wrapf(err, "failed to read blob %q", file.Name)
		}
		files = append(files, File{
			Path: file.Name,
			Hash: file.Hash.String(),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Commit: head.Hash().String(),
		Files:  files,
	}, nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}
