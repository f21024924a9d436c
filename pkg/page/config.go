package page

import (
	"strings"

	"github.com/pkg/errors"
)

// Config is the immutable configuration of a single page.
type Config struct {
	// Repo is the HTTP(S) URL of the git repository to mirror.
	Repo string
	// Ref is the branch or tag to serve. Default branch if empty.
	Ref string
	// Subfolder limits the page to files below this repository folder,
	// e.g. "docs/". Whole repository if empty.
	Subfolder string
	// Prefix is the URL path the page is mounted on. Must start and end
	// with a slash.
	Prefix string
	// AutoIndex serves index.htm(l), default.htm(l) or home.htm(l) when a
	// folder path is requested.
	AutoIndex bool
	// AutoList renders a folder listing for folder paths without an index.
	AutoList bool
	// UpdateSecret enables the GET update webhook at <prefix>update/<secret>.
	UpdateSecret string
	// MaxBytes fails an update whose cumulative blob bytes exceed it.
	// Unlimited if zero.
	MaxBytes int64
}

func (c Config) validate() error {
	if c.Repo == "" {
		return errors.New("repository url must not be empty")
	}
	if !strings.HasPrefix(c.Prefix, "/") {
		return errors.Errorf("prefix %q must start with a slash", c.Prefix)
	}
	if !strings.HasSuffix(c.Prefix, "/") {
		return errors.Errorf("prefix %q must end with a slash", c.Prefix)
	}
	return nil
}
