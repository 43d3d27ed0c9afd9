package changelog

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// DefaultOutputPath is where the changelog is written when no path is configured.
const DefaultOutputPath = "build/changelog.txt"

// WriteFile writes content to name on fsys, creating parent directories and
// replacing any existing file.
func WriteFile(fsys billy.Filesystem, name, content string) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create changelog directory %s: %w", dir, err)
		}
	}

	if err := fsys.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing changelog %s: %w", name, err)
	}

	if err := util.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write changelog %s: %w", name, err)
	}
	return nil
}

// ProjectURL converts a remote URL into the web URL of the project, e.g.
// git@github.com:org/repo.git becomes https://github.com/org/repo. Local
// paths and unparsable URLs yield "".
func ProjectURL(remoteURL string) string {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return ""
	}

	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil || ep.Host == "" || ep.Protocol == "file" {
		return ""
	}

	host := ep.Host
	if (ep.Protocol == "http" || ep.Protocol == "https") && ep.Port != 0 && ep.Port != 80 && ep.Port != 443 {
		host = host + ":" + strconv.Itoa(ep.Port)
	}

	p := strings.Trim(ep.Path, "/")
	p = strings.TrimSuffix(p, ".git")
	if p == "" {
		return "https://" + host
	}
	return "https://" + host + "/" + p
}
