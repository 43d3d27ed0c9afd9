package config

import (
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/changelog"
	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/version"
)

// ChangelogOptions converts the changelog settings. The logger is passed
// through unchanged and may be nil.
func (s *Settings) ChangelogOptions(logger *slog.Logger) changelog.Options {
	c := s.Changelog
	return changelog.Options{
		StartingCommit:     c.StartingCommit,
		StartingTag:        c.StartingTag,
		ProjectURL:         c.ProjectURL,
		Markdown:           c.Markdown,
		ConventionalGroups: c.ConventionalGroups,
		Logger:             logger,
	}
}

// OutputPath returns where the changelog should be written.
func (s *Settings) OutputPath() string {
	if s.Changelog.Output == "" {
		return changelog.DefaultOutputPath
	}
	return s.Changelog.Output
}

// VersionOptions converts the version settings.
func (s *Settings) VersionOptions() version.Options {
	v := s.Version
	return version.Options{
		TagPrefix:       v.TagPrefix,
		NoPrefix:        v.NoPrefix,
		TagPattern:      v.TagPattern,
		PrereleaseLabel: v.PrereleaseLabel,
		Metadata:        v.Metadata,
	}
}

// BackendKinds returns the configured probe order, or git.DefaultBackends
// when none is set. Unknown names are skipped; Validate reports them.
func (s *Settings) BackendKinds() []git.BackendKind {
	if len(s.Backends) == 0 {
		return git.DefaultBackends()
	}
	kinds := make([]git.BackendKind, 0, len(s.Backends))
	for _, name := range s.Backends {
		k, err := git.ParseBackendKind(name)
		if err != nil {
			continue
		}
		kinds = append(kinds, k)
	}
	return kinds
}
