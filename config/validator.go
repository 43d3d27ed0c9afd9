package config

import (
	"strconv"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
)

// Validate checks constraints that span fields. CUE files are also
// checked against the schema when loaded; YAML files and settings built in
// code are only checked here.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.New(errors.CodeInvalidInput, "settings are nil")
	}

	var problems []string

	if s.Changelog.StartingCommit != "" && s.Changelog.StartingTag != "" {
		problems = append(problems, "changelog.startingCommit and changelog.startingTag are mutually exclusive")
	}

	for _, name := range s.Backends {
		if _, err := git.ParseBackendKind(name); err != nil {
			problems = append(problems, "backends: unknown backend "+strconv.Quote(name))
		}
	}

	if s.Version.NoPrefix && s.Version.TagPrefix != "" {
		problems = append(problems, "version.noPrefix and version.tagPrefix are mutually exclusive")
	}

	if len(problems) > 0 {
		return errors.Newf(errors.CodeInvalidConfig, "invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
