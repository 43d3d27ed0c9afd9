package git

import (
	"context"
)

// RemotePushURL implements Provider. An explicit pushurl wins over the
// first fetch URL, as in git.
func (p *LibraryProvider) RemotePushURL(_ context.Context, name string) (string, bool, error) {
	cfg, err := p.repo.Config()
	if err != nil {
		return "", false, WrapError(err, "failed to read config")
	}

	remote, ok := cfg.Remotes[name]
	if !ok {
		return "", false, nil
	}

	if cfg.Raw != nil && cfg.Raw.Section("remote").HasSubsection(name) {
		if urls := cfg.Raw.Section("remote").Subsection(name).Options.GetAll("pushurl"); len(urls) > 0 {
			return urls[0], true, nil
		}
	}
	if len(remote.URLs) == 0 {
		return "", false, nil
	}
	return remote.URLs[0], true, nil
}

// RemotesCount implements Provider.
func (p *LibraryProvider) RemotesCount(_ context.Context) (int, error) {
	remotes, err := p.repo.Remotes()
	if err != nil {
		return 0, WrapError(err, "failed to list remotes")
	}
	return len(remotes), nil
}
