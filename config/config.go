// Package config loads gitinfo settings from CUE or YAML files.
//
// A settings file configures changelog generation, version derivation and
// the git backends to probe. CUE files are checked against a built-in
// schema before decoding; YAML files are decoded strictly.
//
// # Basic Usage
//
//	import (
//	    "github.com/go-git/go-billy/v5/osfs"
//	    "github.com/input-output-hk/catalyst-forge-libs/gitinfo/config"
//	)
//
//	func main() {
//	    fs := osfs.New("/path/to/repo")
//
//	    settings, err := config.Load(fs, "gitinfo.cue")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p, err := git.Open(ctx, "/path/to/repo", git.WithBackends(settings.BackendKinds()...))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer p.Close()
//
//	    out, err := changelog.Generate(ctx, p, settings.ChangelogOptions(nil))
//	}
//
// An equivalent CUE file:
//
//	changelog: {
//	    startingTag: "v1.0.0"
//	    markdown:    true
//	    projectUrl:  "https://github.com/example/project"
//	}
//	version: prereleaseLabel: "dev"
//	backends: ["library"]
package config

// Settings is the decoded content of a settings file.
type Settings struct {
	Changelog ChangelogSettings `json:"changelog" yaml:"changelog"`
	Version   VersionSettings   `json:"version" yaml:"version"`

	// Backends lists backend names in probe order. Empty means the
	// default order.
	Backends []string `json:"backends,omitempty" yaml:"backends,omitempty"`
}

// ChangelogSettings mirrors changelog.Options.
type ChangelogSettings struct {
	StartingCommit     string `json:"startingCommit,omitempty" yaml:"startingCommit,omitempty"`
	StartingTag        string `json:"startingTag,omitempty" yaml:"startingTag,omitempty"`
	Markdown           bool   `json:"markdown,omitempty" yaml:"markdown,omitempty"`
	ProjectURL         string `json:"projectUrl,omitempty" yaml:"projectUrl,omitempty"`
	ConventionalGroups bool   `json:"conventionalGroups,omitempty" yaml:"conventionalGroups,omitempty"`

	// Output is where the changelog is written. Empty means
	// changelog.DefaultOutputPath.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// VersionSettings mirrors version.Options.
type VersionSettings struct {
	TagPrefix       string `json:"tagPrefix,omitempty" yaml:"tagPrefix,omitempty"`
	NoPrefix        bool   `json:"noPrefix,omitempty" yaml:"noPrefix,omitempty"`
	TagPattern      string `json:"tagPattern,omitempty" yaml:"tagPattern,omitempty"`
	PrereleaseLabel string `json:"prereleaseLabel,omitempty" yaml:"prereleaseLabel,omitempty"`
	Metadata        bool   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
