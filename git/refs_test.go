package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"refs/heads/main", "main"},
		{"refs/heads/feature/login", "feature/login"},
		{"refs/tags/v1.0.0", "v1.0.0"},
		{"refs/remotes/origin/main", "origin/main"},
		{"refs/notes/commits", "commits"},
		{"refs/stash", "stash"},
		{"refs/pull/1/head", "pull/1/head"},
		{"HEAD", "HEAD"},
		{"main", "main"},
		{"", ""},
		{"refs/heads/", "heads/"},
		{"refs/", "refs/"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenRef(tt.ref))
		})
	}
}

func TestClassifyRef(t *testing.T) {
	tests := []struct {
		ref  string
		want RefKind
	}{
		{"refs/heads/main", RefBranch},
		{"refs/tags/v1", RefTag},
		{"refs/remotes/origin/main", RefRemoteBranch},
		{"refs/notes/commits", RefNote},
		{"refs/stash", RefOther},
		{"HEAD", RefNone},
		{"0123456789abcdef0123456789abcdef01234567", RefNone},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRef(tt.ref))
		})
	}
}

func TestRefKind_String(t *testing.T) {
	tests := []struct {
		kind RefKind
		want string
	}{
		{RefBranch, "branch"},
		{RefTag, "tag"},
		{RefRemoteBranch, "remote-branch"},
		{RefNote, "note"},
		{RefOther, "other"},
		{RefNone, "none"},
		{RefKind(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestTagName(t *testing.T) {
	name, ok := tagName("refs/tags/v1.2.3")
	assert.True(t, ok)
	assert.Equal(t, "v1.2.3", name)

	_, ok = tagName("refs/heads/main")
	assert.False(t, ok)

	_, ok = tagName("refs/tags/")
	assert.False(t, ok)
}
