package git

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/executor"
)

func TestCLIProvider_Probe(t *testing.T) {
	requireGitCLI(t)

	t.Run("repository", func(t *testing.T) {
		tr, _ := setupLinearRepo(t, "a")
		p, err := OpenCLI(context.Background(), tr.dir)
		require.NoError(t, err)
		assert.Equal(t, BackendCLI, p.Backend())
		assert.NoError(t, p.Close())
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := OpenCLI(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, ErrProbeFailed)
		assert.ErrorIs(t, err, ErrNotARepository)
	})

	t.Run("missing executable", func(t *testing.T) {
		tr, _ := setupLinearRepo(t, "a")
		_, err := OpenCLI(context.Background(), tr.dir, WithGitExecutable("git-does-not-exist-here"))
		assert.ErrorIs(t, err, ErrProbeFailed)
		assert.ErrorIs(t, err, executor.ErrCommandNotFound)
	})
}

func TestCLIProvider_Queries(t *testing.T) {
	tr, h := setupLinearRepo(t, "a", "b", "c")
	tr.annotatedTag(t, "v1.0.0", h[1])
	tr.addRemote(t, "origin", "https://example.com/org/repo.git")
	tr.trackUpstream(t, "master", "origin", h[2])
	feature := tr.commit(t, "feature", h[1])
	tr.setBranch(t, "feature", feature)

	p := openCLI(t, tr.dir)
	ctx := context.Background()

	gitDir, err := p.DotGitDirectory(ctx)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(gitDir))
	want, err := filepath.EvalSymlinks(filepath.Join(tr.dir, ".git"))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(gitDir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	head, err := p.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, h[2].String(), head)

	short, err := p.AbbreviateRef(ctx, "HEAD", 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(short), 10)
	assert.True(t, strings.HasPrefix(head, short))

	_, err = p.AbbreviateRef(ctx, "HEAD", 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	commit, err := p.ResolveCommit(ctx, "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, h[1].String(), commit)

	_, err = p.ResolveCommit(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrResolveFailed)
	var cmdErr *executor.CommandError
	assert.ErrorAs(t, err, &cmdErr)

	branch, ok, err := p.FullBranch(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refs/heads/master", branch)

	upstream, ok, err := p.Upstream(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refs/remotes/origin/master", upstream)

	n, err := p.RemotesCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	url, ok, err := p.RemotePushURL(ctx, "origin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/org/repo.git", url)

	_, ok, err = p.RemotePushURL(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	base, err := p.MergeBase(ctx, "master", "feature")
	require.NoError(t, err)
	assert.Equal(t, h[1].String(), base)

	shortened, err := p.ShortenRef(ctx, "refs/remotes/origin/master")
	require.NoError(t, err)
	assert.Equal(t, "origin/master", shortened)

	_, err = p.Commits(ctx, "HEAD", "")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCLIProvider_DetachedAndOrphan(t *testing.T) {
	tr, h := setupLinearRepo(t, "a", "b")
	orphan := tr.commit(t, "unrelated")
	tr.setBranch(t, "orphan", orphan)
	tr.detach(t, h[0])

	p := openCLI(t, tr.dir)
	ctx := context.Background()

	_, ok, err := p.FullBranch(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = p.Upstream(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := p.RemotesCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = p.MergeBase(ctx, "master", "orphan")
	assert.ErrorIs(t, err, ErrNoMergeBase)
}

func TestCLIProvider_Tags(t *testing.T) {
	t.Run("no tags", func(t *testing.T) {
		tr, _ := setupLinearRepo(t, "a")
		p := openCLI(t, tr.dir)

		tags, err := p.Tags(context.Background(), true)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("annotated and lightweight", func(t *testing.T) {
		tr, h := setupLinearRepo(t, "a", "b")
		tr.annotatedTag(t, "v1.0.0", h[0])
		tr.lightweightTag(t, "nightly", h[1])
		p := openCLI(t, tr.dir)
		ctx := context.Background()

		annotated, err := p.Tags(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, []Tag{{Name: "v1.0.0", TargetCommitHash: h[0].String()}}, annotated)

		all, err := p.Tags(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []Tag{
			{Name: "nightly", TargetCommitHash: h[1].String()},
			{Name: "v1.0.0", TargetCommitHash: h[0].String()},
		}, all)
	})
}

func TestBackendParity(t *testing.T) {
	requireGitCLI(t)

	tr, h := setupLinearRepo(t, "A", "B", "C", "D", "E")
	tr.annotatedTag(t, "v0.1.0", h[0])
	tr.annotatedTag(t, "v0.2.0", h[2])
	tr.lightweightTag(t, "nightly", h[3])
	tr.addRemote(t, "origin", "https://example.com/org/repo.git")

	cli := openCLI(t, tr.dir)
	lib := openLibrary(t, tr.dir)
	ctx := context.Background()

	describes := []struct {
		name string
		call func(p Provider) *DescribeCall
	}{
		{"default", func(p Provider) *DescribeCall { return p.Describe() }},
		{"long", func(p Provider) *DescribeCall { return p.Describe().LongFormat(true) }},
		{"lightweight", func(p Provider) *DescribeCall { return p.Describe().IncludeLightweightTags(true) }},
		{"match", func(p Provider) *DescribeCall { return p.Describe().Matching("v0.1*") }},
		{"exact", func(p Provider) *DescribeCall { return p.Describe().Target("v0.2.0") }},
		{"exact long", func(p Provider) *DescribeCall { return p.Describe().Target("v0.2.0").LongFormat(true) }},
		{"older target", func(p Provider) *DescribeCall { return p.Describe().Target(h[1].String()) }},
	}

	for _, d := range describes {
		t.Run("describe "+d.name, func(t *testing.T) {
			want, err := d.call(cli).Run(ctx)
			require.NoError(t, err)
			got, err := d.call(lib).Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("describe braces", func(t *testing.T) {
		for _, p := range []Provider{cli, lib} {
			_, err := p.Describe().Matching("v0.{1,2}.0").Run(ctx)
			assert.ErrorIs(t, err, ErrNoTagFound, p.Backend().String())
		}
	})

	t.Run("tags", func(t *testing.T) {
		for _, include := range []bool{false, true} {
			want, err := cli.Tags(ctx, include)
			require.NoError(t, err)
			got, err := lib.Tags(ctx, include)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("state", func(t *testing.T) {
		for _, q := range []func(p Provider) (string, error){
			func(p Provider) (string, error) { return p.Head(ctx) },
			func(p Provider) (string, error) { return p.ResolveCommit(ctx, "v0.2.0") },
			func(p Provider) (string, error) { return p.MergeBase(ctx, "HEAD", "v0.1.0") },
			func(p Provider) (string, error) { return p.AbbreviateRef(ctx, "HEAD", 9) },
			func(p Provider) (string, error) { return p.AbbreviateRef(ctx, "v0.2.0", 7) },
			func(p Provider) (string, error) { return p.AbbreviateRef(ctx, "nightly", 7) },
		} {
			want, err := q(cli)
			require.NoError(t, err)
			got, err := q(lib)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})
}

func TestBackendParity_NoTags(t *testing.T) {
	tr, _ := setupLinearRepo(t, "a", "b")

	for name, p := range providers(t, tr.dir) {
		t.Run(name, func(t *testing.T) {
			_, err := p.Describe().Run(context.Background())
			assert.ErrorIs(t, err, ErrNoTagFound)
		})
	}
}

func TestBackendParity_LightweightOnly(t *testing.T) {
	tr, h := setupLinearRepo(t, "a", "b")
	tr.lightweightTag(t, "v1", h[0])

	for name, p := range providers(t, tr.dir) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := p.Describe().Run(ctx)
			assert.ErrorIs(t, err, ErrNoTagFound)

			got, err := p.Describe().IncludeLightweightTags(true).Run(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, "v1-1-g"), got)

			_, err = p.Describe().IncludeLightweightTags(true).Matching("release-*").Run(ctx)
			assert.ErrorIs(t, err, ErrNoTagFound)
		})
	}
}
