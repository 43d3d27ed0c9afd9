package git

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeCall_Builder(t *testing.T) {
	var calls []DescribeOptions
	run := func(_ context.Context, opts DescribeOptions) (string, error) {
		calls = append(calls, opts)
		return "v1.0.0", nil
	}

	d := NewDescribeCall(run)
	assert.Equal(t, DescribeOptions{Target: DefaultDescribeTarget}, d.Options())

	same := d.LongFormat(true).IncludeLightweightTags(true).Matching("v*").Matching("release-*", "rc-*").Target("main")
	assert.Same(t, d, same)
	assert.Equal(t, DescribeOptions{
		Long:                   true,
		IncludeLightweightTags: true,
		Match:                  []string{"v*", "release-*", "rc-*"},
		Target:                 "main",
	}, d.Options())

	d.Matching().Target("")
	opts := d.Options()
	assert.Nil(t, opts.Match, "Matching() with no args clears patterns")
	assert.Equal(t, DefaultDescribeTarget, opts.Target)

	d.Matching("v*")
	snapshot := d.Options()
	snapshot.Match[0] = "mutated"
	assert.Equal(t, []string{"v*"}, d.Options().Match, "Options returns a copy")

	ctx := context.Background()
	_, err := d.Run(ctx)
	require.NoError(t, err)
	_, err = d.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, calls, 2, "every Run executes again")
}

func TestTagMatcher(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		tag      string
		want     bool
	}{
		{name: "no patterns", tag: "anything", want: true},
		{name: "prefix glob", patterns: []string{"v*"}, tag: "v1.2.3", want: true},
		{name: "prefix glob miss", patterns: []string{"v*"}, tag: "release-1", want: false},
		{name: "any of", patterns: []string{"v*", "release-*"}, tag: "release-1", want: true},
		{name: "single char", patterns: []string{"v?.0"}, tag: "v1.0", want: true},
		{name: "character class", patterns: []string{"v[0-9]*"}, tag: "vx", want: false},
		{name: "exact", patterns: []string{"stable"}, tag: "stable", want: true},
		{name: "braces are literal", patterns: []string{"v1.{0,1}.0"}, tag: "v1.0.0", want: false},
		{name: "braces match themselves", patterns: []string{"v1.{0,1}.0"}, tag: "v1.{0,1}.0", want: true},
		{name: "comma in class", patterns: []string{"v[,.]1"}, tag: "v,1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newTagMatcher(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.tag))
		})
	}
}

func TestLiteralBraces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "v*", want: "v*"},
		{in: "v{1,2}", want: `v\{1\,2\}`},
		{in: `v\{1`, want: `v\{1`},
		{in: `v\\{`, want: `v\\\{`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, literalBraces(tt.in))
		})
	}
}

func TestTagMatcher_InvalidPattern(t *testing.T) {
	_, err := newTagMatcher([]string{"v[1-"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPreferTag(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	tests := []struct {
		name string
		a, b tagRef
		want bool
	}{
		{
			name: "annotated beats lightweight",
			a:    tagRef{name: "z", annotated: true, tagged: older},
			b:    tagRef{name: "a"},
			want: true,
		},
		{
			name: "lightweight loses to annotated",
			a:    tagRef{name: "a"},
			b:    tagRef{name: "z", annotated: true},
			want: false,
		},
		{
			name: "newer tagger date wins",
			a:    tagRef{name: "z", annotated: true, tagged: newer},
			b:    tagRef{name: "a", annotated: true, tagged: older},
			want: true,
		},
		{
			name: "name breaks date tie",
			a:    tagRef{name: "a", annotated: true, tagged: older},
			b:    tagRef{name: "b", annotated: true, tagged: older},
			want: true,
		},
		{
			name: "lightweight by name",
			a:    tagRef{name: "b"},
			b:    tagRef{name: "a"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preferTag(tt.a, tt.b))
		})
	}
}

func TestLibraryProvider_Describe(t *testing.T) {
	tr, h := setupLinearRepo(t, "A", "B", "C", "D")
	tr.annotatedTag(t, "v1.0", h[2])
	p := openLibrary(t, tr.dir)
	ctx := context.Background()

	abbrev, err := p.AbbreviateRef(ctx, h[3].String(), 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		call    *DescribeCall
		want    string
		wantErr error
	}{
		{name: "one past tag", call: p.Describe(), want: "v1.0-1-g" + abbrev},
		{name: "on tag", call: p.Describe().Target("v1.0"), want: "v1.0"},
		{name: "on tag long", call: p.Describe().Target(h[2].String()).LongFormat(true), want: "v1.0-0-g"},
		{name: "before any tag", call: p.Describe().Target("HEAD~2"), wantErr: ErrNoTagFound},
		{name: "no pattern match", call: p.Describe().Matching("release-*"), wantErr: ErrNoTagFound},
		{name: "unknown target", call: p.Describe().Target("nope"), wantErr: ErrResolveFailed},
		{name: "bad pattern", call: p.Describe().Matching("[a-"), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call.Run(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if strings.HasSuffix(tt.want, "-g") {
				assert.True(t, strings.HasPrefix(got, tt.want), got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibraryProvider_DescribeNearest(t *testing.T) {
	// A - B(v1) - C - D(v2) - E, plus side branch B - S(v3) merged at E.
	tr, h := setupLinearRepo(t, "A", "B", "C", "D")
	side := tr.commit(t, "S", h[1])
	merge := tr.commit(t, "E", h[3], side)
	tr.setBranch(t, "master", merge)
	tr.annotatedTag(t, "v1", h[1])
	tr.annotatedTag(t, "v2", h[3])
	tr.annotatedTag(t, "v3", side)

	p := openLibrary(t, tr.dir)

	got, err := p.Describe().Run(context.Background())
	require.NoError(t, err)
	// reach(E) = 6, reach(S) = 3, reach(D) = 4: v2 leaves fewer commits.
	assert.True(t, strings.HasPrefix(got, "v2-2-g"), got)
}

func TestLibraryProvider_DescribeSameCommit(t *testing.T) {
	tr, h := setupLinearRepo(t, "A", "B")
	tr.lightweightTag(t, "aaa-light", h[0])
	tr.annotatedTag(t, "v1-old", h[0])
	tr.annotatedTag(t, "v1-new", h[0])

	p := openLibrary(t, tr.dir)
	ctx := context.Background()

	got, err := p.Describe().Target(h[0].String()).IncludeLightweightTags(true).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1-new", got)
}
