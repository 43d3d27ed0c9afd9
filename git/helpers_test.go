package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testRepo is an on-disk repository built object by object, so commit and
// tag dates are fully deterministic.
type testRepo struct {
	dir   string
	repo  *gogit.Repository
	tree  plumbing.Hash
	clock time.Time
}

// setupTestRepo initializes an empty non-bare repository in a temp dir.
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize test repository")

	tr := &testRepo{
		dir:   dir,
		repo:  repo,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	obj := repo.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj))
	tr.tree, err = repo.Storer.SetEncodedObject(obj)
	require.NoError(t, err, "failed to store empty tree")

	return tr
}

// setupLinearRepo creates one commit per message on master, oldest first,
// and returns their hashes in the same order.
func setupLinearRepo(t *testing.T, messages ...string) (*testRepo, []plumbing.Hash) {
	t.Helper()

	tr := setupTestRepo(t)
	hashes := make([]plumbing.Hash, 0, len(messages))
	var parents []plumbing.Hash
	for _, msg := range messages {
		h := tr.commit(t, msg, parents...)
		hashes = append(hashes, h)
		parents = []plumbing.Hash{h}
	}
	if len(hashes) > 0 {
		tr.setBranch(t, "master", hashes[len(hashes)-1])
	}
	return tr, hashes
}

func (tr *testRepo) tick() time.Time {
	tr.clock = tr.clock.Add(time.Minute)
	return tr.clock
}

func (tr *testRepo) signature() object.Signature {
	return object.Signature{Name: "Test User", Email: "test@example.com", When: tr.tick()}
}

// commit stores a commit with the given parents without moving any ref.
func (tr *testRepo) commit(t *testing.T, msg string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()

	sig := tr.signature()
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     tr.tree,
		ParentHashes: parents,
	}
	obj := tr.repo.Storer.NewEncodedObject()
	require.NoError(t, c.Encode(obj))
	h, err := tr.repo.Storer.SetEncodedObject(obj)
	require.NoError(t, err, "failed to store commit")
	return h
}

func (tr *testRepo) setBranch(t *testing.T, name string, h plumbing.Hash) {
	t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), h)
	require.NoError(t, tr.repo.Storer.SetReference(ref), "failed to set branch %s", name)
}

func (tr *testRepo) setRef(t *testing.T, name plumbing.ReferenceName, h plumbing.Hash) {
	t.Helper()

	require.NoError(t, tr.repo.Storer.SetReference(plumbing.NewHashReference(name, h)))
}

// detach points HEAD straight at h.
func (tr *testRepo) detach(t *testing.T, h plumbing.Hash) {
	t.Helper()

	tr.setRef(t, plumbing.HEAD, h)
}

func (tr *testRepo) annotatedTag(t *testing.T, name string, h plumbing.Hash) {
	t.Helper()

	sig := tr.signature()
	_, err := tr.repo.CreateTag(name, h, &gogit.CreateTagOptions{
		Tagger:  &sig,
		Message: "Release " + name,
	})
	require.NoError(t, err, "failed to create annotated tag %s", name)
}

func (tr *testRepo) lightweightTag(t *testing.T, name string, h plumbing.Hash) {
	t.Helper()

	_, err := tr.repo.CreateTag(name, h, nil)
	require.NoError(t, err, "failed to create lightweight tag %s", name)
}

func (tr *testRepo) addRemote(t *testing.T, name, url string) {
	t.Helper()

	_, err := tr.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	require.NoError(t, err, "failed to create remote %s", name)
}

// setPushURL appends a pushurl for remote straight to .git/config.
func (tr *testRepo) setPushURL(t *testing.T, remote, url string) {
	t.Helper()

	f, err := os.OpenFile(filepath.Join(tr.dir, ".git", "config"), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("[remote \"" + remote + "\"]\n\tpushurl = " + url + "\n")
	require.NoError(t, err)
}

// trackUpstream configures branch to track remote/branch and creates the
// remote-tracking ref at h.
func (tr *testRepo) trackUpstream(t *testing.T, branch, remote string, h plumbing.Hash) {
	t.Helper()

	err := tr.repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	})
	require.NoError(t, err, "failed to configure upstream for %s", branch)
	tr.setRef(t, plumbing.NewRemoteReferenceName(remote, branch), h)
}

func openLibrary(t *testing.T, dir string) *LibraryProvider {
	t.Helper()

	p, err := OpenLibrary(context.Background(), dir)
	require.NoError(t, err, "failed to open library provider")
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func requireGitCLI(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(DefaultGitExecutable); err != nil {
		t.Skip("git executable not available")
	}
}

func openCLI(t *testing.T, dir string) *CLIProvider {
	t.Helper()

	requireGitCLI(t)
	p, err := OpenCLI(context.Background(), dir)
	require.NoError(t, err, "failed to open command-line provider")
	return p
}

// providers opens dir with every backend available on this machine.
func providers(t *testing.T, dir string) map[string]Provider {
	t.Helper()

	out := map[string]Provider{"library": openLibrary(t, dir)}
	if _, err := exec.LookPath(DefaultGitExecutable); err == nil {
		out["cli"] = openCLI(t, dir)
	}
	return out
}
