package git

import "strings"

// RefKind represents the type of git reference.
type RefKind int

const (
	// RefBranch indicates a local branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag

	// RefRemoteBranch indicates a remote-tracking reference (refs/remotes/*).
	RefRemoteBranch

	// RefNote indicates a notes reference (refs/notes/*).
	RefNote

	// RefOther indicates any other reference under refs/.
	RefOther

	// RefNone indicates a name outside the refs/ namespace, such as HEAD
	// or an object id.
	RefNone
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	case RefRemoteBranch:
		return "remote-branch"
	case RefNote:
		return "note"
	case RefOther:
		return "other"
	case RefNone:
		return "none"
	default:
		return "unknown"
	}
}

const refsPrefix = "refs/"

// Prefixes are checked in order; the bare refs/ fallback is last.
var refPrefixes = []struct {
	prefix string
	kind   RefKind
}{
	{"refs/heads/", RefBranch},
	{"refs/tags/", RefTag},
	{"refs/remotes/", RefRemoteBranch},
	{"refs/notes/", RefNote},
	{refsPrefix, RefOther},
}

// ClassifyRef reports the kind of a full reference name.
func ClassifyRef(name string) RefKind {
	for _, p := range refPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.kind
		}
	}
	return RefNone
}

// ShortenRef strips the namespace prefix from a full reference name:
// refs/heads/main becomes main, refs/remotes/origin/main becomes origin/main.
// Names outside refs/ are returned unchanged. Both backends use this, so it
// never touches the repository.
func ShortenRef(name string) string {
	for _, p := range refPrefixes {
		if strings.HasPrefix(name, p.prefix) && len(name) > len(p.prefix) {
			return name[len(p.prefix):]
		}
	}
	return name
}

// tagName returns the short tag name of a refs/tags/ reference.
func tagName(ref string) (string, bool) {
	const prefix = "refs/tags/"
	if !strings.HasPrefix(ref, prefix) || len(ref) == len(prefix) {
		return "", false
	}
	return ref[len(prefix):], true
}
