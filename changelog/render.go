package changelog

import (
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
)

// MarkdownHeader opens every markdown changelog.
const MarkdownHeader = "<!-- Changelog generated from Git history -->"

// Render formats commits, latest first, as plain text or markdown.
// Each entry is the abbreviated hash followed by the message's first line.
func Render(commits []git.CommitData, opts Options) string {
	var b strings.Builder

	if !opts.Markdown {
		for _, c := range commits {
			b.WriteString(c.AbbreviatedHash)
			b.WriteByte(' ')
			b.WriteString(c.Subject())
			b.WriteByte('\n')
		}
		return b.String()
	}

	b.WriteString(MarkdownHeader)
	b.WriteString("\n\n")

	projectURL := strings.TrimRight(opts.ProjectURL, "/")
	if !opts.ConventionalGroups {
		for _, c := range commits {
			writeMarkdownEntry(&b, c, projectURL)
		}
		return b.String()
	}

	groups := groupCommits(commits)
	first := true
	for _, g := range groupOrder {
		entries := groups[g]
		if len(entries) == 0 {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false

		b.WriteString("## ")
		b.WriteString(g.String())
		b.WriteString("\n\n")
		for _, c := range entries {
			writeMarkdownEntry(&b, c, projectURL)
		}
	}
	return b.String()
}

func writeMarkdownEntry(b *strings.Builder, c git.CommitData, projectURL string) {
	b.WriteString("- ")
	if projectURL == "" {
		b.WriteString("`")
		b.WriteString(c.AbbreviatedHash)
		b.WriteString("`")
	} else {
		b.WriteString("[")
		b.WriteString(c.AbbreviatedHash)
		b.WriteString("](")
		b.WriteString(projectURL)
		b.WriteString("/commit/")
		b.WriteString(c.FullHash)
		b.WriteString(")")
	}
	b.WriteByte(' ')
	b.WriteString(c.Subject())
	b.WriteByte('\n')
}
