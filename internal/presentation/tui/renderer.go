package tui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/optigate/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// SnapshotMarkdown formats host state as a markdown report.
func SnapshotMarkdown(snap domain.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Experimentation host\n\n")
	if !snap.Available {
		b.WriteString("_Host unavailable: every query returns an empty result._\n")
		return b.String()
	}

	b.WriteString("## Experiments\n\n")
	if len(snap.AllExperiments) == 0 {
		b.WriteString("_None registered._\n\n")
	} else {
		b.WriteString("| ID | Name | Enabled | Active | Variations |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, exp := range snap.AllExperiments {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				exp.ID,
				escape(exp.Name),
				check(exp.Enabled),
				check(slices.Contains(snap.ActiveExperiments, exp.ID)),
				variationNames(snap, exp.ID),
			)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Variations\n\n")
	if len(snap.AllVariations) == 0 {
		b.WriteString("_None registered._\n")
		return b.String()
	}
	ids := make([]string, 0, len(snap.AllVariations))
	for id := range snap.AllVariations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, "- **%s** %s\n", id, escape(snap.AllVariations[id].Name))
	}
	return b.String()
}

func variationNames(snap domain.Snapshot, experimentID string) string {
	ids := snap.VariationIDsMap[experimentID]
	if len(ids) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if v, ok := snap.AllVariations[id]; ok && v.Name != "" {
			names = append(names, escape(v.Name))
			continue
		}
		names = append(names, id)
	}
	return strings.Join(names, ", ")
}

func check(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
