package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"straycare/internal/types"
)

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// DetailMarkdown renders an animal's detail sheet as markdown. Care
// history and community logs are optional sections.
func DetailMarkdown(a *types.Animal, care []types.CareRecord, logs []types.CommunityLog) string {
	var b strings.Builder
	title := a.Name
	if title == "" {
		title = fmt.Sprintf("%s (%s)", titleCase(string(a.Species)), a.Breed)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if a.UniqueIdentifier != "" {
		fmt.Fprintf(&b, "`%s`\n\n", a.UniqueIdentifier)
	}

	b.WriteString("| | |\n|---|---|\n")
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", label, value)
		}
	}
	row("Species", string(a.Species))
	row("Breed", a.Breed)
	row("Color", a.Color)
	row("Gender", string(a.Gender))
	if a.Age > 0 {
		row("Age", fmt.Sprintf("%d years", a.Age))
	}
	row("Health", string(a.HealthStatus))
	row("Temperament", string(a.Temperament))
	row("Status", string(a.ApprovalStatus))
	if a.IsVaccinated {
		row("Vaccinated", "yes")
	}
	if a.IsNeutered {
		row("Neutered", "yes")
	}
	b.WriteString("\n")

	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Description)
	}

	if loc, ok := a.CurrentLocation(); ok {
		b.WriteString("## Last seen\n\n")
		switch {
		case loc.Address != "":
			fmt.Fprintf(&b, "%s, %s\n\n", loc.Address, loc.City)
		default:
			fmt.Fprintf(&b, "%.5f, %.5f\n\n", loc.Latitude, loc.Longitude)
		}
	}

	if len(care) > 0 {
		b.WriteString("## Care history\n\n")
		for _, rec := range care {
			fmt.Fprintf(&b, "- **%s** %s\n", rec.CareType, rec.Description)
		}
		b.WriteString("\n")
	}

	if len(logs) > 0 {
		b.WriteString("## Community activity\n\n")
		for _, log := range logs {
			fmt.Fprintf(&b, "- **%s** %s (%d upvotes)\n", log.Type, log.Title, log.Upvotes)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDetail renders the detail sheet for the terminal. theme selects
// the glamour style; width wraps the output. Rendering failures fall back
// to the raw markdown.
func RenderDetail(a *types.Animal, care []types.CareRecord, logs []types.CommunityLog, theme string, width int) string {
	md := DetailMarkdown(a, care, logs)
	if width <= 0 {
		width = 80
	}
	var opts []glamour.TermRendererOption
	if theme == "light" {
		opts = append(opts, glamour.WithStylePath("light"), glamour.WithWordWrap(width))
	} else {
		opts = append(opts, glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
