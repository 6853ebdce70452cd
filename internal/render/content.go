package render

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

const excerptLen = 60

// Excerpt is the first line of body, cut to n runes.
func Excerpt(body string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	r := []rune(line)
	if len(r) <= n {
		return line
	}
	return string(r[:n-1]) + "…"
}

// Notes renders one collection under heading.
func Notes(heading string, items []models.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", TitleStyle.Render(heading), MutedStyle.Render(fmt.Sprintf("(%d)", len(items))))
	if len(items) == 0 {
		b.WriteString(MutedStyle.Render("  nothing here yet"))
		return b.String()
	}
	for _, item := range items {
		fmt.Fprintf(&b, "  %s  %s  %s\n", MutedStyle.Render(ShortID(item.ID)), item.Title, MutedStyle.Render(Excerpt(item.Body, excerptLen)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// VisibilityHeading names a collection for display.
func VisibilityHeading(vis models.Visibility) string {
	switch vis {
	case models.VisibilityPrivate:
		return "Private"
	case models.VisibilityDraft:
		return "Drafts"
	default:
		return "Public"
	}
}

// Note renders a single item in full.
func Note(item models.ContentItem, vis models.Visibility) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(item.Title) + "\n")
	meta := []string{VisibilityHeading(vis), item.ID}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, item.CreatedAt.Format(constants.DateFormat))
	}
	if item.Owner != "" {
		meta = append(meta, "by "+item.Owner)
	}
	b.WriteString(MutedStyle.Render(strings.Join(meta, " | ")) + "\n")
	if len(item.Labels) > 0 {
		b.WriteString(MutedStyle.Render("labels: "+strings.Join(item.Labels, ", ")) + "\n")
	}
	b.WriteString("\n" + item.Body)
	return b.String()
}

// Feed renders the community feed, newest first as served.
func Feed(items []models.ContentItem) string {
	if len(items) == 0 {
		return MutedStyle.Render("The feed is empty")
	}
	var b strings.Builder
	for _, item := range items {
		owner := item.Owner
		if owner == "" {
			owner = "anonymous"
		}
		fmt.Fprintf(&b, "%s %s\n  %s\n", TitleStyle.Render(item.Title), MutedStyle.Render("by "+owner), Excerpt(item.Body, excerptLen))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Profile renders the account profile.
func Profile(p models.Profile, avatarURL string) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = MutedStyle.Render("(no name)")
	}
	b.WriteString(TitleStyle.Render(name) + "\n")
	fmt.Fprintf(&b, "  Email:  %s\n", p.Email)
	source := "gravatar"
	if p.HasAvatar() {
		source = "uploaded"
	}
	fmt.Fprintf(&b, "  Avatar: %s (%s)", avatarURL, source)
	return b.String()
}
