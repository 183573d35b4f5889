package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines a set of semantic colors used to build the UI styles.
type Theme struct {
	Name      string
	Slug      string
	Fg        string // primary text, channel names
	Accent    string // titles, selected row, detail border
	Secondary string // header bg, list border, help bg
	Bg        string // app background, selected row text
	Success   string // live badge, PLAYING status
	Muted     string // hints, metadata
	Error     string // notices, fetch failures
}

// Themes is the ordered list of built-in themes. The first one is the fallback.
var Themes = []Theme{
	{Name: "Vintage", Slug: "vintage", Fg: "#F5E6C8", Accent: "#D9A441", Secondary: "#6E4A2F", Bg: "#2B1A12", Success: "#6A8F4E", Muted: "#B89C7A", Error: "#F29F8E"},
	{Name: "Tokyo Night", Slug: "tokyo-night", Fg: "#C0CAF5", Accent: "#7AA2F7", Secondary: "#24283B", Bg: "#1A1B26", Success: "#9ECE6A", Muted: "#565F89", Error: "#F7768E"},
	{Name: "Nord", Slug: "nord", Fg: "#ECEFF4", Accent: "#88C0D0", Secondary: "#3B4252", Bg: "#2E3440", Success: "#A3BE8C", Muted: "#4C566A", Error: "#BF616A"},
	{Name: "Gruvbox Dark", Slug: "gruvbox-dark", Fg: "#EBDBB2", Accent: "#FABD2F", Secondary: "#3C3836", Bg: "#282828", Success: "#B8BB26", Muted: "#928374", Error: "#FB4934"},
	{Name: "Dracula", Slug: "dracula", Fg: "#F8F8F2", Accent: "#BD93F9", Secondary: "#44475A", Bg: "#282A36", Success: "#50FA7B", Muted: "#6272A4", Error: "#FF5555"},
	{Name: "Solarized Dark", Slug: "solarized-dark", Fg: "#839496", Accent: "#B58900", Secondary: "#073642", Bg: "#002B36", Success: "#859900", Muted: "#586E75", Error: "#DC322F"},
	{Name: "Catppuccin Latte", Slug: "catppuccin-latte", Fg: "#4C4F69", Accent: "#8839EF", Secondary: "#CCD0DA", Bg: "#EFF1F5", Success: "#40A02B", Muted: "#9CA0B0", Error: "#D20F39"},
}

// ThemeBySlug returns the theme with the given slug, falling back to Vintage.
func ThemeBySlug(slug string) Theme {
	return Themes[themeIndex(slug)]
}

func themeIndex(slug string) int {
	for i, t := range Themes {
		if t.Slug == slug {
			return i
		}
	}
	return 0
}

// BuildStyles constructs the full Styles set from a theme.
func BuildStyles(t Theme) Styles {
	fg := lipgloss.Color(t.Fg)
	accent := lipgloss.Color(t.Accent)
	secondary := lipgloss.Color(t.Secondary)
	bg := lipgloss.Color(t.Bg)
	success := lipgloss.Color(t.Success)
	muted := lipgloss.Color(t.Muted)
	errColor := lipgloss.Color(t.Error)

	border := lipgloss.RoundedBorder()

	// List and Detail have no vertical padding: mouse hit testing depends on
	// rows starting right below the list title.
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2).
			Foreground(fg).
			Background(bg),
		Header: lipgloss.NewStyle().
			Foreground(fg).
			Background(secondary).
			Padding(0, 1).
			Bold(true),
		List: lipgloss.NewStyle().
			Border(border).
			BorderForeground(secondary).
			Padding(0, 1),
		Detail: lipgloss.NewStyle().
			Border(border).
			BorderForeground(accent).
			Padding(0, 1),
		ChannelName: lipgloss.NewStyle().
			Foreground(fg).
			Bold(true),
		Meta: lipgloss.NewStyle().
			Foreground(muted),
		ListHeader: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		ListItem: lipgloss.NewStyle().
			Foreground(fg),
		ListActive: lipgloss.NewStyle().
			Foreground(bg).
			Background(accent).
			Bold(true),
		Live: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		KeyHint: lipgloss.NewStyle().
			Foreground(muted),
		HelpBox: lipgloss.NewStyle().
			Border(border).
			BorderForeground(accent).
			Padding(1, 2).
			Background(secondary).
			Foreground(fg),
		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		Accent: lipgloss.NewStyle().
			Foreground(accent),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
	}
}
