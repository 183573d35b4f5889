package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hdhr-tui/internal/lineup"
)

// Screen layout, top to bottom: app padding, header, list (border, title,
// rows, border), detail panel, key hints, status line, search prompt, app
// padding. Every section has a fixed height so a mouse row maps straight to
// a channel. Short terminals drop the detail panel and key hints.
const (
	appPadLeft      = 2
	listTopOffset   = 4 // app padding + header + list border + list title
	detailLines     = 3
	compactReserved = listTopOffset + 1 + 1 + 1 + 1
	fullReserved    = compactReserved + (detailLines + 2) + 1
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}
	if m.showTheme {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderThemePicker())
	}

	width := m.contentWidth()
	sections := []string{
		m.renderHeader(width),
		m.renderList(width, m.listCapacity()),
	}
	if !m.compact() {
		sections = append(sections, m.renderDetail(width), m.help.View(m.keys))
	}
	sections = append(sections, m.renderStatus(width), m.renderPrompt())
	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) contentWidth() int {
	width := m.width - 2*appPadLeft
	if width < 10 {
		width = m.width
	}
	return width
}

func (m Model) compact() bool {
	return m.height <= fullReserved
}

func (m Model) reservedLines() int {
	if m.compact() {
		return compactReserved
	}
	return fullReserved
}

// listCapacity is the number of channel rows that fit on screen.
func (m Model) listCapacity() int {
	return max(m.height-m.reservedLines(), 1)
}

// overflow is how many lines the renderer cuts from the top of a view taller
// than the terminal.
func (m Model) overflow() int {
	return max(m.reservedLines()+m.listCapacity()-m.height, 0)
}

// rowAt maps a screen cell to an index into the visible channels.
func (m Model) rowAt(x, y int) (int, bool) {
	if m.loading || m.loadErr != nil {
		return 0, false
	}
	if x < appPadLeft || x >= appPadLeft+m.contentWidth() {
		return 0, false
	}
	list := m.visibleChannels()
	start, end := listWindow(len(list), m.selected, m.listCapacity())
	row := y + m.overflow() - listTopOffset
	if row < 0 || row >= end-start {
		return 0, false
	}
	return start + row, true
}

func (m Model) renderHeader(width int) string {
	status := m.styles.Muted.Render("STOPPED")
	if ch, ok := m.playing(); ok {
		status = m.styles.Live.Render("PLAYING " + fallback(ch.GuideNumber, ch.GuideName))
	}

	left := "HDHOMERUN"
	if width >= 30 && m.host != "" {
		left = "HDHOMERUN  " + m.host
	}
	line := joinHeader(left, status, width-2)
	return m.styles.Header.Width(width).Render(line)
}

func (m Model) renderList(width int, maxItems int) string {
	inner := max(width-4, 4)
	list := m.visibleChannels()
	title := "Channels"
	var rows []string

	switch {
	case m.loading:
		rows = append(rows, m.spinner.View()+m.styles.Muted.Render(clip(" Loading lineup from "+m.host, inner-2)))
	case m.loadErr != nil:
		rows = append(rows,
			m.styles.Error.Render(clip("Could not load lineup", inner)),
			m.styles.Muted.Render(clip(m.loadErr.Error(), inner)),
		)
	case len(m.channels) == 0:
		rows = append(rows, m.styles.Muted.Render("No channels in lineup"))
	case len(list) == 0:
		rows = append(rows, m.styles.Muted.Render("No matches"))
	default:
		title = fmt.Sprintf("Channels %d/%d", m.selected+1, len(list))
		playingCh, isPlaying := m.playing()
		start, end := listWindow(len(list), m.selected, maxItems)
		for i := start; i < end; i++ {
			ch := list[i]
			marker := "  "
			style := m.styles.ListItem
			if i == m.selected {
				marker = "> "
				style = m.styles.ListActive
			}
			live := isPlaying && sameChannel(ch, playingCh)
			line := clip(rowLabel(marker, ch, live, inner), inner)
			rows = append(rows, style.Width(inner).MaxWidth(inner).MaxHeight(1).Render(line))
		}
	}

	for len(rows) < maxItems {
		rows = append(rows, "")
	}
	lines := append([]string{m.styles.ListHeader.Render(clip(title, inner))}, rows...)
	return m.styles.List.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func rowLabel(marker string, ch lineup.Channel, live bool, width int) string {
	badges := ""
	if ch.IsHD() {
		badges += " HD"
	}
	if ch.IsFavorite() {
		badges += " *"
	}
	if live {
		badges += " LIVE"
	}
	number := fmt.Sprintf("%-6s ", ch.GuideNumber)
	nameWidth := max(width-len(marker)-len(number)-len(badges), 4)
	return marker + number + truncateText(ch.GuideName, nameWidth) + badges
}

func (m Model) renderDetail(width int) string {
	inner := max(width-4, 4)
	var lines []string

	ch, ok := m.currentChannel()
	if !ok {
		lines = append(lines, m.styles.Muted.Render("No channel selected"))
	} else {
		codecs := fmt.Sprintf("Video %s  Audio %s  HD %s  Favorite %s",
			fallback(ch.VideoCodec, "-"), fallback(ch.AudioCodec, "-"), flag(ch.HD), flag(ch.Favorite))
		lines = append(lines,
			m.styles.ChannelName.Render(clip(ch.Label(), inner)),
			m.styles.Meta.Render(clip(codecs, inner)),
			m.styles.Meta.Render(clip("URL "+ch.URL, inner)),
		)
	}
	for len(lines) < detailLines {
		lines = append(lines, "")
	}
	return m.styles.Detail.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderStatus(width int) string {
	switch {
	case m.notice != "":
		return m.styles.Error.Render(clip(m.notice, width))
	case m.hint != "":
		return m.styles.Muted.Render(clip(m.hint, width))
	}
	return ""
}

func (m Model) renderPrompt() string {
	if m.searching || strings.TrimSpace(m.search.Value()) != "" {
		return m.search.View()
	}
	return ""
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	h.Width = 0

	lines := []string{
		m.styles.ListHeader.Render("Controls"),
		"",
		h.View(m.keys),
		"",
		"Click a channel to play it. The wheel scrolls.",
		"Playing another channel stops the current one.",
	}
	if m.hint != "" {
		lines = append(lines, "", m.hint)
	}
	return m.styles.HelpBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderThemePicker() string {
	lines := []string{
		m.styles.ListHeader.Render("Select Theme"),
		"",
	}
	for i, t := range Themes {
		marker := "  "
		style := m.styles.ListItem
		if i == m.themeIdx {
			marker = "> "
			style = m.styles.ListActive
		}
		lines = append(lines, style.Render(marker+t.Name))
	}
	lines = append(lines, "", m.styles.Muted.Render("Enter save  Esc cancel"))
	return m.styles.HelpBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func joinHeader(left, right string, width int) string {
	if width <= 0 {
		return ""
	}

	rightWidth := lipgloss.Width(right)
	if rightWidth >= width {
		return truncateText(right, width)
	}

	maxLeft := width - rightWidth - 1
	left = truncateText(left, maxLeft)
	space := max(width-lipgloss.Width(left)-rightWidth, 1)
	return left + strings.Repeat(" ", space) + right
}

func listWindow(length, selected, size int) (int, int) {
	if length <= size {
		return 0, length
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > length {
		end = length
		start = end - size
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

func sameChannel(a, b lineup.Channel) bool {
	return a.GuideNumber == b.GuideNumber && a.URL == b.URL
}

func flag(v *int) string {
	switch {
	case v == nil:
		return "-"
	case *v != 0:
		return "yes"
	default:
		return "no"
	}
}

func fallback(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}

func truncateText(value string, maxLen int) string {
	return clip(strings.TrimSpace(value), maxLen)
}

// clip shortens value to maxLen runes, ending in "..." when there is room.
func clip(value string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
