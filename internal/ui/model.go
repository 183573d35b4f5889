package ui

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"hdhr-tui/internal/config"
	"hdhr-tui/internal/lineup"
	"hdhr-tui/internal/player"
)

const noticeTTL = 4 * time.Second

var errLineupClosed = errors.New("lineup loader stopped without a result")

// Player is the part of player.Controller the UI drives.
type Player interface {
	Play(ch lineup.Channel) error
	Stop()
	Current() (player.Handle, bool)
	Playing() bool
}

var _ Player = (*player.Controller)(nil)

// Options wires a Model to the rest of the program.
type Options struct {
	Player        Player
	Lineup        <-chan lineup.Result
	ConfigUpdates <-chan config.Config
	ConfigPath    string
	LineupURL     string
	ThemeName     string
	PlayerErr     error
	Notice        string
	Logger        logrus.FieldLogger
}

type Model struct {
	player     Player
	log        logrus.FieldLogger
	keys       keyMap
	help       help.Model
	spinner    spinner.Model
	search     textinput.Model
	styles     Styles
	theme      Theme
	themeIdx   int
	configPath string

	lineupCh <-chan lineup.Result
	configCh <-chan config.Config

	host     string
	channels []lineup.Channel
	filtered []lineup.Channel
	selected int
	loading  bool
	loadErr  error

	searching bool
	showHelp  bool
	showTheme bool

	notice   string
	noticeID int
	hint     string

	width  int
	height int
}

type lineupMsg struct {
	channels []lineup.Channel
	err      error
}

type configMsg struct{ cfg config.Config }

type configClosedMsg struct{}

type noticeExpiredMsg struct{ id int }

type playerExitedMsg struct{ id string }

type themeSavedMsg struct{ err error }

func NewModel(opts Options) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search by name or number"
	search.Width = 26

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	themeIdx := themeIndex(opts.ThemeName)
	theme := Themes[themeIdx]
	styles := BuildStyles(theme)

	h := help.New()
	h.ShortSeparator = "  "

	m := Model{
		player:     opts.Player,
		log:        log,
		keys:       defaultKeyMap(),
		help:       h,
		spinner:    sp,
		search:     search,
		styles:     styles,
		theme:      theme,
		themeIdx:   themeIdx,
		configPath: opts.ConfigPath,
		lineupCh:   opts.Lineup,
		configCh:   opts.ConfigUpdates,
		host:       hostOf(opts.LineupURL),
		loading:    true,
	}
	m.applyThemeToWidgets()

	if opts.PlayerErr != nil {
		m.hint = "No media player found. Install mpv, vlc or ffplay, or set player in config.toml."
	}
	if opts.Notice != "" {
		m.notice = opts.Notice
		m.noticeID = 1
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForLineup(m.lineupCh), m.spinner.Tick, waitForConfig(m.configCh)}
	if m.notice != "" {
		cmds = append(cmds, expireNotice(m.noticeID))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateInputWidths()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case lineupMsg:
		return m.handleLineup(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case configMsg:
		if !m.showTheme && msg.cfg.Theme != m.theme.Slug {
			m.setTheme(themeIndex(msg.cfg.Theme))
			m.log.WithField("theme", m.theme.Slug).Info("theme changed on disk")
		}
		return m, waitForConfig(m.configCh)

	case configClosedMsg:
		m.configCh = nil
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case playerExitedMsg:
		if m.player == nil {
			return m, nil
		}
		if h, ok := m.player.Current(); ok && h.ID == msg.id {
			m.log.WithField("handle", msg.id).Info("player exited")
			cmd := m.setNotice("Player closed")
			return m, cmd
		}
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("failed to save theme")
			cmd := m.setNotice("Failed to save theme: " + msg.err.Error())
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Confirm) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.showTheme {
		return m.updateThemePicker(msg)
	}

	if m.searching {
		return m.updateSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveSelection(-m.listCapacity())
	case key.Matches(msg, m.keys.PageDown):
		m.moveSelection(m.listCapacity())
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(-len(m.visibleChannels()))
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.visibleChannels()))
	case key.Matches(msg, m.keys.Play):
		return m.playSelected()
	case key.Matches(msg, m.keys.Stop):
		if m.player != nil {
			m.player.Stop()
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Theme):
		m.showTheme = true
	case key.Matches(msg, m.keys.Cancel):
		if strings.TrimSpace(m.search.Value()) != "" {
			m.search.SetValue("")
			m.applyFilter()
			m.ensureSelection()
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.showTheme {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveSelection(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.moveSelection(1)
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		index, ok := m.rowAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.selected = index
		return m.playSelected()
	}
	return m, nil
}

// handleLineup applies the one lineup result. Anything after the first is
// ignored.
func (m Model) handleLineup(msg lineupMsg) (tea.Model, tea.Cmd) {
	if !m.loading {
		return m, nil
	}
	m.loading = false
	m.lineupCh = nil

	if msg.err != nil {
		m.loadErr = msg.err
		m.log.WithError(msg.err).Error("lineup fetch failed")
		return m, nil
	}

	m.channels = msg.channels
	m.selected = 0
	m.applyFilter()
	m.ensureSelection()
	m.log.WithField("channels", len(m.channels)).Info("lineup loaded")
	return m, nil
}

func (m Model) playSelected() (tea.Model, tea.Cmd) {
	ch, ok := m.currentChannel()
	if !ok {
		return m, nil
	}
	if m.player == nil {
		cmd := m.setNotice("No player available")
		return m, cmd
	}

	if err := m.player.Play(ch); err != nil {
		if errors.Is(err, player.ErrNoStreamURL) {
			cmd := m.setNotice(fmt.Sprintf("%s has no stream URL", ch.Label()))
			return m, cmd
		}
		var spawnErr *player.SpawnError
		if errors.As(err, &spawnErr) {
			cmd := m.setNotice("Could not start player: " + spawnErr.Err.Error())
			return m, cmd
		}
		cmd := m.setNotice(err.Error())
		return m, cmd
	}

	m.notice = ""
	h, ok := m.player.Current()
	if !ok {
		return m, nil
	}
	return m, waitForExit(h)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.player != nil {
		m.player.Stop()
	}
	return m, tea.Quit
}

func (m Model) updateThemePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.themeIdx > 0 {
			m.previewTheme(m.themeIdx - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if m.themeIdx < len(Themes)-1 {
			m.previewTheme(m.themeIdx + 1)
		}
	case key.Matches(msg, m.keys.Confirm):
		m.showTheme = false
		m.setTheme(m.themeIdx)
		m.log.WithField("theme", m.theme.Slug).Info("theme selected")
		return m, m.saveThemeCmd()
	case key.Matches(msg, m.keys.Cancel, m.keys.Theme):
		m.showTheme = false
		m.setTheme(themeIndex(m.theme.Slug))
	}
	return m, nil
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.moveSelection(-1)
		return m, nil
	case tea.KeyDown:
		m.moveSelection(1)
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.applyFilter()
		m.ensureSelection()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selected = 0
	m.applyFilter()
	m.ensureSelection()
	return m, cmd
}

func (m Model) saveThemeCmd() tea.Cmd {
	path := m.configPath
	slug := m.theme.Slug
	return func() tea.Msg {
		return themeSavedMsg{err: config.SaveTheme(path, slug)}
	}
}

// setNotice shows a transient message and returns the command that clears it.
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	return expireNotice(m.noticeID)
}

func expireNotice(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// waitForLineup receives the single lineup result.
func waitForLineup(ch <-chan lineup.Result) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return lineupMsg{err: errLineupClosed}
		}
		return lineupMsg{channels: res.Channels, err: res.Err}
	}
}

func waitForConfig(ch <-chan config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return configClosedMsg{}
		}
		return configMsg{cfg: cfg}
	}
}

func waitForExit(h player.Handle) tea.Cmd {
	id := h.ID
	done := h.Done()
	return func() tea.Msg {
		<-done
		return playerExitedMsg{id: id}
	}
}

// previewTheme switches styles without touching the saved theme.
func (m *Model) previewTheme(idx int) {
	m.themeIdx = idx
	m.styles = BuildStyles(Themes[idx])
	m.applyThemeToWidgets()
}

func (m *Model) setTheme(idx int) {
	m.theme = Themes[idx]
	m.previewTheme(idx)
}

func (m *Model) applyThemeToWidgets() {
	m.spinner.Style = m.styles.Accent
	m.help.Styles.ShortKey = m.styles.Accent
	m.help.Styles.ShortDesc = m.styles.KeyHint
	m.help.Styles.ShortSeparator = m.styles.KeyHint
	m.help.Styles.FullKey = m.styles.Accent
	m.help.Styles.FullDesc = m.styles.ChannelName
	m.help.Styles.FullSeparator = m.styles.Muted
	m.help.Styles.Ellipsis = m.styles.Muted
}

func (m *Model) applyFilter() {
	filter := strings.TrimSpace(strings.ToLower(m.search.Value()))
	if filter == "" {
		m.filtered = nil
		return
	}

	filtered := make([]lineup.Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		name := strings.ToLower(ch.GuideName)
		number := strings.ToLower(ch.GuideNumber)
		if strings.Contains(name, filter) || strings.HasPrefix(number, filter) {
			filtered = append(filtered, ch)
		}
	}
	m.filtered = filtered
}

func (m *Model) ensureSelection() {
	list := m.visibleChannels()
	if len(list) == 0 {
		m.selected = 0
		return
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(list) {
		m.selected = len(list) - 1
	}
}

func (m *Model) moveSelection(delta int) bool {
	list := m.visibleChannels()
	if len(list) == 0 {
		return false
	}
	prev := m.selected
	m.selected += delta
	m.ensureSelection()
	return prev != m.selected
}

func (m *Model) currentChannel() (lineup.Channel, bool) {
	list := m.visibleChannels()
	if m.selected < 0 || m.selected >= len(list) {
		return lineup.Channel{}, false
	}
	return list[m.selected], true
}

func (m *Model) visibleChannels() []lineup.Channel {
	if strings.TrimSpace(m.search.Value()) != "" {
		return m.filtered
	}
	return m.channels
}

// playing returns the channel of the running player, if any.
func (m Model) playing() (lineup.Channel, bool) {
	if m.player == nil || !m.player.Playing() {
		return lineup.Channel{}, false
	}
	h, ok := m.player.Current()
	if !ok {
		return lineup.Channel{}, false
	}
	return h.Channel, true
}

func (m *Model) updateInputWidths() {
	m.help.Width = m.contentWidth()
	width := m.width - 20
	if width < 10 {
		width = 10
	}
	if width > 40 {
		width = 40
	}
	m.search.Width = width
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	return u.Host
}
