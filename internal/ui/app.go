package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/logtail"
	"github.com/foodbridge/foodbridge/internal/prefs"
	"github.com/foodbridge/foodbridge/internal/state"
	"github.com/foodbridge/foodbridge/internal/thunks"
)

// Refresher runs one full refresh round. *app.Poller satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Thunks    *thunks.Thunks
	Refresher Refresher
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Log       zerolog.Logger
}

type statusLine struct {
	text string
	err  bool
	at   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	thunks    *thunks.Thunks
	refresher Refresher
	prefsPath string
	logPath   string
	log       zerolog.Logger
	keys      keyMap
	now       func() time.Time

	// UI state
	theme    Theme
	tab      Tab
	selected [tabCount]int
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal
	spinner  spinner.Model
	busy     int
	status   statusLine

	// Data state
	snap   state.State
	authed bool

	// Login form
	login loginForm

	// Log state
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logFollow   bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	tab, ok := parseTab(opts.Prefs.LastTab)
	if !ok {
		tab = TabListings
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		thunks:      opts.Thunks,
		refresher:   opts.Refresher,
		prefsPath:   prefsPath,
		logPath:     opts.Config.LogPath(),
		log:         opts.Log,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		theme:       GetTheme(opts.Prefs.Theme),
		tab:         tab,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		login:       newLoginForm(),
		logViewport: viewport.New(80, 20),
		logFollow:   true,
	}
	if opts.Store != nil {
		m.applyState(opts.Store.Snapshot())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		tickCmd(LogRefreshInterval),
		textinput.Blink,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.tab == TabLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case stateMsg:
		wasAuthed := m.authed
		m.applyState(state.State(msg))
		if m.authed && !wasAuthed {
			m.login = newLoginForm()
			m.setStatus("signed in as "+m.userName(), false)
			return m, m.track(m.syncCmd())
		}
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.login.fail(msg.err)
			m.log.Debug().Str("event", "login").Err(msg.err).Msg("login failed")
			return m, nil
		}
		m.login.submitting = false
		return m, nil

	case opDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.err != nil {
			m.setStatus(msg.label+": "+describeError(msg.err), true)
			m.log.Debug().Str("event", "ui_op").Str("op", msg.label).Err(msg.err).Msg("operation failed")
			return m, nil
		}
		m.setStatus(msg.label+" done", false)
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case tickMsg:
		var cmd tea.Cmd
		if m.tab == TabLogs && m.logFollow {
			cmd = readLogsCmd(m.logPath)
		}
		return m, tea.Batch(cmd, tickCmd(LogRefreshInterval))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.authed {
		var cmd tea.Cmd
		m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if !m.authed {
		return m.renderLogin()
	}
	return m.renderMain()
}

func (m *Model) applyState(s state.State) {
	m.snap = s
	m.authed = s.Session.IsAuthenticated()
	m.clampTab()
	for t := Tab(0); t < tabCount; t++ {
		if t == TabLogs {
			continue
		}
		if n := len(m.tableFor(t).rows); m.selected[t] >= n {
			m.selected[t] = maxInt(0, n-1)
		}
	}
}

// clampTab moves to the first visible tab when the current one is hidden for
// the session's role.
func (m *Model) clampTab() {
	tabs := tabsFor(m.snap.Session)
	for _, t := range tabs {
		if t == m.tab {
			return
		}
	}
	m.tab = tabs[0]
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = statusLine{text: text, err: isErr, at: m.now()}
}

// track counts cmd as in flight so the spinner shows until its opDoneMsg.
func (m *Model) track(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	m.busy++
	return cmd
}

func (m Model) userName() string {
	if u, ok := m.snap.Session.User(); ok {
		return u.DisplayName()
	}
	return ""
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastTab: m.tab.String()}); err != nil {
		m.log.Warn().Str("event", "prefs_save").Err(err).Msg("save prefs failed")
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.savePrefs()
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
			return m, m.track(cmd)
		}
		m.modal = next
		return m, cmd
	}
	if !m.authed {
		var (
			cmd    tea.Cmd
			submit bool
		)
		m.login, cmd, submit = m.login.update(msg, m.keys)
		if submit {
			return m, tea.Batch(cmd, m.loginCmd(m.login.credentials()))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(-1)
	case key.Matches(msg, m.keys.Logout):
		return m, m.track(m.logoutCmd())
	case key.Matches(msg, m.keys.Refresh):
		if m.tab == TabLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, m.track(m.refreshCmd(m.tab))
	}

	if m.tab == TabLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleTableKey(msg)
}

func (m *Model) switchTab(step int) tea.Cmd {
	tabs := tabsFor(m.snap.Session)
	idx := 0
	for i, t := range tabs {
		if t == m.tab {
			idx = i
			break
		}
	}
	m.tab = tabs[((idx+step)%len(tabs)+len(tabs))%len(tabs)]
	if m.tab == TabLogs {
		return readLogsCmd(m.logPath)
	}
	return nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Follow) {
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logFollow = false
	}
	return m, cmd
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tv := m.tableFor(m.tab)
	n := len(tv.rows)
	sel := m.selected[m.tab]

	switch {
	case key.Matches(msg, m.keys.Down):
		if sel < n-1 {
			m.selected[m.tab] = sel + 1
		}
	case key.Matches(msg, m.keys.Up):
		if sel > 0 {
			m.selected[m.tab] = sel - 1
		}
	case key.Matches(msg, m.keys.Top):
		m.selected[m.tab] = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected[m.tab] = maxInt(0, n-1)
	case key.Matches(msg, m.keys.Delete):
		if n == 0 || !canDelete(m.snap.Session, m.tab) {
			return m, nil
		}
		r := tv.rows[sel]
		name := ""
		if len(r.cells) > 1 {
			name = r.cells[1]
		}
		m.modal = confirmModal{
			title:     "Delete " + strings.TrimSuffix(m.tab.Title(), "s") + "?",
			prompt:    fmt.Sprintf("#%d %s will be removed for everyone.", r.id, name),
			onConfirm: m.deleteCmd(m.tab, r.id),
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.tab != TabAlerts || n == 0 {
			return m, nil
		}
		if a, ok := m.snap.AllergenAlerts.Get(tv.rows[sel].id); ok {
			return m, m.track(m.toggleAlertCmd(a))
		}
	}
	return m, nil
}

// renderMain renders the header, tab bar, content and status line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	parts := []string{bg.Render("FoodBridge", styles.Logo)}
	if u, ok := m.snap.Session.User(); ok {
		parts = append(parts,
			bg.Render(u.DisplayName(), styles.Text),
			bg.Render(titleCase(string(u.UserType)), styles.MutedText),
		)
	}
	if m.snap.Sync.IsOffline() {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
	} else if !m.snap.Sync.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("synced "+m.snap.Sync.LastUpdated.Local().Format("15:04:05"), styles.FaintText))
	}
	return bg.FillLine(bg.Join(parts, "  "), m.width)
}

func (m Model) renderTabBar() string {
	styles := m.theme.Styles()
	tabs := tabsFor(m.snap.Session)
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t == m.tab {
			parts = append(parts, styles.TabActive.Render(t.Title()))
		} else {
			parts = append(parts, styles.TabInactive.Render(t.Title()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderContent() string {
	height := maxInt(3, m.height-5)
	if m.tab == TabLogs {
		return m.logViewport.View()
	}
	tv := m.tableFor(m.tab)
	body := m.renderTable(tv, m.selected[m.tab], maxInt(20, m.width-2), height)
	return lipgloss.NewStyle().Height(height).Render(body)
}

// renderStatus shows, in order of priority: a failed UI operation, offline
// sync, the current table's error slot, a recent success, then key hints.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	prefix := ""
	if m.busy > 0 || m.tableFor(m.tab).loading {
		prefix = m.spinner.View() + " "
	}

	var text string
	switch tv := m.tableFor(m.tab); {
	case m.status.err:
		text = styles.DangerText.Render(m.status.text)
	case m.snap.Sync.IsOffline():
		text = styles.DangerText.Render("offline: " + describeError(m.snap.Sync.LastError))
	case tv.err != nil:
		text = styles.DangerText.Render(m.tab.Title() + ": " + describeError(tv.err))
	case m.status.text != "" && m.now().Sub(m.status.at) < StatusTTL:
		text = styles.SuccessText.Render(m.status.text)
	default:
		text = m.shortHelp()
	}
	return prefix + text
}

// Run starts the Bubble Tea program and forwards every store change to it
// until the program exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Store != nil {
		unsubscribe := opts.Store.Subscribe(func(s state.State) {
			p.Send(stateMsg(s))
		})
		defer unsubscribe()
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
