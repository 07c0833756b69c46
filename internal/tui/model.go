package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/config"
	"github.com/nodlAndHodl/btc-tray/internal/domain"
	"github.com/nodlAndHodl/btc-tray/internal/state"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Trigger is the refresh surface the dashboard drives. Every call is
// synchronous; the model wraps them in commands so the event loop never
// blocks on the network.
type Trigger interface {
	RefreshPriceAndHistory(ctx context.Context, tf domain.Timeframe)
	RefreshNetworkMetrics(ctx context.Context)
	ChangeTimeframe(ctx context.Context, tf domain.Timeframe) bool
}

// SettingsAccess is the persisted-settings surface behind the settings
// overlay. A nil SettingsAccess hides the overlay entirely (remote sessions
// are read-only).
type SettingsAccess interface {
	Settings() config.Settings
	SetCustomURLEnabled(enabled bool) error
	SetMempoolAPIURL(rawURL string) error
	ActiveMempoolURL() string
}

// EndpointSetter retargets the explorer gateway after a settings change.
type EndpointSetter interface {
	SetBaseURL(baseURL string)
}

type (
	tickMsg      time.Time
	refreshedMsg struct{}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	priceStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	staleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Model is the dashboard: it ticks once a second, reconciles its rolling
// display buffer against the shared state, and renders price, chart and
// network panels. All writes go through Trigger and SettingsAccess; the
// model itself only reads snapshots.
type Model struct {
	store    *state.Store
	trigger  Trigger
	settings SettingsAccess
	endpoint EndpointSetter

	keys  keyMap
	help  help.Model
	input textinput.Model

	snap    state.Snapshot
	display []domain.PricePoint
	bounds  chartBounds

	// per-model change cursors: several sessions can share one Store, so a
	// model never relies on being the one that observed a one-shot flag
	livePrice     float64
	liveStamp     domain.TimeInfo
	lastTimeframe domain.Timeframe

	width, height int
	settingsMode  bool
	statusMsg     string
	errMsg        string

	nowFunc func() time.Time
}

func NewModel(store *state.Store, trigger Trigger, settings SettingsAccess, endpoint EndpointSetter) *Model {
	input := textinput.New()
	input.Placeholder = config.DefaultMempoolAPIURL
	input.CharLimit = 200
	input.Width = 60

	snap := store.Snapshot()
	return &Model{
		store:         store,
		trigger:       trigger,
		settings:      settings,
		endpoint:      endpoint,
		keys:          defaultKeyMap(),
		help:          help.New(),
		input:         input,
		snap:          snap,
		lastTimeframe: snap.Timeframe,
		width:         100,
		height:        30,
		nowFunc:       time.Now,
	}
}

// SetSize is called before the program starts for sessions that already know
// their terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

func (m *Model) Init() tea.Cmd {
	m.reconcile()
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.reconcile()
		return m, tickCmd()

	case refreshedMsg:
		m.reconcile()
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.settingsMode {
			return m.updateSettings(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m *Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.RefreshPrice):
		m.statusMsg = "Refreshing price..."
		return m, m.refreshPriceCmd()

	case key.Matches(msg, m.keys.RefreshChain):
		m.statusMsg = "Refreshing blocks and fees..."
		return m, m.refreshChainCmd()

	case key.Matches(msg, m.keys.Hours24):
		return m, m.changeTimeframeCmd(domain.TimeframeHours24)
	case key.Matches(msg, m.keys.Week):
		return m, m.changeTimeframeCmd(domain.TimeframeWeek)
	case key.Matches(msg, m.keys.Month):
		return m, m.changeTimeframeCmd(domain.TimeframeMonth)
	case key.Matches(msg, m.keys.Year):
		return m, m.changeTimeframeCmd(domain.TimeframeYear)

	case key.Matches(msg, m.keys.Settings):
		if m.settings == nil {
			return m, nil
		}
		m.settingsMode = true
		m.errMsg = ""
		m.input.SetValue(m.settings.Settings().MempoolAPIURL)
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.settingsMode = false
		m.input.Blur()
		return m, nil

	case "tab":
		enabled := !m.settings.Settings().MempoolCustomURLEnabled
		if err := m.settings.SetCustomURLEnabled(enabled); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.applyEndpoint()
		return m, m.refreshChainCmd()

	case "enter":
		if err := m.settings.SetMempoolAPIURL(m.input.Value()); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.settingsMode = false
		m.input.Blur()
		m.applyEndpoint()
		m.statusMsg = "Explorer endpoint saved"
		return m, m.refreshChainCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyEndpoint() {
	if m.endpoint != nil {
		m.endpoint.SetBaseURL(m.settings.ActiveMempoolURL())
	}
}

func (m *Model) refreshPriceCmd() tea.Cmd {
	tf := m.store.Timeframe()
	return func() tea.Msg {
		m.trigger.RefreshPriceAndHistory(context.Background(), tf)
		return refreshedMsg{}
	}
}

func (m *Model) refreshChainCmd() tea.Cmd {
	return func() tea.Msg {
		m.trigger.RefreshNetworkMetrics(context.Background())
		return refreshedMsg{}
	}
}

func (m *Model) changeTimeframeCmd(tf domain.Timeframe) tea.Cmd {
	m.statusMsg = fmt.Sprintf("Switching chart to %s...", tf)
	return func() tea.Msg {
		m.trigger.ChangeTimeframe(context.Background(), tf)
		return refreshedMsg{}
	}
}

// reconcile copies the shared snapshot into the model and settles the
// one-shot flags. The display buffer is rebuilt from the stored history on
// every tick, plus one synthesized flat candle carrying the live price,
// capped at MaxHistoryPoints with the oldest entries evicted. Price and
// timeframe changes are detected against the model's own cursors, not the
// shared flags: the flags are cleared here but another session may have
// cleared them first, and every session must still converge. The chart
// bounds reset when the timeframe changes so the new series dictates the
// scale.
func (m *Model) reconcile() {
	snap := m.store.Snapshot()
	m.snap = snap

	if snap.Price > 0 && snap.Price != m.livePrice {
		m.livePrice = snap.Price
		m.liveStamp = domain.NewTimeInfo(m.nowFunc().Unix())
	}

	m.display = append([]domain.PricePoint(nil), snap.History...)
	if m.livePrice > 0 {
		m.display = append(m.display, domain.PricePoint{
			Time: m.liveStamp,
			Candle: domain.Candle{
				Open:  m.livePrice,
				High:  m.livePrice,
				Low:   m.livePrice,
				Close: m.livePrice,
			},
		})
	}
	if len(m.display) > domain.MaxHistoryPoints {
		m.display = m.display[len(m.display)-domain.MaxHistoryPoints:]
	}

	if snap.Timeframe != m.lastTimeframe {
		m.lastTimeframe = snap.Timeframe
		m.bounds.reset()
	}
	m.bounds.observe(m.display)

	if snap.NewPriceFetched {
		m.store.ClearNewPriceFetched()
	}
	if snap.TimeframeChanged {
		m.store.ClearTimeframeChanged()
	}
}

func (m *Model) View() string {
	if m.settingsMode {
		return m.viewSettings()
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("₿ Bitcoin Dashboard"))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewPrice())
	sb.WriteString("\n")

	chartHeight := m.height - 18
	if chartHeight < 6 {
		chartHeight = 6
	}
	sb.WriteString(sectionStyle.Render(renderChart(m.display, m.bounds, m.width-4, chartHeight)))
	sb.WriteString("\n")
	sb.WriteString(m.viewNetwork())
	sb.WriteString("\n")

	if m.statusMsg != "" {
		sb.WriteString(statusStyle.Render(m.statusMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *Model) viewPrice() string {
	snap := m.snap
	if snap.Price == 0 {
		return sectionStyle.Render("Loading...")
	}

	lines := []string{
		priceStyle.Render(fmt.Sprintf("BTC/USD  $%.2f", snap.Price)) +
			labelStyle.Render(fmt.Sprintf("   %.0f sats/$", 1e8/snap.Price)),
	}
	updated := labelStyle.Render("Updated: " + snap.LastUpdated)
	if strings.Contains(snap.LastUpdated, "fallback") {
		updated = staleStyle.Render("Updated: " + snap.LastUpdated)
	}
	if snap.Updating {
		updated += statusStyle.Render("  (updating)")
	}
	lines = append(lines, updated)
	lines = append(lines, labelStyle.Render("Chart: "+snap.Timeframe.Description()))
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewNetwork() string {
	snap := m.snap

	height := "Unknown"
	if snap.BlockHeight > 0 {
		height = fmt.Sprintf("%d", snap.BlockHeight)
	}
	lines := []string{
		fmt.Sprintf("Block height: %s   mined %s", height, snap.BlockTime),
		fmt.Sprintf("Fees (sat/vB)  fastest:%d  30m:%d  1h:%d  economy:%d  minimum:%d",
			snap.Fees.Fastest, snap.Fees.HalfHour, snap.Fees.Hour, snap.Fees.Economy, snap.Fees.Minimum),
	}
	updated := labelStyle.Render("Updated: " + snap.MempoolLastUpdated)
	if snap.MempoolUpdating {
		updated += statusStyle.Render("  (updating)")
	}
	lines = append(lines, updated)
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewSettings() string {
	s := m.settings.Settings()

	toggle := "[ ] use custom endpoint"
	if s.MempoolCustomURLEnabled {
		toggle = "[x] use custom endpoint"
	}

	lines := []string{
		titleStyle.Render("Explorer Settings"),
		"",
		toggle + labelStyle.Render("  (tab to toggle)"),
		"",
		labelStyle.Render("Endpoint URL:"),
		m.input.View(),
		"",
		labelStyle.Render("Active: " + m.settings.ActiveMempoolURL()),
		"",
		labelStyle.Render("enter save · esc cancel"),
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}
