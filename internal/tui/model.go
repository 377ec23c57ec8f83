package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgodinho/skunav/internal/domain"
	"github.com/mgodinho/skunav/internal/history"
	"github.com/mgodinho/skunav/internal/tui/styles"
	"github.com/mgodinho/skunav/internal/workflow"
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Collaborators
	Orch    *workflow.Orchestrator
	History *history.Service

	events <-chan workflow.Event

	// UI components
	Spinner spinner.Model
	Search  textinput.Model

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	StatusMsg     string
	StatusKind    workflow.EventKind
	Searching     bool
	ShowHelp      bool
	Cursor        int
	PendingExtras []string
	LastFolder    *domain.FolderRecord
}

// NewModel creates a new application model. events must be the channel
// the orchestrator's ChannelSink writes to.
func NewModel(orch *workflow.Orchestrator, hist *history.Service, events <-chan workflow.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	search := textinput.New()
	search.Placeholder = "search recents"
	search.Prompt = "/"
	search.CharLimit = 64

	return Model{
		Orch:    orch,
		History: hist,
		events:  events,
		Spinner: sp,
		Search:  search,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.waitForEvent())
}

// waitForEvent blocks on the orchestrator event channel
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return WorkflowEventMsg{Event: <-m.events}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case WorkflowEventMsg:
		m = m.applyEvent(msg.Event)
		return m, m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyEvent folds an orchestrator event into the view state
func (m Model) applyEvent(ev workflow.Event) Model {
	switch ev.Kind {
	case workflow.EventNavigate:
		m.LastFolder = ev.Folder
		m.StatusMsg = fmt.Sprintf("%s → %s", ev.Message, ev.Target)
		m.StatusKind = workflow.EventSuccess
		m.Cursor = 0

	case workflow.EventExtrasFound:
		m.PendingExtras = ev.SKUs
		m.StatusMsg = ev.Message
		m.StatusKind = workflow.EventInfo

	default:
		m.StatusMsg = ev.Message
		m.StatusKind = ev.Kind
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Extras prompt takes priority over everything but quit
	if len(m.PendingExtras) > 0 {
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.Orch.LoadExtras(m.PendingExtras)
			m.PendingExtras = nil
			return m, nil
		case key.Matches(msg, Keys.Deny):
			m.PendingExtras = nil
			m.StatusMsg = ""
			return m, nil
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	if m.Searching {
		switch {
		case key.Matches(msg, Keys.Escape):
			m.Searching = false
			m.Search.Reset()
			m.Search.Blur()
			m.Cursor = 0
			return m, nil
		case key.Matches(msg, Keys.Enter):
			m.Searching = false
			m.Search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.Search, cmd = m.Search.Update(msg)
		m.Cursor = 0
		return m, cmd
	}

	// Favorite hotkeys
	if slot := favoriteSlot(msg.String()); slot != 0 {
		m.Orch.TriggerFavorite(slot)
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Trigger), key.Matches(msg, Keys.Enter):
		m.Orch.Trigger(context.Background())
		m.StatusMsg = "scanning clipboard..."
		m.StatusKind = workflow.EventInfo
		return m, m.Spinner.Tick

	case key.Matches(msg, Keys.Search):
		m.Searching = true
		m.Search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, Keys.Escape):
		m.Search.Reset()
		m.StatusMsg = ""
		m.Cursor = 0
		return m, nil

	case key.Matches(msg, Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case key.Matches(msg, Keys.Down):
		if m.Cursor < len(m.visibleRecents())-1 {
			m.Cursor++
		}
		return m, nil

	case key.Matches(msg, Keys.Pin):
		recents := m.visibleRecents()
		if m.Cursor < len(recents) {
			entry := recents[m.Cursor]
			if err := m.History.PinRecent(entry.SKU, !entry.Pinned); err != nil {
				m.StatusMsg = err.Error()
				m.StatusKind = workflow.EventWarning
			}
		}
		return m, nil

	case key.Matches(msg, Keys.ClearRecents):
		if err := m.History.ClearRecents(); err != nil {
			m.StatusMsg = err.Error()
			m.StatusKind = workflow.EventWarning
		}
		m.Cursor = 0
		return m, nil

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}

	return m, nil
}

// favoriteSlot maps keys 1-8 to a hotkey slot, 0 for anything else
func favoriteSlot(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '8' {
		return 0
	}
	return int(s[0] - '0')
}

// visibleRecents returns the recents list, filtered when a search query
// is active.
func (m Model) visibleRecents() []domain.RecentEntry {
	if query := m.Search.Value(); query != "" {
		return m.History.SearchRecents(query)
	}
	return m.History.Recents()
}

// visibleFavorites returns the favorites bar entries, narrowed by label
// when a search query is active so matching slots stand out.
func (m Model) visibleFavorites() []domain.Favorite {
	if query := m.Search.Value(); query != "" {
		return m.History.SearchFavorites(query)
	}
	return m.History.Favorites()
}

// View implements tea.Model
func (m Model) View() string {
	if !m.Ready {
		return "loading..."
	}

	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewRecents())
	b.WriteString("\n")

	if len(m.PendingExtras) > 0 {
		b.WriteString(m.viewExtrasPrompt())
		b.WriteString("\n")
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.viewFavoritesBar())
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return b.String()
}

func (m Model) viewHeader() string {
	title := styles.TitleStyle.Render("skunav")

	var badge string
	switch {
	case m.Orch.Session().AuthPending():
		badge = styles.WarningStyle.Render("connecting")
	case m.Orch.Session().Connected():
		badge = styles.SuccessStyle.Render("connected")
	default:
		badge = styles.DimStyle.Render("offline")
	}

	sku := m.Orch.CurrentSKU()
	if sku == "" {
		sku = styles.DimStyle.Render("no SKU yet")
	} else {
		sku = styles.AccentStyle.Render(sku)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", badge, "  ", sku)
}

func (m Model) viewRecents() string {
	var b strings.Builder

	if m.Searching || m.Search.Value() != "" {
		b.WriteString(m.Search.View())
		b.WriteString("\n")
	}

	recents := m.visibleRecents()
	if len(recents) == 0 {
		b.WriteString(styles.DimStyle.Render("  no recent SKUs"))
		return b.String()
	}

	for i, entry := range recents {
		label := entry.SKU
		if entry.Pinned {
			label = styles.PinChar + " " + label
		}
		label = styles.Truncate(label, m.Width-4)

		if i == m.Cursor {
			b.WriteString(styles.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewExtrasPrompt() string {
	prompt := fmt.Sprintf("%d more SKUs found: %s  load into recents? (y/n)",
		len(m.PendingExtras), strings.Join(m.PendingExtras, ", "))
	return styles.PromptStyle.Render(styles.Truncate(prompt, m.Width-4))
}

func (m Model) viewStatus() string {
	if m.StatusMsg == "" {
		return ""
	}

	msg := styles.Truncate(m.StatusMsg, m.Width-4)
	switch m.StatusKind {
	case workflow.EventError:
		msg = styles.ErrorStyle.Render(msg)
	case workflow.EventWarning:
		msg = styles.WarningStyle.Render(msg)
	case workflow.EventSuccess:
		msg = styles.SuccessStyle.Render(msg)
	default:
		msg = styles.SubtitleStyle.Render(msg)
	}

	if m.Orch.State() != workflow.StateIdle {
		return m.Spinner.View() + " " + msg
	}
	return msg
}

func (m Model) viewFavoritesBar() string {
	var parts []string
	for _, fav := range m.visibleFavorites() {
		parts = append(parts,
			styles.SlotStyle.Render(fmt.Sprintf("%d", fav.HotkeySlot))+
				styles.SlotLabelStyle.Render(":"+fav.Label))
	}
	return styles.Truncate(strings.Join(parts, "  "), m.Width-2)
}

func (m Model) viewFooter() string {
	bindings := []key.Binding{
		Keys.Trigger, Keys.Search, Keys.Pin, Keys.Quit,
	}
	if m.ShowHelp {
		bindings = []key.Binding{
			Keys.Trigger, Keys.Enter, Keys.Search, Keys.Pin,
			Keys.ClearRecents, Keys.Escape, Keys.Quit,
		}
	}

	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts,
			styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return styles.Truncate(strings.Join(parts, "  "), m.Width-2)
}
