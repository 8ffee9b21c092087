package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jan-sykora/api-demo/internal/api"
)

type EventsLister interface {
	ListEvents(ctx context.Context, req *api.ListEventsRequest) (*api.ListEventsResponse, error)
}

type eventsKeyMap struct {
	Refresh key.Binding
	More    key.Binding
	Quit    key.Binding
}

func (k eventsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.More, k.Quit}
}

func (k eventsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultEventsKeys() eventsKeyMap {
	return eventsKeyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		More:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type eventsLoadedMsg struct {
	seq  int
	resp *api.ListEventsResponse
	err  error
}

// EventsModel pages through the usage events. "Load more" replaces the
// table with the next page.
type EventsModel struct {
	ctx      context.Context
	client   EventsLister
	pageSize int32
	theme    Theme

	events       []*api.Event
	currentToken string
	nextToken    string
	loading      bool
	err          error
	seq          int

	spinner spinner.Model
	keys    eventsKeyMap
	help    help.Model
}

func NewEventsModel(ctx context.Context, client EventsLister, pageSize int32) EventsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return EventsModel{
		ctx:      ctx,
		client:   client,
		pageSize: pageSize,
		theme:    DefaultTheme(),
		loading:  true,
		spinner:  sp,
		keys:     defaultEventsKeys(),
		help:     help.New(),
	}
}

func (m EventsModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m EventsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.currentToken = ""
			return m.startLoad()
		case key.Matches(msg, m.keys.More):
			if m.nextToken == "" || m.loading {
				return m, nil
			}
			m.currentToken = m.nextToken
			return m.startLoad()
		}
	case eventsLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			zerolog.Ctx(m.ctx).Error().Err(msg.err).Msg("failed to load events")
			m.err = msg.err
			m.events = nil
			m.nextToken = ""
			return m, nil
		}
		m.err = nil
		m.events = msg.resp.Events
		m.nextToken = msg.resp.NextPageToken
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m EventsModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Usage events"))
	b.WriteByte('\n')
	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + m.theme.Loading.Render(loadingEvents))
	case m.err != nil:
		b.WriteString(m.theme.Error.Render(failedEvents))
	default:
		b.WriteString(RenderEvents(m.theme, m.events))
	}
	b.WriteString("\n\n")
	m.keys.More.SetEnabled(m.nextToken != "")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m EventsModel) Events() []*api.Event  { return m.events }
func (m EventsModel) NextPageToken() string { return m.nextToken }
func (m EventsModel) Loading() bool         { return m.loading }
func (m EventsModel) Err() error            { return m.err }

func (m EventsModel) startLoad() (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	return m, tea.Batch(m.load(), m.spinner.Tick)
}

func (m EventsModel) load() tea.Cmd {
	seq := m.seq
	req := &api.ListEventsRequest{PageSize: m.pageSize, PageToken: m.currentToken}
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		resp, err := client.ListEvents(ctx, req)
		return eventsLoadedMsg{seq: seq, resp: resp, err: err}
	}
}
