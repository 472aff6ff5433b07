package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/internal/debounce"
	"github.com/oakwood-commons/prodlookup/internal/lookup"
	"github.com/oakwood-commons/prodlookup/internal/prefs"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	flashDuration = 2 * time.Second
)

// Options configure a lookup screen.
type Options struct {
	// Config supplies themes and app-wide settings. Nil uses the embedded
	// defaults.
	Config *config.Config
	Page   config.Page
	Source loader.Source
	// Theme is the initial theme name.
	Theme string
	// Prefs persists theme toggles. Nil disables persistence.
	Prefs   *prefs.Store
	NoColor bool
	// Debounce overrides the configured keystroke delay when non-zero.
	Debounce        time.Duration
	DebounceOptions []debounce.Option
	Width           int
	Height          int
}

// inputSettledMsg is sent by a field debouncer once typing pauses.
type inputSettledMsg struct {
	Field string
}

// loadedMsg carries the outcome of one fetch.
type loadedMsg struct {
	Gen     uint64
	Records []loader.Record
	Err     error
}

// SourceChangedMsg asks the model to reload its source, e.g. after the
// watched file changed.
type SourceChangedMsg struct{}

// flashClearMsg clears a flash message after a delay.
type flashClearMsg struct {
	ID int
}

// Model is the Bubble Tea model of one lookup page. It implements
// lookup.Renderer: the controller pushes results, suggestions and errors
// into it and View draws whatever was pushed last.
type Model struct {
	Page    config.Page
	Ctrl    *lookup.Controller
	Inputs  []textinput.Model
	Source  loader.Source
	NoColor bool

	ids         []string
	focus       int
	results     []loader.Record
	suggestions map[string][]string
	errMsg      string
	selected    int
	offset      int
	detail      bool
	flash       string
	flashID     int

	spinner    spinner.Model
	keys       keyMap
	styles     styles
	cfg        *config.Config
	themeName  string
	prefs      *prefs.Store
	debouncers map[string]*debounce.Debouncer
	send       func(tea.Msg)

	ctx    context.Context
	cancel context.CancelFunc

	width   int
	height  int
	regions []region
}

// NewModel builds the model for opts.Page. The returned model has not
// started loading; Init does that.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if len(opts.Page.Fields) == 0 {
		return nil, fmt.Errorf("page %q has no fields", opts.Page.Title)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.MustDefault()
	}
	delay := opts.Debounce
	if delay == 0 {
		delay = cfg.App.Debounce
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		Page:        opts.Page,
		Source:      opts.Source,
		NoColor:     opts.NoColor,
		suggestions: map[string][]string{},
		spinner:     s,
		keys:        defaultKeyMap(),
		cfg:         cfg,
		themeName:   opts.Theme,
		prefs:       opts.Prefs,
		debouncers:  map[string]*debounce.Debouncer{},
		ctx:         ctx,
		width:       opts.Width,
		height:      opts.Height,
	}
	if m.themeName == "" {
		m.themeName = cfg.UI.Theme
	}
	if th, err := ThemeByName(cfg, m.themeName); err == nil {
		SetTheme(th)
	}
	m.styles = newStyles(CurrentTheme(), m.NoColor)

	m.Ctrl = lookup.NewController(opts.Page.LookupFields(), m,
		lookup.WithSuggestionLimit(cfg.App.SuggestionLimit),
		lookup.WithErrorFormatter(opts.Page.Messages().Format),
	)

	for _, f := range m.Ctrl.Fields() {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 200
		ti.SetWidth(defaultWidth - 6)
		m.Inputs = append(m.Inputs, ti)
		m.ids = append(m.ids, f.ID)
		m.debouncers[f.ID] = debounce.New(delay, opts.DebounceOptions...)
	}
	m.applyInputStyles()
	m.Inputs[0].Focus()
	m.resizeInputs()
	return m, nil
}

// SetSender wires the function debouncers use to deliver settled input to
// the event loop, normally (*tea.Program).Send. Without a sender edits are
// applied immediately.
func (m *Model) SetSender(send func(tea.Msg)) { m.send = send }

// Init starts the first load and the cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.Reload())
}

// Render implements lookup.Renderer.
func (m *Model) Render(records []loader.Record) {
	m.results = records
	if m.selected >= len(records) {
		m.selected = max(len(records)-1, 0)
	}
	if len(records) == 0 {
		m.selected = 0
		m.offset = 0
		m.detail = false
	}
}

// RenderSuggestions implements lookup.Renderer.
func (m *Model) RenderSuggestions(field string, values []string) {
	if len(values) == 0 {
		delete(m.suggestions, field)
		return
	}
	m.suggestions[field] = values
}

// RenderError implements lookup.Renderer.
func (m *Model) RenderError(message string) { m.errMsg = message }

// Reload starts a fetch of the source, superseding any fetch in flight.
func (m *Model) Reload() tea.Cmd {
	if m.Source == nil {
		return nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	gen := m.Ctrl.BeginLoad()
	src := m.Source
	logger.FromContext(ctx).V(1).Info("loading records", logger.SourceKey, src.String(), "generation", gen)

	load := func() tea.Msg {
		recs, err := src.Load(ctx)
		return loadedMsg{Gen: gen, Records: recs, Err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// Update handles messages for the lookup page.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return m, nil
		}
		return m, m.handleClick(msg.X, msg.Y)

	case inputSettledMsg:
		// A field that lost focus after its timer fired only refilters, so
		// its panel stays closed.
		if i, ok := m.focusedField(); !ok || m.ids[i] != msg.Field {
			m.Ctrl.Refilter()
			return m, nil
		}
		m.Ctrl.Input(msg.Field)
		return m, nil

	case loadedMsg:
		m.applyLoad(msg)
		return m, nil

	case SourceChangedMsg:
		return m, m.Reload()

	case spinner.TickMsg:
		if !m.Ctrl.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashClearMsg:
		if msg.ID == m.flashID {
			m.flash = ""
		}
		return m, nil
	}

	// Cursor blinks and pastes go to the focused input.
	if i, ok := m.focusedField(); ok {
		before := m.Inputs[i].Value()
		var cmd tea.Cmd
		m.Inputs[i], cmd = m.Inputs[i].Update(msg)
		if v := m.Inputs[i].Value(); v != before {
			m.edited(m.ids[i], v)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyLoad(msg loadedMsg) {
	log := logger.FromContext(m.ctx)
	if !m.Ctrl.ApplyLoad(msg.Gen, msg.Records, msg.Err) {
		log.V(1).Info("dropping superseded load", "generation", msg.Gen, "current", m.Ctrl.Generation())
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if msg.Err != nil {
		log.Error(msg.Err, "load failed", logger.SourceKey, m.Source.String())
		return
	}
	log.V(1).Info("records loaded", "count", len(msg.Records))
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m.Reload()
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	}

	if m.detail {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Clear):
		for _, d := range m.debouncers {
			d.Stop()
		}
		m.Ctrl.Clear()
		for i := range m.Inputs {
			m.Inputs[i].SetValue("")
		}
		return m.setFocus(0)
	case key.Matches(msg, m.keys.Next):
		return m.cycleFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m.cycleFocus(-1)
	}

	if m.onResults() {
		return m.handleResultsKey(msg)
	}
	return m.handleFieldKey(msg)
}

func (m *Model) handleFieldKey(msg tea.KeyPressMsg) tea.Cmd {
	i := m.focus
	id := m.ids[i]
	p := m.Ctrl.Panel(id)
	open := p != nil && p.Open()

	switch {
	case key.Matches(msg, m.keys.Down):
		if open {
			m.Ctrl.MoveActive(id, 1)
		}
		return nil
	case key.Matches(msg, m.keys.Up):
		if open {
			m.Ctrl.MoveActive(id, -1)
		}
		return nil
	case key.Matches(msg, m.keys.Enter):
		if open {
			if v, ok := m.Ctrl.CommitActive(id); ok {
				m.accepted(i, v)
			}
		}
		return nil
	case key.Matches(msg, m.keys.Escape):
		m.Ctrl.ClosePanel(id)
		return nil
	}

	before := m.Inputs[i].Value()
	var cmd tea.Cmd
	m.Inputs[i], cmd = m.Inputs[i].Update(msg)
	if v := m.Inputs[i].Value(); v != before {
		m.edited(id, v)
	}
	return cmd
}

func (m *Model) handleResultsKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Enter):
		if m.Page.Detail && len(m.results) > 0 {
			m.detail = true
		}
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.OpenLink):
		return m.openSelectedImage()
	}
	return nil
}

func (m *Model) handleOverlayKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Escape):
		m.detail = false
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.OpenLink):
		return m.openSelectedImage()
	}
	return nil
}

func (m *Model) handleClick(x, y int) tea.Cmd {
	hit := hitTest(m.regions, x, y)
	if m.detail {
		if hit.Kind != regionOverlay {
			m.detail = false
		}
		return nil
	}

	switch hit.Kind {
	case regionField:
		m.Ctrl.ClickAt(hit.Field)
		return m.setFocus(m.indexOf(hit.Field))
	case regionSuggestion:
		m.Ctrl.ClickAt(hit.Field)
		i := m.indexOf(hit.Field)
		if v, ok := m.Ctrl.Pick(hit.Field, hit.Index); ok {
			m.accepted(i, v)
		}
		return m.setFocus(i)
	case regionCard:
		m.Ctrl.ClickAt("")
		m.selected = hit.Index
		cmd := m.setFocus(len(m.ids))
		if m.Page.Detail {
			m.detail = true
		}
		return cmd
	default:
		m.Ctrl.ClickAt("")
		return nil
	}
}

// edited records a keystroke in field id and schedules the re-filter.
func (m *Model) edited(id, value string) {
	m.Ctrl.SetFilter(id, value)
	d := m.debouncers[id]
	send := m.send
	if send == nil || d.Delay() <= 0 {
		d.Stop()
		m.Ctrl.Input(id)
		return
	}
	d.Trigger(func() { send(inputSettledMsg{Field: id}) })
}

// accepted mirrors a committed suggestion into input i.
func (m *Model) accepted(i int, v string) {
	m.debouncers[m.ids[i]].Stop()
	m.Inputs[i].SetValue(v)
	m.Inputs[i].CursorEnd()
}

// settle applies a pending edit of field id right away.
func (m *Model) settle(id string) {
	d := m.debouncers[id]
	if d == nil || !d.Pending() {
		return
	}
	d.Stop()
	m.Ctrl.Input(id)
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	if i, ok := m.focusedField(); ok {
		m.settle(m.ids[i])
		m.Ctrl.ClosePanel(m.ids[i])
	}
	n := len(m.ids) + 1
	return m.setFocus(((m.focus+delta)%n + n) % n)
}

// setFocus moves focus to field i, or to the results list when i equals
// the number of fields.
func (m *Model) setFocus(i int) tea.Cmd {
	if i < 0 || i > len(m.ids) {
		return nil
	}
	m.focus = i
	var cmd tea.Cmd
	for j := range m.Inputs {
		if j == i {
			cmd = m.Inputs[j].Focus()
			continue
		}
		m.Inputs[j].Blur()
	}
	return cmd
}

func (m *Model) focusedField() (int, bool) {
	if m.focus >= 0 && m.focus < len(m.ids) {
		return m.focus, true
	}
	return -1, false
}

func (m *Model) onResults() bool { return m.focus == len(m.ids) }

func (m *Model) indexOf(id string) int {
	for i, v := range m.ids {
		if v == id {
			return i
		}
	}
	return 0
}

func (m *Model) moveSelection(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.results)-1)
}

func (m *Model) selectedRecord() loader.Record {
	if m.selected < 0 || m.selected >= len(m.results) {
		return nil
	}
	return m.results[m.selected]
}

func (m *Model) copySelected() tea.Cmd {
	rec := m.selectedRecord()
	if rec == nil {
		return nil
	}
	v := rec.String(m.Page.Fields[0].Key)
	if v == "" {
		return nil
	}
	if err := CopyToClipboard(v); err != nil {
		logger.FromContext(m.ctx).Error(err, "clipboard copy failed")
		return m.setFlash(err.Error())
	}
	return m.setFlash(formatText(m.Page.Texts.Copied, v))
}

func (m *Model) openSelectedImage() tea.Cmd {
	rec := m.selectedRecord()
	if rec == nil {
		return nil
	}
	v := strings.TrimSpace(rec.String(m.Page.ImageField))
	if m.Page.ImageField == "" || !IsImageURL(v) {
		return m.setFlash(m.Page.Texts.NoImage)
	}
	if err := OpenURL(v); err != nil {
		logger.FromContext(m.ctx).Error(err, "open image failed", "url", v)
		return m.setFlash(err.Error())
	}
	return nil
}

func (m *Model) toggleTheme() tea.Cmd {
	next := prefs.Toggle(m.themeName)
	th, err := ThemeByName(m.cfg, next)
	if err != nil {
		return m.setFlash(err.Error())
	}
	m.themeName = next
	SetTheme(th)
	m.styles = newStyles(th, m.NoColor)
	m.applyInputStyles()
	if m.prefs != nil {
		if err := m.prefs.SetTheme(next); err != nil {
			logger.FromContext(m.ctx).Error(err, "saving theme preference failed", "path", m.prefs.Path())
		}
	}
	return nil
}

// ThemeName returns the active theme name.
func (m *Model) ThemeName() string { return m.themeName }

func (m *Model) setFlash(s string) tea.Cmd {
	if s == "" {
		return nil
	}
	m.flashID++
	id := m.flashID
	m.flash = s
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{ID: id} })
}

// Shutdown stops pending timers and cancels a fetch in flight.
func (m *Model) Shutdown() {
	for _, d := range m.debouncers {
		d.Stop()
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m *Model) resizeInputs() {
	w, _ := m.size()
	for i := range m.Inputs {
		m.Inputs[i].SetWidth(max(w-6, 10))
	}
}

func (m *Model) applyInputStyles() {
	s := textinput.DefaultStyles(m.themeName != prefs.ThemeLight)
	if !m.NoColor {
		th := CurrentTheme()
		s.Focused.Text = lipgloss.NewStyle().Foreground(th.InputFG)
		s.Focused.Placeholder = m.styles.Placeholder
		s.Blurred.Text = lipgloss.NewStyle().Foreground(th.Muted)
		s.Blurred.Placeholder = m.styles.Placeholder
	}
	for i := range m.Inputs {
		m.Inputs[i].SetStyles(s)
	}
}

// formatText fills a single %s/%d verb, or appends v when the text has none.
func formatText(format, v string) string {
	if format == "" {
		return v
	}
	if strings.Contains(format, "%") {
		return fmt.Sprintf(format, v)
	}
	return format + " " + v
}
