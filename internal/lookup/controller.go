package lookup

import (
	"github.com/oakwood-commons/prodlookup/internal/autocomplete"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// Field is one tracked search input.
type Field struct {
	// ID identifies the input and its suggestion panel.
	ID string
	// Label is shown next to the input.
	Label string
	// Key is the record key the input filters on.
	Key string
	// Placeholder is shown while the input is empty.
	Placeholder string
}

// Renderer receives every change of the visible state.
type Renderer interface {
	// Render replaces the result list. An empty slice means the empty
	// state is shown and the count badge hidden.
	Render(records []loader.Record)
	// RenderSuggestions shows values under the field, or hides its panel
	// when values is empty.
	RenderSuggestions(field string, values []string)
	// RenderError shows a load failure. An empty message hides it.
	RenderError(message string)
}

// ErrorFormatter converts a load error to the message shown to the user.
type ErrorFormatter func(error) string

// Option configures a Controller.
type Option func(*Controller)

// WithSuggestionLimit caps each suggestion list. Values <= 0 are ignored.
func WithSuggestionLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithErrorFormatter overrides how load errors are worded.
func WithErrorFormatter(f ErrorFormatter) Option {
	return func(c *Controller) {
		if f != nil {
			c.formatErr = f
		}
	}
}

// Controller owns the records, filters and suggestion panels of one page.
// It is not safe for concurrent use; the UI calls it from its event loop.
type Controller struct {
	fields    []Field
	byID      map[string]Field
	renderer  Renderer
	limit     int
	formatErr ErrorFormatter

	records []loader.Record
	results []loader.Record
	filters map[string]string
	panels  *autocomplete.Set

	gen     uint64
	loading bool
	loaded  bool
	err     error
	errMsg  string
}

// NewController builds a controller for fields. A nil renderer discards
// all output.
func NewController(fields []Field, r Renderer, opts ...Option) *Controller {
	if r == nil {
		r = nopRenderer{}
	}
	ids := make([]string, 0, len(fields))
	byID := make(map[string]Field, len(fields))
	for _, f := range fields {
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}
	c := &Controller{
		fields:    fields,
		byID:      byID,
		renderer:  r,
		limit:     DefaultSuggestionLimit,
		formatErr: DefaultMessages.Format,
		filters:   make(map[string]string, len(fields)),
		panels:    autocomplete.NewSet(ids...),
		results:   []loader.Record{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Fields() []Field { return c.fields }

// Field returns the field with the given id.
func (c *Controller) Field(id string) (Field, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Records returns the last successfully loaded record set.
func (c *Controller) Records() []loader.Record { return c.records }

// Results returns the currently displayed records.
func (c *Controller) Results() []loader.Record { return c.results }

func (c *Controller) Loading() bool { return c.loading }

// Loaded reports whether at least one load succeeded.
func (c *Controller) Loaded() bool { return c.loaded }

// Err returns the failure of the last load while it is still shown.
func (c *Controller) Err() error { return c.err }

// ErrorMessage is the formatted form of Err.
func (c *Controller) ErrorMessage() string { return c.errMsg }

// Filter returns the current text of field id.
func (c *Controller) Filter(id string) string { return c.filters[id] }

// SetFilter stores the text of field id without re-filtering. Input does
// the expensive part once keystrokes settle.
func (c *Controller) SetFilter(id, value string) {
	if _, ok := c.byID[id]; !ok {
		return
	}
	c.filters[id] = value
}

// Queries returns one query per tracked field.
func (c *Controller) Queries() []Query {
	qs := make([]Query, 0, len(c.fields))
	for _, f := range c.fields {
		qs = append(qs, Query{Key: f.Key, Value: c.filters[f.ID]})
	}
	return qs
}

// Input handles a settled edit of field id: its suggestions are rebuilt
// and the results re-filtered.
func (c *Controller) Input(id string) {
	c.RebuildSuggestions(id)
	c.Refilter()
}

// Refilter recomputes the result set from the retained records and clears
// any error still on screen.
func (c *Controller) Refilter() {
	c.clearError()
	c.results = Filter(c.records, c.Queries())
	c.renderer.Render(c.results)
}

// RebuildSuggestions recomputes the panel of field id from its filter text.
func (c *Controller) RebuildSuggestions(id string) {
	f, ok := c.byID[id]
	if !ok {
		return
	}
	p := c.panels.Get(id)
	p.Rebuild(Suggest(c.records, f.Key, c.filters[id], c.limit))
	c.renderPanel(id)
}

// Panel returns the suggestion panel of field id, or nil.
func (c *Controller) Panel(id string) *autocomplete.Panel {
	return c.panels.Get(id)
}

// MoveActive shifts the highlighted suggestion of field id.
func (c *Controller) MoveActive(id string, delta int) bool {
	p := c.panels.Get(id)
	if p == nil || !p.Move(delta) {
		return false
	}
	c.renderPanel(id)
	return true
}

// CommitActive writes the highlighted suggestion into field id and
// re-filters. It reports false when nothing was highlighted.
func (c *Controller) CommitActive(id string) (string, bool) {
	p := c.panels.Get(id)
	if p == nil {
		return "", false
	}
	v, ok := p.Commit()
	if !ok {
		return "", false
	}
	c.accept(id, v)
	return v, true
}

// Pick commits suggestion i of field id, as a click does.
func (c *Controller) Pick(id string, i int) (string, bool) {
	p := c.panels.Get(id)
	if p == nil {
		return "", false
	}
	v, ok := p.Pick(i)
	if !ok {
		return "", false
	}
	c.accept(id, v)
	return v, true
}

func (c *Controller) accept(id, v string) {
	c.filters[id] = v
	c.renderPanel(id)
	c.Refilter()
}

// ClosePanel hides the suggestions of field id without committing.
func (c *Controller) ClosePanel(id string) {
	p := c.panels.Get(id)
	if p == nil || !p.Open() {
		return
	}
	p.Close()
	c.renderPanel(id)
}

// ClickAt closes every panel that does not belong to field id. An empty
// id is a click outside all fields.
func (c *Controller) ClickAt(id string) {
	for _, closed := range c.panels.ClickAt(id) {
		c.renderPanel(closed)
	}
}

// AnyPanelOpen reports whether some suggestion panel is visible.
func (c *Controller) AnyPanelOpen() bool { return c.panels.AnyOpen() }

// Clear empties every field, hides all panels and re-filters.
func (c *Controller) Clear() {
	for _, f := range c.fields {
		c.filters[f.ID] = ""
		if p := c.panels.Get(f.ID); p != nil {
			p.Reset()
		}
		c.renderPanel(f.ID)
	}
	c.Refilter()
}

// BeginLoad marks a new fetch as started and returns its generation.
// Results of any earlier generation are ignored by ApplyLoad.
func (c *Controller) BeginLoad() uint64 {
	c.gen++
	c.loading = true
	c.clearError()
	return c.gen
}

// Generation returns the generation of the most recently started load.
func (c *Controller) Generation() uint64 { return c.gen }

// ApplyLoad installs the outcome of load gen. Outcomes of superseded loads
// are dropped and ApplyLoad returns false. On failure the displayed results
// are cleared but the previously loaded records are kept, so the next edit
// filters them again.
func (c *Controller) ApplyLoad(gen uint64, records []loader.Record, err error) bool {
	if gen != c.gen {
		return false
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.errMsg = c.formatErr(err)
		c.results = []loader.Record{}
		c.renderer.Render(c.results)
		c.renderer.RenderError(c.errMsg)
		return true
	}
	if records == nil {
		records = []loader.Record{}
	}
	c.records = records
	c.loaded = true
	for _, f := range c.fields {
		if p := c.panels.Get(f.ID); p != nil && p.Open() {
			c.RebuildSuggestions(f.ID)
		}
	}
	c.Refilter()
	return true
}

func (c *Controller) clearError() {
	if c.err == nil && c.errMsg == "" {
		return
	}
	c.err = nil
	c.errMsg = ""
	c.renderer.RenderError("")
}

func (c *Controller) renderPanel(id string) {
	p := c.panels.Get(id)
	if p == nil || !p.Open() {
		c.renderer.RenderSuggestions(id, nil)
		return
	}
	c.renderer.RenderSuggestions(id, p.Items())
}

type nopRenderer struct{}

func (nopRenderer) Render([]loader.Record) {}

func (nopRenderer) RenderSuggestions(string, []string) {}

func (nopRenderer) RenderError(string) {}
