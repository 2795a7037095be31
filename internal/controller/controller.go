package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kjannette/quotegraph/internal/graph"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/models"
	"go.uber.org/zap"
)

// Shell is the presentation side: it shows drawings, the list of sources
// and error messages.
type Shell interface {
	SetGraph(d *graph.Drawing)
	SetSourceOptions(names []string)
	ShowError(msg string)
}

// State is everything the application knows at a given moment.
type State struct {
	Loader   loader.Loader
	Renderer graph.Renderer
	Viewport graph.Viewport
	Source   string
	Series   models.Series
	Drawing  *graph.Drawing
}

// Snapshot is a read-only copy of the state for shells and handlers.
type Snapshot struct {
	Backend   string         `json:"backend"`
	Failed    bool           `json:"failed"`
	Kind      graph.Kind     `json:"kind"`
	Viewport  graph.Viewport `json:"viewport"`
	Options   []string       `json:"options"`
	Source    string         `json:"source"`
	Series    models.Series  `json:"-"`
	Drawing   *graph.Drawing `json:"drawing,omitempty"`
	LastError string         `json:"lastError,omitempty"`
}

// Controller serializes selection, resize and renderer changes.
type Controller struct {
	mu      sync.Mutex
	state   State
	options []string
	lastErr string
	shell   Shell
	log     *zap.Logger
}

// New builds a controller around an established loader. A nil renderer
// defaults to the line graph, a nil shell discards output.
func New(l loader.Loader, r graph.Renderer, vp graph.Viewport, sh Shell, log *zap.Logger) *Controller {
	if r == nil {
		r = graph.LineGraph{}
	}
	if sh == nil {
		sh = nopShell{}
	}
	return &Controller{
		state: State{Loader: l, Renderer: r, Viewport: vp},
		shell: sh,
		log:   logx.OrNop(log).Named("controller"),
	}
}

// Start publishes the source options and selects the default source. When
// options is empty and the loader can list its sources, that list is used.
func (c *Controller) Start(ctx context.Context, options []string, defaultSource string) error {
	if len(options) == 0 {
		if lister, ok := c.state.Loader.(loader.Lister); ok {
			names, err := lister.Sources(ctx)
			if err != nil {
				c.log.Warn("list sources", zap.Error(err))
			}
			options = names
		}
	}

	c.mu.Lock()
	c.options = append([]string(nil), options...)
	c.mu.Unlock()
	c.shell.SetSourceOptions(options)

	return c.OnSourceSelected(ctx, defaultSource)
}

// OnSourceSelected loads and renders a source. On failure the shell shows
// an error and the previous series and drawing stay in place.
func (c *Controller) OnSourceSelected(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loader == nil {
		return c.fail(loader.ErrNoData, zap.String("source", name))
	}

	s, err := c.state.Loader.Load(ctx, name)
	if err != nil {
		return c.fail(fmt.Errorf("load %s: %w", name, err), zap.String("source", name))
	}
	d, err := c.state.Renderer.Render(s, c.state.Viewport)
	if err != nil {
		return c.fail(fmt.Errorf("render %s: %w", name, err), zap.String("source", name))
	}

	c.state.Source = name
	c.state.Series = s
	c.state.Drawing = d
	c.lastErr = ""
	c.log.Info("source selected",
		zap.String("source", name),
		zap.Int("records", len(s)),
		zap.String("kind", string(d.Kind)))
	c.shell.SetGraph(d)
	return nil
}

// Resize redraws the active series for a new viewport.
func (c *Controller) Resize(vp graph.Viewport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := vp.Validate(); err != nil {
		return c.fail(err)
	}
	if len(c.state.Series) == 0 {
		c.state.Viewport = vp
		return nil
	}
	d, err := c.state.Renderer.Render(c.state.Series, vp)
	if err != nil {
		return c.fail(err)
	}
	c.state.Viewport = vp
	c.state.Drawing = d
	c.shell.SetGraph(d)
	return nil
}

// SetRenderer switches the graph kind and redraws the active series.
func (c *Controller) SetRenderer(k graph.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := graph.New(k)
	if err != nil {
		return c.fail(err)
	}
	if len(c.state.Series) == 0 {
		c.state.Renderer = r
		return nil
	}
	d, err := r.Render(c.state.Series, c.state.Viewport)
	if err != nil {
		return c.fail(err)
	}
	c.state.Renderer = r
	c.state.Drawing = d
	c.shell.SetGraph(d)
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Kind:      c.state.Renderer.Kind(),
		Viewport:  c.state.Viewport,
		Options:   append([]string(nil), c.options...),
		Source:    c.state.Source,
		Series:    append(models.Series(nil), c.state.Series...),
		Drawing:   c.state.Drawing,
		LastError: c.lastErr,
	}
	if c.state.Loader != nil {
		snap.Backend = c.state.Loader.Name()
		snap.Failed = c.state.Loader.Failed()
	}
	return snap
}

// fail logs err, shows it to the user and returns it. Callers hold mu.
func (c *Controller) fail(err error, fields ...zap.Field) error {
	msg := UserMessage(err)
	c.lastErr = msg
	c.log.Warn(msg, append(fields, zap.Error(err))...)
	c.shell.ShowError(msg)
	return err
}

// UserMessage turns an error into text suitable for display.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, loader.ErrSourceNotFound):
		return "The selected source does not exist."
	case errors.Is(err, models.ErrEmptySeries):
		return "The selected source contains no data."
	case errors.Is(err, loader.ErrConnection):
		return "The database is not reachable."
	case errors.Is(err, loader.ErrFileNotFound):
		return "The data files could not be found."
	case errors.Is(err, loader.ErrNoData):
		return "No data could be loaded."
	case errors.Is(err, graph.ErrInvalidViewport):
		return "The drawing area is too small."
	case errors.Is(err, graph.ErrUnknownKind):
		return "Unknown graph type."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	default:
		return "Loading failed: " + err.Error()
	}
}

type nopShell struct{}

func (nopShell) SetGraph(*graph.Drawing)   {}
func (nopShell) SetSourceOptions([]string) {}
func (nopShell) ShowError(string)          {}
