package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"straycare/internal/api"
	"straycare/internal/config"
	"straycare/internal/types"
)

// watchInterval is how often the watch view polls. Polls hit the read
// cache, so a network request only goes out once the nearby entry ages
// past its staleness window.
const watchInterval = 30 * time.Second

// NearbySource supplies the animals around a position.
type NearbySource interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]types.Animal, error)
}

type nearbyTickMsg struct{}

type nearbyResultMsg struct {
	animals []types.Animal
	err     error
}

type configReloadedMsg struct{ cfg *config.Config }

// Watch is the live nearby screen. It refreshes on a timer and reloads
// its settings when the config file changes on disk.
type Watch struct {
	source     NearbySource
	lat, lng   float64
	radiusKm   float64
	configPath string
	watcher    *fsnotify.Watcher
	log        *zap.Logger

	animals   []types.Animal
	err       error
	refreshed time.Time
	loading   bool

	spinner spinner.Model
	styles  Styles
	width   int
}

// NewWatch builds the watch view. configPath may be empty to disable the
// file watch. Editors replace files on save, so the watch covers the
// config file's directory rather than the file itself.
func NewWatch(source NearbySource, lat, lng, radiusKm float64, configPath, theme string, log *zap.Logger) Watch {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Watch{
		source:     source,
		lat:        lat,
		lng:        lng,
		radiusKm:   radiusKm,
		configPath: configPath,
		log:        log,
		loading:    true,
		spinner:    sp,
		styles:     NewStyles(theme),
		width:      80,
	}
	if configPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err == nil {
			err = watcher.Add(filepath.Dir(configPath))
		}
		if err != nil {
			log.Warn("config watch unavailable", zap.Error(err))
			if watcher != nil {
				watcher.Close()
			}
		} else {
			m.watcher = watcher
		}
	}
	return m
}

// Init fetches immediately and arms the timer and the config watcher.
func (m Watch) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetch()}
	if m.watcher != nil {
		cmds = append(cmds, m.awaitConfigChange())
	}
	return tea.Batch(cmds...)
}

func (m Watch) fetch() tea.Cmd {
	source, lat, lng, radius := m.source, m.lat, m.lng, m.radiusKm
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		animals, err := source.Nearby(ctx, lat, lng, radius)
		return nearbyResultMsg{animals: animals, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(watchInterval, func(time.Time) tea.Msg { return nearbyTickMsg{} })
}

func (m Watch) awaitConfigChange() tea.Cmd {
	watcher, path, log := m.watcher, m.configPath, m.log
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := config.Load(path)
				if err != nil {
					log.Warn("config reload failed", zap.Error(err))
					continue
				}
				return configReloadedMsg{cfg: cfg}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Warn("config watch error", zap.Error(err))
			}
		}
	}
}

// Close releases the config watcher.
func (m Watch) Close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// Update handles messages.
func (m Watch) Update(msg tea.Msg) (Watch, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case nearbyTickMsg:
		m.loading = true
		return m, m.fetch()

	case nearbyResultMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.animals = msg.animals
			m.refreshed = time.Now()
		}
		return m, tick()

	case configReloadedMsg:
		m.styles = NewStyles(msg.cfg.UI.Theme)
		m.log.Info("watch settings reloaded", zap.String("theme", msg.cfg.UI.Theme))
		return m, m.awaitConfigChange()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Close()
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetch()
		}
	}
	return m, nil
}

// View renders the nearby list.
func (m Watch) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Animals within %.1f km", m.radiusKm)))
	if m.loading {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(api.MessageOf(m.err, "Could not load nearby animals.")))
	case len(m.animals) == 0:
		b.WriteString(m.styles.Muted.Render("No animals reported nearby."))
	default:
		for _, a := range m.animals {
			badge := m.styles.Badge.Render(string(a.Species))
			name := a.Name
			if name == "" {
				name = a.Breed
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n",
				badge,
				m.styles.Body.Render(name),
				m.styles.Muted.Render(string(a.HealthStatus))))
		}
	}

	b.WriteString("\n")
	if !m.refreshed.IsZero() {
		b.WriteString(m.styles.Muted.Render("Updated " + m.refreshed.Format("15:04:05") + " · "))
	}
	b.WriteString(m.styles.Muted.Render("r refresh · q quit"))
	return m.styles.Body.MaxWidth(m.width).Render(b.String())
}
