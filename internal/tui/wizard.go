package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"straycare/internal/api"
	"straycare/internal/geocode"
	"straycare/internal/types"
	"straycare/internal/workflow"
)

// addressDebounce is the quiet period before a typed address is resolved.
const addressDebounce = 400 * time.Millisecond

// fieldRow is one editable line of the basic-info step: either a free-text
// input or a choice cycled with the left/right keys.
type fieldRow struct {
	name    string // draft field name, for validation messages
	label   string
	input   *textinput.Model
	choices []string
	choice  int
	apply   func(d *workflow.Draft, value string)
}

func (r *fieldRow) value() string {
	if r.input != nil {
		return r.input.Value()
	}
	if r.choice < 0 {
		return ""
	}
	return r.choices[r.choice]
}

func textRow(name, label, placeholder string, apply func(*workflow.Draft, string)) *fieldRow {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 120
	return &fieldRow{name: name, label: label, input: &in, apply: apply}
}

func choiceRow(name, label string, choices []string, apply func(*workflow.Draft, string)) *fieldRow {
	return &fieldRow{name: name, label: label, choices: choices, choice: -1, apply: apply}
}

// Messages produced by wizard commands.
type geocodedMsg struct {
	rec types.LocationRecord
	err error
}

type resolveRequestMsg struct{ query string }

type submittedMsg struct {
	animal *types.Animal
	err    error
}

// Wizard is the interactive multi-step report form.
type Wizard struct {
	form      *workflow.Form
	submitter workflow.Submitter
	resolver  *geocode.Resolver
	debounce  *geocode.Debouncer
	resolveCh chan string

	rows  []*fieldRow
	focus int

	address textinput.Model
	photo   textinput.Model

	spinner   spinner.Model
	styles    Styles
	width     int
	geocoding bool
	status    string
	errText   string

	Result *types.Animal
}

// NewWizard builds the report wizard.
func NewWizard(submitter workflow.Submitter, resolver *geocode.Resolver, theme string) Wizard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	address := textinput.New()
	address.Placeholder = "Start typing an address..."
	address.CharLimit = 200

	photo := textinput.New()
	photo.Placeholder = "Path to a photo (leave empty to skip)"
	photo.CharLimit = 300

	rows := []*fieldRow{
		choiceRow("Species", "Species", []string{"DOG", "CAT", "BIRD", "OTHER"},
			func(d *workflow.Draft, v string) { d.Species = types.Species(v) }),
		textRow("Breed", "Breed", "e.g. mixed, tabby",
			func(d *workflow.Draft, v string) { d.Breed = v }),
		choiceRow("Gender", "Gender", []string{"MALE", "FEMALE", "UNKNOWN"},
			func(d *workflow.Draft, v string) { d.Gender = types.Gender(v) }),
		choiceRow("HealthStatus", "Health", []string{"HEALTHY", "SICK", "INJURED", "RECOVERING", "CRITICAL"},
			func(d *workflow.Draft, v string) { d.HealthStatus = types.HealthStatus(v) }),
		choiceRow("Temperament", "Temperament", []string{"FRIENDLY", "SHY", "AGGRESSIVE", "NEUTRAL", "PLAYFUL", "CALM"},
			func(d *workflow.Draft, v string) { d.Temperament = types.Temperament(v) }),
		textRow("Age", "Age (years)", "optional",
			func(d *workflow.Draft, v string) { d.Age, _ = strconv.Atoi(v) }),
		textRow("Description", "Description", "optional",
			func(d *workflow.Draft, v string) { d.Description = v }),
	}
	return Wizard{
		form:      workflow.New(),
		submitter: submitter,
		resolver:  resolver,
		debounce:  geocode.NewDebouncer(addressDebounce),
		resolveCh: make(chan string, 1),
		rows:      rows,
		focus:     0,
		address:   address,
		photo:     photo,
		spinner:   sp,
		styles:    NewStyles(theme),
		width:     80,
	}
}

// Init starts the spinner and the debounced-resolve listener.
func (m Wizard) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenResolve())
}

// listenResolve bridges the debouncer's timer goroutine into the message
// loop.
func (m Wizard) listenResolve() tea.Cmd {
	ch := m.resolveCh
	return func() tea.Msg {
		query, ok := <-ch
		if !ok {
			return nil
		}
		return resolveRequestMsg{query: query}
	}
}

func (m Wizard) resolveAddress(query string) tea.Cmd {
	resolver := m.resolver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		rec, err := resolver.ResolveAddress(ctx, query)
		return geocodedMsg{rec: rec, err: err}
	}
}

func (m Wizard) submit() tea.Cmd {
	form, submitter := m.form, m.submitter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		animal, err := form.Submit(ctx, submitter)
		return submittedMsg{animal: animal, err: err}
	}
}

// Update handles messages.
func (m Wizard) Update(msg tea.Msg) (Wizard, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resolveRequestMsg:
		m.geocoding = true
		m.status = "Looking up address..."
		return m, tea.Batch(m.resolveAddress(msg.query), m.listenResolve())

	case geocodedMsg:
		m.geocoding = false
		if msg.err != nil {
			m.resolver.Reject()
			m.status = ""
			m.errText = geocodeMessage(msg.err)
			return m, nil
		}
		m.errText = ""
		m.status = fmt.Sprintf("Found: %s (enter to confirm, esc to discard)", msg.rec.Address)
		return m, nil

	case submittedMsg:
		if msg.err != nil {
			m.errText = api.MessageOf(msg.err, "The report could not be submitted. Please try again.")
			m.status = ""
			return m, nil
		}
		m.Result = msg.animal
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Wizard) handleKey(msg tea.KeyMsg) (Wizard, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.form.Abandon()
		return m, tea.Quit
	}
	switch m.form.Step() {
	case workflow.StepBasicInfo:
		return m.updateBasicInfo(msg)
	case workflow.StepLocation:
		return m.updateLocation(msg)
	case workflow.StepPhotos:
		return m.updatePhotos(msg)
	case workflow.StepReview:
		return m.updateReview(msg)
	}
	return m, tea.Quit
}

func (m Wizard) updateBasicInfo(msg tea.KeyMsg) (Wizard, tea.Cmd) {
	row := m.rows[m.focus]
	switch msg.String() {
	case "up", "shift+tab":
		m.setFocus((m.focus + len(m.rows) - 1) % len(m.rows))
		return m, nil
	case "down", "tab":
		m.setFocus((m.focus + 1) % len(m.rows))
		return m, nil
	case "left", "right":
		if row.input == nil {
			// Positions run from -1 (unset) through the last choice.
			positions := len(row.choices) + 1
			delta := 1
			if msg.String() == "left" {
				delta = positions - 1
			}
			row.choice = ((row.choice+1+delta)%positions) - 1
			m.applyRow(row)
			return m, nil
		}
	case "enter":
		m.errText = ""
		if err := m.form.Next(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.address.Focus()
		return m, nil
	}
	if row.input != nil {
		var cmd tea.Cmd
		*row.input, cmd = row.input.Update(msg)
		m.applyRow(row)
		return m, cmd
	}
	return m, nil
}

func (m *Wizard) setFocus(i int) {
	if cur := m.rows[m.focus]; cur.input != nil {
		cur.input.Blur()
	}
	m.focus = i
	if next := m.rows[i]; next.input != nil {
		next.input.Focus()
	}
}

func (m *Wizard) applyRow(row *fieldRow) {
	value := row.value()
	// Optional rows stay untouched while empty so their zero values hold.
	_ = m.form.Set(func(d *workflow.Draft) { row.apply(d, value) })
}

func (m Wizard) updateLocation(msg tea.KeyMsg) (Wizard, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if _, ok := m.resolver.Pending(); ok {
			rec, _ := m.resolver.Confirm()
			_ = m.form.Set(func(d *workflow.Draft) { d.SetLocation(rec) })
			m.status = ""
			m.errText = ""
			if err := m.form.Next(); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.photo.Focus()
			return m, nil
		}
		// No staged record yet; resolve what was typed right away.
		query := strings.TrimSpace(m.address.Value())
		if len(query) < geocode.MinQueryLength {
			m.errText = "Type an address first."
			return m, nil
		}
		m.debounce.Stop()
		m.geocoding = true
		m.status = "Looking up address..."
		return m, m.resolveAddress(query)
	case "esc":
		m.resolver.Reject()
		m.status = ""
		return m, nil
	case "ctrl+p":
		m.errText = ""
		if err := m.form.Prev(); err != nil {
			m.errText = err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	// Typing discards any staged result and schedules a fresh lookup.
	m.resolver.Reject()
	ch := m.resolveCh
	m.debounce.Trigger(strings.TrimSpace(m.address.Value()), func(q string) {
		select {
		case ch <- q:
		default:
		}
	})
	return m, cmd
}

func (m Wizard) updatePhotos(msg tea.KeyMsg) (Wizard, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if path := strings.TrimSpace(m.photo.Value()); path != "" {
			_ = m.form.Set(func(d *workflow.Draft) { d.Photos = append(d.Photos, path) })
			m.photo.SetValue("")
			return m, nil
		}
		m.errText = ""
		if err := m.form.Next(); err != nil {
			m.errText = err.Error()
		}
		return m, nil
	case "ctrl+p":
		m.errText = ""
		if err := m.form.Prev(); err != nil {
			m.errText = err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.photo, cmd = m.photo.Update(msg)
	return m, cmd
}

func (m Wizard) updateReview(msg tea.KeyMsg) (Wizard, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.form.Submitting() {
			return m, nil
		}
		m.errText = ""
		m.status = "Submitting report..."
		return m, m.submit()
	case "ctrl+p":
		if !m.form.Submitting() {
			m.errText = ""
			if err := m.form.Prev(); err != nil {
				m.errText = err.Error()
			}
		}
		return m, nil
	}
	return m, nil
}

func geocodeMessage(err error) string {
	var cfg *geocode.ConfigError
	var nm *geocode.NoMatchError
	switch {
	case errors.As(err, &cfg):
		return "Address lookup is not configured. Set maps.api_key in your config."
	case errors.As(err, &nm):
		return "No address matched. Try adding a city or street number."
	default:
		return "Address lookup failed. Check your connection and try again."
	}
}

// stepIndicator renders the wizard's progress line.
func (m Wizard) stepIndicator() string {
	labels := []string{"Basic info", "Location", "Photos", "Review"}
	current := int(m.form.Step())
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		style := m.styles.StepTodo
		switch {
		case i < current:
			style = m.styles.StepDone
			label = "✓ " + label
		case i == current:
			style = m.styles.StepActive
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, m.styles.Muted.Render(" › "))
}

// View renders the wizard.
func (m Wizard) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Report a stray animal"))
	b.WriteString("\n")
	b.WriteString(m.stepIndicator())
	b.WriteString("\n\n")

	switch m.form.Step() {
	case workflow.StepBasicInfo:
		b.WriteString(m.viewBasicInfo())
	case workflow.StepLocation:
		b.WriteString(m.viewLocation())
	case workflow.StepPhotos:
		b.WriteString(m.viewPhotos())
	case workflow.StepReview:
		b.WriteString(m.viewReview())
	case workflow.StepSubmitted:
		b.WriteString(m.styles.Success.Render("Report submitted."))
	case workflow.StepAbandoned:
		b.WriteString(m.styles.Muted.Render("Report abandoned."))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.geocoding || m.form.Submitting() {
			b.WriteString(m.spinner.View() + " ")
		}
		b.WriteString(m.styles.Info.Render(m.status))
	}
	if m.errText != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errText))
	}
	return lipgloss.NewStyle().Padding(1, 2).MaxWidth(m.width).Render(b.String())
}

func (m Wizard) viewBasicInfo() string {
	var b strings.Builder
	for i, row := range m.rows {
		label := m.styles.FieldLabel.Render(row.label)
		if i == m.focus {
			label = m.styles.Selected.Render("› ") + label
		} else {
			label = "  " + label
		}
		b.WriteString(label + " ")
		if row.input != nil {
			b.WriteString(row.input.View())
		} else if row.choice < 0 {
			b.WriteString(m.styles.Muted.Render("‹ select ›"))
		} else {
			b.WriteString(m.styles.Body.Render("‹ " + row.choices[row.choice] + " ›"))
		}
		if msg, ok := m.form.FieldError(row.name); ok {
			b.WriteString("  " + m.styles.FieldError.Render(msg))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("tab/↑↓ move · ←→ cycle · enter continue · ctrl+c cancel"))
	return b.String()
}

func (m Wizard) viewLocation() string {
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Where did you see the animal?") + "\n\n")
	b.WriteString(m.address.View() + "\n")
	if pending, ok := m.resolver.Pending(); ok {
		b.WriteString("\n" + m.styles.Info.Render("  "+pending.Address) + "\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %s, %s (%.5f, %.5f)",
			pending.City, pending.State, pending.Latitude, pending.Longitude)) + "\n")
	}
	draft := m.form.Draft()
	if draft.Address != "" {
		b.WriteString("\n" + m.styles.Success.Render("Confirmed: "+draft.Address) + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("enter resolve/confirm · esc discard · ctrl+p back"))
	return b.String()
}

func (m Wizard) viewPhotos() string {
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Add photos (optional)") + "\n\n")
	for _, path := range m.form.Draft().Photos {
		b.WriteString(m.styles.Body.Render("  • "+path) + "\n")
	}
	b.WriteString(m.photo.View() + "\n")
	b.WriteString("\n" + m.styles.Muted.Render("enter add / continue when empty · ctrl+p back"))
	return b.String()
}

func (m Wizard) viewReview() string {
	d := m.form.Draft()
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Review your report") + "\n\n")
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(m.styles.FieldLabel.Render(label) + " " + m.styles.Body.Render(value) + "\n")
	}
	line("Species", string(d.Species))
	line("Breed", d.Breed)
	line("Gender", string(d.Gender))
	line("Health", string(d.HealthStatus))
	line("Temperament", string(d.Temperament))
	if d.Age > 0 {
		line("Age", strconv.Itoa(d.Age))
	}
	line("Description", d.Description)
	line("Location", fmt.Sprintf("%s, %s, %s", d.Address, d.City, d.State))
	line("Photos", strconv.Itoa(len(d.Photos)))
	b.WriteString("\n" + m.styles.Muted.Render("enter submit · ctrl+p back · ctrl+c cancel"))
	return b.String()
}
