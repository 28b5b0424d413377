// Command play is a terminal client for the reaction game. It runs the
// six-lane session against the real monotonic clock and submits completed
// scores to a reflex server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/okian/reflex/internal/domain/clock"
	"github.com/okian/reflex/internal/domain/game"
	"github.com/okian/reflex/internal/domain/types"
	"github.com/okian/reflex/internal/domain/validate"
)

const (
	barWidth      = 30
	submitTimeout = 5 * time.Second
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	laneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	barFillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

type phase int

const (
	phaseName phase = iota
	phaseIdle
	phasePlaying
	phaseDone
	phaseSubmitting
	phaseSubmitted
)

// Session events cross from scheduler goroutines into the tea loop over a
// buffered channel; the model drains it with waitForEvent.
type (
	stimulusMsg struct{ lane int }
	progressMsg struct {
		lane     int
		progress float64
	}
	trialDoneMsg struct{ trial game.TrialResult }
	completedMsg struct{ result game.SessionResult }
	failedMsg    struct{ result game.SessionResult }
	submittedMsg struct {
		outcome types.SubmitOutcome
		err     error
	}
)

type model struct {
	serverURL string
	clientTag string

	name    string
	phase   phase
	events  chan tea.Msg
	sess    *game.Session
	monitor *game.FocusMonitor
	focusCh chan bool

	lane     int
	progress float64
	trials   []game.TrialResult
	result   game.SessionResult

	outcome   types.SubmitOutcome
	submitErr error
}

func newModel(serverURL string) *model {
	return &model{
		serverURL: strings.TrimRight(serverURL, "/"),
		clientTag: uuid.NewString(),
		phase:     phaseName,
	}
}

// startSession builds a fresh session on the real clock and wires its
// callbacks into the event channel.
func (m *model) startSession() tea.Cmd {
	m.events = make(chan tea.Msg, 64)
	m.lane = 0
	m.progress = 0
	m.trials = nil

	events := m.events
	m.sess = game.NewSession(
		clock.NewMonotonic(),
		clock.NewTimerScheduler(),
		game.WithCallbacks(game.Callbacks{
			OnStimulus: func(lane int) { events <- stimulusMsg{lane: lane} },
			OnProgress: func(lane int, p float64) {
				select {
				case events <- progressMsg{lane: lane, progress: p}:
				default: // drop frames the UI has not drained yet
				}
			},
			OnTrialDone: func(tr game.TrialResult) { events <- trialDoneMsg{trial: tr} },
			OnCompleted: func(res game.SessionResult) { events <- completedMsg{result: res} },
			OnFailed:    func(res game.SessionResult) { events <- failedMsg{result: res} },
		}),
	)

	m.focusCh = make(chan bool, 1)
	focusCh := m.focusCh
	m.monitor = game.WatchFocus(game.FocusSourceFunc(func(fn func(visible bool)) clock.CancelFunc {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case visible := <-focusCh:
					fn(visible)
				}
			}
		}()
		return func() { close(done) }
	}), m.sess)

	m.phase = phasePlaying
	if err := m.sess.Start(); err != nil {
		m.submitErr = err
		m.phase = phaseDone
	}
	return m.waitForEvent()
}

func (m *model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg { return <-events }
}

func (m *model) submit() tea.Cmd {
	body, url := struct {
		DisplayName   string    `json:"displayName"`
		AverageMs     float64   `json:"averageMs"`
		ReactionTimes []float64 `json:"reactionTimes"`
		ClientTag     string    `json:"clientTag"`
	}{
		DisplayName: m.name,
		AverageMs:   m.result.AverageMs,
		ClientTag:   m.clientTag,
	}, m.serverURL+"/scores"
	for _, tr := range m.result.Trials {
		body.ReactionTimes = append(body.ReactionTimes, tr.ReactionMs)
	}

	return func() tea.Msg {
		payload, err := json.Marshal(body)
		if err != nil {
			return submittedMsg{err: err}
		}
		client := &http.Client{Timeout: submitTimeout}
		resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
		if err != nil {
			return submittedMsg{err: err}
		}
		defer resp.Body.Close()

		var outcome types.SubmitOutcome
		if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
			return submittedMsg{err: fmt.Errorf("decode response: %w", err)}
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
			return submittedMsg{err: fmt.Errorf("server returned %s", resp.Status)}
		}
		return submittedMsg{outcome: outcome}
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.BlurMsg:
		if m.phase == phasePlaying && m.sess != nil {
			select {
			case m.focusCh <- false:
			default:
			}
		}
		return m, nil

	case stimulusMsg:
		m.lane = msg.lane
		m.progress = 0
		return m, m.waitForEvent()

	case progressMsg:
		m.lane = msg.lane
		m.progress = msg.progress
		return m, m.waitForEvent()

	case trialDoneMsg:
		m.trials = append(m.trials, msg.trial)
		m.progress = 0
		return m, m.waitForEvent()

	case completedMsg:
		m.result = msg.result
		m.phase = phaseDone
		m.stopMonitor()
		return m, nil

	case failedMsg:
		m.result = msg.result
		m.phase = phaseDone
		m.stopMonitor()
		return m, nil

	case submittedMsg:
		m.outcome = msg.outcome
		m.submitErr = msg.err
		m.phase = phaseSubmitted
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || (key == "q" && m.phase != phaseName) {
		m.stopMonitor()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseName:
		switch key {
		case "enter":
			if len(m.name) >= validate.MinNameLen {
				m.phase = phaseIdle
			}
		case "backspace":
			if len(m.name) > 0 {
				m.name = m.name[:len(m.name)-1]
			}
		default:
			if len(msg.Runes) == 1 && len(m.name) < validate.MaxNameLen {
				r := msg.Runes[0]
				if r == '_' || (r >= '0' && r <= '9') ||
					(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
					m.name += string(r)
				}
			}
		}
	case phaseIdle:
		if key == " " || key == "enter" {
			return m, m.startSession()
		}
	case phasePlaying:
		if key == " " {
			m.sess.Input()
			return m, nil
		}
	case phaseDone:
		if key == "s" && m.result.Terminal == game.TerminalCompleted {
			m.phase = phaseSubmitting
			return m, m.submit()
		}
		if key == "r" {
			return m, m.startSession()
		}
	case phaseSubmitted:
		if key == "r" {
			return m, m.startSession()
		}
	}
	return m, nil
}

func (m *model) stopMonitor() {
	if m.monitor != nil {
		m.monitor.Stop()
		m.monitor = nil
	}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("REFLEX") + "\n\n")

	switch m.phase {
	case phaseName:
		b.WriteString("Pick a display name (3-20 letters, digits, underscores):\n\n")
		b.WriteString("  > " + m.name + "▌\n\n")
		b.WriteString(hintStyle.Render("enter to confirm, ctrl+c to quit"))

	case phaseIdle:
		b.WriteString(fmt.Sprintf("Ready, %s.\n\n", m.name))
		b.WriteString("Six lanes. Wait for the bar, hit space as fast as you can.\n")
		b.WriteString("Pressing early fails the whole run.\n\n")
		b.WriteString(hintStyle.Render("space to start, q to quit"))

	case phasePlaying:
		b.WriteString(m.viewLanes())
		b.WriteString("\n" + hintStyle.Render("space to react, q to give up"))

	case phaseDone:
		b.WriteString(m.viewResult())

	case phaseSubmitting:
		b.WriteString("Submitting score...\n")

	case phaseSubmitted:
		b.WriteString(m.viewSubmitted())
	}

	return b.String() + "\n"
}

func (m *model) viewLanes() string {
	var b strings.Builder
	for i := 0; i < game.LaneCount; i++ {
		label := fmt.Sprintf("lane %d ", i+1)
		switch {
		case i < len(m.trials):
			b.WriteString(laneStyle.Render(label) +
				resultStyle.Render(fmt.Sprintf("%8.2f ms", m.trials[i].ReactionMs)) + "\n")
		case i == m.lane && m.progress > 0:
			fill := int(m.progress * barWidth)
			bar := barFillStyle.Render(strings.Repeat("█", fill)) +
				strings.Repeat("░", barWidth-fill)
			b.WriteString(activeStyle.Render(label) + bar + "\n")
		case i == m.lane:
			b.WriteString(activeStyle.Render(label) + hintStyle.Render("wait for it...") + "\n")
		default:
			b.WriteString(laneStyle.Render(label) + "\n")
		}
	}
	return b.String()
}

func (m *model) viewResult() string {
	var b strings.Builder
	switch m.result.Terminal {
	case game.TerminalCompleted:
		b.WriteString(resultStyle.Render(
			fmt.Sprintf("Done! Average: %.2f ms\n\n", m.result.AverageMs)))
		for _, tr := range m.result.Trials {
			b.WriteString(fmt.Sprintf("  lane %d  %8.2f ms\n", tr.Lane+1, tr.ReactionMs))
		}
		b.WriteString("\n" + hintStyle.Render("s to submit, r to retry, q to quit"))
	case game.TerminalFalseStart:
		b.WriteString(failStyle.Render("False start!") +
			fmt.Sprintf(" You pressed before the stimulus on lane %d.\n\n", m.result.FailedAtLane+1))
		b.WriteString(hintStyle.Render("r to retry, q to quit"))
	case game.TerminalTimeout:
		b.WriteString(failStyle.Render("Too slow!") +
			fmt.Sprintf(" Lane %d timed out.\n\n", m.result.FailedAtLane+1))
		b.WriteString(hintStyle.Render("r to retry, q to quit"))
	default:
		b.WriteString(failStyle.Render("Run aborted.") + "\n\n")
		b.WriteString(hintStyle.Render("r to retry, q to quit"))
	}
	return b.String()
}

func (m *model) viewSubmitted() string {
	var b strings.Builder
	switch {
	case m.submitErr != nil:
		b.WriteString(failStyle.Render("Submission failed: ") + m.submitErr.Error() + "\n\n")
	case !m.outcome.Accepted:
		b.WriteString(failStyle.Render("Score rejected:") + "\n")
		for _, reason := range m.outcome.Reasons {
			b.WriteString("  - " + reason + "\n")
		}
		b.WriteString("\n")
	default:
		b.WriteString(resultStyle.Render(
			fmt.Sprintf("Submitted! You are rank %d all time.\n\n", m.outcome.Rank)))
	}
	b.WriteString(hintStyle.Render("r to play again, q to quit"))
	return b.String()
}

func main() {
	serverURL := flag.String("server", "http://localhost:9090", "reflex server base URL")
	flag.Parse()

	p := tea.NewProgram(newModel(*serverURL), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "play:", err)
		os.Exit(1)
	}
}
