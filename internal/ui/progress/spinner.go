// Package progress shows activity during long-running operations,
// like fetching a PR head or scanning worktrees.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"
)

// setMessage updates the text shown next to the spinner
type setMessage string

// Spinner animates on stderr while work happens on the main goroutine.
// On a non-TTY stderr it degrades to a single printed line.
type Spinner struct {
	program *tea.Program
	msgs    chan string
	done    chan struct{}

	mu      sync.Mutex
	running bool
	message string
	plain   bool
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	msgs    chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextMessage())
}

func (m spinnerModel) nextMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgs
		if !ok {
			return tea.Quit()
		}
		return setMessage(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setMessage:
		m.message = string(msg)
		return m, m.nextMessage()
	case tea.KeyPressMsg:
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// view is the rendered spinner line; View wraps it for the program.
func (m spinnerModel) view() string {
	if m.message == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

func (m spinnerModel) View() tea.View {
	return tea.NewView(m.view())
}

// New creates a spinner with an initial message. It does not start
// animating until Start is called.
func New(message string) *Spinner {
	return &Spinner{
		msgs:    make(chan string, 8),
		done:    make(chan struct{}),
		message: message,
	}
}

// Start begins the animation. Calling Start on a running spinner is a
// no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !isatty.IsTerminal(os.Stderr.Fd()) {
		s.plain = true
		fmt.Fprintln(os.Stderr, s.message)
		close(s.done)
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	model := spinnerModel{
		spinner: sp,
		message: s.message,
		msgs:    s.msgs,
	}

	// Animate on stderr so stdout stays pipeable
	s.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithOutput(os.Stderr))

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// SetMessage updates the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if !s.running || s.plain {
		return
	}

	// Non-blocking: dropping a UI update is fine, stalling the
	// operation behind it is not
	select {
	case s.msgs <- message:
	default:
	}
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	plain := s.plain
	close(s.msgs)
	s.mu.Unlock()

	if plain {
		return
	}

	if s.program != nil {
		s.program.Quit()
	}

	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(os.Stderr, "\r\033[K")
}
