package main

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var errInterrupted = errors.New("interrupted")

type doneMsg[T any] struct {
	val T
	err error
}

// spinnerModel shows a spinner while work runs and quits when it finishes.
type spinnerModel[T any] struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	cancel  context.CancelFunc
	result  doneMsg[T]
	done    bool
}

func (m spinnerModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m spinnerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg[T]:
		m.result = msg
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			m.result.err = errInterrupted
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m spinnerModel[T]) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + dimStyle.Render(m.label) + "\n"
}

// withSpinner runs fn behind a spinner on a terminal and plainly otherwise.
func withSpinner[T any](ctx context.Context, label string, fn func(context.Context) (T, error)) (T, error) {
	if !isInteractive() {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle))

	m := spinnerModel[T]{
		spinner: s,
		label:   label,
		cancel:  cancel,
		work: func() tea.Msg {
			v, err := fn(ctx)
			return doneMsg[T]{val: v, err: err}
		},
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		var zero T
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return zero, errInterrupted
		}
		return zero, err
	}

	m, ok := final.(spinnerModel[T])
	if !ok {
		var zero T
		return zero, errors.New("spinner: unexpected model")
	}

	return m.result.val, m.result.err
}
