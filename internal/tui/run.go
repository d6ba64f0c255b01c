package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// RunTUI starts the bubbletea program in alt-screen mode and runs loopFn
// concurrently. It blocks until either the loop finishes or the user quits;
// quitting cancels the context handed to loopFn so an in-flight request
// is abandoned.
func RunTUI(ctx context.Context, loopFn func(ctx context.Context, io IO) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputCh := make(chan inputResult, 1)
	done := make(chan struct{})
	model := NewModel(inputCh)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tuiIO := &TuiIO{
		program: p,
		inputCh: inputCh,
		done:    done,
	}

	var (
		loopErr error
		wg      sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr = loopFn(ctx, tuiIO)
		// Signal the TUI that the loop is done
		p.Send(loopDoneMsg{err: loopErr})
	}()

	_, runErr := p.Run()
	close(done)
	cancel()

	// Wait for the loop goroutine to finish after TUI exits
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return errors.Wrap(runErr, "TUI error")
	}
	return loopErr
}
