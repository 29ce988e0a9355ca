// internal/shell/shell.go
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/config"
	"github.com/xkilldash9x/matrixctl/internal/console"
	"github.com/xkilldash9x/matrixctl/internal/workflow"
)

const unknownCommand = "Unknown command. Type 'help' for available commands."

// handler runs one verb. Returning an error prints it; it never ends the loop.
type handler func(ctx context.Context, cmd Command) error

// Shell reads operator commands and runs them against one browser session.
type Shell struct {
	session   *browser.Session
	directory workflow.PatientDirectory
	runner    *workflow.Runner
	out       *console.Console
	cfg       *config.Config
	logger    *zap.Logger

	handlers map[string]handler
	verbs    []string

	now       func() time.Time
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// New wires a shell. The session is launched lazily by the first command that needs a page.
func New(session *browser.Session, directory workflow.PatientDirectory, out *console.Console, cfg *config.Config, logger *zap.Logger) *Shell {
	s := &Shell{
		session:   session,
		directory: directory,
		runner:    workflow.NewRunner(session.Page, directory, out, cfg, logger),
		out:       out,
		cfg:       cfg,
		logger:    logger.Named("shell"),
		now:       time.Now,
		writeFile: os.WriteFile,
	}
	s.setHandlers(s.defaultHandlers())
	return s
}

func (s *Shell) setHandlers(h map[string]handler) {
	s.handlers = h
	s.verbs = s.verbs[:0]
	for verb := range h {
		s.verbs = append(s.verbs, verb)
	}
	sort.Strings(s.verbs)
}

// Run reads lines from in until quit, EOF, or ctx is canceled, then closes the session.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	defer func() {
		if err := s.session.Close(); err != nil {
			s.out.Error(fmt.Errorf("failed to close browser: %w", err))
		}
	}()

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	s.out.Heading("Interactive MatrixCare browser control started!")
	s.printHelp()

	for {
		s.out.Prompt("\n" + s.cfg.Shell.Prompt)
		select {
		case <-ctx.Done():
			s.out.Println("")
			s.out.Info("Shutting down...")
			return nil
		case line, ok := <-lines:
			if !ok {
				s.out.Println("")
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read command: %w", err)
				}
				return nil
			}
			if quit := s.Dispatch(ctx, line); quit {
				s.out.Info("Closing browser...")
				return nil
			}
		}
	}
}

// readLines feeds scanned lines to a channel until EOF or done is closed.
// The returned error channel receives exactly one value once the channel closes.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// Dispatch runs one line. It reports whether the operator asked to quit.
func (s *Shell) Dispatch(ctx context.Context, line string) (quit bool) {
	line = trimLine(line)
	if line == "" {
		return false
	}

	cmd := Parse(line, s.verbs)
	if cmd.Verb == "" {
		s.out.Println(unknownCommand)
		return false
	}
	if cmd.Verb == "quit" || cmd.Verb == "exit" {
		return true
	}

	s.logger.Debug("Dispatching", zap.String("verb", cmd.Verb), zap.Int("args", len(cmd.Args)))
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Command panicked", zap.String("verb", cmd.Verb), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			s.out.Errorf("command %q panicked: %v", cmd.Verb, r)
			quit = false
		}
	}()

	if err := s.handlers[cmd.Verb](ctx, cmd); err != nil {
		s.logger.Debug("Command failed", zap.String("verb", cmd.Verb), zap.Error(err))
		s.out.Error(err)
	}
	return false
}
