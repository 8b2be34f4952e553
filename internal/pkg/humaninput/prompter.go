// Package humaninput asks the human a question and blocks until an answer
// arrives. An answer of "" means the human gave no input.
package humaninput

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

type Prompter interface {
	Prompt(ctx context.Context, title, question string) (string, error)
}

// LinePrompter reads one line per question. It suits pipes and plain
// terminals.
type LinePrompter struct {
	out   io.Writer
	lines chan lineResult
	once  sync.Once
	in    io.Reader
}

type lineResult struct {
	line string
	err  error
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out, lines: make(chan lineResult)}
}

// start spawns the single reader goroutine; it stays parked on the
// underlying reader when a prompt is cancelled and hands its line to the
// next prompt.
func (p *LinePrompter) start() {
	go func() {
		reader := bufio.NewReader(p.in)
		for {
			line, err := reader.ReadString('\n')
			p.lines <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
			if err != nil {
				return
			}
		}
	}()
}

func (p *LinePrompter) Prompt(ctx context.Context, title, question string) (string, error) {
	p.once.Do(p.start)
	if _, err := fmt.Fprintf(p.out, "%s\n%s\n> ", title, question); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", nil
		}
		if res.err != nil && res.err != io.EOF {
			slog.Error("LinePrompter: failed to read answer", "error", res.err)
			return "", res.err
		}
		if res.err == io.EOF {
			// Keep later prompts from blocking forever on a drained reader.
			close(p.lines)
		}
		return strings.TrimSpace(res.line), nil
	}
}

// ScriptedPrompter replays canned answers in order, then answers "".
type ScriptedPrompter struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

func (p *ScriptedPrompter) Prompt(ctx context.Context, _ string, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// Asked returns the questions received so far.
func (p *ScriptedPrompter) Asked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}
