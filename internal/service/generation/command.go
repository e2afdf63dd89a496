package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"redspec/internal/domain"
)

// CommandGenerator runs an external program per request. The prompt is
// written to its stdin and the reply read from stdout, optionally wrapped in
// a JSON envelope (see RecoverOutput).
type CommandGenerator struct {
	command string
	shell   string
}

// NewCommandGenerator creates a generator that runs command through sh -c
func NewCommandGenerator(command string) (*CommandGenerator, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("GENERATOR_COMMAND environment variable not set")
	}
	return &CommandGenerator{command: command, shell: "sh"}, nil
}

// Name returns the provider name
func (g *CommandGenerator) Name() string {
	return "command"
}

// Generate runs the command once. The context deadline kills the process.
func (g *CommandGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	cmd := exec.CommandContext(ctx, g.shell, "-c", g.command)
	cmd.Stdin = strings.NewReader(req.Prompt())
	// Children that inherit stdout must not hold Run open after a kill
	cmd.WaitDelay = 2 * time.Second
	if req.Model != "" {
		cmd.Env = append(cmd.Environ(), "PRD_MODEL="+req.Model)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, domain.NewGenerationError(domain.GenerationUnavailable, g.Name(), "generator command not found", err)
		}
		ge := domain.NewGenerationError(domain.GenerationFailed, g.Name(), "generator command failed", err)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			ge.Details = s
		}
		return nil, ge
	}

	output, ok, msg := RecoverOutput(stdout.String())
	if !ok {
		if msg == "" {
			msg = "generator reported failure"
		}
		return nil, domain.NewGenerationError(domain.GenerationFailed, g.Name(), msg, nil)
	}

	return &Response{
		Text:     output,
		Provider: g.Name(),
		Model:    req.Model,
	}, nil
}
