package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

const maxOutputTail = 2000

// CommandEngine runs an engine executable as
// `<command> [args...] <input file> <work dir>` and reads the summary it
// leaves in the work dir.
type CommandEngine struct {
	command string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandEngine creates a command engine. A zero timeout leaves runs
// bounded only by the caller's context.
func NewCommandEngine(command string, args []string, timeout time.Duration, logger *slog.Logger) *CommandEngine {
	return &CommandEngine{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *CommandEngine) Size(ctx context.Context, req *Request) (*Summary, error) {
	if req.WorkDir == "" {
		return nil, fmt.Errorf("%w: no work dir for GHE %s", models.ErrConfiguration, req.GHEID)
	}
	if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}

	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	input := filepath.Join(req.WorkDir, InputFile)
	if err := os.WriteFile(input, body, 0o600); err != nil {
		return nil, fmt.Errorf("writing engine input: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.args...), input, req.WorkDir)
	cmd := exec.CommandContext(ctx, c.command, args...)
	start := time.Now()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: %s for GHE %s: %v: %s",
			models.ErrExternalEngine, c.command, req.GHEID, err, tail(out))
	}
	c.logger.Debug("engine command finished", "ghe", req.GHEID, "elapsed", time.Since(start))

	data, err := os.ReadFile(filepath.Join(req.WorkDir, SummaryFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: engine wrote no %s for GHE %s", models.ErrExternalEngine, SummaryFile, req.GHEID)
		}
		return nil, fmt.Errorf("%w: reading summary: %v", models.ErrExternalEngine, err)
	}
	return ParseSummary(data)
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputTail {
		s = "..." + s[len(s)-maxOutputTail:]
	}
	return s
}
