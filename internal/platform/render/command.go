package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smart-card/smartcard-api/internal/platform/filestore"
)

// Command renders by running a wkhtmltoimage-compatible binary:
//
//	<bin> [args...] --quiet --format png --width <width> <html> <out>
type Command struct {
	bin     string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommand parses commandLine (binary plus optional leading arguments).
func NewCommand(commandLine string, timeout time.Duration, logger *slog.Logger) (*Command, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("render command cannot be empty")
	}

	return &Command{
		bin:     fields[0],
		args:    fields[1:],
		timeout: timeout,
		logger:  logger.With("component", "command_renderer", "bin", fields[0]),
	}, nil
}

// Render implements Renderer. The binary writes to a scratch file which is
// then published at imagePath.
func (c *Command) Render(ctx context.Context, htmlPath, imagePath string, width int) error {
	if _, err := os.Stat(htmlPath); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	scratchDir, err := os.MkdirTemp("", "smartcard-render-*")
	if err != nil {
		return fmt.Errorf("%w: scratch dir: %v", ErrRenderFailed, err)
	}
	defer func() { _ = os.RemoveAll(scratchDir) }()
	scratch := filepath.Join(scratchDir, "out.png")

	args := append(append([]string{}, c.args...),
		"--quiet",
		"--format", "png",
		"--width", strconv.Itoa(width),
		htmlPath,
		scratch,
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		c.logger.ErrorContext(ctx, "render command failed",
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()))
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	out, err := os.Open(scratch)
	if err != nil {
		return fmt.Errorf("%w: command produced no image: %v", ErrRenderFailed, err)
	}
	defer func() { _ = out.Close() }()

	if err := filestore.WriteExclusive(imagePath, out); err != nil {
		return fmt.Errorf("%w: write image: %w", ErrRenderFailed, err)
	}

	c.logger.DebugContext(ctx, "html rendered",
		"image", imagePath,
		"width", width,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
