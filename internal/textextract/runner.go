package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

// stderr kept in logs per command; poppler repeats "Syntax Warning" lines on damaged bills
const stderrLogCap = 4 << 10

var ErrCommandTimeout = errors.New("command timed out")

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger  *slog.Logger
	timeout time.Duration // per command; 0 = none
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %v", ErrCommandTimeout, r.timeout, err)
	}

	attrs := []any{
		"file", common.DocumentFromContext(ctx),
		"cmd", name,
		"args", strings.Join(args, " "),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "textextract.exec.failed",
			append(attrs, "error", err, "stderr", truncate(errb.String(), stderrLogCap))...)
	} else {
		r.logger.DebugContext(ctx, "textextract.exec.ok",
			append(attrs, "stdout_bytes", out.Len(), "stderr_bytes", errb.Len())...)
	}
	return out.Bytes(), errb.Bytes(), err
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
