package press

import (
	"context"
	"os/exec"
)

// CommandExecutor defines an interface for running external commands.
// This abstraction is crucial for enabling unit tests to mock command execution.
type CommandExecutor interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunCombined executes a command and returns its combined standard output
	// and standard error.
	RunCombined(ctx context.Context, name string, args ...string) ([]byte, error)
}

// defaultExecutor implements the CommandExecutor interface using the standard
// os/exec package. This is the implementation used in the production
// application.
type defaultExecutor struct{}

// Run is the production implementation for executing a command.
func (executor *defaultExecutor) Run(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// RunCombined is the production implementation for executing a command and
// capturing all output.
func (executor *defaultExecutor) RunCombined(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ghostscriptCandidates lists the binary names probed for, in order. The
// Windows console binaries come after the plain Unix name.
var ghostscriptCandidates = []string{"gs", "gswin64c", "gswin32c"}

// locateGhostscript probes for a working Ghostscript binary and returns the
// first candidate that answers --version. It returns the empty string when
// none does; the caller decides whether to degrade to combine-only mode.
func (processor *Processor) locateGhostscript(ctx context.Context) string {
	for _, candidate := range ghostscriptCandidates {
		_, execErr := processor.executor.Run(ctx, candidate, "--version")
		if execErr == nil {
			return candidate
		}
	}

	return ""
}
