package press

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// workspace is the run-scoped directory holding every intermediate artifact:
// merged groups and compressed candidates. It is created at run start and
// removed at run end regardless of success or failure.
type workspace struct {
	dir string
}

// newWorkspace creates a uniquely named temporary directory for this run.
func newWorkspace() (*workspace, error) {
	dir, mkdirErr := os.MkdirTemp("", fmt.Sprintf("sheetpress-%s-", uuid.NewString()))
	if mkdirErr != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", mkdirErr)
	}

	return &workspace{dir: dir}, nil
}

// path returns the absolute path for a named artifact inside the workspace.
func (ws *workspace) path(name string) string {
	return filepath.Join(ws.dir, name)
}

// cleanup removes the workspace and everything in it.
func (ws *workspace) cleanup(log *logger.Logger) {
	removeErr := os.RemoveAll(ws.dir)
	if removeErr != nil {
		log.Warn("Failed to remove workspace '%s': %v", ws.dir, removeErr)
	}
}
