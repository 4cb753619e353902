package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire when a live process owns the file
type ErrAlreadyRunning struct {
	PID int
}

func (e *ErrAlreadyRunning) Error() string {
	return fmt.Sprintf("haulerd is already running (PID %d)", e.PID)
}

// PIDFile keeps a single daemon instance per PID file path
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. A file left by a dead process, or one that
// does not hold a PID, is replaced.
func (p *PIDFile) Acquire() error {
	pid, err := p.read()
	switch {
	case err == nil && pid != os.Getpid() && isProcessRunning(pid):
		return &ErrAlreadyRunning{PID: pid}
	case err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, strconv.ErrSyntax):
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the file if this process still owns it
func (p *PIDFile) Release() error {
	pid, err := p.read()
	if err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isProcessRunning sends signal 0, which only checks that pid exists
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists but owned by someone else
		return true
	default:
		return false
	}
}
