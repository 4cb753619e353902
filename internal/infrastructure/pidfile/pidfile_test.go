package pidfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/infrastructure/pidfile"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "haulerd.pid")
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
}

func TestAcquire_ReplacesGarbageFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "haulerd.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	require.NoError(t, err)
}

func TestAcquire_FailsWhenAnotherProcessOwnsFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "haulerd.pid")
	parent := os.Getppid()
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", parent)), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	var running *pidfile.ErrAlreadyRunning
	require.ErrorAs(t, err, &running)
	assert.Equal(t, parent, running.PID)
}

func TestRelease_RemovesOwnFileOnly(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "haulerd.pid")
	pf := pidfile.New(path)
	require.NoError(t, pf.Acquire())

	// Act
	err := pf.Release()

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.NoError(t, pf.Release())
}
