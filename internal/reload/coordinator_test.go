package reload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestCoordinator_SwapsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.txt")
	writeFile(t, path, "v1")

	var observed atomic.Value
	coord := New(path, func(p string) (interface{}, error) {
		data, err := os.ReadFile(p)
		return string(data), err
	}, nil)
	coord.Seed("v1")

	coord.Enable(20*time.Millisecond, func(v interface{}) {
		observed.Store(v)
	})
	defer coord.Disable()

	time.Sleep(5 * time.Millisecond)
	writeFile(t, path, "v2")

	assert.Eventually(t, func() bool {
		v, ok := observed.Load().(string)
		return ok && v == "v2"
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "v2", coord.Value())
}

func TestCoordinator_LoadErrorRetainsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.txt")
	writeFile(t, path, "good")

	var errCount atomic.Int32
	coord := New(path, func(p string) (interface{}, error) {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if string(data) == "bad" {
			return nil, fmt.Errorf("validation failed")
		}
		return string(data), nil
	}, func(error) { errCount.Add(1) })
	coord.Seed("good")

	coord.Enable(10*time.Millisecond, nil)
	defer coord.Disable()

	writeFile(t, path, "bad")

	assert.Eventually(t, func() bool { return errCount.Load() > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "good", coord.Value())
}

func TestCoordinator_DisableIsIdempotentAndStopsPromptly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.txt")
	writeFile(t, path, "v1")

	coord := New(path, func(p string) (interface{}, error) { return "v1", nil }, nil)
	coord.Enable(10*time.Millisecond, nil)

	coord.Disable()
	coord.Disable() // second call must not panic or block
}
