package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hypoavg/internal/fsutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTrigger struct{ n int32 }

func (c *countingTrigger) Trigger()     { atomic.AddInt32(&c.n, 1) }
func (c *countingTrigger) count() int32 { return atomic.LoadInt32(&c.n) }

func startWatcher(t *testing.T, root string) *countingTrigger {
	t.Helper()
	trigger := &countingTrigger{}
	w, err := NewWatcher(root, trigger, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Stop()
	})
	// give the watcher time to register the tree
	time.Sleep(100 * time.Millisecond)
	return trigger
}

func TestWatcher_NewObservationTriggers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hyp", "lutheran"), 0755))
	trigger := startWatcher(t, root)

	writeObservation(t, root, "hyp", "lutheran", "a.json", obs(10, 20))

	require.Eventually(t, func() bool { return trigger.count() > 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_NewVariantDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hyp"), 0755))
	trigger := startWatcher(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "hyp", "catholic"), 0755))
	require.Eventually(t, func() bool { return trigger.count() > 0 }, 3*time.Second, 20*time.Millisecond)

	// let the new directory be registered before writing into it
	time.Sleep(100 * time.Millisecond)
	before := trigger.count()
	writeObservation(t, root, "hyp", "catholic", "a.json", obs(10, 20))
	require.Eventually(t, func() bool { return trigger.count() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresPublishedAverages(t *testing.T) {
	root := t.TempDir()
	variant := filepath.Join(root, "hyp", "lutheran")
	require.NoError(t, os.MkdirAll(variant, 0755))
	trigger := startWatcher(t, root)

	require.NoError(t, fsutil.WriteFileAtomic(filepath.Join(variant, AverageFileName), []byte("{}\n"), 0644))
	require.NoError(t, fsutil.WriteFileAtomic(filepath.Join(root, "hyp", AverageFileName), []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(variant, "notes.txt"), []byte("x"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, trigger.count())
}

func TestWatcher_Depth(t *testing.T) {
	w := &Watcher{root: "/data"}
	assert.Equal(t, 0, w.depth("/data"))
	assert.Equal(t, 1, w.depth("/data/hyp"))
	assert.Equal(t, 2, w.depth("/data/hyp/variant"))
	assert.Equal(t, 3, w.depth("/data/hyp/variant/a.json"))
	assert.Equal(t, 0, w.depth("/elsewhere/a.json"))
}
