package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirsentry/dirsentry/internal/registry"
	"github.com/dirsentry/dirsentry/internal/resolver"
)

func newClassifier(t *testing.T, root string) *Classifier {
	t.Helper()
	return New(root, registry.New(), resolver.New(resolver.DefaultOptions()), DefaultPlaceholder)
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{"create", KindCreate, "CREATE"},
		{"remove", KindRemove, "REMOVE"},
		{"other", KindOther, "OTHER"},
		{"error", KindError, "ERROR"},
		{"unknown", Kind(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "created", TypeCreated.String())
	assert.Equal(t, "moved", TypeMoved.String())
	assert.Equal(t, "removed", TypeRemoved.String())
	assert.Equal(t, "watch_error", TypeWatchError.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestApply_TopLevelCreate(t *testing.T) {
	// Given: a real top-level directory appears
	root := t.TempDir()
	beta := filepath.Join(root, "Beta")
	mkdir(t, beta)
	c := newClassifier(t, root)

	// When: the create notification arrives
	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{beta}})

	// Then: exactly one Created event, and the path is tracked
	require.Len(t, events, 1)
	assert.Equal(t, TypeCreated, events[0].Type)
	assert.Equal(t, beta, events[0].Path)
	assert.True(t, c.Registry().Contains(beta))
}

func TestApply_PlaceholderCreateSquelched(t *testing.T) {
	// Given: a freshly created default-named folder
	root := t.TempDir()
	placeholder := filepath.Join(root, DefaultPlaceholder)
	mkdir(t, placeholder)
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{placeholder}})

	// Then: no report, but the registry still tracks it
	assert.Empty(t, events)
	assert.True(t, c.Registry().Contains(placeholder))
}

func TestApply_CreateOfFileIgnored(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{file}})

	assert.Empty(t, events)
	assert.False(t, c.Registry().Contains(file))
}

func TestApply_NestedCreateIgnored(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "sub", "inner")
	mkdir(t, nested)
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{nested}})

	assert.Empty(t, events)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestApply_CreateOfVanishedPathIgnored(t *testing.T) {
	// The path disappeared again before classification could stat it
	root := t.TempDir()
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{filepath.Join(root, "gone")}})

	assert.Empty(t, events)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestApply_TrueDeletion(t *testing.T) {
	// Given: a tracked directory deleted with no same-named survivor
	root := t.TempDir()
	alpha := filepath.Join(root, "Alpha")
	c := newClassifier(t, root)
	c.Registry().Insert(alpha)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{alpha}})

	require.Len(t, events, 1)
	assert.Equal(t, TypeRemoved, events[0].Type)
	assert.Equal(t, alpha, events[0].Path)
	assert.False(t, c.Registry().Contains(alpha))
}

func TestApply_PlaceholderRemoveSquelched(t *testing.T) {
	root := t.TempDir()
	placeholder := filepath.Join(root, DefaultPlaceholder)
	c := newClassifier(t, root)
	c.Registry().Insert(placeholder)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{placeholder}})

	// Then: silent, but the registry entry is still dropped
	assert.Empty(t, events)
	assert.False(t, c.Registry().Contains(placeholder))
}

func TestApply_MoveToNestedLocation(t *testing.T) {
	// Given: Alpha tracked at top level, now living under Sub/
	root := t.TempDir()
	alpha := filepath.Join(root, "Alpha")
	moved := filepath.Join(root, "Sub", "Alpha")
	mkdir(t, moved)
	c := newClassifier(t, root)
	c.Registry().Insert(alpha)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{alpha}})

	// Then: one Moved event; the directory left top level, so tracking drops it
	require.Len(t, events, 1)
	assert.Equal(t, TypeMoved, events[0].Type)
	assert.Equal(t, "Alpha", events[0].OldName)
	assert.Equal(t, moved, events[0].NewPath)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestApply_TopLevelSurvivorKeepsTracking(t *testing.T) {
	// A remove for a tracked directory while a same-named directory sits at
	// top level resolves as a move, and the survivor stays tracked. This is
	// also the accepted false-positive of the heuristic: a spurious remove
	// with the directory still in place reports a move to itself.
	root := t.TempDir()
	alpha := filepath.Join(root, "Alpha")
	mkdir(t, alpha)
	c := newClassifier(t, root)
	c.Registry().Insert(alpha)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{alpha}})

	require.Len(t, events, 1)
	assert.Equal(t, TypeMoved, events[0].Type)
	assert.Equal(t, alpha, events[0].NewPath)
	assert.True(t, c.Registry().Contains(alpha))
	assert.Equal(t, 1, c.Registry().Len())
}

func TestApply_PlaceholderMoveNeverSquelched(t *testing.T) {
	// Given: a placeholder-named directory that moved
	root := t.TempDir()
	old := filepath.Join(root, DefaultPlaceholder)
	moved := filepath.Join(root, "Sub", DefaultPlaceholder)
	mkdir(t, moved)
	c := newClassifier(t, root)
	c.Registry().Insert(old)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{old}})

	// Then: the move is reported despite the noise policy
	require.Len(t, events, 1)
	assert.Equal(t, TypeMoved, events[0].Type)
	assert.Equal(t, DefaultPlaceholder, events[0].OldName)
}

func TestApply_UnknownRemoveIgnored(t *testing.T) {
	root := t.TempDir()
	c := newClassifier(t, root)
	c.Registry().Insert(filepath.Join(root, "Alpha"))

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{filepath.Join(root, "never-tracked")}})

	assert.Empty(t, events)
	assert.Equal(t, 1, c.Registry().Len())
}

func TestApply_OtherKindIgnored(t *testing.T) {
	root := t.TempDir()
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindOther, Paths: []string{filepath.Join(root, "x")}})

	assert.Empty(t, events)
}

func TestApply_ErrorKind(t *testing.T) {
	root := t.TempDir()
	c := newClassifier(t, root)
	cause := errors.New("watch queue overflowed")

	events := c.Apply(context.Background(), RawEvent{Kind: KindError, Err: cause})

	require.Len(t, events, 1)
	assert.Equal(t, TypeWatchError, events[0].Type)
	assert.Equal(t, cause, events[0].Err)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestApply_MultiplePathsProcessedInOrder(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	mkdir(t, a)
	mkdir(t, b)
	c := newClassifier(t, root)

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{a, b}})

	require.Len(t, events, 2)
	assert.Equal(t, a, events[0].Path)
	assert.Equal(t, b, events[1].Path)
}

func TestApply_EmptyPlaceholderDisablesSquelch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, DefaultPlaceholder)
	mkdir(t, dir)
	c := New(root, registry.New(), resolver.New(resolver.DefaultOptions()), "")

	events := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{dir}})

	require.Len(t, events, 1)
	assert.Equal(t, TypeCreated, events[0].Type)
}

func TestRun_DrainsChannelUntilClose(t *testing.T) {
	// End-to-end: create Beta, then delete it
	root := t.TempDir()
	beta := filepath.Join(root, "Beta")
	mkdir(t, beta)
	c := newClassifier(t, root)

	ch := make(chan RawEvent, 2)
	ch <- RawEvent{Kind: KindCreate, Paths: []string{beta}}
	close(ch)

	var got []Event
	err := c.Run(context.Background(), ch, func(ev Event) { got = append(got, ev) })

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, TypeCreated, got[0].Type)
	assert.Equal(t, []string{beta}, c.Registry().Paths())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	c := newClassifier(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx, make(chan RawEvent), func(Event) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScenario_MoveDetection(t *testing.T) {
	// Seeded with Alpha at top level; the tree now holds Sub/Alpha and the
	// remove notification for the old path arrives on its own, unpaired
	// with any create for the destination.
	root := t.TempDir()
	alpha := filepath.Join(root, "Alpha")
	mkdir(t, filepath.Join(root, "Sub", "Alpha"))
	c := newClassifier(t, root)
	c.Registry().Insert(alpha)

	events := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{alpha}})

	require.Len(t, events, 1)
	assert.Equal(t, TypeMoved, events[0].Type)
	assert.Equal(t, "Alpha", events[0].OldName)
	assert.Equal(t, filepath.Join(root, "Sub", "Alpha"), events[0].NewPath)
	assert.Empty(t, c.Registry().Paths())
}

func TestScenario_CreateThenRemoveLifecycle(t *testing.T) {
	root := t.TempDir()
	beta := filepath.Join(root, "Beta")
	mkdir(t, beta)
	c := newClassifier(t, root)

	created := c.Apply(context.Background(), RawEvent{Kind: KindCreate, Paths: []string{beta}})
	require.Len(t, created, 1)
	assert.Equal(t, []string{beta}, c.Registry().Paths())

	require.NoError(t, os.Remove(beta))
	removed := c.Apply(context.Background(), RawEvent{Kind: KindRemove, Paths: []string{beta}})
	require.Len(t, removed, 1)
	assert.Equal(t, TypeRemoved, removed[0].Type)
	assert.Empty(t, c.Registry().Paths())
}
