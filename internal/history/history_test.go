package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirsentry/dirsentry/internal/classify"
)

func TestLog_RecordAndRecent(t *testing.T) {
	log, err := New(10)
	require.NoError(t, err)

	log.Record(classify.Event{Type: classify.TypeCreated, Path: "/w/a"})
	log.Record(classify.Event{Type: classify.TypeRemoved, Path: "/w/a"})

	entries := log.Recent()
	require.Len(t, entries, 2)
	assert.Equal(t, classify.TypeCreated, entries[0].Event.Type)
	assert.Equal(t, classify.TypeRemoved, entries[1].Event.Type)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
}

func TestLog_EvictsOldestBeyondCapacity(t *testing.T) {
	log, err := New(3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		log.Record(classify.Event{Type: classify.TypeCreated, Path: fmt.Sprintf("/w/d%d", i)})
	}

	entries := log.Recent()
	require.Len(t, entries, 3)
	assert.Equal(t, "/w/d2", entries[0].Event.Path)
	assert.Equal(t, "/w/d4", entries[2].Event.Path)
}

func TestLog_CountsSurviveEviction(t *testing.T) {
	log, err := New(2)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		log.Record(classify.Event{Type: classify.TypeCreated})
	}
	log.Record(classify.Event{Type: classify.TypeMoved, OldName: "x"})

	assert.Equal(t, 7, log.Count(classify.TypeCreated))
	assert.Equal(t, 1, log.Count(classify.TypeMoved))
	assert.Equal(t, 0, log.Count(classify.TypeRemoved))
	assert.Equal(t, 8, log.Total())
}

func TestNew_DefaultsInvalidCapacity(t *testing.T) {
	log, err := New(0)
	require.NoError(t, err)

	for i := 0; i < DefaultCapacity+5; i++ {
		log.Record(classify.Event{Type: classify.TypeCreated})
	}

	assert.Len(t, log.Recent(), DefaultCapacity)
}
