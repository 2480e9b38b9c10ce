package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldestFIFO(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Append(EventEntry(fmt.Sprintf("e%d", i)))
	}

	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "e3", snap[0].Text)
	assert.Equal(t, "e4", snap[1].Text)
	assert.Equal(t, "e5", snap[2].Text)
}

func TestHistoryExactCapacity(t *testing.T) {
	h := NewHistory(2)
	h.Append(EventEntry("a"))
	h.Append(EventEntry("b"))
	require.Equal(t, 2, h.Len())

	// H+1-я запись вытесняет ровно самую старую
	h.Append(EventEntry("c"))
	snap := h.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].Text)
	assert.Equal(t, "c", snap[1].Text)
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewHistory(4)
	h.Append(EventEntry("a"))

	snap := h.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "a", h.Snapshot()[0].Text)
}

func TestSenderRefValueSemantics(t *testing.T) {
	p := &Participant{ID: "conn-1", Token: "tok", DisplayName: "conn-"}
	entry := MessageEntry(p.Ref(), "hello")

	// позднейший rebind не должен переписывать историю
	p.ID = "conn-2"
	p.DisplayName = "other"

	require.NotNil(t, entry.Sender)
	assert.Equal(t, "conn-1", entry.Sender.ID)
	assert.Equal(t, "conn-", entry.Sender.DisplayName)
}

func TestDeriveDisplayName(t *testing.T) {
	assert.Equal(t, "abcde", DeriveDisplayName("abcdefgh"))
	assert.Equal(t, "abc", DeriveDisplayName("abc"))
}
