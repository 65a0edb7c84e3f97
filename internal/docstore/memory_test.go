package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_DeliversInitialSnapshot(t *testing.T) {
	m := NewMemoryStore()
	m.Put("cars", "c1", Document{"model": "Clio"})

	var got []Snapshot
	unsub := m.Subscribe("cars", Query{}, func(s Snapshot) {
		got = append(got, s)
	}, nil)
	defer unsub()

	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, "c1", got[0][0].ID())
	assert.Equal(t, "Clio", got[0][0]["model"])
}

func TestSubscribe_FullSnapshotOnEveryChange(t *testing.T) {
	m := NewMemoryStore()

	var got []Snapshot
	unsub := m.Subscribe("cars", Query{}, func(s Snapshot) {
		got = append(got, s)
	}, nil)
	defer unsub()

	_, err := m.Create(context.Background(), "cars", Document{"model": "208"})
	require.NoError(t, err)
	id2, err := m.Create(context.Background(), "cars", Document{"model": "Megane"})
	require.NoError(t, err)

	// initial empty + one per create, each carrying the entire result set
	require.Len(t, got, 3)
	assert.Len(t, got[1], 1)
	assert.Len(t, got[2], 2)

	require.NoError(t, m.Remove(context.Background(), "cars", id2))
	require.Len(t, got, 4)
	assert.Len(t, got[3], 1)
	assert.Equal(t, "208", got[3][0]["model"])
}

func TestSubscribe_Ordering(t *testing.T) {
	m := NewMemoryStore()
	m.Put("cars", "a", Document{"model": "Zoe", "dailyPrice": 40})
	m.Put("cars", "b", Document{"model": "Ax", "dailyPrice": 90})

	var byModel Snapshot
	unsub := m.Subscribe("cars", Query{OrderBy: "model"}, func(s Snapshot) { byModel = s }, nil)
	unsub()
	require.Len(t, byModel, 2)
	assert.Equal(t, "Ax", byModel[0]["model"])

	var byPriceDesc Snapshot
	unsub = m.Subscribe("cars", Query{OrderBy: "dailyPrice", Descending: true}, func(s Snapshot) { byPriceDesc = s }, nil)
	unsub()
	require.Len(t, byPriceDesc, 2)
	assert.Equal(t, "Ax", byPriceDesc[0]["model"])
}

func TestPatch_MergesFields(t *testing.T) {
	m := NewMemoryStore()
	m.Put("rentals", "r1", Document{"status": "Pending", "customer": "Awa"})

	err := m.Patch(context.Background(), "rentals", "r1", Document{"status": "Active"})
	require.NoError(t, err)

	doc, ok := m.Get("rentals", "r1")
	require.True(t, ok)
	assert.Equal(t, "Active", doc["status"])
	assert.Equal(t, "Awa", doc["customer"])
}

func TestPatch_UnknownDocument(t *testing.T) {
	m := NewMemoryStore()
	err := m.Patch(context.Background(), "rentals", "nope", Document{"status": "Active"})
	assert.Error(t, err)
}

func TestUnsubscribe_StopsCallbacks(t *testing.T) {
	m := NewMemoryStore()

	calls := 0
	unsub := m.Subscribe("cars", Query{}, func(Snapshot) { calls++ }, nil)
	require.Equal(t, 1, calls)

	unsub()

	_, err := m.Create(context.Background(), "cars", Document{"model": "C3"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "torn-down listener must not be invoked")
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := NewMemoryStore()
	m.Put("cars", "c1", Document{"model": "Clio"})

	var snap Snapshot
	unsub := m.Subscribe("cars", Query{}, func(s Snapshot) { snap = s }, nil)
	unsub()

	snap[0]["model"] = "mutated"
	doc, ok := m.Get("cars", "c1")
	require.True(t, ok)
	assert.Equal(t, "Clio", doc["model"])
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, 30.0, Number("30"))
	assert.Equal(t, 0.0, Number("abc"))
	assert.Equal(t, 0.0, Number(nil))
	assert.Equal(t, 12.0, Number(12))
	assert.Equal(t, "", String(7))
	assert.False(t, Bool("true"))
}
