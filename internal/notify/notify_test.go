package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_Push(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	a, ok := q.Push("Added to cart", SeveritySuccess)
	require.True(t, ok)
	b, ok := q.Push("Something broke", SeverityError)
	require.True(t, ok)

	assert.NotEqual(t, a.ID, b.ID)
	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Added to cart", list[0].Message)
	assert.Equal(t, SeverityError, list[1].Severity)
}

func TestQueue_UnknownSeverity(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	toast, ok := q.Push("hello", "fatal")
	require.True(t, ok)
	assert.Equal(t, SeveritySuccess, toast.Severity)
}

func TestQueue_AutoDismiss(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	defer q.Close()

	q.Notify(context.Background(), "short lived", SeverityInfo)
	require.Len(t, q.List(), 1)

	assert.Eventually(t, func() bool {
		return len(q.List()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	a, _ := q.Push("first", SeverityInfo)
	b, _ := q.Push("second", SeverityInfo)

	assert.True(t, q.Remove(a.ID))
	assert.False(t, q.Remove(a.ID))
	assert.False(t, q.Remove("missing"))

	list := q.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue(time.Hour)
	q.Push("one", SeverityInfo)
	q.Push("two", SeverityInfo)

	q.Close()
	assert.Empty(t, q.List())

	_, ok := q.Push("after close", SeverityInfo)
	assert.False(t, ok)
	assert.Empty(t, q.List())
}

func TestNewQueue_DefaultTTL(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	assert.Equal(t, DefaultTTL, q.ttl)
}
