package peerchat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumewell/peerchat-go/peerchat/peerchattest"
)

func TestListRooms(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	srv.AddRoom("anxiety support")
	srv.AddRoom("grief support")

	e := newTestEngine(t, srv)
	rooms, err := e.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestListRoomsSharesInFlightRequest(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	srv.AddRoom("anxiety support")
	srv.SetDelay(peerchattest.OpRooms, 80*time.Millisecond)

	e := newTestEngine(t, srv)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms, err := e.ListRooms(context.Background())
			assert.NoError(t, err)
			assert.Len(t, rooms, 1)
		}()
	}
	wg.Wait()

	// A rapid re-render or double-tapped retry must not double-fire.
	assert.Equal(t, 1, srv.Requests(peerchattest.OpRooms))
}

func TestListRoomsSurvivesCallerCancellation(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	srv.AddRoom("anxiety support")
	srv.SetDelay(peerchattest.OpRooms, 80*time.Millisecond)

	e := newTestEngine(t, srv)

	// The first caller gives up mid-flight; a second caller sharing the
	// flight must still get the catalog.
	impatient, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.ListRooms(impatient)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	rooms, err := e.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	<-done
}

func TestListRoomsUnavailable(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	srv.SetFail(peerchattest.OpRooms, true)

	e := newTestEngine(t, srv)
	_, err := e.ListRooms(context.Background())
	assert.Equal(t, ErrorCatalogUnavailable, CodeOf(err))

	// Manual retry succeeds once the backend recovers.
	srv.SetFail(peerchattest.OpRooms, false)
	_, err = e.ListRooms(context.Background())
	assert.NoError(t, err)
}
