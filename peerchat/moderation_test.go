package peerchat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumewell/peerchat-go/peerchat/peerchattest"
)

func messageByID(t *testing.T, e *Engine, id string) Message {
	t.Helper()
	for _, m := range e.Messages() {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("message %s not in log", id)
	return Message{}
}

func joinWithMessage(t *testing.T, srv *peerchattest.Server) (*Engine, Message) {
	t.Helper()
	room := srv.AddRoom("moderated room")
	m := srv.InjectMessage(room.ID, "Kind Stranger 0", "needs moderation")

	e := newTestEngine(t, srv)
	_, err := e.Join(context.Background(), room.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(e.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
	return e, m
}

func TestLikeReconcilesWithServerCount(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	e, m := joinWithMessage(t, srv)

	require.NoError(t, e.Like(context.Background(), m.ID))
	assert.Equal(t, 1, messageByID(t, e, m.ID).LikeCount)
}

func TestLikeFailureRevertsOptimisticCount(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	e, m := joinWithMessage(t, srv)

	require.NoError(t, e.Like(context.Background(), m.ID))

	srv.SetFail(peerchattest.OpLike, true)
	err := e.Like(context.Background(), m.ID)
	assert.Equal(t, ErrorModerationFailed, CodeOf(err))

	assert.Equal(t, 1, messageByID(t, e, m.ID).LikeCount, "failed like must revert to the pre-call count")
}

func TestLikeEmitsOptimisticThenReconciledUpdates(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	e, m := joinWithMessage(t, srv)

	var counts []int
	e.OnMessageUpdated(func(m Message) { counts = append(counts, m.LikeCount) })

	srv.SetFail(peerchattest.OpLike, true)
	_ = e.Like(context.Background(), m.ID)

	// Optimistic bump first, then the revert.
	assert.Equal(t, []int{1, 0}, counts)
}

func TestReportIsTerminalPerViewer(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	e, m := joinWithMessage(t, srv)

	require.NoError(t, e.Report(context.Background(), m.ID, "harassment"))
	assert.True(t, messageByID(t, e, m.ID).Reported)

	err := e.Like(context.Background(), m.ID)
	assert.Equal(t, ErrorMessageReported, CodeOf(err))

	err = e.Report(context.Background(), m.ID, "again")
	assert.Equal(t, ErrorMessageReported, CodeOf(err))
}

func TestReportFailureLeavesMessageUnreported(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	e, m := joinWithMessage(t, srv)

	srv.SetFail(peerchattest.OpReport, true)
	err := e.Report(context.Background(), m.ID, "spam")
	assert.Equal(t, ErrorModerationFailed, CodeOf(err))

	assert.False(t, messageByID(t, e, m.ID).Reported)

	// Still reportable after the backend recovers.
	srv.SetFail(peerchattest.OpReport, false)
	assert.NoError(t, e.Report(context.Background(), m.ID, "spam"))
}

func TestModerationRequiresActiveSessionAndKnownMessage(t *testing.T) {
	srv := peerchattest.NewServer()
	defer srv.Close()
	room := srv.AddRoom("quiet room")

	e := newTestEngine(t, srv)
	err := e.Like(context.Background(), "m1")
	assert.Equal(t, ErrorNotActive, CodeOf(err))

	_, err = e.Join(context.Background(), room.ID)
	require.NoError(t, err)

	err = e.Like(context.Background(), "not-in-log")
	assert.Equal(t, ErrorMessageNotFound, CodeOf(err))
	err = e.Report(context.Background(), "not-in-log", "spam")
	assert.Equal(t, ErrorMessageNotFound, CodeOf(err))
}
