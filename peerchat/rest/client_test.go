package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRooms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/rooms", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Room{{ID: "r1", Name: "anxiety support", MemberCount: 4}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rooms, err := c.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)
	assert.Equal(t, 4, rooms[0].MemberCount)
}

func TestMessagesQueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooms/r1/messages", r.URL.Path)
		assert.Equal(t, "m7", r.URL.Query().Get("since"))
		assert.Equal(t, "s1", r.URL.Query().Get("session_id"))
		_ = json.NewEncoder(w).Encode([]Message{{ID: "m8", Text: "hi", Timestamp: time.Now()}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	msgs, err := c.Messages(context.Background(), "r1", "m7", "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m8", msgs[0].ID)
}

func TestErrorResponseMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "room is full"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Join(context.Background(), "r1", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room is full")
	assert.Contains(t, err.Error(), "503")
}

func TestEmptyBodyResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.NoError(t, c.Leave(context.Background(), "r1", "s1"))
	assert.NoError(t, c.SetTyping(context.Background(), "r1", "s1", true))
}
