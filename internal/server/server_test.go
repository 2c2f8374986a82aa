package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mpurbo/ecosim/internal/core/ecology"
	"github.com/mpurbo/ecosim/internal/core/events/bus"
	"github.com/mpurbo/ecosim/internal/core/geometry"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()

	f := ecology.NewFactory()
	flyer, err := f.Create(ecology.KindFlyer, ecology.MediumAir, geometry.Vec(14, 12))
	require.NoError(t, err)
	swimmer, err := f.Create(ecology.KindSwimmer, ecology.MediumWater, geometry.Vec(12, 8))
	require.NoError(t, err)
	runner, err := f.Create(ecology.KindRunner, ecology.MediumGround, geometry.Vec(12, 8))
	require.NoError(t, err)

	b := bus.New()
	eco := ecology.New([]*ecology.Agent{flyer, swimmer, runner}, ecology.DefaultConfig(), nil, b)

	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv := New(eco, b, cfg, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func TestDisasterEndpointAndStream(t *testing.T) {
	srv := startTestServer(t)
	base := "http://" + srv.Addr()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(base+"/disaster?x=10&y=10", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dr DisasterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dr))
	require.True(t, dr.Converged)
	require.Equal(t, 3, dr.Passes)
	require.Len(t, dr.Agents, 3)
	require.Equal(t, geometry.Vec(28, 26), dr.Agents[0].Position)
	require.Equal(t, geometry.Vec(22, -2), dr.Agents[1].Position)
	require.Equal(t, geometry.Vec(24, -4), dr.Agents[2].Position)

	// The stream carries the full lifecycle, ending with a converged frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	events := map[string]bool{}
	for !events[ecology.EventConverged] {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		require.Len(t, f.Agents, 3)
		events[f.Event] = true
	}
	require.True(t, events[ecology.EventDisaster])
	require.True(t, events[ecology.EventAgentSafe])
}

func TestStateEndpoint(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	require.Len(t, sr.Agents, 3)
	require.Equal(t, 0, sr.Passes)
	require.Equal(t, "flyer", sr.Agents[0].Kind)
	require.Equal(t, "air", sr.Agents[0].Medium)
}

func TestDisasterEndpointValidation(t *testing.T) {
	srv := startTestServer(t)
	base := "http://" + srv.Addr()

	resp, err := http.Get(base + "/disaster?x=10&y=10")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(base+"/disaster?x=ten&y=10", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubRemoveClosesSendQueue(t *testing.T) {
	h := newHub()
	c := &wsClient{send: make(chan []byte, 1)}
	h.add(c)

	// Removing a client closes its queue so the writer loop terminates even
	// when no further broadcast arrives.
	h.remove(c)
	_, open := <-c.send
	require.False(t, open)

	// Removing again and broadcasting past the gone client are both safe.
	h.remove(c)
	h.broadcast([]byte(`{}`))
}

func TestObserverDisconnectDoesNotStallBroadcast(t *testing.T) {
	srv := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// A disaster after the observer is gone still completes normally.
	resp, err := http.Post("http://"+srv.Addr()+"/disaster?x=10&y=10", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoubleStartRejected(t *testing.T) {
	srv := startTestServer(t)
	require.ErrorIs(t, srv.Start(context.Background()), ErrServerAlreadyRunning)
}
