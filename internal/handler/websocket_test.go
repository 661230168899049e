package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter/internal/domain"
	"commuter/internal/graph"
	"commuter/internal/hub"
)

func readMessage(ctx context.Context, t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg.Type, msg.Payload
}

func TestWebSocketSubscribeAndReload(t *testing.T) {
	f := newFixture(t, 100)

	h := hub.NewHub(f.store.SnapshotForCells, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(NewWSHandler(h, nil, testLogger()).ServeWS))
	defer srv.Close()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	send := func(msg string) {
		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))
	}

	send(`{"type":"subscribe","payload":{"cells":["0,0","1,1","nonsense"]}}`)
	typ, payload := readMessage(ctx, t, conn)
	require.Equal(t, "snapshot", typ)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Len(t, snap.Connections, 2)
	assert.Len(t, snap.TrackSections, 2)

	send(`{"type":"ping"}`)
	typ, _ = readMessage(ctx, t, conn)
	assert.Equal(t, "pong", typ)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, h.SubscribedCells())

	g := graph.New()
	graph.StartTrack(g, 0.5, 0.5)
	f.store.Replace(g, "v2")
	h.NotifyReload()

	typ, payload = readMessage(ctx, t, conn)
	require.Equal(t, "snapshot", typ)
	snap = domain.Snapshot{}
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Len(t, snap.Connections, 1)
	assert.Len(t, snap.TrackSections, 1)

	send(`{"type":"unsubscribe","payload":{"cells":["0,0","1,1"]}}`)
	require.Eventually(t, func() bool { return h.SubscribedCells() == 0 }, time.Second, 5*time.Millisecond)
}
