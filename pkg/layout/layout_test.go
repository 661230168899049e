package layout

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter/internal/graph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDemoBuilds(t *testing.T) {
	l, err := Parse(Demo())
	require.NoError(t, err)

	net, err := l.Build()
	require.NoError(t, err)
	require.NoError(t, net.Graph.Verify())

	g := net.Graph
	assert.Equal(t, 10, g.Count(graph.KindConnection))
	assert.Equal(t, 9, g.Count(graph.KindTrackSection))
	assert.Equal(t, 3, g.Count(graph.KindPlatform))
	assert.Equal(t, 2, g.Count(graph.KindRoute))

	central := net.Platforms["central"]
	require.NotNil(t, central)
	assert.Len(t, central.Tracks(), 2)
	assert.Len(t, central.Routes(), 2)

	// the spur leaves the main line at (2, 2)
	fork := net.Chains["east"][0].ConnectionA()
	assert.Same(t, net.Chains["main"][2].ConnectionA(), fork)
	assert.Len(t, fork.Tracks(), 3)
}

func TestBuildJoinAndLink(t *testing.T) {
	doc := `
chains:
  - id: north
    start: [0, 0]
    steps:
      - extend: [1, 0]
  - id: south
    start: [0, 2]
    steps:
      - extend: [1, 2]
      - join: {chain: north, at: [2, 1]}
links:
  - from: {chain: north, index: 0}
    to: {chain: south, index: 0}
`
	l, err := Parse([]byte(doc))
	require.NoError(t, err)
	net, err := l.Build()
	require.NoError(t, err)
	require.NoError(t, net.Graph.Verify())

	north := net.Chains["north"]
	south := net.Chains["south"]
	require.Len(t, north, 2)
	require.Len(t, south, 2)
	assert.Same(t, north[1].ConnectionB(), south[1].ConnectionB())
	assert.NotNil(t, north[0].ConnectionA().FindTrackTo(south[0].ConnectionA()))

	path := net.Graph.FindPath(north[1], south[0])
	assert.Len(t, path, 3)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "extend after terminate",
			doc: `
chains:
  - id: a
    start: [0, 0]
    steps:
      - terminate: [1, 1]
      - extend: [2, 2]
`,
		},
		{
			name: "join target not laid",
			doc: `
chains:
  - id: a
    start: [0, 0]
    steps:
      - join: {chain: b, at: [1, 1]}
  - id: b
    start: [5, 5]
`,
		},
		{
			name: "branch declared before opener",
			doc: `
chains:
  - id: side
    steps:
      - extend: [1, 1]
  - id: a
    start: [0, 0]
    steps:
      - branch: side
`,
		},
		{
			name: "platform index out of range",
			doc: `
chains:
  - id: a
    start: [0, 0]
platforms:
  - id: p
    tracks:
      - {chain: a, index: 3}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = l.Build()
			assert.Error(t, err)
		})
	}
}

func TestBuildStateErrorsSurface(t *testing.T) {
	l, err := Parse([]byte(`
chains:
  - id: a
    start: [0, 0]
    steps:
      - terminate: [1, 1]
      - terminate: [2, 2]
`))
	require.NoError(t, err)
	_, err = l.Build()
	assert.ErrorIs(t, err, graph.ErrState)
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":         "chains: [",
		"no chains":        "chains: []",
		"missing id":       "chains:\n  - start: [0, 0]\n",
		"two actions":      "chains:\n  - id: a\n    start: [0, 0]\n    steps:\n      - {extend: [1, 1], terminate: [2, 2]}\n",
		"empty step":       "chains:\n  - id: a\n    start: [0, 0]\n    steps:\n      - {}\n",
		"duplicate chain":  "chains:\n  - id: a\n    start: [0, 0]\n  - id: a\n    start: [1, 1]\n",
		"no start":         "chains:\n  - id: a\n",
		"start and branch": "chains:\n  - id: a\n    start: [0, 0]\n    steps:\n      - branch: a\n",
		"undeclared branch": "chains:\n  - id: a\n    start: [0, 0]\n    steps:\n      - branch: b\n",
		"unknown stop":     "chains:\n  - id: a\n    start: [0, 0]\nroutes:\n  - id: r\n    stops: [nowhere]\n",
		"not finite":       "chains:\n  - id: a\n    start: [.nan, 0]\n",
		"short point":      "chains:\n  - id: a\n    start: [0]\n",
		"duplicate route": "chains:\n  - id: a\n    start: [0, 0]\nplatforms:\n  - id: p\n    tracks: [{chain: a, index: 0}]\n" +
			"routes:\n  - id: r\n    stops: [p]\n  - id: r\n    stops: [p]\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

func TestParseRouteIDs(t *testing.T) {
	doc := func(first, second string) []byte {
		return []byte("chains:\n  - id: a\n    start: [0, 0]\n" +
			"platforms:\n  - id: p\n    tracks: [{chain: a, index: 0}]\n" +
			"routes:\n  - id: " + first + "\n    stops: [p]\n  - id: " + second + "\n    stops: [p]\n")
	}

	l, err := Parse(doc("r", "s"))
	require.NoError(t, err)
	assert.Len(t, l.Routes, 2)

	_, err = Parse(doc("r", "r"))
	assert.ErrorIs(t, err, ErrInvalidLayout)
	assert.ErrorContains(t, err, `route "r" declared twice`)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("a")), Fingerprint([]byte("a")))
	assert.NotEqual(t, Fingerprint([]byte("a")), Fingerprint([]byte("b")))
	assert.Len(t, Fingerprint(Demo()), 64)
}

func TestSourceRead(t *testing.T) {
	ctx := context.Background()

	data, err := NewSource("", discardLogger()).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Demo(), data)

	path := filepath.Join(t.TempDir(), "net.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chains: []"), 0o644))
	data, err = NewSource(path, discardLogger()).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chains: []", string(data))

	_, err = NewSource(filepath.Join(t.TempDir(), "missing.yaml"), discardLogger()).Read(ctx)
	assert.Error(t, err)
}

func TestDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/net.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write(Demo())
	}))
	defer srv.Close()

	src := NewSource(srv.URL+"/net.yaml", discardLogger())
	data, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Demo(), data)

	_, err = NewDownloader(srv.URL+"/missing", discardLogger()).Download(context.Background())
	assert.Error(t, err)
}
