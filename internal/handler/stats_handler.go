package handler

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"commuter/internal/middleware"
	"commuter/internal/store"
)

// Stats tracks server-wide metrics
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	wsConnections    atomic.Int64
	wsMessagesIn     atomic.Int64
	wsMessagesOut    atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	rateLimitBlocked atomic.Int64
}

var ServerStats = &Stats{
	startTime: time.Now(),
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncWSMessagesIn()     { s.wsMessagesIn.Add(1) }
func (s *Stats) IncWSMessagesOut()    { s.wsMessagesOut.Add(1) }
func (s *Stats) IncCacheHits()        { s.cacheHits.Add(1) }
func (s *Stats) IncCacheMisses()      { s.cacheMisses.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

// HubStats is what the stats endpoint needs from the websocket hub.
type HubStats interface {
	ClientCount() int
	SubscribedCells() int
}

type LimiterStats interface {
	Stats() middleware.LimiterStats
}

type StatsHandler struct {
	store   *store.NetworkStore
	hub     HubStats
	limiter LimiterStats
	version string
}

func NewStatsHandler(s *store.NetworkStore, hub HubStats, limiter LimiterStats, version string) *StatsHandler {
	return &StatsHandler{store: s, hub: hub, limiter: limiter, version: version}
}

type StatsResponse struct {
	Server    ServerStatsResponse    `json:"server"`
	Network   store.Stats            `json:"network"`
	WebSocket WebSocketStatsResponse `json:"websocket"`
	Cache     CacheStatsResponse     `json:"cache"`
	RateLimit middleware.LimiterStats `json:"rateLimit"`
	Go        GoStatsResponse        `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptimeSeconds"`
	StartTime     time.Time `json:"startTime"`
	RequestCount  int64     `json:"requestCount"`
	RateLimited   int64     `json:"rateLimited"`
	Version       string    `json:"version"`
}

type WebSocketStatsResponse struct {
	Connections     int64 `json:"connections"`
	Clients         int   `json:"clients"`
	SubscribedCells int   `json:"subscribedCells"`
	MessagesIn      int64 `json:"messagesIn"`
	MessagesOut     int64 `json:"messagesOut"`
}

type CacheStatsResponse struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"hitRatio"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heapAllocBytes"`
	HeapAllocMB float64 `json:"heapAllocMb"`
	NumGC       uint32  `json:"numGc"`
	GoVersion   string  `json:"goVersion"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(ServerStats.startTime)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	hits := ServerStats.cacheHits.Load()
	misses := ServerStats.cacheMisses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			StartTime:     ServerStats.startTime,
			RequestCount:  ServerStats.requestCount.Load(),
			RateLimited:   ServerStats.rateLimitBlocked.Load(),
			Version:       h.version,
		},
		Network: h.store.Stats(),
		WebSocket: WebSocketStatsResponse{
			Connections:     ServerStats.wsConnections.Load(),
			Clients:         h.hub.ClientCount(),
			SubscribedCells: h.hub.SubscribedCells(),
			MessagesIn:      ServerStats.wsMessagesIn.Load(),
			MessagesOut:     ServerStats.wsMessagesOut.Load(),
		},
		Cache: CacheStatsResponse{
			Hits:   hits,
			Misses: misses,
			Ratio:  ratio,
		},
		RateLimit: h.limiter.Stats(),
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondOK(w, response)
}
