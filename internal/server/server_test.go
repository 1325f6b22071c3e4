package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilekit/gridnav"
	"github.com/tilekit/gridnav/internal/config"
	"github.com/tilekit/gridnav/internal/server"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *server.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.RateLimitRPS = 0
	cfg.Pathfinding.RoadmapSeed = 42

	s := server.New(cfg, zap.NewNop())
	return s.Router(t.Context()), s
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var corridor = gridnav.MapFile{
	Width:  5,
	Height: 3,
	Layout: []string{
		"#####",
		".....",
		"#####",
	},
}

func TestHealth_NoMap(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "waiting for map", body["status"])
	assert.Equal(t, false, body["hasMap"])
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestRoute_NoMap(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/route", server.RouteRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, server.ErrNoMap.Error(), decode(t, w)["error"])

	w = doJSON(r, http.MethodPost, "/fov", server.FOVRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutMap_Invalid(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPut, "/map", gridnav.MapFile{Layout: []string{"..", "."}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/map", gridnav.MapFile{Width: 9, Layout: []string{".."}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutMap_Replaces(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPut, "/map", corridor)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, "/map", gridnav.MapFile{Layout: []string{"..", ".."}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var f gridnav.MapFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, 2, f.Width)
	assert.Equal(t, []string{"..", ".."}, f.Layout)
}

func TestRoute_Corridor(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", corridor).Code)

	w := doJSON(r, http.MethodPost, "/route", server.RouteRequest{
		Start: gridnav.Point{X: 0, Y: 1},
		End:   gridnav.Point{X: 4, Y: 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []gridnav.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}, resp.Path)
	assert.InDelta(t, 4.0, resp.Distance, 1e-9)
}

func TestRoute_Unreachable(t *testing.T) {
	r, _ := newTestRouter(t)
	blocked := gridnav.MapFile{Layout: []string{"..#.."}}
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", blocked).Code)

	w := doJSON(r, http.MethodPost, "/route", server.RouteRequest{
		Start: gridnav.Point{X: 0, Y: 0},
		End:   gridnav.Point{X: 4, Y: 0},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Path)
	assert.NotEmpty(t, resp.Message)
}

func TestRoute_OutOfBounds(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", corridor).Code)

	w := doJSON(r, http.MethodPost, "/route", server.RouteRequest{
		Start: gridnav.Point{X: 0, Y: 1},
		End:   gridnav.Point{X: 10, Y: 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFOV_OpenGrid(t *testing.T) {
	r, _ := newTestRouter(t)
	open := gridnav.MapFile{Layout: []string{".....", ".....", ".....", ".....", "....."}}
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", open).Code)

	radius := 2
	w := doJSON(r, http.MethodPost, "/fov", server.FOVRequest{Origin: gridnav.Point{X: 2, Y: 2}, Radius: &radius})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Visible []gridnav.Point `json:"visible"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.Count)
	assert.Contains(t, resp.Visible, gridnav.Point{X: 2, Y: 2})
	assert.Contains(t, resp.Visible, gridnav.Point{X: 0, Y: 2})
	assert.NotContains(t, resp.Visible, gridnav.Point{X: 0, Y: 0})
}

func TestFOV_RadiusLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", corridor).Code)

	radius := 1000
	w := doJSON(r, http.MethodPost, "/fov", server.FOVRequest{Origin: gridnav.Point{X: 1, Y: 1}, Radius: &radius})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLine(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/line", server.LineRequest{
		Start: gridnav.Point{X: 0, Y: 0},
		End:   gridnav.Point{X: 3, Y: 0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Points []gridnav.Point `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []gridnav.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}, resp.Points)

	w = doJSON(r, http.MethodPost, "/line", server.LineRequest{Algorithm: "wu"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoadmap_BuildAndRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	open := gridnav.MapFile{Layout: []string{
		"..........",
		"..........",
		"..........",
		"..........",
	}}
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/map", open).Code)

	w := doJSON(r, http.MethodGet, "/roadmap/lines", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/roadmap", server.RoadmapRequest{NumSamples: 10, ConnectionRadius: 20})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	// A second build without force is refused.
	w = doJSON(r, http.MethodPost, "/roadmap", server.RoadmapRequest{NumSamples: 10, ConnectionRadius: 20})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/roadmap/lines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, decode(t, w)["numEdges"], float64(0))

	w = doJSON(r, http.MethodPost, "/route", server.RouteRequest{
		Start:      gridnav.Point{X: 0, Y: 0},
		End:        gridnav.Point{X: 9, Y: 3},
		UseRoadmap: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp server.RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Path)
	assert.Equal(t, gridnav.Point{X: 0, Y: 0}, resp.Path[0])
	assert.Equal(t, gridnav.Point{X: 9, Y: 3}, resp.Path[len(resp.Path)-1])
}

func TestCORS_Preflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/route", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery_Panic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(server.Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := doJSON(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(server.RateLimit(1, 2, t.Context().Done()))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, doJSON(r, http.MethodGet, "/ping", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_ConcurrentClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(server.RateLimit(1, 100, t.Context().Done()))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
		limited atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch doJSON(r, http.MethodGet, "/ping", nil).Code {
				case http.StatusOK:
					allowed.Add(1)
				case http.StatusTooManyRequests:
					limited.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(400), allowed.Load()+limited.Load())
	assert.GreaterOrEqual(t, allowed.Load(), int64(100))
	assert.Less(t, allowed.Load(), int64(400))
}
