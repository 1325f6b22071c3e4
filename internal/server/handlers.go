package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tilekit/gridnav"
	"github.com/tilekit/gridnav/rng"
	"go.uber.org/zap"
)

type RouteRequest struct {
	Start gridnav.Point `json:"start"`
	End   gridnav.Point `json:"end"`
	// UseRoadmap routes over the roadmap instead of the full grid.
	UseRoadmap bool `json:"useRoadmap,omitempty"`
}

type RouteResponse struct {
	Path     []gridnav.Point `json:"path"`
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Distance float64         `json:"distance,omitempty"`
}

type FOVRequest struct {
	Origin gridnav.Point `json:"origin"`
	Radius *int          `json:"radius,omitempty"`
}

type LineRequest struct {
	Start     gridnav.Point `json:"start"`
	End       gridnav.Point `json:"end"`
	Algorithm string        `json:"algorithm,omitempty"` // "bresenham" (default) or "vector"
}

type RoadmapRequest struct {
	NumSamples       int     `json:"numSamples"`
	ConnectionRadius float64 `json:"connectionRadius"`
	Seed             uint64  `json:"seed,omitempty"`  // 0 uses the configured seed
	Force            bool    `json:"force,omitempty"` // Set to true to force rebuild
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// Health reports whether a map and roadmap are loaded.
// GET /health
func (s *Server) Health(c *gin.Context) {
	grid, roadmap := s.snapshot()

	status := "ready"
	if grid == nil {
		status = "waiting for map"
	}
	resp := gin.H{
		"status":   status,
		"hasMap":   grid != nil,
		"numNodes": 0,
	}
	if grid != nil {
		resp["width"] = grid.Width
		resp["height"] = grid.Height
	}
	if roadmap != nil {
		resp["numNodes"] = len(roadmap.Nodes)
	}
	c.JSON(http.StatusOK, resp)
}

// PutMap replaces the active map.
// PUT /map
func (s *Server) PutMap(c *gin.Context) {
	var f gridnav.MapFile
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	m, err := f.GridMap()
	if err != nil {
		s.logger.Warn("rejected map", zap.Error(err), zap.String("trace_id", getTraceID(c)))
		badRequest(c, err)
		return
	}

	s.SetMap(m)
	s.logger.Info("map replaced",
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Bool("diagonal", m.Diagonal),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "width": m.Width, "height": m.Height})
}

// GetMap returns the active map in its file form.
// GET /map
func (s *Server) GetMap(c *gin.Context) {
	grid, _ := s.snapshot()
	if grid == nil {
		badRequest(c, ErrNoMap)
		return
	}
	c.JSON(http.StatusOK, grid.ToMapFile())
}

// Route finds a path between two cells.
// POST /route
func (s *Server) Route(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	grid, roadmap := s.snapshot()
	if grid == nil {
		badRequest(c, ErrNoMap)
		return
	}
	for _, p := range []gridnav.Point{req.Start, req.End} {
		if !grid.InBounds(p) {
			badRequest(c, fmt.Errorf("%w: %v", gridnav.ErrOutOfBounds, p))
			return
		}
	}

	log := s.logger.With(
		zap.Any("start", req.Start),
		zap.Any("end", req.End),
		zap.String("trace_id", getTraceID(c)),
	)

	var resp RouteResponse
	if req.UseRoadmap {
		if roadmap == nil {
			badRequest(c, ErrNoRoadmap)
			return
		}
		resp = s.routeOnRoadmap(grid, roadmap, req.Start, req.End)
	} else {
		path := grid.FindPath(req.Start, req.End, s.cfg.Pathfinding.MaxSteps)
		resp = RouteResponse{Path: grid.PathPoints(path), Success: path.Success}
		if !path.Success {
			resp.Message = "No path found"
		}
	}

	if resp.Success {
		resp.Distance = pathDistance(resp.Path)
		log.Info("path found",
			zap.Int("waypoints", len(resp.Path)),
			zap.Float64("distance", resp.Distance),
		)
	} else {
		log.Info("no path", zap.String("reason", resp.Message))
	}
	if resp.Path == nil {
		resp.Path = []gridnav.Point{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) routeOnRoadmap(grid *gridnav.GridMap, roadmap *gridnav.Graph, start, end gridnav.Point) RouteResponse {
	if start == end {
		return RouteResponse{Path: []gridnav.Point{start}, Success: grid.IsWalkable(grid.PointToIndex(start))}
	}

	// Connect start and end to a temporary copy of the roadmap
	graph := roadmap.Clone()
	radius := s.cfg.Pathfinding.RoadmapRadius
	startID, startOK := gridnav.ConnectPoint(graph, grid, start, radius)
	endID, endOK := gridnav.ConnectPoint(graph, grid, end, radius)
	if !startOK || !endOK {
		return RouteResponse{
			Message: "Could not connect start or end point to the roadmap (possibly blocked)",
		}
	}

	path := gridnav.AStar{MaxSteps: s.cfg.Pathfinding.MaxSteps}.Search(startID, endID, graph)
	if !path.Success {
		return RouteResponse{Message: "No path found on roadmap"}
	}
	points := make([]gridnav.Point, len(path.Steps))
	for i, id := range path.Steps {
		points[i] = graph.Nodes[id]
	}
	return RouteResponse{Path: points, Success: true}
}

func pathDistance(path []gridnav.Point) float64 {
	var d float64
	for i := 0; i+1 < len(path); i++ {
		d += gridnav.Distance2D(gridnav.Pythagoras, path[i], path[i+1])
	}
	return d
}

// FOV returns the cells visible from an origin.
// POST /fov
func (s *Server) FOV(c *gin.Context) {
	var req FOVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	grid, _ := s.snapshot()
	if grid == nil {
		badRequest(c, ErrNoMap)
		return
	}
	if !grid.InBounds(req.Origin) {
		badRequest(c, fmt.Errorf("%w: %v", gridnav.ErrOutOfBounds, req.Origin))
		return
	}

	radius := s.cfg.FOV.DefaultRadius
	if req.Radius != nil {
		radius = *req.Radius
	}
	if radius < 0 || (s.cfg.FOV.MaxRadius > 0 && radius > s.cfg.FOV.MaxRadius) {
		badRequest(c, fmt.Errorf("radius %d outside [0, %d]", radius, s.cfg.FOV.MaxRadius))
		return
	}

	visible := gridnav.FieldOfViewConcurrent(req.Origin, radius, grid, s.cfg.FOV.Workers)
	points := gridnav.VisiblePoints(visible)
	c.JSON(http.StatusOK, gin.H{
		"origin":  req.Origin,
		"radius":  radius,
		"visible": points,
		"count":   len(points),
	})
}

// Line rasterizes a segment. It needs no map.
// POST /line
func (s *Server) Line(c *gin.Context) {
	var req LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var alg gridnav.LineAlg
	switch req.Algorithm {
	case "", "bresenham":
		alg = gridnav.LineBresenham
	case "vector":
		alg = gridnav.LineVector
	default:
		badRequest(c, fmt.Errorf("unknown line algorithm %q", req.Algorithm))
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": gridnav.Line2D(alg, req.Start, req.End)})
}

// BuildRoadmap samples a probabilistic roadmap over the active map.
// POST /roadmap
func (s *Server) BuildRoadmap(c *gin.Context) {
	var req RoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	grid, roadmap := s.snapshot()
	if grid == nil {
		badRequest(c, ErrNoMap)
		return
	}
	if roadmap != nil && !req.Force {
		s.logger.Warn("roadmap already exists; set force:true to rebuild")
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "roadmap already exists",
			"message": "Roadmap is already built. Set 'force: true' to rebuild.",
		})
		return
	}

	// Set defaults
	if req.NumSamples <= 0 {
		req.NumSamples = s.cfg.Pathfinding.RoadmapSamples
	}
	if req.ConnectionRadius <= 0 {
		req.ConnectionRadius = s.cfg.Pathfinding.RoadmapRadius
	}
	if req.Seed == 0 {
		req.Seed = s.cfg.Pathfinding.RoadmapSeed
	}
	r := rng.New()
	if req.Seed != 0 {
		r = rng.Seeded(req.Seed)
	}

	graph := gridnav.BuildRoadmap(grid, req.NumSamples, req.ConnectionRadius, r)

	s.mu.Lock()
	if s.grid != grid {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "map replaced during build"})
		return
	}
	s.roadmap = graph
	s.mu.Unlock()

	s.logger.Info("roadmap built",
		zap.Int("samples", req.NumSamples),
		zap.Float64("radius", req.ConnectionRadius),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", graph.EdgeCount()/2),
	)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"numNodes":   len(graph.Nodes),
		"numEdges":   graph.EdgeCount() / 2,
		"numSamples": req.NumSamples,
	})
}

// RoadmapLines returns roadmap edges as line segments for visualization.
// GET /roadmap/lines
func (s *Server) RoadmapLines(c *gin.Context) {
	_, roadmap := s.snapshot()
	if roadmap == nil {
		badRequest(c, ErrNoRoadmap)
		return
	}

	lines := roadmap.Lines()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"lines":    lines,
		"numNodes": len(roadmap.Nodes),
		"numEdges": len(lines),
	})
}
