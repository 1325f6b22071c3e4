package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/tilekit/gridnav"
	"github.com/tilekit/gridnav/internal/config"
	"github.com/tilekit/gridnav/internal/server"
	"github.com/tilekit/gridnav/rng"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "gridnav",
		Usage: "grid pathfinding, field of view and line tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "development logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			pathCommand(),
			fovCommand(),
			lineCommand(),
			generateCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Server.Debug = true
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadMap picks the loader by extension: .geojson obstacle files are
// rasterized, anything else is read as a JSON map file.
func loadMap(path string, cfg config.MapConfig, logger *zap.Logger) (*gridnav.GridMap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson":
		return gridnav.LoadGeoJSONMap(path, gridnav.GeoJSONOptions{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Diagonal: cfg.Diagonal,
		}, logger)
	default:
		return gridnav.LoadGridMap(path)
	}
}

func parsePoint(s string) (gridnav.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return gridnav.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return gridnav.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return gridnav.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return gridnav.Point{X: x, Y: y}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "map",
		Aliases:  []string{"m"},
		Usage:    "map file (.json) or obstacle file (.geojson)",
		Required: true,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "override server.port"},
			&cli.StringFlag{Name: "map", Aliases: []string{"m"}, Usage: "override map.file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("port") {
				cfg.Server.Port = cmd.Int("port")
			}
			if cmd.IsSet("map") {
				cfg.Map.File = cmd.String("map")
			}

			logger, err := newLogger(cfg.Server.Debug)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer logger.Sync()

			srv := server.New(cfg, logger)
			if cfg.Map.File != "" {
				m, err := loadMap(cfg.Map.File, cfg.Map, logger)
				if err != nil {
					return err
				}
				srv.SetMap(m)
				logger.Info("Loaded map from file",
					zap.String("file", cfg.Map.File),
					zap.Int("width", m.Width),
					zap.Int("height", m.Height),
				)
			} else {
				logger.Info("No map file configured. PUT /map to load one")
			}
			return srv.Run(ctx)
		},
	}
}

func pathCommand() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "find a path between two cells",
		Flags: []cli.Flag{
			mapFlag(),
			&cli.StringFlag{Name: "from", Usage: "start cell as x,y", Required: true},
			&cli.StringFlag{Name: "to", Usage: "end cell as x,y", Required: true},
			&cli.IntFlag{Name: "max-steps", Usage: "search budget (0 uses the configured value)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Server.Debug)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer logger.Sync()

			m, err := loadMap(cmd.String("map"), cfg.Map, logger)
			if err != nil {
				return err
			}
			from, err := parsePoint(cmd.String("from"))
			if err != nil {
				return err
			}
			to, err := parsePoint(cmd.String("to"))
			if err != nil {
				return err
			}
			maxSteps := cfg.Pathfinding.MaxSteps
			if n := cmd.Int("max-steps"); n > 0 {
				maxSteps = n
			}

			path := m.FindPath(from, to, maxSteps)
			return printJSON(server.RouteResponse{
				Path:    m.PathPoints(path),
				Success: path.Success,
			})
		},
	}
}

func fovCommand() *cli.Command {
	return &cli.Command{
		Name:  "fov",
		Usage: "list the cells visible from an origin",
		Flags: []cli.Flag{
			mapFlag(),
			&cli.StringFlag{Name: "origin", Usage: "origin cell as x,y", Required: true},
			&cli.IntFlag{Name: "radius", Aliases: []string{"r"}, Usage: "view radius (default fov.default_radius)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Server.Debug)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer logger.Sync()

			m, err := loadMap(cmd.String("map"), cfg.Map, logger)
			if err != nil {
				return err
			}
			origin, err := parsePoint(cmd.String("origin"))
			if err != nil {
				return err
			}
			radius := cfg.FOV.DefaultRadius
			if cmd.IsSet("radius") {
				radius = cmd.Int("radius")
			}

			visible := gridnav.FieldOfViewConcurrent(origin, radius, m, cfg.FOV.Workers)
			return printJSON(map[string]any{
				"origin":  origin,
				"radius":  radius,
				"visible": gridnav.VisiblePoints(visible),
			})
		},
	}
}

func lineCommand() *cli.Command {
	return &cli.Command{
		Name:  "line",
		Usage: "rasterize a line between two cells",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "start cell as x,y", Required: true},
			&cli.StringFlag{Name: "to", Usage: "end cell as x,y", Required: true},
			&cli.BoolFlag{Name: "vector", Usage: "step along the vector instead of Bresenham"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			from, err := parsePoint(cmd.String("from"))
			if err != nil {
				return err
			}
			to, err := parsePoint(cmd.String("to"))
			if err != nil {
				return err
			}
			alg := gridnav.LineBresenham
			if cmd.Bool("vector") {
				alg = gridnav.LineVector
			}
			return printJSON(gridnav.Line2D(alg, from, to))
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "write a random walled map with scattered obstacles",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 40},
			&cli.IntFlag{Name: "height", Value: 20},
			&cli.FloatFlag{Name: "density", Value: 0.2, Usage: "fraction of interior cells to block"},
			&cli.Uint64Flag{Name: "seed", Usage: "0 seeds from entropy"},
			&cli.BoolFlag{Name: "diagonal", Value: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "map.json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r := rng.New()
			if seed := cmd.Uint64("seed"); seed != 0 {
				r = rng.Seeded(seed)
			}
			m := gridnav.GenerateScatterMap(cmd.Int("width"), cmd.Int("height"), cmd.Float("density"), cmd.Bool("diagonal"), r)
			if err := gridnav.SaveGridMap(m, cmd.String("out")); err != nil {
				return err
			}
			fmt.Printf("wrote %dx%d map to %s\n", m.Width, m.Height, cmd.String("out"))
			return nil
		},
	}
}
