// Command rayhull extracts a surface mesh from a point cloud.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/soypat/concave"
	"github.com/soypat/concave/render"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagPolicy       = "policy"
	flagMaxCurvature = "max-curvature"
	flagConfig       = "config"
	flagOut          = "out"
	flagPNG          = "png"
	flagVerbose      = "verbose"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rayhull",
		Usage: "extract concave surfaces from point clouds",
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "grow a surface over a point cloud and write it as STL",
				ArgsUsage: "<cloud.las|cloud.xyz>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPolicy,
						Usage: "growth policy: inwards, outwards, upwards or topdown",
					},
					&cli.Float64Flag{
						Name:  flagMaxCurvature,
						Usage: "stop growing once the lowest candidate curvature exceeds this bound",
					},
					&cli.StringFlag{
						Name:  flagConfig,
						Usage: "YAML configuration file",
					},
					&cli.StringFlag{
						Name:  flagOut,
						Value: "surface.stl",
						Usage: "output STL file",
					},
					&cli.StringFlag{
						Name:  flagPNG,
						Usage: "write a PNG preview of the surface",
					},
					&cli.BoolFlag{
						Name:    flagVerbose,
						Aliases: []string{"v"},
						Usage:   "log debug output",
					},
				},
				Action: extractAction,
			},
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func extractAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("extract needs exactly one point cloud argument")
	}
	log, err := newLogger(c.Bool(flagVerbose))
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	if c.IsSet(flagPolicy) {
		cfg.Policy = c.String(flagPolicy)
		cfg.Direction = nil
	}
	if c.IsSet(flagMaxCurvature) {
		cfg.MaxCurvature = c.Float64(flagMaxCurvature)
	}
	policy, err := cfg.growthPolicy()
	if err != nil {
		return err
	}

	path := c.Args().First()
	pts, err := readCloud(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	log.Info("cloud loaded", zap.String("path", path), zap.Int("points", len(pts)))

	h, err := concave.New(pts, concave.WithLogger(log), concave.WithSeed(cfg.Seed))
	if err != nil {
		return err
	}
	term := h.Grow(policy, cfg.MaxCurvature)
	verts, faces := h.SurfaceMesh()
	stats := h.Stats()
	log.Info("surface extracted",
		zap.Stringer("policy", policy),
		zap.Stringer("termination", term),
		zap.Int("faces", stats.Faces),
		zap.Int("vertices", stats.Vertices),
		zap.Int("carved", stats.Carved),
		zap.Float64("mean_z", stats.MeanZ),
	)
	if len(faces) == 0 {
		return errors.New("empty surface")
	}

	out := c.String(flagOut)
	if err := render.CreateSTL(out, render.NewMeshRenderer(verts, faces)); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if png := c.String(flagPNG); png != "" {
		model, err := render.RenderAll(render.NewMeshRenderer(verts, faces))
		if err != nil {
			return err
		}
		if err := render.SavePNG(png, model, render.DefaultView); err != nil {
			return fmt.Errorf("writing %s: %w", png, err)
		}
	}
	return nil
}
