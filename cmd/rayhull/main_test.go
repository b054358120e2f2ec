package main

import (
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/concave"
	"github.com/soypat/concave/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestReadXYZ(t *testing.T) {
	const input = `# x y z intensity
0 0 0
1.5	2 -3 77

1e-3,2,3
`
	got, err := readXYZ(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []r3.Vec{{}, {X: 1.5, Y: 2, Z: -3}, {X: 1e-3, Y: 2, Z: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"1 2\n", "1 2 x\n"} {
		if _, err := readXYZ(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error parsing %q", bad)
		}
	}
}

func TestReadSTLVertices(t *testing.T) {
	verts := []r3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}
	faces := [][3]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	model, err := render.RenderAll(render.NewMeshRenderer(verts, faces))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := render.WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	got, err := readSTLVertices(&b)
	if err != nil {
		t.Fatal(err)
	}
	want := []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {X: -1}, {Y: -1}, {Z: -1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if _, err := readSTLVertices(bytes.NewReader(nil)); err == nil {
		t.Error("expected error reading empty STL")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rayhull.yaml")
	const data = `policy: outwards
max_curvature: 2.5
seed: 42
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{Policy: "outwards", MaxCurvature: 2.5, Seed: 42}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	p, err := cfg.growthPolicy()
	if err != nil || p != concave.Outwards {
		t.Errorf("got policy %v, %v", p, err)
	}

	def, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if def.Policy != "inwards" || !math.IsInf(def.MaxCurvature, 1) {
		t.Errorf("unexpected defaults %+v", def)
	}
}

func TestConfigDirection(t *testing.T) {
	cfg := &Config{Policy: "inwards", Direction: []float64{0, 0, -2}}
	p, err := cfg.growthPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if p != concave.TopDown {
		t.Errorf("got %v, want topdown", p)
	}
	for _, dir := range [][]float64{{0, 0, 0}, {1, 2}} {
		cfg.Direction = dir
		if _, err := cfg.growthPolicy(); err == nil {
			t.Errorf("expected error for direction %v", dir)
		}
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	cloud := filepath.Join(dir, "cloud.xyz")
	rng := rand.New(rand.NewSource(1))
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		p := r3.Unit(r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()})
		sb.WriteString(strings.Join([]string{ftoa(p.X), ftoa(p.Y), ftoa(p.Z)}, " ") + "\n")
	}
	if err := os.WriteFile(cloud, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "surface.stl")
	err := newApp().Run([]string{"rayhull", "extract", "--policy", "outwards", "--out", out, cloud})
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	if err != nil {
		t.Fatal(err)
	}
	if len(model) == 0 {
		t.Error("empty STL")
	}
	if err := newApp().Run([]string{"rayhull", "extract"}); err == nil {
		t.Error("expected error without a cloud argument")
	}
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
