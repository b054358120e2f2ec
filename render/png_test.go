package render_test

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/concave/render"
	"gonum.org/v1/plot/cmpimg"
)

const imgDelta = 0.01

func renderPNG(t *testing.T, model []render.Triangle3, view render.View) []byte {
	t.Helper()
	img, err := render.Image(model, view)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

func TestImageDeterministic(t *testing.T) {
	view := render.DefaultView
	view.Width, view.Height = 160, 120
	verts, faces := octahedron(1)
	model, err := render.RenderAll(render.NewMeshRenderer(verts, faces))
	if err != nil {
		t.Fatal(err)
	}
	b1 := renderPNG(t, model, view)
	b2 := renderPNG(t, model, view)
	equal, err := cmpimg.EqualApprox("png", b1, b2, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("rendering the same model twice gave different images")
	}

	// A single face covers less of the view than the whole octahedron.
	b3 := renderPNG(t, model[:1], view)
	equal, err = cmpimg.EqualApprox("png", b1, b3, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if equal {
		t.Error("different models rendered the same image")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	view := render.DefaultView
	view.Width, view.Height, view.Scale = 64, 48, 1
	verts, faces := octahedron(2)
	model, _ := render.RenderAll(render.NewMeshRenderer(verts, faces))
	if err := render.SavePNG(path, model, view); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	cfg, err := png.DecodeConfig(fp)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("got %dx%d image, want 64x48", cfg.Width, cfg.Height)
	}
	if err := render.SavePNG(path, nil, view); err == nil {
		t.Error("expected error for empty model")
	}
}
