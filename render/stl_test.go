package render_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/concave/internal/d3"
	"github.com/soypat/concave/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// octahedron returns an outward wound octahedron of the given radius.
func octahedron(r float64) ([]r3.Vec, [][3]int) {
	verts := []r3.Vec{{X: r}, {X: -r}, {Y: r}, {Y: -r}, {Z: r}, {Z: -r}}
	faces := [][3]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	return verts, faces
}

func TestSTLCreateWriteRead(t *testing.T) {
	verts, faces := octahedron(1.5)
	path := filepath.Join(t.TempDir(), "octahedron.stl")
	err := render.CreateSTL(path, render.NewMeshRenderer(verts, faces))
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.RenderAll(render.NewMeshRenderer(verts, faces))
	if err != nil {
		t.Fatal(err)
	}
	if len(model) != len(faces) {
		t.Fatalf("rendered %d triangles, want %d", len(model), len(faces))
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}

	output, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(model) {
		t.Fatal("length of triangles written/read not equal")
	}
	for iface, expect := range model {
		got := output[iface]
		for i := range expect.V {
			if !d3.EqualWithin(got.V[i], expect.V[i], 1e-6) {
				t.Errorf("%dth triangle vertex %d: got %v, want %v", iface, i, got.V[i], expect.V[i])
			}
		}
		centroid := r3.Add(r3.Add(got.V[0], got.V[1]), got.V[2])
		if d := r3.Dot(got.Normal(), centroid); d <= 0 {
			t.Errorf("%dth triangle is not wound outwards", iface)
		}
	}
}

func TestSTLReadErrors(t *testing.T) {
	if _, err := render.ReadSTL(bytes.NewReader(nil)); err == nil {
		t.Error("expected error reading empty stream")
	}
	verts, faces := octahedron(1)
	model, _ := render.RenderAll(render.NewMeshRenderer(verts, faces))
	var b bytes.Buffer
	if err := render.WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	truncated := b.Bytes()[:b.Len()-10]
	if _, err := render.ReadSTL(bytes.NewReader(truncated)); err == nil {
		t.Error("expected error reading truncated stream")
	}
	if err := render.WriteSTL(io.Discard, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}
