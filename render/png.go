package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Output image size in pixels.
	Width, Height int
	// Supersampling factor used for antialiasing.
	Scale int
}

// DefaultView is an isometric view from above of a model fit in the bi-unit
// cube, Z pointing up.
var DefaultView = View{
	Up:     r3.Vec{Z: 1},
	Eye:    r3.Vec{X: 2.4, Y: 2.4, Z: 2.4},
	Near:   1,
	Far:    10,
	Width:  800,
	Height: 600,
	Scale:  2,
}

// Image rasterizes model with Phong shading after fitting it in the bi-unit
// cube centered at the origin.
func Image(model []Triangle3, view View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("non-positive image size")
	}
	scale := max(view.Scale, 1)
	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	triangles := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		triangles[i] = fauxgl.NewTriangleForPoints(
			fauxgl.V(t.V[0].X, t.V[0].Y, t.V[0].Z),
			fauxgl.V(t.V[1].X, t.V[1].Y, t.V[1].Z),
			fauxgl.V(t.V[2].X, t.V[2].Y, t.V[2].Z),
		)
	}
	mesh := fauxgl.NewTriangleMesh(triangles)
	mesh.BiUnitCube()

	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	return resize.Resize(uint(view.Width), uint(view.Height), context.Image(), resize.Bilinear), nil
}

// SavePNG renders a preview of model to a PNG file.
func SavePNG(path string, model []Triangle3, view View) error {
	img, err := Image(model, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}
