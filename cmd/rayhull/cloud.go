package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edaniels/lidario"
	"github.com/soypat/concave/render"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"
)

// readCloud loads points from a LAS file, the vertices of a binary STL file
// or, for any other extension, from whitespace separated "x y z" lines.
func readCloud(path string) ([]r3.Vec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".las" {
		return readLAS(path)
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if ext == ".stl" {
		return readSTLVertices(fp)
	}
	return readXYZ(fp)
}

// readSTLVertices returns the distinct triangle vertices of a binary STL
// stream in order of first appearance.
func readSTLVertices(r io.Reader) ([]r3.Vec, error) {
	model, err := render.ReadSTL(r)
	if model == nil {
		return nil, err
	}
	// Normal mismatches do not affect vertex positions.
	seen := make(map[r3.Vec]struct{}, len(model))
	pts := make([]r3.Vec, 0, len(model)/2+2)
	for _, t := range model {
		for _, v := range t.V {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			pts = append(pts, v)
		}
	}
	return pts, nil
}

func readLAS(path string) (pts []r3.Vec, err error) {
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, lf.Close()) }()
	pts = make([]r3.Vec, 0, lf.Header.NumberPoints)
	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return nil, fmt.Errorf("LAS point %d: %w", i, err)
		}
		data := p.PointData()
		pts = append(pts, r3.Vec{X: data.X, Y: data.Y, Z: data.Z})
	}
	return pts, nil
}

// readXYZ parses one point per line. Blank lines and lines starting with '#'
// are ignored, fields after the third are discarded.
func readXYZ(r io.Reader) ([]r3.Vec, error) {
	var pts []r3.Vec
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want 3 coordinates, got %d", line, len(fields))
		}
		var c [3]float64
		for i := range c {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			c[i] = v
		}
		pts = append(pts, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	}
	return pts, sc.Err()
}
