package mesh

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/types"
)

func readString(t *testing.T, payload string) (*Geometry, error) {
	t.Helper()
	return Read(context.Background(), asset.NewResourceFromStream("embedded.obj", strings.NewReader(payload)))
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 0`
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec3([]string{"v", "1", "not-a-float", "2"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "-1"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, -1}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordinate(t *testing.T) {
	type spec struct {
		token     string
		listLen   int
		relOffset int
		exp       int
		expErr    bool
	}
	specs := []spec{
		{"1", 3, 0, 0, false},
		{"3", 3, 0, 2, false},
		{"1", 5, 2, 2, false},
		{"-1", 3, 0, 2, false},
		{"-3", 3, 0, 0, false},
		{"-4", 3, 0, 0, true},
		{"4", 3, 0, 0, true},
		{"0", 3, 0, 0, true},
		{"x", 3, 0, 0, true},
	}

	for index, s := range specs {
		got, err := selectFaceCoordIndex(s.token, s.listLen, s.relOffset)
		if s.expErr {
			if err == nil {
				t.Errorf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", index, err)
			continue
		}
		if got != s.exp {
			t.Errorf("[spec %d] expected offset %d; got %d", index, s.exp, got)
		}
	}
}

func TestParseFaces(t *testing.T) {
	payload := `
# a quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
usemtl ignored

o quad
f 1/1/1 2/1/1 3/1/1 4/1/1

o tri
f -4//1 -3//1 -1//1

o empty
`
	geom, err := readString(t, payload)
	if err != nil {
		t.Fatal(err)
	}

	if len(geom.Meshes) != 2 {
		t.Fatalf("expected 2 meshes; got %d", len(geom.Meshes))
	}

	v0, v1, v2, v3 := types.Vec3{0, 0, 0}, types.Vec3{1, 0, 0}, types.Vec3{1, 1, 0}, types.Vec3{0, 1, 0}
	expQuad := []lbvh.Triangle{{v0, v1, v2}, {v0, v2, v3}}
	if geom.Meshes[0].Name != "quad" || !reflect.DeepEqual(geom.Meshes[0].Triangles, expQuad) {
		t.Fatalf("unexpected quad mesh %+v", geom.Meshes[0])
	}

	expTri := []lbvh.Triangle{{v0, v1, v3}}
	if geom.Meshes[1].Name != "tri" || !reflect.DeepEqual(geom.Meshes[1].Triangles, expTri) {
		t.Fatalf("unexpected tri mesh %+v", geom.Meshes[1])
	}

	if geom.TriangleCount() != 3 || len(geom.Triangles()) != 3 {
		t.Fatalf("expected 3 triangles; got %d", geom.TriangleCount())
	}

	expBounds := types.NewAABB(v0, types.Vec3{1, 1, 0})
	if !geom.Meshes[0].Bounds().Equal(expBounds) {
		t.Fatalf("expected quad bounds %v; got %v", expBounds, geom.Meshes[0].Bounds())
	}
	if len(geom.MeshBounds()) != 2 || len(geom.TriangleBounds()) != 3 {
		t.Fatal("unexpected bounds list length")
	}
}

func TestParseFacePolygonFan(t *testing.T) {
	geom, err := readString(t, "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n")
	if err != nil {
		t.Fatal(err)
	}
	if geom.Meshes[0].Name != "default" {
		t.Fatalf("expected faces without an object to land in the default mesh; got %q", geom.Meshes[0].Name)
	}
	if got := len(geom.Meshes[0].Triangles); got != 3 {
		t.Fatalf("expected a pentagon to produce 3 triangles; got %d", got)
	}
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		payload  string
		expError string
	}{
		{
			"v 0 0 0\nf 1 2\n",
			`[embedded.obj: 2] error: unsupported syntax for "f"; expected at least 3 arguments; got 2`,
		},
		{
			"v 0 0\n",
			`[embedded.obj: 1] error: unsupported syntax for "v"; expected 3 arguments; got 2`,
		},
		{
			"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 7\n",
			`[embedded.obj: 4] error: could not parse vertex coord for face argument 2: index out of bounds`,
		},
		{
			"v 0 0 0\nf /1 1 1\n",
			`[embedded.obj: 2] error: face argument 0 does not include a vertex index`,
		},
		{
			"o\n",
			`[embedded.obj: 1] error: unsupported syntax for "o"; expected 1 argument for object name; got 0`,
		},
		{
			"v 0 0 0\n",
			`wavefront reader: embedded.obj contains no faces`,
		},
	}

	for index, s := range specs {
		_, err := readString(t, s.payload)
		if err == nil || err.Error() != s.expError {
			t.Errorf("[spec %d] expected error:\n%s\ngot:\n%v", index, s.expError, err)
		}
	}
}

func TestIncludes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, payload string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(payload), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	// Positive indices in the included file are relative to its own vertices.
	write("part.obj", "o part\nv 5 5 5\nv 6 5 5\nv 5 6 5\nf 1 2 3\n")
	root := write("scene.obj", "o base\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\ncall part.obj\n")

	geom, err := ReadFile(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(geom.Meshes) != 2 {
		t.Fatalf("expected 2 meshes; got %d", len(geom.Meshes))
	}
	exp := lbvh.Triangle{{5, 5, 5}, {6, 5, 5}, {5, 6, 5}}
	if geom.Meshes[1].Triangles[0] != exp {
		t.Fatalf("expected included triangle %v; got %v", exp, geom.Meshes[1].Triangles[0])
	}

	// Errors in included files report the include chain.
	write("broken.obj", "f 1 2\n")
	bad := write("bad.obj", "call broken.obj\n")
	_, err = ReadFile(context.Background(), bad)
	if err == nil || !strings.Contains(err.Error(), "referenced from") {
		t.Fatalf("expected error with include chain; got %v", err)
	}

	// Self-referencing includes are cut off.
	loop := write("loop.obj", "call loop.obj\n")
	if _, err = ReadFile(context.Background(), loop); err == nil {
		t.Fatal("expected recursive include to fail")
	}
}

func TestGrid(t *testing.T) {
	g := Grid{Dims: [3]int{4, 3, 2}, Spacing: 2, Size: 1}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}

	boxes := g.Boxes()
	if len(boxes) != 24 {
		t.Fatalf("expected 24 boxes; got %d", len(boxes))
	}
	expLast := types.NewAABB(types.Vec3{6, 4, 2}, types.Vec3{7, 5, 3})
	if !boxes[23].Equal(expLast) {
		t.Fatalf("expected last box %v; got %v", expLast, boxes[23])
	}

	tris := g.Triangles()
	if len(tris) != 24 {
		t.Fatalf("expected 24 triangles; got %d", len(tris))
	}
	if tris[1][0] != (types.Vec3{2, 0, 0}) {
		t.Fatalf("expected second triangle to start at the second cell; got %v", tris[1][0])
	}

	for _, bad := range []Grid{
		{Dims: [3]int{0, 1, 1}, Spacing: 1, Size: 1},
		{Dims: [3]int{1, 1, 1}, Spacing: 0, Size: 1},
		{Dims: [3]int{1, 1, 1}, Spacing: 1, Size: -1},
	} {
		if bad.Validate() == nil {
			t.Errorf("expected grid %+v to be rejected", bad)
		}
	}
}
