package mesh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Includes nested deeper than this are assumed to be recursive.
const maxIncludeDepth = 16

// Reads the geometry of Wavefront OBJ files. Faces with more than three
// vertices are fan-triangulated. Material, normal and texture statements
// are skipped.
type wavefrontReader struct {
	ctx    context.Context
	logger log.Logger

	geometry   *Geometry
	vertexList []types.Vec3

	errStack []string
}

// Read the geometry of an OBJ file.
func ReadFile(ctx context.Context, filename string) (*Geometry, error) {
	res, err := asset.NewResourceContext(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(ctx, res)
}

// Read the geometry of an OBJ stream.
func Read(ctx context.Context, res *asset.Resource) (*Geometry, error) {
	r := &wavefrontReader{
		ctx:      ctx,
		logger:   log.New("wavefront reader"),
		geometry: &Geometry{},
	}

	r.logger.Noticef(`parsing geometry from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}
	if r.geometry.TriangleCount() == 0 {
		return nil, fmt.Errorf("wavefront reader: %s contains no faces", res.Path())
	}

	r.logger.Noticef(
		"parsed %d meshes with %d triangles in %d ms",
		len(r.geometry.Meshes),
		r.geometry.TriangleCount(),
		time.Since(start).Nanoseconds()/1e6,
	)
	return r.geometry, nil
}

func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

func (r *wavefrontReader) parse(res *asset.Resource) error {
	if len(r.errStack) > maxIncludeDepth {
		return r.emitError(res.Path(), 0, "include depth exceeds %d", maxIncludeDepth)
	}

	lineNum := 0
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			if err := r.ctx.Err(); err != nil {
				return err
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))

			incRes, err := asset.NewResourceContext(r.ctx, lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}

			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.dropEmptyMesh()
			r.geometry.Meshes = append(r.geometry.Meshes, &Mesh{Name: lineTokens[1]})
		case "f":
			tris, err := r.parseFace(lineTokens, relVertexOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			if len(r.geometry.Meshes) == 0 {
				r.geometry.Meshes = append(r.geometry.Meshes, &Mesh{Name: "default"})
			}
			mesh := r.geometry.Meshes[len(r.geometry.Meshes)-1]
			mesh.Triangles = append(mesh.Triangles, tris...)
		case "vn", "vt", "vp", "usemtl", "mtllib", "s", "l", "p":
		default:
			r.logger.Debugf("[%s: %d] skipping unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.dropEmptyMesh()
	return nil
}

func (r *wavefrontReader) dropEmptyMesh() {
	last := len(r.geometry.Meshes) - 1
	if last >= 0 && len(r.geometry.Meshes[last].Triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no faces`, r.geometry.Meshes[last].Name)
		r.geometry.Meshes = r.geometry.Meshes[:last]
	}
}

// Parse a face statement into one or more triangles. Each face argument has
// the form v, v/vt, v//vn or v/vt/vn; only the vertex index is used.
func (r *wavefrontReader) parseFace(lineTokens []string, relVertexOffset int) ([]lbvh.Triangle, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	vertices := make([]types.Vec3, len(lineTokens)-1)
	for arg := range vertices {
		vTokens := strings.Split(lineTokens[arg+1], "/")
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]
	}

	tris := make([]lbvh.Triangle, 0, len(vertices)-2)
	for i := 1; i+1 < len(vertices); i++ {
		tris = append(tris, lbvh.Triangle{vertices[0], vertices[i], vertices[i+1]})
	}
	return tris, nil
}

// Resolve a 1-based (or negative, relative to the end) coordinate index.
// Positive indices are relative to the first vertex of the current file.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	switch {
	case index < 0:
		vOffset = coordListLen + int(index)
	case index == 0:
		return -1, errors.New("index 0 is not a valid coordinate reference")
	default:
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, errors.New("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
