package driftfield

import (
	"bytes"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadCardMeshFromGLTF reads card geometry out of a .gltf / .glb stream, so a field
// can render its images on custom geometry (a curved card, a polaroid frame, ...)
// authored in a modeler instead of the default flat quad. The first primitive of
// the first mesh is used; it must carry positions and UVs.
func LoadCardMeshFromGLTF(data io.Reader) (*Mesh, error) {

	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(data); err != nil {
		return nil, fmt.Errorf("driftfield: reading gltf data: %w", err)
	}

	doc := gltf.NewDocument()
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(doc); err != nil {
		return nil, fmt.Errorf("driftfield: parsing gltf data: %w", err)
	}

	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, fmt.Errorf("driftfield: gltf document contains no mesh primitives")
	}

	mesh := doc.Meshes[0]
	primitive := mesh.Primitives[0]

	posAccessor, ok := primitive.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("driftfield: gltf primitive has no positions")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
	if err != nil {
		return nil, fmt.Errorf("driftfield: reading gltf positions: %w", err)
	}

	uvAccessor, ok := primitive.Attributes[gltf.TEXCOORD_0]
	if !ok {
		return nil, fmt.Errorf("driftfield: gltf primitive has no texture coordinates")
	}
	uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvAccessor], nil)
	if err != nil {
		return nil, fmt.Errorf("driftfield: reading gltf texture coordinates: %w", err)
	}

	verts := make([]Vertex, 0, len(positions))

	appendVertex := func(vi uint32) error {
		if int(vi) >= len(positions) || int(vi) >= len(uvs) {
			return fmt.Errorf("driftfield: gltf index %d out of range", vi)
		}
		p, uv := positions[vi], uvs[vi]
		verts = append(verts, NewVertex(
			float64(p[0]), float64(p[1]), float64(p[2]),
			float64(uv[0]), float64(uv[1]),
		))
		return nil
	}

	if primitive.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("driftfield: reading gltf indices: %w", err)
		}
		for _, vi := range indices {
			if err := appendVertex(vi); err != nil {
				return nil, err
			}
		}
	} else {
		for vi := range positions {
			if err := appendVertex(uint32(vi)); err != nil {
				return nil, err
			}
		}
	}

	if len(verts) == 0 || len(verts)%3 != 0 {
		return nil, fmt.Errorf("driftfield: gltf primitive does not triangulate (%d vertices)", len(verts))
	}

	name := mesh.Name
	if name == "" {
		name = "Card"
	}

	return NewMesh(name, verts...), nil

}
