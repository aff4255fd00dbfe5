package vox

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Scene graph node ids written for multi-model documents:
//
//	0           root transform
//	1           root group, children 10..10+n-1
//	10+i        transform of model i, child shapeBase+i
//	shapeBase+i shape of model i, referencing model index i
//
// shapeBase is 1000 unless the document has more models than fit below it.
const (
	rootTransformID    = 0
	rootGroupID        = 1
	modelTransformBase = 10
	defaultShapeBase   = 1000
)

const (
	attrName        = "_name"
	attrTranslation = "_t"
	noReservedID    = -1
	rootLayerID     = -1
)

func shapeBase(models int) int32 {
	if modelTransformBase+models <= defaultShapeBase {
		return defaultShapeBase
	}
	return int32(modelTransformBase + models)
}

type attr struct {
	key, value string
}

// dict is an ordered attribute dictionary.
type dict []attr

func (d dict) get(key string) (string, bool) {
	for _, a := range d {
		if a.key == key {
			return a.value, true
		}
	}
	return "", false
}

func (d dict) write(buf *bytes.Buffer) {
	putInt32(buf, int32(len(d)))
	for _, a := range d {
		putString(buf, a.key)
		putString(buf, a.value)
	}
}

func readDict(c *cursor) dict {
	n := c.int32()
	if c.err != nil {
		return nil
	}
	if n < 0 || int(n) > c.remaining()/8 {
		c.err = fmt.Errorf("%w: dictionary declares %d entries", ErrChunkLength, n)
		return nil
	}
	d := make(dict, 0, n)
	for i := int32(0); i < n && c.err == nil; i++ {
		k := c.string()
		v := c.string()
		d = append(d, attr{k, v})
	}
	return d
}

type transformNode struct {
	id       int32
	attrs    dict
	child    int32
	reserved int32
	layer    int32
	frames   []dict
}

func (transformNode) chunkID() string { return idTransform }

func (n transformNode) writeContent(buf *bytes.Buffer) {
	putInt32(buf, n.id)
	n.attrs.write(buf)
	putInt32(buf, n.child)
	putInt32(buf, n.reserved)
	putInt32(buf, n.layer)
	putInt32(buf, int32(len(n.frames)))
	for _, f := range n.frames {
		f.write(buf)
	}
}

func readTransform(c *cursor) transformNode {
	n := transformNode{id: c.int32()}
	n.attrs = readDict(c)
	n.child = c.int32()
	n.reserved = c.int32()
	n.layer = c.int32()
	frames := c.int32()
	if c.err == nil && (frames < 0 || int(frames) > c.remaining()/4) {
		c.err = fmt.Errorf("%w: transform declares %d frames", ErrChunkLength, frames)
	}
	for i := int32(0); i < frames && c.err == nil; i++ {
		n.frames = append(n.frames, readDict(c))
	}
	return n
}

// translation parses the "_t" attribute of the first frame.
func (n transformNode) translation() ([3]float32, error) {
	var t [3]float32
	if len(n.frames) == 0 {
		return t, nil
	}
	s, ok := n.frames[0].get(attrTranslation)
	if !ok {
		return t, nil
	}
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return t, fmt.Errorf("%w: node %d has translation %q", ErrSceneGraph, n.id, s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return t, fmt.Errorf("%w: node %d has translation %q", ErrSceneGraph, n.id, s)
		}
		t[i] = float32(v)
	}
	return t, nil
}

type groupNode struct {
	id       int32
	attrs    dict
	children []int32
}

func (groupNode) chunkID() string { return idGroup }

func (n groupNode) writeContent(buf *bytes.Buffer) {
	putInt32(buf, n.id)
	n.attrs.write(buf)
	putInt32(buf, int32(len(n.children)))
	for _, ch := range n.children {
		putInt32(buf, ch)
	}
}

func readGroup(c *cursor) groupNode {
	n := groupNode{id: c.int32()}
	n.attrs = readDict(c)
	count := c.int32()
	if c.err == nil && (count < 0 || int(count) > c.remaining()/4) {
		c.err = fmt.Errorf("%w: group declares %d children", ErrChunkLength, count)
	}
	for i := int32(0); i < count && c.err == nil; i++ {
		n.children = append(n.children, c.int32())
	}
	return n
}

type shapeModel struct {
	model int32
	attrs dict
}

type shapeNode struct {
	id     int32
	attrs  dict
	models []shapeModel
}

func (shapeNode) chunkID() string { return idShape }

func (n shapeNode) writeContent(buf *bytes.Buffer) {
	putInt32(buf, n.id)
	n.attrs.write(buf)
	putInt32(buf, int32(len(n.models)))
	for _, m := range n.models {
		putInt32(buf, m.model)
		m.attrs.write(buf)
	}
}

func readShape(c *cursor) shapeNode {
	n := shapeNode{id: c.int32()}
	n.attrs = readDict(c)
	count := c.int32()
	if c.err == nil && (count < 0 || int(count) > c.remaining()/8) {
		c.err = fmt.Errorf("%w: shape declares %d models", ErrChunkLength, count)
	}
	for i := int32(0); i < count && c.err == nil; i++ {
		m := shapeModel{model: c.int32()}
		m.attrs = readDict(c)
		n.models = append(n.models, m)
	}
	return n
}

// sceneChunks builds the scene graph for a multi-model document in emission order.
func sceneChunks(models []*VoxelGrid) []chunk {
	base := shapeBase(len(models))
	group := groupNode{id: rootGroupID}
	for i := range models {
		group.children = append(group.children, int32(modelTransformBase+i))
	}
	out := []chunk{
		transformNode{
			id:       rootTransformID,
			child:    rootGroupID,
			reserved: noReservedID,
			layer:    rootLayerID,
			frames:   []dict{{}},
		},
		group,
	}
	for i, m := range models {
		frame := dict{}
		if x, y, z := roundOffset(m.TransformOffset[0]), roundOffset(m.TransformOffset[1]), roundOffset(m.TransformOffset[2]); x != 0 || y != 0 || z != 0 {
			frame = append(frame, attr{attrTranslation, fmt.Sprintf("%d %d %d", x, y, z)})
		}
		out = append(out,
			transformNode{
				id:       int32(modelTransformBase + i),
				attrs:    dict{{attrName, m.Name}},
				child:    base + int32(i),
				reserved: noReservedID,
				frames:   []dict{frame},
			},
			shapeNode{
				id:     base + int32(i),
				models: []shapeModel{{model: int32(i)}},
			},
		)
	}
	return out
}

// sceneGraph collects the nodes found while reading.
type sceneGraph struct {
	transforms map[int32]transformNode
	groups     map[int32]groupNode
	shapes     map[int32]shapeNode
	order      []int32 // node ids in file order
}

func newSceneGraph() *sceneGraph {
	return &sceneGraph{
		transforms: make(map[int32]transformNode),
		groups:     make(map[int32]groupNode),
		shapes:     make(map[int32]shapeNode),
	}
}

func (s *sceneGraph) empty() bool {
	return len(s.transforms) == 0 && len(s.groups) == 0 && len(s.shapes) == 0
}

func (s *sceneGraph) has(id int32) bool {
	_, t := s.transforms[id]
	_, g := s.groups[id]
	_, sh := s.shapes[id]
	return t || g || sh
}

func (s *sceneGraph) addTransform(n transformNode) error {
	if s.has(n.id) {
		return fmt.Errorf("%w: duplicate node id %d", ErrSceneGraph, n.id)
	}
	s.transforms[n.id] = n
	s.order = append(s.order, n.id)
	return nil
}

func (s *sceneGraph) addGroup(n groupNode) error {
	if s.has(n.id) {
		return fmt.Errorf("%w: duplicate node id %d", ErrSceneGraph, n.id)
	}
	s.groups[n.id] = n
	s.order = append(s.order, n.id)
	return nil
}

func (s *sceneGraph) addShape(n shapeNode) error {
	if s.has(n.id) {
		return fmt.Errorf("%w: duplicate node id %d", ErrSceneGraph, n.id)
	}
	s.shapes[n.id] = n
	s.order = append(s.order, n.id)
	return nil
}

// apply walks every unreferenced node and copies names and accumulated
// translations onto the models referenced by shape nodes.
func (s *sceneGraph) apply(models []*VoxelGrid) error {
	if s.empty() {
		return nil
	}
	referenced := make(map[int32]bool)
	for _, t := range s.transforms {
		referenced[t.child] = true
	}
	for _, g := range s.groups {
		for _, ch := range g.children {
			referenced[ch] = true
		}
	}
	// Instanced shapes are reached once per transform; the last one wins.
	visited := make(map[int32]bool)
	for _, id := range s.order {
		if referenced[id] {
			continue
		}
		if err := s.walk(id, [3]float32{}, "", models, visited); err != nil {
			return err
		}
	}
	return nil
}

func (s *sceneGraph) walk(id int32, offset [3]float32, name string, models []*VoxelGrid, visited map[int32]bool) error {
	if visited[id] {
		return fmt.Errorf("%w: cycle through node %d", ErrSceneGraph, id)
	}
	visited[id] = true
	defer delete(visited, id)
	if t, ok := s.transforms[id]; ok {
		tr, err := t.translation()
		if err != nil {
			return err
		}
		for i := range offset {
			offset[i] += tr[i]
		}
		if n, ok := t.attrs.get(attrName); ok {
			name = n
		}
		return s.walk(t.child, offset, name, models, visited)
	}
	if g, ok := s.groups[id]; ok {
		for _, ch := range g.children {
			if err := s.walk(ch, offset, name, models, visited); err != nil {
				return err
			}
		}
		return nil
	}
	if sh, ok := s.shapes[id]; ok {
		for _, m := range sh.models {
			if m.model < 0 || int(m.model) >= len(models) {
				return fmt.Errorf("%w: shape %d references model %d of %d", ErrSceneGraph, id, m.model, len(models))
			}
			models[m.model].Name = name
			models[m.model].TransformOffset = offset
		}
		return nil
	}
	return fmt.Errorf("%w: node %d does not exist", ErrSceneGraph, id)
}
