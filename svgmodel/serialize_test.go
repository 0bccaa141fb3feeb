package svgmodel

import (
	"errors"
	"strings"
	"testing"

	"github.com/benoitkugler/lasersvg/svgdoc"
	"github.com/benoitkugler/lasersvg/svgpath"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const face1Model = `{"tree":{"Face1":{"Perimeter":{"paths":["M0 0 L10 0 L10 10 L0 10 Z"]},"Cuts":{"paths":["M1 1 L9 1","M1 9 L9 9"]}}},` +
	`"attrib":{"height":"20","viewBox":"0 0 20 20","width":"20"}}`

func TestSerializeFace1(t *testing.T) {
	model, err := DecodeText([]byte(face1Model))
	require.NoError(t, err)

	doc, err := Serialize(model)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" height="20" viewBox="0 0 20 20" width="20">
  <g id="Face1" data-name="Face1">
    <g id="Perimeter" data-name="Perimeter">
      <path d="M0 0 L10 0 L10 10 L0 10 Z"/>
    </g>
    <g id="Cuts" data-name="Cuts">
      <path d="M1 1 L9 1"/>
      <path d="M1 9 L9 9"/>
    </g>
  </g>
</svg>
`
	assert.Equal(t, expected, doc.String())
}

func TestSerializeStyle(t *testing.T) {
	tree := NewNode()
	cuts := NewNode()
	cuts.AddPaths("M0 0 L1 0 L1 1 Z", "M5 5 L6 5 L6 6 Z")
	cuts.SetStyle("fill:none;stroke:#ff0000")
	tree.SetGroup("Cuts", cuts)

	doc, err := Serialize(&Model{Tree: tree, Attrib: map[string]string{}})
	require.NoError(t, err)
	group := doc.Root.Children[0]
	require.Len(t, group.Children, 2)
	for _, el := range group.Children {
		style, ok := el.Get("style")
		assert.True(t, ok)
		assert.Equal(t, "fill:none;stroke:#ff0000", style)
	}
}

func TestSerializeCombine(t *testing.T) {
	tree := NewNode()
	tree.AddPaths("M0 0 L10 0", "M10 10 L10 0", "M20 20 L30 30")

	doc, err := Serialize(&Model{Tree: tree, Attrib: map[string]string{}})
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 2)
	d, _ := doc.Root.Children[0].Get("d")
	assert.Equal(t, "M0 0 L10 0 L10 10", d)
	d, _ = doc.Root.Children[1].Get("d")
	assert.Equal(t, "M20 20 L30 30", d)

	doc, err = Serialize(&Model{Tree: tree, Attrib: map[string]string{}}, WithCombine(false))
	require.NoError(t, err)
	assert.Len(t, doc.Root.Children, 3)
}

func TestSerializeShapeValidation(t *testing.T) {
	for _, model := range []*Model{
		nil,
		{Attrib: map[string]string{}},
		{Tree: NewNode()},
	} {
		doc, err := Serialize(model)
		assert.Nil(t, doc)
		var shape *ModelShapeError
		assert.ErrorAs(t, err, &shape)
	}

	doc, err := DecodeText([]byte(`{"tree":"not-a-map","attrib":{}}`))
	assert.Nil(t, doc)
	var shape *ModelShapeError
	assert.ErrorAs(t, err, &shape)

	// nil sub group
	tree := NewNode()
	tree.SetGroup("A", NewNode())
	tree.Group("A").SetGroup("B", nil)
	out, err := Serialize(&Model{Tree: tree, Attrib: map[string]string{}})
	assert.Nil(t, out)
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, []string{"A", "B"}, shape.Path)
}

func TestSerializeInvalidPath(t *testing.T) {
	tree := NewNode()
	tree.SetGroup("A", NewNode())
	tree.Group("A").AddPaths("M0 0 L1 0", "not a path")

	doc, err := Serialize(&Model{Tree: tree, Attrib: map[string]string{}})
	assert.Nil(t, doc)
	var shape *ModelShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, []string{"A"}, shape.Path)
	assert.True(t, errors.Is(err, svgpath.ErrParamMismatch) || errors.Is(err, svgpath.ErrCommandUnknown))
}

func TestRoundTrip(t *testing.T) {
	const input = `{"tree":{
		"Faces":{
			"Face1":{"Perimeter":{"paths":["M0 0 L10 0 L10 10 L0 10 Z"],"style":"stroke:red"},
					 "Cuts":{"paths":["M1 1 L9 1","M1 9 L9 9"]}},
			"Face2":{"Perimeter":{"paths":["M20 0 L30 0 L30 10 Z"]}}},
		"Joints":{
			"Joint1":{"A":{"paths":["M0 0 L0 10"]},"B":{"paths":["M20 0 L20 10"]}},
			"paths":["M50 50 L60 50 L60 60 L50 60 Z"],
			"Joint2":{}}},
		"attrib":{"width":"100mm","height":"50mm","viewBox":"0 0 100 50"}}`

	model, err := DecodeText([]byte(input))
	require.NoError(t, err)

	doc, err := Serialize(model)
	require.NoError(t, err)

	// through text, as a file would be
	doc, err = svgdoc.Read(strings.NewReader(doc.String()))
	require.NoError(t, err)

	back, err := Parse(doc)
	require.NoError(t, err)
	if diff := cmp.Diff(model, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	text1, err := EncodeText(model, 2)
	require.NoError(t, err)
	text2, err := EncodeText(back, 2)
	require.NoError(t, err)
	assert.Equal(t, string(text1), string(text2))
}

func TestRoundTripCombined(t *testing.T) {
	tree := NewNode()
	tree.SetGroup("A", NewNode())
	tree.Group("A").AddPaths("M0 0 L10 0", "M10 0 L10 10", "M10 10 L0 10 L0 0 Z")
	model := &Model{Tree: tree, Attrib: map[string]string{}}

	doc, err := Serialize(model)
	require.NoError(t, err)
	back, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, back.Tree.Names())
	assert.Equal(t, []string{"M0 0 L10 0 L10 10", "M10 10 L0 10 L0 0 Z"}, back.Tree.Group("A").Leaf().Paths)
}
