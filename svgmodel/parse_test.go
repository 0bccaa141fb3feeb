package svgmodel

import (
	"strings"
	"testing"

	"github.com/benoitkugler/lasersvg/svgdoc"
	"github.com/benoitkugler/lasersvg/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const face1SVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 20 20">
  <g id="Face1">
    <g id="Perimeter">
      <path d="M0 0 L10 0 L10 10 L0 10 Z"/>
    </g>
    <g id="Cuts">
      <line x1="1" y1="1" x2="9" y2="1"/>
      <path d="M1 9 L9 9"/>
    </g>
  </g>
</svg>`

func readDoc(t *testing.T, content string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Read(strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func wrap(body string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">` + body + `</svg>`
}

func TestParseFace1(t *testing.T) {
	model, err := Parse(readDoc(t, face1SVG))
	require.NoError(t, err)

	face := model.Tree.Group("Face1")
	require.NotNil(t, face)
	assert.Equal(t, []string{"Perimeter", "Cuts"}, face.Names())
	assert.Equal(t, []string{"M0 0 L10 0 L10 10 L0 10 Z"}, face.Group("Perimeter").Leaf().Paths)
	assert.Equal(t, []string{"M1 1 L9 1", "M1 9 L9 9"}, face.Group("Cuts").Leaf().Paths)
	assert.Nil(t, face.Leaf())
	assert.Equal(t, map[string]string{"width": "20", "height": "20", "viewBox": "0 0 20 20"}, model.Attrib)

	text, err := EncodeText(model, 0)
	require.NoError(t, err)
	expected := `{"tree":{"Face1":{"Perimeter":{"paths":["M0 0 L10 0 L10 10 L0 10 Z"]},"Cuts":{"paths":["M1 1 L9 1","M1 9 L9 9"]}}},` +
		`"attrib":{"height":"20","viewBox":"0 0 20 20","width":"20"}}`
	assert.Equal(t, expected, string(text))
}

func TestParseNamingFallback(t *testing.T) {
	const content = `<g id="g1"><path d="M0 0 L1 1"/></g><g id="g2" data-name="named"/>`

	t.Run("pure", func(t *testing.T) {
		doc := readDoc(t, wrap(content))
		model, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"g1", "named"}, model.Tree.Names())

		_, has := doc.Root.Children[0].Get("data-name")
		assert.False(t, has, "input document must not be modified")
	})

	t.Run("backfill", func(t *testing.T) {
		doc := readDoc(t, wrap(content))
		model, err := Parse(doc, WithNameBackfill(true))
		require.NoError(t, err)
		assert.Equal(t, []string{"g1", "named"}, model.Tree.Names())

		name, has := doc.Root.Children[0].Get("data-name")
		assert.True(t, has)
		assert.Equal(t, "g1", name)
		name, _ = doc.Root.Children[1].Get("data-name")
		assert.Equal(t, "named", name)

		// parsing again gives the same model
		model2, err := Parse(doc)
		require.NoError(t, err)
		assert.True(t, model.Tree.Equal(model2.Tree))
	})
}

func TestParseMissingName(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g><path d="M0 0 L1 1"/></g>`)))
	assert.Nil(t, model)
	var naming *NamingError
	require.ErrorAs(t, err, &naming)
	assert.ErrorIs(t, err, ErrMissingName)
	assert.Empty(t, naming.Path)
	assert.Equal(t, 0, naming.Index)

	_, err = Parse(readDoc(t, wrap(`<g id="A"><g data-name="B"><rect width="2" height="2"/><g/></g></g>`)))
	require.ErrorAs(t, err, &naming)
	assert.Equal(t, []string{"A", "B"}, naming.Path)
	assert.Equal(t, 1, naming.Index)
	assert.Contains(t, err.Error(), "/A/B")
}

func TestParseOrder(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A">
		<path d="M0 0 L5 0"/>
		<path d="M0 5 L5 5"/>
		<rect x="1" y="1" width="2" height="2"/>
	</g>`)))
	require.NoError(t, err)
	assert.Equal(t, []string{"M0 0 L5 0", "M0 5 L5 5", "M1 1 L3 1 L3 3 L1 3 Z"}, model.Tree.Group("A").Leaf().Paths)
}

func TestParseStyleLastWins(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A">
		<path d="M0 0 L5 0" style="fill:red"/>
		<path d="M0 5 L5 5"/>
		<path d="M0 9 L5 9" style="fill:blue"/>
		<path d="M0 7 L5 7"/>
	</g>`)))
	require.NoError(t, err)
	leaf := model.Tree.Group("A").Leaf()
	assert.Equal(t, "fill:blue", leaf.Style)
	assert.Len(t, leaf.Paths, 4)

	// elements drawing nothing still update the style
	model, err = Parse(readDoc(t, wrap(`<g id="A">
		<rect width="0" height="0" style="fill:red"/>
		<circle r="0" style="fill:blue"/>
	</g>`)))
	require.NoError(t, err)
	leaf = model.Tree.Group("A").Leaf()
	require.NotNil(t, leaf)
	assert.Empty(t, leaf.Paths)
	assert.Equal(t, "fill:blue", leaf.Style)
}

func TestParseMixedNode(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A">
		<g id="B"><path d="M0 0 L1 0"/></g>
		<path d="M0 5 L5 5"/>
		<g id="C"/>
		<path d="M0 6 L5 6" style="stroke:red"/>
	</g>`)))
	require.NoError(t, err)
	a := model.Tree.Group("A")
	assert.Equal(t, []string{"B", "C"}, a.Names())
	assert.Equal(t, []string{"M0 5 L5 5", "M0 6 L5 6"}, a.Leaf().Paths)
	assert.Equal(t, 1, a.LeafPosition())

	text, err := EncodeText(model, 0)
	require.NoError(t, err)
	assert.Contains(t, string(text), `"A":{"B":{"paths":["M0 0 L1 0"]},"paths":["M0 5 L5 5","M0 6 L5 6"],"style":"stroke:red","C":{}}`)

	doc, err := Serialize(model)
	require.NoError(t, err)
	children := doc.Root.Children[0].Children
	require.Len(t, children, 4)
	assert.True(t, children[0].Is("g"))
	assert.True(t, children[1].Is("path"))
	assert.True(t, children[2].Is("path"))
	assert.True(t, children[3].Is("g"))
}

func TestParseGroupNamedPaths(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A"><g id="paths"><path d="M0 0 L1 0"/></g><g id="style"/></g>`)))
	require.NoError(t, err)
	a := model.Tree.Group("A")
	assert.Nil(t, a.Leaf())
	assert.Equal(t, []string{"paths", "style"}, a.Names())
	assert.Equal(t, []string{"M0 0 L1 0"}, a.Group("paths").Leaf().Paths)

	text, err := EncodeText(model, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"tree":{"A":{"paths":{"paths":["M0 0 L1 0"]},"style":{}}},"attrib":{"height":"100","width":"100"}}`, string(text))

	decoded, err := DecodeText(text)
	require.NoError(t, err)
	assert.True(t, model.Tree.Equal(decoded.Tree))
}

func TestParseDuplicateNames(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A"/><g id="B"/><g id="A"><path d="M0 0 L1 0"/></g>`)))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, model.Tree.Names())
	assert.NotNil(t, model.Tree.Group("A").Leaf())
}

func TestParseSkipsMetadata(t *testing.T) {
	model, err := Parse(readDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd" width="10">
		<title>Box</title>
		<sodipodi:namedview pagecolor="#ffffff"/>
		<defs><style>.cls-1{fill:none}</style></defs>
		<metadata><rdf/></metadata>
		<g id="A"><desc>outline</desc><path d="M0 0 L1 0"/></g>
	</svg>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, model.Tree.Names())
	assert.Nil(t, model.Tree.Leaf())
	assert.Equal(t, []string{"M0 0 L1 0"}, model.Tree.Group("A").Leaf().Paths)
}

func TestParseTransforms(t *testing.T) {
	model, err := Parse(readDoc(t, wrap(`<g id="A" transform="translate(10 0)">
		<g id="B" transform="scale(2)"><path d="M0 0 L1 0"/></g>
		<path d="M0 0 L1 0" transform="translate(0 5)"/>
	</g>`)))
	require.NoError(t, err)
	a := model.Tree.Group("A")
	assert.Equal(t, []string{"M10 5 L11 5"}, a.Leaf().Paths)
	assert.Equal(t, []string{"M10 0 L12 0"}, a.Group("B").Leaf().Paths)

	_, err = Parse(readDoc(t, wrap(`<g id="A"><g id="B" transform="translate(1 2 3)"/></g>`)))
	var parseErr *DocumentParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, []string{"A", "B"}, parseErr.Path)
	assert.ErrorIs(t, err, svgpath.ErrParamMismatch)
}

func TestParseErrorModes(t *testing.T) {
	const content = `<g id="A"><text x="0" y="0">Hello</text><path d="M0 0 L1 0"/></g>`

	model, err := Parse(readDoc(t, wrap(content)), WithErrorMode(svgpath.IgnoreErrorMode))
	require.NoError(t, err)
	assert.Equal(t, []string{"M0 0 L1 0"}, model.Tree.Group("A").Leaf().Paths)

	model, err = Parse(readDoc(t, wrap(content)), WithErrorMode(svgpath.StrictErrorMode))
	assert.Nil(t, model)
	var parseErr *DocumentParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, []string{"A"}, parseErr.Path)
	assert.ErrorIs(t, err, svgpath.ErrUnsupportedElement)

	_, err = Parse(readDoc(t, wrap(`<g id="A"><path d="M0 0 L1"/></g>`)))
	assert.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, svgpath.ErrParamMismatch)
}

func TestParseNoRoot(t *testing.T) {
	_, err := Parse(nil)
	var parseErr *DocumentParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, svgdoc.ErrNoRoot)
}

// fakeGeometry returns the element names as paths,
// and joins them when combining.
type fakeGeometry struct {
	ctms []svgpath.Matrix2D
}

func (f *fakeGeometry) ElementPaths(el *svgdoc.Element, _ map[string]string, ctm svgpath.Matrix2D) ([]string, error) {
	f.ctms = append(f.ctms, ctm)
	return []string{el.Name.Local}, nil
}

func (f *fakeGeometry) Combine(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	return []string{strings.Join(paths, "+")}, nil
}

func TestParseCustomGeometry(t *testing.T) {
	geom := new(fakeGeometry)
	model, err := Parse(readDoc(t, wrap(`<g id="A" transform="translate(1 2)"><rect/><text/></g>`)), WithGeometry(geom))
	require.NoError(t, err)
	assert.Equal(t, []string{"rect", "text"}, model.Tree.Group("A").Leaf().Paths)
	require.Len(t, geom.ctms, 2)
	assert.Equal(t, svgpath.Identity.Translate(1, 2), geom.ctms[0])

	doc, err := Serialize(model, WithGeometry(geom))
	require.NoError(t, err)
	group := doc.Root.Children[0]
	require.Len(t, group.Children, 1)
	d, _ := group.Children[0].Get("d")
	assert.Equal(t, "rect+text", d)
}
