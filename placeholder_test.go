package pptdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureLayoutTree(t *testing.T, p *Presentation) *ShapeTree {
	t.Helper()
	l, err := slideOf(t, p, 1).Layout()
	require.NoError(t, err)
	return l.Shapes()
}

func TestResolvePlaceholderExactBeatsFallback(t *testing.T) {
	p := openFixture(t)
	layout := fixtureLayoutTree(t, p)

	// "Body" (type only) precedes the indexed body placeholder in the layout
	m, ok := ResolvePlaceholder(layout, PlaceholderKey{Type: PlaceholderBody, Index: 1, HasIndex: true})
	require.True(t, ok)
	assert.Equal(t, "Content Placeholder 2", m.Name())

	m, ok = ResolvePlaceholder(layout, PlaceholderKey{Type: PlaceholderBody, Index: 7, HasIndex: true})
	require.True(t, ok)
	assert.Equal(t, "Body", m.Name())

	m, ok = ResolvePlaceholder(layout, PlaceholderKey{Type: PlaceholderBody})
	require.True(t, ok)
	assert.Equal(t, "Body", m.Name())
}

func TestResolvePlaceholderNoMatch(t *testing.T) {
	p := openFixture(t)
	layout := fixtureLayoutTree(t, p)

	_, ok := ResolvePlaceholder(layout, PlaceholderKey{Type: PlaceholderPicture})
	assert.False(t, ok)
	_, ok = ResolvePlaceholder(layout, PlaceholderKey{Type: PlaceholderCustom, Index: 99, HasIndex: true})
	assert.False(t, ok, "untyped keys never fall back")
	_, ok = ResolvePlaceholder(nil, PlaceholderKey{Type: PlaceholderTitle})
	assert.False(t, ok)
}

func TestResolvePlaceholderIgnoresNestedShapes(t *testing.T) {
	group := `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="3" name="G"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="4" name="Nested"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp></p:grpSp>`
	tree := detachedTree(t, group)
	_, ok := ResolvePlaceholder(tree, PlaceholderKey{Type: PlaceholderTitle})
	assert.False(t, ok)
}

func TestPlaceholderKeys(t *testing.T) {
	p := openFixture(t)
	tree := slideOf(t, p, 1).Shapes()

	key, ok := shapeNamed(t, tree, "Content 2").Placeholder()
	require.True(t, ok)
	assert.Equal(t, PlaceholderKey{Type: PlaceholderBody, Index: 1, HasIndex: true}, key)
	assert.Equal(t, "body#1", key.String())

	key, ok = shapeNamed(t, tree, "Title 1").Placeholder()
	require.True(t, ok)
	assert.Equal(t, "title", key.String())
	assert.False(t, key.Matches(PlaceholderKey{Type: PlaceholderTitle, HasIndex: true}))
	assert.True(t, key.Matches(PlaceholderKey{Type: PlaceholderTitle}))

	_, ok = shapeNamed(t, tree, "TextBox 3").Placeholder()
	assert.False(t, ok)
	assert.Nil(t, shapeNamed(t, tree, "TextBox 3").Inherited())

	assert.Equal(t, "custom#3", PlaceholderKey{Index: 3, HasIndex: true}.String())
}

func TestPlaceholderBadIndexIsAbsent(t *testing.T) {
	tree := detachedTree(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="x"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="-4"/></p:nvPr></p:nvSpPr></p:sp>`)
	key, ok := tree.Shapes()[0].Placeholder()
	require.True(t, ok)
	assert.False(t, key.HasIndex)
}

func TestInheritedChain(t *testing.T) {
	p := openFixture(t)
	tree := slideOf(t, p, 1).Shapes()

	var names []string
	for _, s := range shapeNamed(t, tree, "Title 1").Inherited() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"Title 1", "Title Placeholder 1"}, names)

	chain := shapeNamed(t, tree, "Content 2").Inherited()
	require.Len(t, chain, 2)
	assert.Equal(t, "Content Placeholder 2", chain[0].Name())
	assert.Equal(t, "Text Placeholder 2", chain[1].Name())
	assert.Equal(t, "ppt/slideMasters/slideMaster1.xml", chain[1].Part().Name())
}

func TestInheritedGeometry(t *testing.T) {
	p := openFixture(t)
	tree := slideOf(t, p, 1).Shapes()

	// the layout title has no transform, the master supplies it
	title := shapeNamed(t, tree, "Title 1")
	assert.Equal(t, int64(457200), title.X())
	assert.Equal(t, int64(274638), title.Y())
	assert.Equal(t, 48.0, title.XPixels())

	content := shapeNamed(t, tree, "Content 2")
	assert.Equal(t, 1.0, content.XPixels())
	assert.Equal(t, 2.0, content.YPixels())
	assert.Equal(t, 20.0, content.WidthPixels())
	assert.Equal(t, 10.0, content.HeightPixels())
}

func TestSetGeometryOnInheritingPlaceholder(t *testing.T) {
	p := openFixture(t)
	title := shapeNamed(t, slideOf(t, p, 1).Shapes(), "Title 1")

	require.NoError(t, title.SetX(0))
	assert.Equal(t, int64(0), title.X())
	assert.Equal(t, int64(274638), title.Y())
	assert.Equal(t, int64(8229600), title.Width())
	assert.Equal(t, int64(1143000), title.Height())
	require.NotNil(t, title.Node().Path("spPr", "xfrm", "off"))

	master := title.Inherited()[1]
	assert.Equal(t, int64(457200), master.X(), "the master is not modified")
}
