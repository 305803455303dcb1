package pptdom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CellValue is a cached spreadsheet value: a number or a text.
type CellValue struct {
	Number   float64
	Text     string
	IsNumber bool
}

func (v CellValue) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	}
	return v.Text
}

// ChartPoint is one cell referenced by a series formula. Value is nil when
// the cell has no cached value.
type ChartPoint struct {
	Sheet   string
	Address string
	Value   *CellValue
}

var (
	formulaQuotes = strings.NewReplacer("$", "", "'", "")
	addressRe     = regexp.MustCompile(`^[A-Z]{1,3}[0-9]+(:[A-Z]{1,3}[0-9]+)?$`)
)

// parseFormula splits a series formula such as "Sheet1!$A$2:$A$5" or
// "(Sheet1!A2:A3,Sheet1!A7)" into its sheet name and the cell addresses it
// covers, in formula order.
func parseFormula(formula string) (sheet string, addrs []string, err error) {
	f := formulaQuotes.Replace(strings.TrimSpace(formula))
	sheet = sheetName(f)

	body := strings.NewReplacer("(", "", ")", "").Replace(f)
	for _, tok := range strings.Split(body, ",") {
		if i := strings.LastIndexByte(tok, '!'); i >= 0 {
			tok = tok[i+1:]
		}
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if !addressRe.MatchString(tok) {
			return "", nil, fmt.Errorf("%w: %q in formula %q", ErrMalformedReference, tok, formula)
		}
		cells, err := ExpandRange(tok)
		if err != nil {
			return "", nil, err
		}
		addrs = append(addrs, cells...)
	}
	if len(addrs) == 0 {
		return "", nil, fmt.Errorf("%w: no cell address in formula %q", ErrMalformedReference, formula)
	}
	return sheet, addrs, nil
}

// sheetName returns the run of letters, digits and spaces right before the
// first "!", NFC normalized.
func sheetName(f string) string {
	end := strings.IndexByte(f, '!')
	if end < 0 {
		return ""
	}
	runes := []rune(f[:end])
	start := len(runes)
	for start > 0 {
		r := runes[start-1]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			break
		}
		start--
	}
	return norm.NFC.String(strings.TrimSpace(string(runes[start:])))
}

// valueRef returns the c:numRef or c:strRef of a series element's values
// (c:val for category charts, c:yVal for scatter and bubble charts).
func valueRef(series *Node) *Node {
	return dataRef(series, "val", "yVal")
}

func dataRef(series *Node, containers ...string) *Node {
	for _, c := range containers {
		holder := series.Child(c)
		if holder == nil {
			continue
		}
		for _, ref := range []string{"numRef", "strRef", "multiLvlStrRef"} {
			if r := holder.Child(ref); r != nil {
				return r
			}
		}
	}
	return nil
}

// cachedValues maps point index to value for a c:numCache, c:strCache or
// c:multiLvlStrCache. Points without an idx attribute take their position.
func cachedValues(ref *Node) map[int]*CellValue {
	out := make(map[int]*CellValue)
	var cache *Node
	for _, name := range []string{"numCache", "strCache", "multiLvlStrCache"} {
		if cache = ref.Child(name); cache != nil {
			break
		}
	}
	if cache == nil {
		return out
	}
	numeric := cache.Name.Local == "numCache"
	if cache.Name.Local == "multiLvlStrCache" {
		// innermost level carries the leaf labels
		cache = cache.Child("lvl")
	}
	for pos, pt := range cache.ChildrenNamed("pt") {
		idx := pos
		if v, ok := pt.Attr("idx"); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				continue
			}
			idx = n
		}
		text := pt.Child("v").Text()
		cv := &CellValue{Text: text}
		if numeric {
			if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
				cv.Number, cv.IsNumber = f, true
			}
		}
		out[idx] = cv
	}
	return out
}

func pointsOf(ref *Node) ([]ChartPoint, error) {
	sheet, addrs, err := parseFormula(ref.Child("f").Text())
	if err != nil {
		return nil, err
	}
	values := cachedValues(ref)
	points := make([]ChartPoint, len(addrs))
	for i, a := range addrs {
		points[i] = ChartPoint{Sheet: sheet, Address: a, Value: values[i]}
	}
	return points, nil
}

// ExtractSeries builds the points of a c:ser element: one per cell address
// of its value formula, in formula order, each paired with the cached value
// of the same index. A series whose formula has no parseable address fails
// with ErrMalformedReference.
func ExtractSeries(series *Node) ([]ChartPoint, error) {
	ref := valueRef(series)
	if ref == nil {
		return nil, fmt.Errorf("%w: series has no value reference", ErrMalformedReference)
	}
	return pointsOf(ref)
}

// Chart is a chart shape together with its chart part.
type Chart struct {
	shape *Shape
	part  *Part
	root  *Node
}

// Chart opens the chart part referenced by a chart graphic frame.
func (s *Shape) Chart() (*Chart, error) {
	if s.kind != ShapeChart {
		return nil, fmt.Errorf("%w: %q is a %s", ErrNotChart, s.Name(), s.kind)
	}
	if s.tree.part == nil {
		return nil, fmt.Errorf("%w: shape is not hosted in a part", ErrPartNotFound)
	}
	data := s.node.Path("graphic", "graphicData")
	var relID string
	for _, c := range data.children {
		if v, ok := c.Attr("r:id"); ok {
			relID = v
			break
		}
	}
	part, err := s.tree.part.Related(relID)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", s.Name(), err)
	}
	root, err := part.Root()
	if err != nil {
		return nil, err
	}
	return &Chart{shape: s, part: part, root: root}, nil
}

func (c *Chart) Part() *Part   { return c.part }
func (c *Chart) Shape() *Shape { return c.shape }

func (c *Chart) plotArea() *Node {
	return c.root.Path("chart", "plotArea")
}

// plots returns the chart type elements of the plot area (c:barChart, ...).
func (c *Chart) plots() []*Node {
	pa := c.plotArea()
	if pa == nil {
		return nil
	}
	var out []*Node
	for _, n := range pa.children {
		if strings.HasSuffix(n.Name.Local, "Chart") {
			out = append(out, n)
		}
	}
	return out
}

// ChartTypeCombination is reported for charts with more than one plot.
const ChartTypeCombination = "Combination"

// Type returns the local name of the chart's plot element, e.g. "barChart",
// ChartTypeCombination when there are several, or "" when there is none.
func (c *Chart) Type() string {
	plots := c.plots()
	switch len(plots) {
	case 0:
		return ""
	case 1:
		return plots[0].Name.Local
	}
	return ChartTypeCombination
}

// Title returns the chart title from its rich text or its cached string.
// A chart without an explicit title whose only series is named reports that
// name, the way the title is displayed.
func (c *Chart) Title() (string, bool) {
	chart := c.root.Child("chart")
	title := chart.Child("title")
	if title == nil {
		if chart.Child("autoTitleDeleted").AttrOr("val", "0") == "1" {
			return "", false
		}
		if s := c.Series(); len(s) == 1 && s[0].Name() != "" {
			return s[0].Name(), true
		}
		return "", false
	}
	tx := title.Child("tx")
	if rich := tx.Child("rich"); rich != nil {
		var sb strings.Builder
		for _, t := range rich.Descendants("t") {
			sb.WriteString(t.Text())
		}
		return sb.String(), true
	}
	if v := tx.Path("strRef", "strCache", "pt", "v"); v != nil {
		return v.Text(), true
	}
	return "", false
}

// Series returns every series of every plot in document order.
func (c *Chart) Series() []*Series {
	var out []*Series
	for _, p := range c.plots() {
		for _, s := range p.ChildrenNamed("ser") {
			out = append(out, &Series{node: s})
		}
	}
	return out
}

// Categories returns the category (or x value) points of the first series.
// It returns nil when the chart has no category reference.
func (c *Chart) Categories() ([]ChartPoint, error) {
	series := c.Series()
	if len(series) == 0 {
		return nil, nil
	}
	ref := dataRef(series[0].node, "cat", "xVal")
	if ref == nil {
		return nil, nil
	}
	return pointsOf(ref)
}

// Series is a c:ser element of a chart.
type Series struct {
	node *Node
}

func (s *Series) Node() *Node { return s.node }

// Name returns the series name from its cached reference or literal value.
func (s *Series) Name() string {
	tx := s.node.Child("tx")
	if v := tx.Path("strRef", "strCache", "pt", "v"); v != nil {
		return v.Text()
	}
	return tx.Child("v").Text()
}

// Formula returns the raw value formula, e.g. "Sheet1!$B$2:$B$5".
func (s *Series) Formula() string {
	return valueRef(s.node).Child("f").Text()
}

// Points extracts the series points. They are rebuilt on every call.
func (s *Series) Points() ([]ChartPoint, error) {
	return ExtractSeries(s.node)
}
