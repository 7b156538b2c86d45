package styling

import (
	"image/color"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
)

const BUILTIN_STYLEID = "__gomgl_builtin"

type ItemStyle interface {
	GetZIndex() int
}

type FillStyle struct {
	FillColor    color.Color
	OutlineColor color.Color
	ZIndex       int
}

func (fs *FillStyle) GetZIndex() int {
	return fs.ZIndex
}

type LineStyle struct {
	LineColor      color.Color
	LineDashPolicy []float64
	LineWidth      float64
	LineCap        string
	LineJoin       string
	ZIndex         int
}

func (ls *LineStyle) GetZIndex() int {
	return ls.ZIndex
}

type CircleStyle struct {
	Radius      float64
	FillColor   color.Color
	StrokeColor color.Color
	StrokeWidth float64
	ZIndex      int
}

func (cs *CircleStyle) GetZIndex() int {
	return cs.ZIndex
}

type SymbolStyle struct {
	Text          string
	TextSize      float64
	TextColor     color.Color
	TextHaloColor color.Color
	TextHaloWidth float64
	TextOffset    [2]float64 // ems
	IconImage     string
	IconSize      float64
	IconOpacity   float64
	IconColor     color.Color // only used by SDF icons
	ZIndex        int
}

func (ss *SymbolStyle) GetZIndex() int {
	return ss.ZIndex
}

// SortByZIndex sorts items so that the lowest z-index is drawn first. Items with the same z-index keep their order.
func SortByZIndex[T any](items []T, getStyle func(T) ItemStyle) {
	sort.SliceStable(items, func(i, j int) bool {
		return getStyle(items[i]).GetZIndex() < getStyle(items[j]).GetZIndex()
	})
}

// Style is a named style document
type Style interface {
	GetStyleID() string
	GetDefinition() string
}

type NamedStyle struct {
	ID         string
	Definition string
}

func (s *NamedStyle) GetStyleID() string {
	return s.ID
}

func (s *NamedStyle) GetDefinition() string {
	return s.Definition
}

type StyleSet struct {
	stylesMap      map[string]Style // map[Style ID]Style
	defaultStyleID string
}

func NewStyleSet(styles []Style, defaultStyleID string) (*StyleSet, errorsx.Error) {
	styleSet := &StyleSet{
		stylesMap:      make(map[string]Style),
		defaultStyleID: defaultStyleID,
	}

	defaultIDFound := false

	for _, style := range styles {
		styleID := style.GetStyleID()
		_, ok := styleSet.stylesMap[styleID]
		if ok {
			return nil, errorsx.Errorf("duplicate style ID found: %q", styleID)
		}

		styleSet.stylesMap[styleID] = style

		if defaultStyleID == styleID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Errorf("default ID %q not found in any supplied styles", defaultStyleID)
	}

	return styleSet, nil
}

func (s *StyleSet) GetStyleByID(id string) Style {
	return s.stylesMap[id]
}

func (s *StyleSet) GetDefaultStyle() Style {
	return s.stylesMap[s.defaultStyleID]
}

func (s *StyleSet) GetAllStyleIDs() []string {
	var styleIDs []string

	for id := range s.stylesMap {
		styleIDs = append(styleIDs, id)
	}

	sort.Strings(styleIDs)

	return styleIDs
}
