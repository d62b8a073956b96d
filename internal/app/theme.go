package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"smart-chart/pkg/colorutil"
)

// ChartTheme keeps the window chrome consistent with the rendered charts.
// Charts are rasterized on white, so the light variant is always used, and
// primary and selection colors come from the series palette.
type ChartTheme struct{}

var _ fyne.Theme = (*ChartTheme)(nil)

func (t *ChartTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.SeriesColor(0)
	case theme.ColorNameSelection:
		c := colorutil.SeriesColor(1)
		c.A = 0x60
		return c
	case theme.ColorNameSeparator:
		return colorutil.Gray
	default:
		return theme.DefaultTheme().Color(name, theme.VariantLight)
	}
}

func (t *ChartTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ChartTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size tightens padding so the split view leaves more room for the plot
// area; the readout and overlay list use a slightly smaller text size.
func (t *ChartTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 13
	case theme.SizeNameSeparatorThickness:
		return 1
	default:
		return theme.DefaultTheme().Size(name)
	}
}
