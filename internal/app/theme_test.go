package app

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"

	"smart-chart/pkg/colorutil"
)

func TestChartThemeIgnoresDarkVariant(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	th := &ChartTheme{}
	light := theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantLight)
	assert.Equal(t, light, th.Color(theme.ColorNameBackground, theme.VariantDark))
	assert.Equal(t, light, th.Color(theme.ColorNameBackground, theme.VariantLight))
}

func TestChartThemeUsesSeriesPalette(t *testing.T) {
	th := &ChartTheme{}
	assert.Equal(t, colorutil.SeriesColor(0), th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t, float32(3), th.Size(theme.SizeNamePadding))
	assert.Equal(t, theme.DefaultTheme().Size(theme.SizeNameScrollBar), th.Size(theme.SizeNameScrollBar))
}
