package freqresp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	_, err := New("ok", []float64{1, 10}, []float64{0, -20}, []float64{-90, -180})
	require.NoError(t, err)

	_, err = New("short", []float64{1}, []float64{0}, []float64{0})
	assert.ErrorIs(t, err, ErrShape)
	_, err = New("ragged", []float64{1, 2}, []float64{0}, []float64{0, 1})
	assert.ErrorIs(t, err, ErrShape)
	_, err = New("desc", []float64{10, 1}, []float64{0, 0}, []float64{0, 0})
	assert.ErrorIs(t, err, ErrNotAscending)
	_, err = New("zero", []float64{0, 1}, []float64{0, 0}, []float64{0, 0})
	assert.ErrorIs(t, err, ErrNotAscending)
}

func TestProjections(t *testing.T) {
	r, err := New("", []float64{1, 10}, []float64{3, -6}, []float64{-100, -200})
	require.NoError(t, err)

	assert.Equal(t, 10.0, r.MagnitudePoints()[1].X)
	assert.Equal(t, -6.0, r.MagnitudePoints()[1].Y)
	assert.Equal(t, -200.0, r.PhasePoints()[1].Y)
	assert.Equal(t, -200.0, r.NicholsPoints()[1].X)
	assert.Equal(t, -6.0, r.NicholsPoints()[1].Y)
}

func TestWrapUnwrap(t *testing.T) {
	assert.Equal(t, []float64{180, -170, 0, 90, 180}, Wrap([]float64{-180, 190, 360, -270, 540}))

	r, _ := New("", []float64{1, 2, 3}, []float64{0, 0, 0}, []float64{-170, 170, 150})
	u := r.Unwrapped()
	assert.Equal(t, []float64{-170, -190, -210}, u.Phase)
	assert.Equal(t, []float64{-170, 170, 150}, r.Phase)
	assert.Equal(t, []float64{-170, 170, 150}, u.Wrapped().Phase)
}

func TestReadCSV(t *testing.T) {
	in := "# bode export\nfrequency,magnitude,phase\n1, 0, -90\n10,-20,-135\n100,-40,-170\n"
	r, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10, 100}, r.Frequency)
	assert.Equal(t, []float64{0, -20, -40}, r.Magnitude)
	assert.Equal(t, []float64{-90, -135, -170}, r.Phase)

	_, err = ReadCSV(strings.NewReader("1,0,-90\n2,x,-100\n"))
	assert.Error(t, err)
	_, err = ReadCSV(strings.NewReader("1,0\n2,1\n"))
	assert.ErrorIs(t, err, ErrShape)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	r, _ := New("", []float64{0.5, 5}, []float64{1.25, -3}, []float64{-45, -91.5})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))
	assert.True(t, strings.HasPrefix(buf.String(), "frequency,magnitude_db,phase_deg\n"))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.Frequency, back.Frequency)
	assert.Equal(t, r.Phase, back.Phase)
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"loop.csv":  "1,0,-90\n10,-20,-180\n",
		"loop.json": `{"frequency":[1,10],"magnitude":[0,-20],"phase":[-90,-180]}`,
		"loop.yaml": "name: plant\nfrequency: [1, 10]\nmagnitude: [0, -20]\nphase: [-90, -180]\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		r, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, []float64{1, 10}, r.Frequency, name)
		assert.Equal(t, []float64{-90, -180}, r.Phase, name)
	}

	r, err := Load(filepath.Join(dir, "loop.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "plant", r.Name)
	r, err = Load(filepath.Join(dir, "loop.csv"))
	require.NoError(t, err)
	assert.Equal(t, "loop", r.Name)

	bad := filepath.Join(dir, "loop.bin")
	require.NoError(t, os.WriteFile(bad, nil, 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
