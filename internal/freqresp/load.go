package freqresp

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFile is returned for file extensions Load cannot read.
var ErrUnsupportedFile = errors.New("unsupported response file type")

// Load reads a response from a .csv, .json, .yaml or .yml file.
func Load(path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open response: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var r *Response
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		r, err = ReadCSV(f)
	case ".json":
		r, err = decode(json.NewDecoder(f).Decode)
	case ".yaml", ".yml":
		r, err = decode(yaml.NewDecoder(f).Decode)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if r.Name == "" {
		r.Name = name
	}
	return r, nil
}

func decode(dec func(v interface{}) error) (*Response, error) {
	var r Response
	if err := dec(&r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReadCSV reads rows of frequency, magnitude, phase. A first row that does
// not parse as numbers is taken as a header; '#' starts a comment line.
func ReadCSV(r io.Reader) (*Response, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var resp Response
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want 3 columns, got %d: %w", line, len(rec), ErrShape)
		}
		vals, err := parseRow(rec[:3])
		if err != nil {
			if line == 1 && resp.Len() == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		resp.Frequency = append(resp.Frequency, vals[0])
		resp.Magnitude = append(resp.Magnitude, vals[1])
		resp.Phase = append(resp.Phase, vals[2])
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func parseRow(rec []string) ([3]float64, error) {
	var out [3]float64
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteCSV writes the response with a header row.
func WriteCSV(w io.Writer, r *Response) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"frequency", "magnitude_db", "phase_deg"}); err != nil {
		return err
	}
	for i := range r.Frequency {
		row := []string{
			strconv.FormatFloat(r.Frequency[i], 'g', -1, 64),
			strconv.FormatFloat(r.Magnitude[i], 'g', -1, 64),
			strconv.FormatFloat(r.Phase[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
