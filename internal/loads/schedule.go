package loads

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// ReadScheduleFile opens a Modelica table file and returns its hourly year.
func ReadScheduleFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := ReadSchedule(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

// ReadSchedule parses a Modelica table ("#1", "double tab1(n,m)", then rows of
// time in seconds followed by values) and resamples its first value column to
// an hourly year anchored at the end of the year.
func ReadSchedule(r io.Reader) ([]float64, error) {
	var times, values []float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "double") || strings.HasPrefix(lower, "float") || strings.HasPrefix(lower, "int") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: want time and value, got %q", models.ErrDataShape, line, text)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d time: %v", models.ErrDataShape, line, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d value: %v", models.ErrDataShape, line, err)
		}
		times = append(times, t)
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning schedule: %v", models.ErrDataShape, err)
	}
	return ResampleHourly(times, values, models.SecondsInYear)
}
