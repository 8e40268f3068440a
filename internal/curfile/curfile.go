// Package curfile reads the .CUR files written by AGICO kappabridge
// software.
//
// A .CUR file holds a header followed by one sample per line. Sample lines
// start with spaces and a digit; their first two whitespace-separated fields
// are temperature (°C) and susceptibility. The run heats first, then cools;
// the cooling branch starts at the first temperature drop of more than
// half a degree.
package curfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-magsus/magsus/curve"
)

// coolingDrop is the temperature fall that marks the start of cooling.
const coolingDrop = 0.5

var (
	// ErrMalformedLine is returned for a sample line whose fields do not
	// parse as numbers.
	ErrMalformedLine = errors.New("curfile: malformed sample line")

	sampleLine = regexp.MustCompile(`^ +\d`)
	fileName   = regexp.MustCompile(`^(\d+)[AB]?\.CUR$`)
)

// Branches are the two halves of a run. Heating is ascending, cooling
// descending.
type Branches struct {
	Heating curve.Curve
	Cooling curve.Curve
}

// Read parses a .CUR stream. The first heating sample and the last cooling
// sample are discarded, since the bridge records them while the furnace
// settles.
func Read(r io.Reader) (Branches, error) {
	var (
		heatT, heatChi []float64
		coolT, coolChi []float64
		cooling        bool
		prev           = -300.0
	)

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if !sampleLine.MatchString(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Branches{}, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, n, line)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Branches{}, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, n, err)
		}
		chi, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Branches{}, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, n, err)
		}

		if !cooling && t < prev-coolingDrop {
			cooling = true
		}
		if cooling {
			coolT, coolChi = append(coolT, t), append(coolChi, chi)
		} else {
			heatT, heatChi = append(heatT, t), append(heatChi, chi)
		}
		prev = t
	}
	if err := sc.Err(); err != nil {
		return Branches{}, fmt.Errorf("curfile: %w", err)
	}

	if len(heatT) > 0 {
		heatT, heatChi = heatT[1:], heatChi[1:]
	}
	if len(coolT) > 0 {
		coolT, coolChi = coolT[:len(coolT)-1], coolChi[:len(coolChi)-1]
	}

	heating, err := curve.Normalize(heatT, heatChi, curve.Ascending)
	if err != nil {
		return Branches{}, fmt.Errorf("curfile: heating: %w", err)
	}
	cool, err := curve.Normalize(coolT, coolChi, curve.Descending)
	if err != nil {
		return Branches{}, fmt.Errorf("curfile: cooling: %w", err)
	}
	return Branches{Heating: heating, Cooling: cool}, nil
}

// ReadFile parses the .CUR file at path.
func ReadFile(path string) (Branches, error) {
	f, err := os.Open(path)
	if err != nil {
		return Branches{}, err
	}
	defer f.Close()

	b, err := Read(f)
	if err != nil {
		return Branches{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// TemperatureFromName returns the nominal peak temperature encoded in a
// file name such as "700A.CUR". Directories in name are ignored.
func TemperatureFromName(name string) (int, bool) {
	m := fileName.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	t, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return t, true
}

// Entry is a step file found by [ScanDir].
type Entry struct {
	Path        string
	Temperature int
}

// ScanDir lists the step files in dir, ordered by nominal temperature and
// then name. Files whose names carry no temperature are skipped.
func ScanDir(dir string) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.CUR"))
	if err != nil {
		return nil, fmt.Errorf("curfile: %w", err)
	}

	var entries []Entry
	for _, p := range paths {
		if t, ok := TemperatureFromName(p); ok {
			entries = append(entries, Entry{Path: p, Temperature: t})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Temperature != entries[j].Temperature {
			return entries[i].Temperature < entries[j].Temperature
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
