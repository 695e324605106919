package forest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
)

// Columns is the exact header a training dataset must carry.
var Columns = []string{"Gas", "Jarak", "Delta_Gas", "Label"}

// FeatureNames is the model input order.
var FeatureNames = Columns[:3]

const labelColumn = "Label"

var (
	ErrColumns      = errors.New("dataset columns mismatch")
	ErrEmptyDataset = errors.New("dataset has no rows")
)

type Dataset struct {
	X [][]float64
	Y []int
}

func (d Dataset) Len() int {
	return len(d.Y)
}

func LoadDataset(path string, classes int) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadDataset(f, classes)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// ReadDataset parses a CSV whose header is exactly the Columns set, in any
// order. Labels must fall in [0, classes).
func ReadDataset(r io.Reader, classes int) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, ErrEmptyDataset
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return Dataset{}, err
	}

	var ds Dataset
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]float64, len(FeatureNames))
		for i, name := range FeatureNames {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[index[name]]), 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("line %d: column %s: %w", line, name, err)
			}
			row[i] = v
		}

		label, err := parseLabel(record[index[labelColumn]], classes)
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}

		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, label)
	}

	if ds.Len() == 0 {
		return Dataset{}, ErrEmptyDataset
	}
	return ds, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrColumns, name)
		}
		index[name] = i
	}
	if len(index) != len(Columns) {
		return nil, fmt.Errorf("%w: got %v, want exactly %v", ErrColumns, header, Columns)
	}
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing %q, want exactly %v", ErrColumns, name, Columns)
		}
	}
	return index, nil
}

func parseLabel(s string, classes int) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", labelColumn, err)
	}
	if v != math.Trunc(v) || v < 0 || int(v) >= classes {
		return 0, fmt.Errorf("column %s: label %v outside 0..%d", labelColumn, v, classes-1)
	}
	return int(v), nil
}

// Split shuffles with a fixed seed and holds out ceil(testFraction*n) rows.
func (d Dataset) Split(testFraction float64, seed uint64) (train, test Dataset) {
	n := d.Len()
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	for i, j := range perm {
		if i < nTest {
			test.X = append(test.X, d.X[j])
			test.Y = append(test.Y, d.Y[j])
			continue
		}
		train.X = append(train.X, d.X[j])
		train.Y = append(train.Y, d.Y[j])
	}
	return train, test
}
