package forest

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type ClassScore struct {
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

type Report struct {
	Accuracy   float64
	Samples    int
	Classes    []ClassScore
	MacroF1    float64
	WeightedF1 float64
	Confusion  *mat.Dense // rows are true labels, columns predictions
}

func Evaluate(yTrue, yPred []int, names []string) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("got %d true labels and %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Report{}, ErrEmptyDataset
	}
	if len(names) == 0 {
		return Report{}, errors.New("no class names")
	}

	k := len(names)
	cm := mat.NewDense(k, k, nil)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return Report{}, fmt.Errorf("sample %d: label pair (%d, %d) outside 0..%d", i, t, p, k-1)
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}

	total := mat.Sum(cm)
	r := Report{
		Accuracy:  mat.Trace(cm) / total,
		Samples:   len(yTrue),
		Confusion: cm,
	}

	row := make([]float64, k)
	col := make([]float64, k)
	for c := 0; c < k; c++ {
		mat.Row(row, c, cm)
		mat.Col(col, c, cm)
		tp := cm.At(c, c)
		support := floats.Sum(row)
		predicted := floats.Sum(col)

		s := ClassScore{Name: names[c], Support: int(support)}
		if predicted > 0 {
			s.Precision = tp / predicted
		}
		if support > 0 {
			s.Recall = tp / support
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		r.Classes = append(r.Classes, s)
		r.MacroF1 += s.F1 / float64(k)
		r.WeightedF1 += s.F1 * support / total
	}
	return r, nil
}

func (r Report) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, c := range r.Classes {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", c.Name, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "accuracy\t\t\t%.2f\t%d\t\n", r.Accuracy, r.Samples)
	fmt.Fprintf(tw, "macro f1\t\t\t%.2f\t%d\t\n", r.MacroF1, r.Samples)
	fmt.Fprintf(tw, "weighted f1\t\t\t%.2f\t%d\t\n", r.WeightedF1, r.Samples)
	tw.Flush()

	sb.WriteString("\nconfusion matrix (rows = true, cols = predicted):\n")
	fmt.Fprintf(&sb, "%v\n", mat.Formatted(r.Confusion, mat.Squeeze()))
	return sb.String()
}
