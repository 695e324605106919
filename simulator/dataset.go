package simulator

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Faarae/dashboard-SmartEcoBin/forest"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// LabelRules are the thresholds used to label generated rows.
type LabelRules struct {
	GasThreshold      int
	DistanceThreshold int
}

func Label(gas, distance int, spike bool, rules LabelRules) models.Label {
	switch {
	case spike:
		return models.LabelAnomalous
	case gas > rules.GasThreshold:
		return models.LabelDecomposing
	case distance < rules.DistanceThreshold:
		return models.LabelFull
	default:
		return models.LabelNormal
	}
}

// WriteDataset writes rows labelled readings from bin in the training CSV
// layout.
func WriteDataset(w io.Writer, rows int, bin *Bin, rules LabelRules) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(forest.Columns); err != nil {
		return err
	}

	prev := 0
	for i := 0; i < rows; i++ {
		gas, distance, spike := bin.Step()
		delta := gas - prev
		prev = gas

		record := []string{
			strconv.Itoa(gas),
			strconv.Itoa(distance),
			strconv.Itoa(delta),
			strconv.Itoa(int(Label(gas, distance, spike, rules))),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
