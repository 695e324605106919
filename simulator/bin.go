// Package simulator stands in for the bin hardware: a random walk of gas and
// distance readings, published over MQTT or written out as a labelled
// training dataset.
package simulator

import (
	"fmt"
	"math/rand/v2"
)

const (
	freshGas    = 350
	spikeChance = 0.03
	spikeMin    = 600
)

// Bin is a simulated eco-bin that fills up, starts to smell and is emptied
// once the waste reaches the sensor.
type Bin struct {
	rng      *rand.Rand
	depth    int
	gasMax   int
	gas      float64
	distance float64
}

func NewBin(depth, gasMax int, seed uint64) *Bin {
	return &Bin{
		rng:      rand.New(rand.NewPCG(seed, seed^0x5eed)),
		depth:    depth,
		gasMax:   gasMax,
		gas:      freshGas,
		distance: float64(depth - 2),
	}
}

// Step advances one reading. A spike is a short gas jump that does not
// persist into the next step.
func (b *Bin) Step() (gas, distance int, spike bool) {
	b.distance -= b.rng.Float64() * 0.6
	b.gas += b.rng.NormFloat64()*15 + 4

	if b.distance < 1 {
		b.distance = float64(b.depth - 2)
		b.gas = freshGas
	}
	b.gas = max(0, min(float64(b.gasMax), b.gas))

	gas, distance = int(b.gas), int(b.distance)
	if b.rng.Float64() < spikeChance {
		gas = min(b.gasMax, gas+spikeMin+b.rng.IntN(400))
		spike = true
	}
	return gas, distance, spike
}

// Payload formats a reading the way the device firmware publishes it.
func Payload(gas, distance int) string {
	return fmt.Sprintf("%d,%d", gas, distance)
}
