package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "car", KindCar.String())
	assert.Equal(t, "bike", KindBike.String())
	assert.Equal(t, "pedestrian", KindPedestrian.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestSeverityFactor(t *testing.T) {
	assert.Equal(t, 2.0, severityFactor(SeverityMinor))
	assert.Equal(t, 4.0, severityFactor(SeverityModerate))
	assert.Equal(t, 10.0, severityFactor(SeveritySevere))
	assert.Panics(t, func() { severityFactor(Severity(9)) })
}

func TestEdgeKey_String(t *testing.T) {
	e := EdgeKey{U: "A0", V: "B0"}
	assert.Equal(t, "A0,B0", e.String())
}

func TestDistribution_Pick(t *testing.T) {
	dist := DefaultDistribution()
	assert.Equal(t, KindCar, dist.Pick(0.0))
	assert.Equal(t, KindCar, dist.Pick(0.59))
	assert.Equal(t, KindBike, dist.Pick(0.60))
	assert.Equal(t, KindBike, dist.Pick(0.84))
	assert.Equal(t, KindPedestrian, dist.Pick(0.85))
	assert.Equal(t, KindPedestrian, dist.Pick(0.999))
}
