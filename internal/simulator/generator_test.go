package simulator

import (
	"testing"

	"aquawatch-monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_WithinVariationBand(t *testing.T) {
	tests := []struct {
		name       string
		sensorType string
		base       float64
		variation  float64
	}{
		{"pressure", models.SensorTypePressure, 45, 10},
		{"flow", models.SensorTypeFlow, 1200, 300},
		{"level", models.SensorTypeLevel, 8.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewReadingGenerator()
			sensor := models.Sensor{SensorID: 1, SensorType: tt.sensorType}

			for i := 0; i < 1000; i++ {
				value := g.Generate(sensor)
				assert.GreaterOrEqual(t, value, tt.base-tt.variation)
				assert.LessOrEqual(t, value, tt.base+tt.variation)
			}
		})
	}
}

func TestGenerate_UnknownTypeFallsBackToDefaults(t *testing.T) {
	g := NewReadingGenerator()
	sensor := models.Sensor{SensorID: 1, SensorType: "turbidity"}

	// 未知类型回退到 base 50 / variation 10
	for i := 0; i < 1000; i++ {
		value := g.Generate(sensor)
		assert.GreaterOrEqual(t, value, 40.0)
		assert.LessOrEqual(t, value, 60.0)
	}
}

func TestGenerate_ExtremeRandomFactors(t *testing.T) {
	sensor := models.Sensor{SensorID: 1, SensorType: models.SensorTypePressure}

	// rand = 0 → 因子 -1 → base - variation
	g := NewReadingGeneratorWithRand(func() float64 { return 0 })
	assert.InDelta(t, 35.0, g.Generate(sensor), 1e-9)

	// rand → 1 → 因子 → 1 → base + variation
	g = NewReadingGeneratorWithRand(func() float64 { return 1 })
	assert.InDelta(t, 55.0, g.Generate(sensor), 1e-9)

	// rand = 0.5 → 因子 0 → base
	g = NewReadingGeneratorWithRand(func() float64 { return 0.5 })
	assert.InDelta(t, 45.0, g.Generate(sensor), 1e-9)
}

func TestGenerate_NeverNegative(t *testing.T) {
	// 构造一个 base - variation < 0 的类型，验证负值被钳到 0
	baseValues["vacuum"] = 1
	variations["vacuum"] = 10
	defer func() {
		delete(baseValues, "vacuum")
		delete(variations, "vacuum")
	}()

	sensor := models.Sensor{SensorID: 1, SensorType: "vacuum"}
	g := NewReadingGeneratorWithRand(func() float64 { return 0 }) // 因子 -1 → 1 - 10 = -9

	assert.Equal(t, 0.0, g.Generate(sensor))
}
