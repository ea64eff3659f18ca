package simulator

import (
	"math/rand"

	"aquawatch-monitor/internal/models"
)

// 各传感器类型的基准值
var baseValues = map[string]float64{
	models.SensorTypePressure: 45,   // PSI
	models.SensorTypeFlow:     1200, // L/min
	models.SensorTypeLevel:    8.5,  // meters
}

// 各传感器类型的波动幅度
var variations = map[string]float64{
	models.SensorTypePressure: 10,
	models.SensorTypeFlow:     300,
	models.SensorTypeLevel:    2,
}

// 未知传感器类型的兜底参数
const (
	defaultBase      = 50
	defaultVariation = 10
)

// ReadingGenerator 读数生成器
// 围绕基准运行点做有界随机波动，只用于驱动告警管线，不建模物理过程
type ReadingGenerator struct {
	// 返回 [0, 1) 的随机源，可注入以便测试
	rand func() float64
}

// NewReadingGenerator 创建读数生成器（使用全局随机源）
func NewReadingGenerator() *ReadingGenerator {
	return &ReadingGenerator{
		rand: rand.Float64,
	}
}

// NewReadingGeneratorWithRand 创建读数生成器（注入随机源，测试用）
func NewReadingGeneratorWithRand(randFn func() float64) *ReadingGenerator {
	return &ReadingGenerator{
		rand: randFn,
	}
}

// Generate 为传感器生成一条模拟读数，保证结果 >= 0
func (g *ReadingGenerator) Generate(sensor models.Sensor) float64 {
	base, ok := baseValues[sensor.SensorType]
	if !ok {
		base = defaultBase
	}
	variation, ok := variations[sensor.SensorType]
	if !ok {
		variation = defaultVariation
	}

	// 对称随机因子 [-1, 1]
	randomFactor := (g.rand() - 0.5) * 2
	value := base + randomFactor*variation

	if value < 0 {
		return 0
	}
	return value
}
