package models

// ThresholdBounds 单个传感器类型的阈值边界
// critical_low < low < high < critical_high
type ThresholdBounds struct {
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	CriticalLow  float64 `json:"critical_low"`
	CriticalHigh float64 `json:"critical_high"`
}

// ThresholdTable 按传感器类型索引的阈值表
// 表中没有条目的类型不参与告警评估
type ThresholdTable map[string]ThresholdBounds

// DefaultThresholdTable 默认阈值表（与水务运行参数对应）
func DefaultThresholdTable() ThresholdTable {
	return ThresholdTable{
		SensorTypePressure: {Low: 30, High: 80, CriticalLow: 20, CriticalHigh: 100},  // PSI
		SensorTypeFlow:     {Low: 500, High: 3000, CriticalLow: 200, CriticalHigh: 4000}, // L/min
		SensorTypeLevel:    {Low: 5, High: 12, CriticalLow: 3, CriticalHigh: 15},     // meters
	}
}
