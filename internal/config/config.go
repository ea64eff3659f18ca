package config

import (
	"os"
	"strconv"
	"strings"

	"aquawatch-monitor/internal/models"
	"aquawatch-monitor/pkg/config"
)

// Config 监测服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	// 遥测模拟与告警评估配置
	Simulator struct {
		Enabled         bool
		IntervalMinutes int // 采样周期（分钟），默认 5
		SensorTimeout   int // 单个传感器处理超时（秒），默认 10
	}

	Alert struct {
		DedupWindowMinutes int // 去重窗口（分钟），默认 60
	}

	// 阈值表（默认值可被环境变量覆盖）
	Thresholds models.ThresholdTable

	// 事件下游配置
	Events struct {
		Stream struct {
			Enabled bool
			Name    string // Redis Stream 名称
		}
		MQTT struct {
			Enabled     bool
			TopicPrefix string // 如 "aquawatch/events/"
		}
		Webhook struct {
			Enabled        bool
			URLs           []string // 通知回调地址列表
			TimeoutSeconds int
		}
	}

	HTTP struct {
		Addr string // WebSocket/健康检查监听地址
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量 + 默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "aquawatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "aquawatch-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Simulator.Enabled = getEnvBool("SIMULATOR_ENABLED", true)
	cfg.Simulator.IntervalMinutes = getEnvInt("SIMULATOR_INTERVAL_MINUTES", 5)
	cfg.Simulator.SensorTimeout = getEnvInt("SIMULATOR_SENSOR_TIMEOUT", 10)

	cfg.Alert.DedupWindowMinutes = getEnvInt("ALERT_DEDUP_WINDOW_MINUTES", 60)

	cfg.Thresholds = loadThresholds()

	cfg.Events.Stream.Enabled = getEnvBool("EVENT_STREAM_ENABLED", true)
	cfg.Events.Stream.Name = getEnv("EVENT_STREAM_NAME", "aquawatch:events")
	cfg.Events.MQTT.Enabled = getEnvBool("EVENT_MQTT_ENABLED", false)
	cfg.Events.MQTT.TopicPrefix = getEnv("EVENT_MQTT_TOPIC_PREFIX", "aquawatch/events/")
	cfg.Events.Webhook.Enabled = getEnvBool("EVENT_WEBHOOK_ENABLED", false)
	cfg.Events.Webhook.URLs = getEnvList("EVENT_WEBHOOK_URLS")
	cfg.Events.Webhook.TimeoutSeconds = getEnvInt("EVENT_WEBHOOK_TIMEOUT", 10)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8090")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// loadThresholds 在默认阈值表上套用环境变量覆盖
// 形如 THRESHOLD_PRESSURE_LOW=25 / THRESHOLD_FLOW_CRITICAL_HIGH=4500
func loadThresholds() models.ThresholdTable {
	table := models.DefaultThresholdTable()

	for sensorType, bounds := range table {
		prefix := "THRESHOLD_" + strings.ToUpper(sensorType)
		bounds.Low = getEnvFloat(prefix+"_LOW", bounds.Low)
		bounds.High = getEnvFloat(prefix+"_HIGH", bounds.High)
		bounds.CriticalLow = getEnvFloat(prefix+"_CRITICAL_LOW", bounds.CriticalLow)
		bounds.CriticalHigh = getEnvFloat(prefix+"_CRITICAL_HIGH", bounds.CriticalHigh)
		table[sensorType] = bounds
	}

	return table
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
