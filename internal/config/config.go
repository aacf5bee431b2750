package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/hearth-catering/service-booking/pkg/database"
)

// EnvPrefix prefixes every environment variable read by the service.
const EnvPrefix = "BOOKING"

// KafkaConfig holds broker settings. When Enabled is false, notifications and
// lifecycle events are only logged.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	GroupPrefix string
}

// GatewayConfig holds payment gateway credentials.
type GatewayConfig struct {
	BaseURL            string
	SecretKey          string
	WebhookSecret      string
	Timeout            time.Duration
	SignatureTolerance time.Duration
}

// PricingConfig holds the settlement calculator's policy.
type PricingConfig struct {
	TransportFee     bookingDomain.Money
	ServiceChargeBps int64
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      database.PostgresConfig
	KafkaConfig   KafkaConfig
	GatewayConfig GatewayConfig
	PricingConfig PricingConfig
	CatalogFile   string
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from a local .env file (if any) and BOOKING_*
// environment variables.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8004")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "catering_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("GATEWAY_TIMEOUT", "5s")
	v.SetDefault("GATEWAY_SIGNATURE_TOLERANCE", "5m")
	v.SetDefault("PRICING_TRANSPORT_FEE", "3000")
	v.SetDefault("PRICING_SERVICE_CHARGE_RATE", "0.10")
	v.SetDefault("CATALOG_FILE", "config/catalog.yaml")
	return v
}

func load(v *viper.Viper) (*ServiceConfig, error) {
	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	pricing, err := loadPricing(v)
	if err != nil {
		return nil, err
	}

	cfg := &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Enabled:     v.GetBool("KAFKA_ENABLED"),
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		GatewayConfig: GatewayConfig{
			BaseURL:            v.GetString("GATEWAY_BASE_URL"),
			SecretKey:          v.GetString("GATEWAY_SECRET_KEY"),
			WebhookSecret:      v.GetString("GATEWAY_WEBHOOK_SECRET"),
			Timeout:            v.GetDuration("GATEWAY_TIMEOUT"),
			SignatureTolerance: v.GetDuration("GATEWAY_SIGNATURE_TOLERANCE"),
		},
		PricingConfig: pricing,
		CatalogFile:   v.GetString("CATALOG_FILE"),
	}

	if cfg.GatewayConfig.WebhookSecret == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("%s_GATEWAY_WEBHOOK_SECRET is required outside development", EnvPrefix)
	}
	if cfg.KafkaConfig.Enabled && len(cfg.KafkaConfig.Brokers) == 0 {
		return nil, fmt.Errorf("%s_KAFKA_BROKERS is required when Kafka is enabled", EnvPrefix)
	}
	return cfg, nil
}

func loadPricing(v *viper.Viper) (PricingConfig, error) {
	fee, err := decimal.NewFromString(v.GetString("PRICING_TRANSPORT_FEE"))
	if err != nil || fee.IsNegative() {
		return PricingConfig{}, fmt.Errorf("invalid %s_PRICING_TRANSPORT_FEE %q", EnvPrefix, v.GetString("PRICING_TRANSPORT_FEE"))
	}
	rate, err := decimal.NewFromString(v.GetString("PRICING_SERVICE_CHARGE_RATE"))
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return PricingConfig{}, fmt.Errorf("invalid %s_PRICING_SERVICE_CHARGE_RATE %q", EnvPrefix, v.GetString("PRICING_SERVICE_CHARGE_RATE"))
	}
	transportFee, err := bookingDomain.MoneyFromDecimal(fee)
	if err != nil {
		return PricingConfig{}, fmt.Errorf("invalid %s_PRICING_TRANSPORT_FEE %q: %w", EnvPrefix, v.GetString("PRICING_TRANSPORT_FEE"), err)
	}
	return PricingConfig{
		TransportFee:     transportFee,
		ServiceChargeBps: rate.Mul(decimal.NewFromInt(10000)).Round(0).IntPart(),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
