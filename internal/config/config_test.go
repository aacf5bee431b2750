package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8004", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "catering_booking", cfg.DBConfig.DBName)
	assert.False(t, cfg.KafkaConfig.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, 5*time.Second, cfg.GatewayConfig.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.GatewayConfig.SignatureTolerance)
	assert.Empty(t, cfg.GatewayConfig.BaseURL)
	assert.Equal(t, bookingDomain.MoneyFromMajor(3000), cfg.PricingConfig.TransportFee)
	assert.Equal(t, int64(1000), cfg.PricingConfig.ServiceChargeBps)
	assert.Equal(t, "config/catalog.yaml", cfg.CatalogFile)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BOOKING_SERVICE_PORT", "9090")
	t.Setenv("BOOKING_APP_ENV", "production")
	t.Setenv("BOOKING_GATEWAY_WEBHOOK_SECRET", "whsec_live")
	t.Setenv("BOOKING_KAFKA_ENABLED", "true")
	t.Setenv("BOOKING_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BOOKING_PRICING_TRANSPORT_FEE", "4500.50")
	t.Setenv("BOOKING_PRICING_SERVICE_CHARGE_RATE", "0.125")

	cfg, err := load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "whsec_live", cfg.GatewayConfig.WebhookSecret)
	assert.True(t, cfg.KafkaConfig.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, bookingDomain.Money(450050), cfg.PricingConfig.TransportFee)
	assert.Equal(t, int64(1250), cfg.PricingConfig.ServiceChargeBps)
}

func TestLoad_WebhookSecretRequiredOutsideDevelopment(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "production")

	_, err := load(newViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKING_GATEWAY_WEBHOOK_SECRET")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("BOOKING_KAFKA_ENABLED", "true")
	t.Setenv("BOOKING_KAFKA_BROKERS", " , ")

	_, err := load(newViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKING_KAFKA_BROKERS")
}

func TestLoad_InvalidPricing(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"fee not a number", "BOOKING_PRICING_TRANSPORT_FEE", "three thousand"},
		{"negative fee", "BOOKING_PRICING_TRANSPORT_FEE", "-1"},
		{"fee out of range", "BOOKING_PRICING_TRANSPORT_FEE", "100000000000000000"},
		{"rate above one", "BOOKING_PRICING_SERVICE_CHARGE_RATE", "1.5"},
		{"negative rate", "BOOKING_PRICING_SERVICE_CHARGE_RATE", "-0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := load(newViper())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
packages:
  - id: classic
    name: Classic
    price_per_head: 1200
  - id: premium
    name: Premium
    price_per_head: "1800.50"
add_ons:
  - id: lechon
    name: Whole Lechon
    kind: flat
    price: 9000
  - id: dessert-bar
    name: Dessert Bar
    kind: per_head
    price: 150
`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	classic, ok := catalog.Package("classic")
	require.True(t, ok)
	assert.Equal(t, bookingDomain.MoneyFromMajor(1200), classic.PricePerHead)

	premium, ok := catalog.Package("premium")
	require.True(t, ok)
	assert.Equal(t, bookingDomain.Money(180050), premium.PricePerHead)

	lechon, ok := catalog.AddOn("lechon")
	require.True(t, ok)
	assert.Equal(t, bookingDomain.AddOnFlat, lechon.Kind)
	assert.Len(t, catalog.AddOns(), 2)
}

func TestLoadCatalog_Shipped(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "config", "catalog.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Packages())
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no packages", "add_ons: []\n"},
		{"missing id", "packages:\n  - name: Nameless\n    price_per_head: 100\n"},
		{"negative price", "packages:\n  - id: cheap\n    price_per_head: -5\n"},
		{"price out of range", "packages:\n  - id: gold\n    price_per_head: \"100000000000000000\"\n"},
		{"add-on price out of range", "packages:\n  - id: classic\n    price_per_head: 100\nadd_ons:\n  - id: band\n    kind: flat\n    price: \"9223372036854775807\"\n"},
		{"unknown add-on kind", "packages:\n  - id: classic\n    price_per_head: 100\nadd_ons:\n  - id: band\n    kind: hourly\n    price: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
