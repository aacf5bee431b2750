package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
)

type catalogFile struct {
	Packages []struct {
		ID           string `mapstructure:"id"`
		Name         string `mapstructure:"name"`
		PricePerHead string `mapstructure:"price_per_head"`
	} `mapstructure:"packages"`
	AddOns []struct {
		ID    string `mapstructure:"id"`
		Name  string `mapstructure:"name"`
		Kind  string `mapstructure:"kind"`
		Price string `mapstructure:"price"`
	} `mapstructure:"add_ons"`
}

// LoadCatalog reads the package and add-on catalog from a YAML file. Prices
// are in pesos.
func LoadCatalog(path string) (*bookingDomain.Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var raw catalogFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	if len(raw.Packages) == 0 {
		return nil, fmt.Errorf("catalog %s defines no packages", path)
	}

	packages := make([]bookingDomain.Package, 0, len(raw.Packages))
	for _, p := range raw.Packages {
		price, err := parsePrice(p.PricePerHead)
		if err != nil || p.ID == "" {
			return nil, fmt.Errorf("catalog package %q: invalid entry", p.ID)
		}
		packages = append(packages, bookingDomain.Package{ID: p.ID, Name: p.Name, PricePerHead: price})
	}

	addOns := make([]bookingDomain.AddOn, 0, len(raw.AddOns))
	for _, a := range raw.AddOns {
		price, err := parsePrice(a.Price)
		kind := bookingDomain.AddOnKind(a.Kind)
		if err != nil || a.ID == "" || !kind.IsValid() {
			return nil, fmt.Errorf("catalog add-on %q: invalid entry", a.ID)
		}
		addOns = append(addOns, bookingDomain.AddOn{ID: a.ID, Name: a.Name, Kind: kind, Price: price})
	}

	return bookingDomain.NewCatalog(packages, addOns), nil
}

func parsePrice(s string) (bookingDomain.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %s", s)
	}
	return bookingDomain.MoneyFromDecimal(d)
}
