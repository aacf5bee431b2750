package booking

import (
	"fmt"

	"github.com/hearth-catering/service-booking/pkg/domain"
)

// Pricing policy defaults.
const (
	// DefaultTransportFee is the flat logistics fee added to every catered event.
	DefaultTransportFee Money = 300000 // ₱3,000.00
	// DefaultServiceChargeBps is the service charge applied to pre-acceptance estimates.
	DefaultServiceChargeBps int64 = 1000 // 10%
	// DownpaymentBps is the share of the grand total due as downpayment.
	DownpaymentBps int64 = 5000 // 50%
	// SettlementEpsilon is the remaining balance at or below which a ledger counts as fully paid.
	SettlementEpsilon Money = 50
)

// AddOnKind says how an add-on is charged.
type AddOnKind string

const (
	AddOnFlat    AddOnKind = "flat"
	AddOnPerHead AddOnKind = "per_head"
)

// IsValid returns true if the add-on kind is recognized.
func (k AddOnKind) IsValid() bool {
	return k == AddOnFlat || k == AddOnPerHead
}

// Package is a menu package priced per head.
type Package struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PricePerHead Money  `json:"price_per_head"`
}

// AddOn is an optional extra charged flat or per head.
type AddOn struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Kind  AddOnKind `json:"kind"`
	Price Money     `json:"price"`
}

// Catalog holds the packages and add-ons offered to clients.
type Catalog struct {
	packages   map[string]Package
	addOns     map[string]AddOn
	order      []string
	addOnOrder []string
}

// NewCatalog indexes packages and add-ons by id. Later duplicates win.
func NewCatalog(packages []Package, addOns []AddOn) *Catalog {
	c := &Catalog{
		packages: make(map[string]Package, len(packages)),
		addOns:   make(map[string]AddOn, len(addOns)),
	}
	for _, p := range packages {
		if _, seen := c.packages[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.packages[p.ID] = p
	}
	for _, a := range addOns {
		if _, seen := c.addOns[a.ID]; !seen {
			c.addOnOrder = append(c.addOnOrder, a.ID)
		}
		c.addOns[a.ID] = a
	}
	return c
}

// Package looks up a package by id.
func (c *Catalog) Package(id string) (Package, bool) {
	p, ok := c.packages[id]
	return p, ok
}

// AddOn looks up an add-on by id.
func (c *Catalog) AddOn(id string) (AddOn, bool) {
	a, ok := c.addOns[id]
	return a, ok
}

// Packages returns packages in declaration order.
func (c *Catalog) Packages() []Package {
	out := make([]Package, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.packages[id])
	}
	return out
}

// AddOns returns add-ons in declaration order.
func (c *Catalog) AddOns() []AddOn {
	out := make([]AddOn, 0, len(c.addOnOrder))
	for _, id := range c.addOnOrder {
		out = append(out, c.addOns[id])
	}
	return out
}

// PricingParams holds the inputs for a settlement calculation.
type PricingParams struct {
	Guests       int
	PackagePrice Money
	AddOnIDs     []string
}

// Quote is a priced cost breakdown.
type Quote struct {
	PackageTotal  Money `json:"package_total"`
	AddOnsTotal   Money `json:"add_ons_total"`
	TransportFee  Money `json:"transport_fee"`
	ServiceCharge Money `json:"service_charge"`
	GrandTotal    Money `json:"grand_total"`
}

// MenuSubtotal is the food cost before fees.
func (q Quote) MenuSubtotal() Money {
	return q.PackageTotal + q.AddOnsTotal
}

// SettlementCalculator prices a booking.
type SettlementCalculator interface {
	// Estimate returns the pre-acceptance quote including the service charge.
	Estimate(params PricingParams) (Quote, error)
	// LockedTotal returns the post-acceptance quote, which carries no service charge.
	LockedTotal(params PricingParams) (Quote, error)
}

// StandardSettlementCalculator implements the house pricing policy.
//
// Pricing formula:
//   - Package: price per head x guests
//   - Add-ons: flat fee, or fee x guests for per-head add-ons
//   - Transport: flat logistics fee per event
//   - Service charge: rate x menu subtotal, estimates only
type StandardSettlementCalculator struct {
	catalog          *Catalog
	transportFee     Money
	serviceChargeBps int64
}

// NewStandardSettlementCalculator creates a calculator over catalog.
func NewStandardSettlementCalculator(catalog *Catalog, transportFee Money, serviceChargeBps int64) *StandardSettlementCalculator {
	if catalog == nil {
		catalog = NewCatalog(nil, nil)
	}
	return &StandardSettlementCalculator{
		catalog:          catalog,
		transportFee:     transportFee,
		serviceChargeBps: serviceChargeBps,
	}
}

// Estimate implements SettlementCalculator.
func (s *StandardSettlementCalculator) Estimate(params PricingParams) (Quote, error) {
	q, err := s.base(params)
	if err != nil || params.Guests <= 0 {
		return q, err
	}
	q.ServiceCharge = q.MenuSubtotal().MulRate(s.serviceChargeBps)
	if q.GrandTotal, err = q.GrandTotal.Plus(q.ServiceCharge); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// LockedTotal implements SettlementCalculator.
func (s *StandardSettlementCalculator) LockedTotal(params PricingParams) (Quote, error) {
	return s.base(params)
}

func (s *StandardSettlementCalculator) base(params PricingParams) (Quote, error) {
	if params.Guests <= 0 {
		return Quote{}, nil
	}
	if params.Guests > MaxGuests {
		return Quote{}, domain.NewValidationError(fmt.Sprintf("guest count cannot exceed %d", MaxGuests))
	}
	guests := int64(params.Guests)

	packageTotal, err := params.PackagePrice.Times(guests)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		PackageTotal: packageTotal,
		TransportFee: s.transportFee,
	}

	seen := make(map[string]struct{}, len(params.AddOnIDs))
	for _, id := range params.AddOnIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		addOn, ok := s.catalog.AddOn(id)
		if !ok {
			continue
		}
		charge := addOn.Price
		if addOn.Kind == AddOnPerHead {
			if charge, err = addOn.Price.Times(guests); err != nil {
				return Quote{}, err
			}
		}
		if q.AddOnsTotal, err = q.AddOnsTotal.Plus(charge); err != nil {
			return Quote{}, err
		}
	}

	subtotal, err := q.PackageTotal.Plus(q.AddOnsTotal)
	if err != nil {
		return Quote{}, err
	}
	if q.GrandTotal, err = subtotal.Plus(q.TransportFee); err != nil {
		return Quote{}, err
	}
	return q, nil
}
