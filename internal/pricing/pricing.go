// Package pricing resolves the authoritative price for a selected plan.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"nfccard-backend/internal/domain"
)

const DefaultPlanName = "Starter Pack"

func DefaultPlans() []domain.Plan {
	return []domain.Plan{
		{
			Name:     "Starter Pack",
			Tier:     "basic",
			Price:    699,
			Features: []string{"Basic NFC Card", "Digital Profile", "Contact Sharing"},
		},
		{
			Name:     "Entrepreneur Plan",
			Tier:     "standard",
			Price:    1499,
			Features: []string{"Premium NFC Card", "Advanced Profile", "Analytics", "Custom Design"},
		},
		{
			Name:     "Enterprise Pack",
			Tier:     "premium",
			Price:    0,
			Features: []string{"Enterprise NFC Card", "Full Customization", "Team Management", "Priority Support"},
		},
	}
}

// Resolution is the outcome of resolving a submission's plan.
type Resolution struct {
	Plan domain.Plan
	// FellBack is set when the requested plan name was unknown or empty.
	FellBack bool
	// PriceMismatch is set when the client sent a price different from the table.
	PriceMismatch bool
	ClientPrice   *float64
}

func (r Resolution) Price() float64 {
	return r.Plan.Price
}

type Resolver struct {
	plans    []domain.Plan
	byName   map[string]domain.Plan
	fallback domain.Plan
}

func NewResolver(plans []domain.Plan, defaultPlan string) (*Resolver, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("at least one plan is required")
	}
	r := &Resolver{
		plans:  make([]domain.Plan, 0, len(plans)),
		byName: make(map[string]domain.Plan, len(plans)*2),
	}
	for _, p := range plans {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("plan name is required")
		}
		if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, fmt.Errorf("plan %q has invalid price %v", p.Name, p.Price)
		}
		key := normalizeKey(p.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate plan %q", p.Name)
		}
		r.byName[key] = p
		if p.Tier != "" {
			r.byName[normalizeKey(p.Tier)] = p
		}
		r.plans = append(r.plans, p)
	}

	if defaultPlan == "" {
		defaultPlan = DefaultPlanName
	}
	fallback, ok := r.byName[normalizeKey(defaultPlan)]
	if !ok {
		return nil, fmt.Errorf("default plan %q is not in the plan table", defaultPlan)
	}
	r.fallback = fallback
	return r, nil
}

// Resolve maps a plan name (or tier key) to its table entry. The client price
// only feeds the mismatch flag; it never affects the result.
func (r *Resolver) Resolve(selectedPlan string, clientPrice *float64) Resolution {
	res := Resolution{ClientPrice: clientPrice}

	plan, ok := r.byName[normalizeKey(selectedPlan)]
	if !ok {
		plan = r.fallback
		res.FellBack = true
	}
	res.Plan = plan

	if clientPrice != nil && math.Abs(*clientPrice-plan.Price) >= 0.005 {
		res.PriceMismatch = true
	}
	return res
}

// Catalog returns the plans in table order.
func (r *Resolver) Catalog() []domain.Plan {
	out := make([]domain.Plan, len(r.plans))
	copy(out, r.plans)
	return out
}

// TierPrices is the legacy tier → price map served by GET /packs.
func (r *Resolver) TierPrices() map[string]float64 {
	out := make(map[string]float64, len(r.plans))
	for _, p := range r.plans {
		if p.Tier != "" {
			out[p.Tier] = p.Price
		}
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
