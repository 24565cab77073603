package domain

type Plan struct {
	Name     string   `json:"name" yaml:"name"`
	Tier     string   `json:"type" yaml:"tier"`
	Price    float64  `json:"price" yaml:"price"`
	Features []string `json:"features" yaml:"features"`
}

// RequiresQuote reports a "contact for quote" plan, which never goes through checkout.
func (p Plan) RequiresQuote() bool {
	return p.Price <= 0
}
