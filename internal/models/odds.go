package models

// PriceSize is one side of a runner quote. Price is nil when the provider sent
// no usable quote.
type PriceSize struct {
	Price   *float64 `json:"price"`
	Volume  int64    `json:"volume"`
	Exposed int64    `json:"exposed"`
}

// HasPrice reports whether the side carries a quote
func (p PriceSize) HasPrice() bool {
	return p.Price != nil
}

// GetPrice returns the price or 0 if nil
func (p PriceSize) GetPrice() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// RunnerOdds is the decoded quote for a single runner. Back and Lay are always
// present, zero-filled when the provider omitted them.
type RunnerOdds struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Back   PriceSize `json:"back"`
	Lay    PriceSize `json:"lay"`
	Name   string    `json:"name"`
}

// GetSpread returns lay minus back, or 0 when either side has no price
func (r *RunnerOdds) GetSpread() float64 {
	if !r.Back.HasPrice() || !r.Lay.HasPrice() {
		return 0
	}
	return r.Lay.GetPrice() - r.Back.GetPrice()
}
