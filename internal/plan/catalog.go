package plan

import "errors"

// Plan is one purchasable membership tier.
type Plan struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PricePaise  int64   `json:"price_paise"`
	Duration    string  `json:"duration"`
	Type        string  `json:"type"`
	Conditioner string  `json:"conditioner"`
	KgLimit     float64 `json:"kg_limit"`
}

var ErrUnknownPlan = errors.New("unknown plan")

func Available() []Plan {
	return []Plan{
		{
			Name:        "Quick Wash",
			Description: "20 kg of laundry over three months, standard detergent",
			PricePaise:  49900,
			Duration:    "3 Months",
			Type:        "individual",
			Conditioner: "standard",
			KgLimit:     20,
		},
		{
			Name:        "Family Fresh",
			Description: "60 kg of laundry over six months, premium conditioner",
			PricePaise:  129900,
			Duration:    "6 Months",
			Type:        "family",
			Conditioner: "premium",
			KgLimit:     60,
		},
		{
			Name:        "Annual Elite",
			Description: "150 kg of laundry for a full year, premium conditioner",
			PricePaise:  249900,
			Duration:    "1 Year",
			Type:        "family",
			Conditioner: "premium",
			KgLimit:     150,
		},
	}
}

func Find(name string) (Plan, error) {
	for _, p := range Available() {
		if p.Name == name {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}
