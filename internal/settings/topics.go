package settings

// BuiltinTopics returns the settings topics the product knows about, keyed
// by topic name. Field names follow the shape the admin frontend persists.
func BuiltinTopics() map[string]TopicSpec {
	topics := []TopicSpec{
		{
			Name: "pricing",
			Rules: []FieldRule{
				{Name: "defaultRate1h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 50.0},
				{Name: "defaultRate3h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 120.0},
				{Name: "defaultRate24h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 300.0},
				{Name: "vipRate1h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 80.0},
				{Name: "vipRate3h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 190.0},
				{Name: "vipRate24h", Kind: NumberField, Required: true, Min: 0, Max: noMax, Critical: true, Default: 480.0},
				// A zero deposit is a legitimate promotion, so not critical.
				{Name: "depositPercentage", Kind: NumberField, Required: true, Min: 0, Max: 100, Default: 20.0},
				{Name: "minRentalHours", Kind: NumberField, Required: false, Min: 1, Max: 72, Default: 1.0},
			},
		},
		{
			Name: "tax",
			Rules: []FieldRule{
				// Zero tax is legal in some regions, so not critical.
				{Name: "tax_percentage", Kind: NumberField, Required: true, Min: 0, Max: 100, Default: 8.5},
				{Name: "tax_enabled", Kind: BoolField, Required: false, Default: true},
			},
		},
	}

	byName := make(map[string]TopicSpec, len(topics))
	for _, ts := range topics {
		byName[ts.Name] = ts
	}
	return byName
}
