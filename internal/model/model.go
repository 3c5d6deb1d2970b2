package model

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Location{},
		&Product{},
		&Lot{},
		&Movement{},
		&Event{},
	}
}
