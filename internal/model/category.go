package model

// Category is static reference data that drives the create-listing form.
type Category struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	NameDE string          `json:"name_de"`
	Icon   string          `json:"icon"`
	Fields []CategoryField `json:"fields"`
}

// CategoryField describes one dynamic form field. Options is either a list of
// strings or, for select_dynamic fields, a map from a parent value to a list.
type CategoryField struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Options any    `json:"options,omitempty"`
}

// Field types.
const (
	FieldTypeText          = "text"
	FieldTypeNumber        = "number"
	FieldTypeSelect        = "select"
	FieldTypeSelectDynamic = "select_dynamic"
)

var conditionField = CategoryField{
	Name: "condition", Label: "Zustand", Type: FieldTypeSelect,
	Options: []string{"Neu", "Neuwertig", "Gebraucht", "Beschädigt"},
}

// Categories returns the category catalogue served by the backend.
func Categories() []Category {
	return []Category{
		{
			ID: "cars", Name: "Autos", NameDE: "Autos", Icon: "car",
			Fields: []CategoryField{
				{Name: "brand", Label: "Marke", Type: FieldTypeSelect, Options: []string{"Audi", "BMW", "Mercedes-Benz", "Volkswagen", "Opel", "Ford", "Toyota", "Andere"}},
				{Name: "model", Label: "Modell", Type: FieldTypeSelectDynamic, Options: map[string][]string{
					"Audi":          {"A1", "A3", "A4", "A6", "Q3", "Q5"},
					"BMW":           {"1er", "3er", "5er", "X1", "X3", "X5"},
					"Mercedes-Benz": {"A-Klasse", "C-Klasse", "E-Klasse", "GLC"},
					"Volkswagen":    {"Polo", "Golf", "Passat", "Tiguan"},
					"Andere":        {},
				}},
				{Name: "year", Label: "Baujahr", Type: FieldTypeNumber},
				{Name: "mileage", Label: "Kilometerstand", Type: FieldTypeNumber},
				{Name: "fuel_type", Label: "Kraftstoffart", Type: FieldTypeSelect, Options: []string{"Benzin", "Diesel", "Elektro", "Hybrid"}},
				{Name: "transmission", Label: "Getriebe", Type: FieldTypeSelect, Options: []string{"Automatik", "Manuell"}},
				conditionField,
			},
		},
		{
			ID: "real_estate", Name: "Immobilien", NameDE: "Immobilien", Icon: "home",
			Fields: []CategoryField{
				{Name: "property_type", Label: "Objektart", Type: FieldTypeSelect, Options: []string{"Wohnung", "Haus", "Grundstück", "Gewerbe"}},
				{Name: "rooms", Label: "Zimmer", Type: FieldTypeNumber},
				{Name: "area", Label: "Wohnfläche (m²)", Type: FieldTypeNumber},
				{Name: "offer_type", Label: "Angebotsart", Type: FieldTypeSelect, Options: []string{"Miete", "Kauf"}},
			},
		},
		{
			ID: "electronics", Name: "Elektronik", NameDE: "Elektronik", Icon: "phone-portrait",
			Fields: []CategoryField{
				{Name: "device_type", Label: "Gerätetyp", Type: FieldTypeSelect, Options: []string{"Handy", "Laptop", "Tablet", "TV", "Konsole", "Andere"}},
				{Name: "brand", Label: "Marke", Type: FieldTypeText},
				conditionField,
			},
		},
		{
			ID: "fashion", Name: "Mode", NameDE: "Mode", Icon: "shirt",
			Fields: []CategoryField{
				{Name: "size", Label: "Größe", Type: FieldTypeSelect, Options: []string{"XS", "S", "M", "L", "XL", "XXL"}},
				{Name: "gender", Label: "Für", Type: FieldTypeSelect, Options: []string{"Damen", "Herren", "Kinder", "Unisex"}},
				conditionField,
			},
		},
		{
			ID: "furniture", Name: "Möbel", NameDE: "Möbel", Icon: "bed",
			Fields: []CategoryField{
				{Name: "material", Label: "Material", Type: FieldTypeText},
				conditionField,
			},
		},
		{
			ID: "jobs", Name: "Jobs", NameDE: "Jobs", Icon: "briefcase",
			Fields: []CategoryField{
				{Name: "employment_type", Label: "Anstellungsart", Type: FieldTypeSelect, Options: []string{"Vollzeit", "Teilzeit", "Minijob", "Praktikum"}},
			},
		},
		{
			ID: "services", Name: "Dienstleistungen", NameDE: "Dienstleistungen", Icon: "construct",
		},
		{
			ID: "other", Name: "Sonstiges", NameDE: "Sonstiges", Icon: "ellipsis-horizontal",
			Fields: []CategoryField{conditionField},
		},
	}
}

// FindCategory returns the category with the given id.
func FindCategory(id string) (Category, bool) {
	for _, c := range Categories() {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryExists reports whether id names a known category.
func CategoryExists(id string) bool {
	_, ok := FindCategory(id)
	return ok
}
