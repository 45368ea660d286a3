package classifier

// SectionGeneral is the section type used when no title keyword matches.
const SectionGeneral = "general"

var sectionSignatures = []Signature{
	{Name: "rates", Keywords: []string{"rate", "price", "tariff", "cost"}},
	{Name: "terms", Keywords: []string{"term", "condition"}},
	{Name: "policies", Keywords: []string{"policy", "policies"}},
	{Name: "offers", Keywords: []string{"offer", "special", "promotion", "package", "deal"}},
	{Name: "amenities", Keywords: []string{"amenity", "facility", "service", "complimentary"}},
	{Name: "transfers", Keywords: []string{"transfer", "airport", "transport"}},
	{Name: "meals", Keywords: []string{"meal", "dining", "restaurant", "food", "beverage"}},
	{Name: "cancellation", Keywords: []string{"cancel", "modification", "refund"}},
}

// SectionType classifies a section title. An empty title is general.
func SectionType(title string) string {
	if m, ok := First(sectionSignatures, Normalize(title)); ok {
		return m.Name
	}
	return SectionGeneral
}
