package model

// PredefinedCategories is the hierarchical "topic:subtopic" set offered to
// clients and injected into the categorizer's tool schema as an enum.
var PredefinedCategories = []string{
	"food:groceries",
	"food:restaurants",
	"food:delivery",
	"transport:fuel",
	"transport:public",
	"transport:taxi",
	"home:rent",
	"home:utilities",
	"home:furniture",
	"entertainment:streaming",
	"entertainment:games",
	"entertainment:events",
	"health:pharmacy",
	"health:doctor",
	"health:fitness",
	"shopping:clothes",
	"shopping:electronics",
	"shopping:gifts",
	"education:books",
	"education:courses",
	"finance:fees",
	"finance:insurance",
	"travel:flights",
	"travel:accommodation",
	"other:misc",
}
