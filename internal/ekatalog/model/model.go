package model

// Collection names of the flat-file record store. The member collection is
// the only one with domain logic on top; the rest are generic catalog
// collections edited through single-entity CRUD.
const (
	CollectionUsers       = "users"
	CollectionBranches    = "branches"
	CollectionCategories  = "categories"
	CollectionProducts    = "products"
	CollectionItems       = "items"
	CollectionMembers     = "members"
	CollectionMemberTiers = "member-tiers"
	CollectionWAAccounts  = "wa_accounts"
)

// GenericCollections lists the collections served by the generic CRUD
// surface. members is excluded: it has its own routes and merge semantics.
var GenericCollections = []string{
	CollectionUsers,
	CollectionBranches,
	CollectionCategories,
	CollectionProducts,
	CollectionItems,
	CollectionMemberTiers,
	CollectionWAAccounts,
}

// IsGenericCollection reports whether name is servable by the generic
// collection surface.
func IsGenericCollection(name string) bool {
	for _, c := range GenericCollections {
		if c == name {
			return true
		}
	}
	return false
}
