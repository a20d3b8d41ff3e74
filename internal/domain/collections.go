package domain

import "slices"

// Collection names as they appear in API paths, mutation events and
// websocket channels.
const (
	CollectionApartments  = "apartments"
	CollectionTenants     = "tenants"
	CollectionPayments    = "payments"
	CollectionExpenses    = "expenses"
	CollectionMaintenance = "maintenance-requests"
)

var collectionNames = []string{ //nolint:gochecknoglobals // canonical enum list
	CollectionApartments,
	CollectionTenants,
	CollectionPayments,
	CollectionExpenses,
	CollectionMaintenance,
}

// CollectionNames returns every collection a client may query or watch.
func CollectionNames() []string {
	return slices.Clone(collectionNames)
}

// ValidCollection reports whether name is a known collection.
func ValidCollection(name string) bool {
	return slices.Contains(collectionNames, name)
}
