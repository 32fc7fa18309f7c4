// Package entity holds the durable records of the travel tracker and the payloads used to create and update them.
package entity

// Kind names one of the record collections kept by the object store.
type Kind int

const (
	// KindCountry is the Country collection, keyed by name
	KindCountry Kind = iota + 1
	// KindTravel is the Travel collection, keyed by id
	KindTravel
)

func (k Kind) String() string {
	switch k {
	case KindCountry:
		return "country"
	case KindTravel:
		return "travel"
	default:
		return "unknown"
	}
}

// Entity is a durable record. Only *Country and *Travel implement it.
type Entity interface {
	Kind() Kind
	entity()
}

// Predicate filters records during a fetch or count.
type Predicate func(Entity) bool
