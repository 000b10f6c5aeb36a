package inventory

import (
	"fmt"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrLocationNotFound is returned when an operation names a location that
// is not part of the configured topology
var ErrLocationNotFound = shared.NewDomainError("LOCATION_NOT_FOUND", "Location is not part of the configured topology")

// LocationClass classifies a location in the distribution network
type LocationClass string

const (
	ClassCentralWarehouse  LocationClass = "central"
	ClassRegionalWarehouse LocationClass = "regional"
	ClassStore             LocationClass = "store"
)

// IsValid checks if the location class is a known value
func (c LocationClass) IsValid() bool {
	switch c {
	case ClassCentralWarehouse, ClassRegionalWarehouse, ClassStore:
		return true
	}
	return false
}

// Default capacity ceilings per location class, applied when a stock record
// is created lazily and the topology does not override capacity.
var (
	DefaultStoreCapacity    = decimal.NewFromInt(200)
	DefaultRegionalCapacity = decimal.NewFromInt(1000)
	DefaultCentralCapacity  = decimal.NewFromInt(5000)
)

// DefaultCapacity returns the default capacity ceiling for a location class.
// Unknown classes fall back to the store default.
func DefaultCapacity(class LocationClass) decimal.Decimal {
	switch class {
	case ClassCentralWarehouse:
		return DefaultCentralCapacity
	case ClassRegionalWarehouse:
		return DefaultRegionalCapacity
	default:
		return DefaultStoreCapacity
	}
}

// Location describes one node of the distribution network
type Location struct {
	ID              string
	Name            string
	Class           LocationClass
	Region          string
	ParentWarehouse string          // For stores: the regional warehouse that replenishes them
	Capacity        decimal.Decimal // Zero means use the class default
}

// EffectiveCapacity returns the configured capacity or the class default
func (l Location) EffectiveCapacity() decimal.Decimal {
	if l.Capacity.GreaterThan(decimal.Zero) {
		return l.Capacity
	}
	return DefaultCapacity(l.Class)
}

// Topology is the validated lookup table of all known locations.
// Region and parent-warehouse relationships come from configuration;
// nothing is inferred from location ID strings at runtime.
type Topology struct {
	locations map[string]Location
	centralID string
}

// NewTopology builds and validates a topology from a list of locations.
// Rules: every class must be valid, exactly one central warehouse, every
// store must name a parent that is a known regional warehouse, and every
// regional warehouse must carry a region.
func NewTopology(locations []Location) (*Topology, error) {
	t := &Topology{locations: make(map[string]Location, len(locations))}

	for _, loc := range locations {
		if loc.ID == "" {
			return nil, fmt.Errorf("topology: location with empty ID")
		}
		if !loc.Class.IsValid() {
			return nil, fmt.Errorf("topology: location %s has unknown class %q", loc.ID, loc.Class)
		}
		if _, dup := t.locations[loc.ID]; dup {
			return nil, fmt.Errorf("topology: duplicate location %s", loc.ID)
		}
		if loc.Class == ClassCentralWarehouse {
			if t.centralID != "" {
				return nil, fmt.Errorf("topology: more than one central warehouse (%s, %s)", t.centralID, loc.ID)
			}
			t.centralID = loc.ID
		}
		if loc.Class == ClassRegionalWarehouse && loc.Region == "" {
			return nil, fmt.Errorf("topology: regional warehouse %s has no region", loc.ID)
		}
		t.locations[loc.ID] = loc
	}

	if t.centralID == "" {
		return nil, fmt.Errorf("topology: no central warehouse configured")
	}

	for _, loc := range t.locations {
		if loc.Class != ClassStore {
			continue
		}
		parent, ok := t.locations[loc.ParentWarehouse]
		if !ok {
			return nil, fmt.Errorf("topology: store %s references unknown parent warehouse %q", loc.ID, loc.ParentWarehouse)
		}
		if parent.Class != ClassRegionalWarehouse {
			return nil, fmt.Errorf("topology: store %s parent %s is not a regional warehouse", loc.ID, parent.ID)
		}
	}

	return t, nil
}

// Lookup returns the location for an ID
func (t *Topology) Lookup(id string) (Location, bool) {
	loc, ok := t.locations[id]
	return loc, ok
}

// ClassOf returns the class of a location, or false if unknown
func (t *Topology) ClassOf(id string) (LocationClass, bool) {
	loc, ok := t.locations[id]
	return loc.Class, ok
}

// ParentWarehouse returns the regional warehouse that replenishes a store
func (t *Topology) ParentWarehouse(storeID string) (Location, bool) {
	loc, ok := t.locations[storeID]
	if !ok || loc.Class != ClassStore {
		return Location{}, false
	}
	return t.Lookup(loc.ParentWarehouse)
}

// CentralWarehouse returns the single central warehouse
func (t *Topology) CentralWarehouse() Location {
	return t.locations[t.centralID]
}

// NewRecordFor builds a stock record prototype for lazy creation, resolving
// name, region and capacity from the topology. Unknown locations fall back
// to the store default capacity.
func (t *Topology) NewRecordFor(productID, productName, locationID, locationName string) (*StockRecord, error) {
	capacity := DefaultCapacity(ClassStore)
	region := ""

	if loc, ok := t.Lookup(locationID); ok {
		capacity = loc.EffectiveCapacity()
		region = loc.Region
		if locationName == "" {
			locationName = loc.Name
		}
	} else if locationName == "" {
		locationName = locationID
	}

	return NewStockRecord(productID, locationID, productName, locationName, region, capacity)
}

// All returns every configured location
func (t *Topology) All() []Location {
	out := make([]Location, 0, len(t.locations))
	for _, loc := range t.locations {
		out = append(out, loc)
	}
	return out
}
