package maintenance

import "context"

// Location is the place an equipment item is installed, with the site/zone
// it rolls up to.
type Location struct {
	ID     uint
	Name   string
	SiteID uint
	ZoneID uint
}

// Equipment is the asset a plan is attached to.
type Equipment struct {
	ID       uint
	TenantID uint
	Tag      string
	Name     string
	Location *Location
}

// HasLocation reports whether the equipment's hierarchy resolves to a
// location with a site.
func (e *Equipment) HasLocation() bool {
	return e.Location != nil && e.Location.ID != 0 && e.Location.SiteID != 0
}

// EquipmentLookup is provided by the asset subsystem.
type EquipmentLookup interface {
	GetEquipment(ctx context.Context, id uint) (*Equipment, error)
}

// LocationLookup is only used by the optional first-location fallback.
type LocationLookup interface {
	FirstLocation(ctx context.Context) (*Location, error)
}

// UserDirectory resolves user display names.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID uint) (string, error)
}
