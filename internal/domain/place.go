package domain

// Place is a canonicalized business/location entity. Natural key is
// (name, address); a place is created once and never updated on re-import.
type Place struct {
	ID         int64
	Name       *string
	Categories *string
	Address    *string
	City       *string
	Province   *string
	Country    *string
	PostalCode *string
	Latitude   *float64
	Longitude  *float64
}

// Key returns the natural key of the place. Nil fields collapse to the
// empty string; the NUL separator keeps ("a","") and ("","a") distinct.
func (p Place) Key() PlaceKey {
	return PlaceKeyOf(p.Name, p.Address)
}

type PlaceKey string

func PlaceKeyOf(name, address *string) PlaceKey {
	k := ""
	if name != nil {
		k = *name
	}
	k += "\x00"
	if address != nil {
		k += *address
	}
	return PlaceKey(k)
}
