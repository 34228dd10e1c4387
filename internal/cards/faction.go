package cards

import "fmt"

// Faction identifies the card's faction.
type Faction int

const (
	FakeTech      Faction = 1
	BumLegion2099 Faction = 2
	Femacube      Faction = 3
)

// FactionCount is the number of known factions.
const FactionCount = 3

// Name returns the display name of the faction.
func (f Faction) Name() string {
	switch f {
	case FakeTech:
		return "Fake Tech"
	case BumLegion2099:
		return "Bum Legion 2099"
	case Femacube:
		return "F.E.M.A.C.U.B.E."
	default:
		return fmt.Sprintf("Faction(%d)", int(f))
	}
}

// Code returns the short code used in icon file names.
func (f Faction) Code() string {
	switch f {
	case BumLegion2099:
		return "bl"
	case Femacube:
		return "fc"
	default:
		return "ft"
	}
}

// Valid reports whether f is a known faction.
func (f Faction) Valid() bool {
	return f >= FakeTech && f <= Femacube
}

func (f Faction) String() string {
	return f.Name()
}
