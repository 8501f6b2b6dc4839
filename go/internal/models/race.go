package models

// Race is a playable faction, identified by the short id the backend uses.
type Race string

const (
	RaceCats     Race = "CATS"
	RaceBirds    Race = "BIRDS"
	RaceMice     Race = "MICE"
	RaceVagabond Race = "VAGABOND"
	RaceLizards  Race = "LIZARDS"
	RaceOtters   Race = "OTTERS"
	RaceMoles    Race = "MOLES"
	RaceCrows    Race = "CROWS"
	RaceRats     Race = "RATS"
	RaceBadgers  Race = "BADGERS"
)

// AllRaces is the full faction list in display order.
var AllRaces = []Race{
	RaceCats,
	RaceBirds,
	RaceMice,
	RaceVagabond,
	RaceLizards,
	RaceOtters,
	RaceMoles,
	RaceCrows,
	RaceRats,
	RaceBadgers,
}

// ValidRace reports whether r is a known faction id.
func ValidRace(r Race) bool {
	for _, known := range AllRaces {
		if known == r {
			return true
		}
	}
	return false
}

// Landmark is an optional board module that can be banned or drawn for a match.
type Landmark string

const (
	LandmarkTower          Landmark = "TOWER"
	LandmarkFerry          Landmark = "FERRY"
	LandmarkLostCity       Landmark = "LOST_CITY"
	LandmarkLegendaryForge Landmark = "LEGENDARY_FORGE"
	LandmarkBlackMarket    Landmark = "BLACK_MARKET"
	LandmarkElderTreetop   Landmark = "ELDER_TREETOP"
)

var AllLandmarks = []Landmark{
	LandmarkTower,
	LandmarkFerry,
	LandmarkLostCity,
	LandmarkLegendaryForge,
	LandmarkBlackMarket,
	LandmarkElderTreetop,
}

// ValidLandmark reports whether l is a known landmark id.
func ValidLandmark(l Landmark) bool {
	for _, known := range AllLandmarks {
		if known == l {
			return true
		}
	}
	return false
}
