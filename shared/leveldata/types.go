// Package leveldata provides TMX level parsing shared between client and server.
// It has no dependencies on donburi, resolv or the physics world; pure data only.
// Coordinates are TMX pixels with the map's Y axis; the server maps them onto
// the ground plane.
package leveldata

// LevelData holds everything the authority needs from a TMX level file.
type LevelData struct {
	Name        string
	Walls       []Rect
	ItemSpawns  []ItemSpawn
	Zones       []Rect
	Movers      []MoverSpawn
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
}

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// ItemSpawn places one carriable item of a catalog type.
type ItemSpawn struct {
	X, Y     float64
	ItemType string
	Yaw      float64 // degrees
}

// MoverSpawn is a block that slides by (TravelX, TravelY) and back.
type MoverSpawn struct {
	Rect
	TravelX, TravelY float64
	Duration         float64 // seconds per leg
}

// SpawnPoint represents a holder spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}
