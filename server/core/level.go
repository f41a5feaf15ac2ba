package core

import (
	"fmt"
	"io/fs"
	"log"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/leveldata"
	"github.com/go-gl/mathgl/mgl64"
)

// ServerLevel is a level converted to meters with its physics world built.
type ServerLevel struct {
	Name        string
	World       *physics.World
	Items       []leveldata.ItemSpawn // positions already in meters
	Zones       []leveldata.Rect      // meters, X/Y map to world X/Z
	SpawnPoints []mgl64.Vec3
	Width       float64
	Depth       float64
}

// NewServerLevel builds the physics world for parsed level data. TMX pixels
// become meters through PixelsPerMeter; the map's Y axis becomes world Z.
func NewServerLevel(data *leveldata.LevelData, phys cfg.PhysicsConfig) *ServerLevel {
	ppm := phys.PixelsPerMeter
	if ppm <= 0 {
		ppm = 1
	}
	m := func(px float64) float64 { return px / ppm }

	lvl := &ServerLevel{
		Name:  data.Name,
		Width: m(float64(data.MapWidth)),
		Depth: m(float64(data.MapHeight)),
	}
	lvl.World = physics.NewWorld(phys, lvl.Width, lvl.Depth)

	for _, r := range data.Walls {
		lvl.World.AddSolid(m(r.X), m(r.Y), m(r.W), m(r.H))
	}
	for _, mv := range data.Movers {
		lvl.World.AddMover(m(mv.X), m(mv.Y), m(mv.W), m(mv.H), m(mv.TravelX), m(mv.TravelY), mv.Duration)
	}
	for _, z := range data.Zones {
		lvl.Zones = append(lvl.Zones, leveldata.Rect{X: m(z.X), Y: m(z.Y), W: m(z.W), H: m(z.H)})
	}
	for _, it := range data.ItemSpawns {
		lvl.Items = append(lvl.Items, leveldata.ItemSpawn{X: m(it.X), Y: m(it.Y), ItemType: it.ItemType, Yaw: it.Yaw})
	}
	for _, sp := range data.SpawnPoints {
		lvl.SpawnPoints = append(lvl.SpawnPoints, mgl64.Vec3{m(sp.X), phys.FloorY, m(sp.Y)})
	}

	log.Printf("[server] loaded level %s: %d walls, %d items, %d zones, %d movers, %.0fx%.0fm",
		data.Name, len(data.Walls), len(lvl.Items), len(lvl.Zones), len(data.Movers), lvl.Width, lvl.Depth)
	return lvl
}

// SpawnPoint returns the spawn for a seat, cycling when there are more seats
// than spawns.
func (l *ServerLevel) SpawnPoint(seat int) mgl64.Vec3 {
	if len(l.SpawnPoints) == 0 {
		return mgl64.Vec3{l.Width / 2, 0, l.Depth / 2}
	}
	return l.SpawnPoints[seat%len(l.SpawnPoints)]
}

// InZone reports whether a world position lies over a delivery zone.
func (l *ServerLevel) InZone(p mgl64.Vec3) bool {
	for _, z := range l.Zones {
		if z.Contains(p[0], p[2]) {
			return true
		}
	}
	return false
}

// LoadLevelData loads every .tmx level under dir in fsys.
func LoadLevelData(fsys fs.FS, dir string) (map[string]*leveldata.LevelData, []string, error) {
	levels, names, err := leveldata.LoadAllLevels(fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load all levels: %w", err)
	}
	return levels, names, nil
}
