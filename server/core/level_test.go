package core

import (
	"testing"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/levels"
	"github.com/automoto/haulers-mp/shared/leveldata"
	"github.com/go-gl/mathgl/mgl64"
)

func TestServerLevelConvertsToMeters(t *testing.T) {
	data := testLevel()
	data.Walls = []leveldata.Rect{{X: 0, Y: 0, W: 640, H: 32}}
	data.Movers = []leveldata.MoverSpawn{{Rect: leveldata.Rect{X: 64, Y: 320, W: 32, H: 32}, TravelX: 64, Duration: 1}}

	lvl := NewServerLevel(data, cfg.Physics)
	if lvl.Width != 20 || lvl.Depth != 20 {
		t.Fatalf("size = %gx%g, want 20x20", lvl.Width, lvl.Depth)
	}
	if lvl.Items[0].X != 5 || lvl.Items[0].Y != 5 {
		t.Fatalf("first item at (%g, %g), want (5, 5)", lvl.Items[0].X, lvl.Items[0].Y)
	}
	if len(lvl.World.Movers()) != 1 {
		t.Fatalf("movers = %d, want 1", len(lvl.World.Movers()))
	}
	if !lvl.InZone(mgl64.Vec3{14, 0, 14}) || lvl.InZone(mgl64.Vec3{5, 0, 5}) {
		t.Fatalf("zone check wrong")
	}
	if got := lvl.SpawnPoint(3); got != (mgl64.Vec3{9, 0, 5}) {
		t.Fatalf("seat 3 spawns at %v, want the second spawn point", got)
	}
}

func TestSpawnPointWithoutSpawns(t *testing.T) {
	data := testLevel()
	data.SpawnPoints = nil
	lvl := NewServerLevel(data, cfg.Physics)
	if got := lvl.SpawnPoint(0); got != (mgl64.Vec3{10, 0, 10}) {
		t.Fatalf("fallback spawn = %v, want the room center", got)
	}
}

func TestBuiltInLevelsHost(t *testing.T) {
	all, names, err := LoadLevelData(levels.FS, ".")
	if err != nil {
		t.Fatalf("LoadLevelData: %v", err)
	}
	for _, name := range names {
		s := newTestServer(t, Options{Level: all[name]})
		if len(s.Items()) == 0 {
			t.Fatalf("level %s has no items", name)
		}
		for i := 0; i < 20; i++ {
			s.Tick()
		}
		for _, it := range s.Items() {
			if it.IsBroken() {
				t.Fatalf("level %s: %s broke while settling", name, it.Type.Name)
			}
		}
	}
}
