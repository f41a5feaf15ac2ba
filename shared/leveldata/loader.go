package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

var ErrNoLevels = errors.New("no levels found")

// Layer and object group names
const (
	WallLayer        = "wg-tiles"
	ItemSpawnGroup   = "ItemSpawns"
	DeliveryGroup    = "DeliveryZones"
	MoverGroup       = "Movers"
	PlayerSpawnGroup = "PlayerSpawn"
)

// LoadLevel parses a TMX file. It takes an fs.FS so callers can pass
// embed.FS or os.DirFS.
func LoadLevel(fsys fs.FS, tmxPath string) (*LevelData, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	data := &LevelData{
		Name:      strings.TrimSuffix(path.Base(tmxPath), ".tmx"),
		MapWidth:  levelMap.Width * levelMap.TileWidth,
		MapHeight: levelMap.Height * levelMap.TileHeight,
	}

	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, layer := range levelMap.Layers {
		if layer.Name != WallLayer {
			continue
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				if layer.Tiles[y*levelMap.Width+x].IsNil() {
					continue
				}
				data.Walls = append(data.Walls, Rect{
					X: float64(x) * tileW,
					Y: float64(y) * tileH,
					W: tileW,
					H: tileH,
				})
			}
		}
		break
	}
	data.Walls = mergeRows(data.Walls)

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case ItemSpawnGroup:
			for _, o := range og.Objects {
				itemType := o.Properties.GetString("item")
				if itemType == "" {
					itemType = o.Class
				}
				if itemType == "" {
					return nil, fmt.Errorf("%s: item spawn %d has no item type", tmxPath, o.ID)
				}
				data.ItemSpawns = append(data.ItemSpawns, ItemSpawn{
					X:        o.X,
					Y:        o.Y,
					ItemType: itemType,
					Yaw:      o.Properties.GetFloat("yaw"),
				})
			}
		case DeliveryGroup:
			for _, o := range og.Objects {
				data.Zones = append(data.Zones, Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case MoverGroup:
			for _, o := range og.Objects {
				data.Movers = append(data.Movers, MoverSpawn{
					Rect:     Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height},
					TravelX:  o.Properties.GetFloat("travelX"),
					TravelY:  o.Properties.GetFloat("travelY"),
					Duration: o.Properties.GetFloat("duration"),
				})
			}
		case PlayerSpawnGroup:
			for _, o := range og.Objects {
				data.SpawnPoints = append(data.SpawnPoints, SpawnPoint{
					X:     o.X,
					Y:     o.Y,
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		}
	}

	sort.Slice(data.SpawnPoints, func(i, j int) bool {
		return data.SpawnPoints[i].Index < data.SpawnPoints[j].Index
	})

	return data, nil
}

// mergeRows joins horizontally adjacent wall tiles into longer blocks so the
// broadphase holds fewer objects.
func mergeRows(tiles []Rect) []Rect {
	if len(tiles) == 0 {
		return nil
	}
	merged := []Rect{tiles[0]}
	for _, t := range tiles[1:] {
		last := &merged[len(merged)-1]
		if t.Y == last.Y && t.H == last.H && t.X == last.X+last.W {
			last.W += t.W
			continue
		}
		merged = append(merged, t)
	}
	return merged
}

// LoadAllLevels discovers all .tmx files in levelsDir within fsys, loads each,
// and returns a map keyed by stem name plus a sorted list of names.
func LoadAllLevels(fsys fs.FS, levelsDir string) (map[string]*LevelData, []string, error) {
	pattern := path.Join(levelsDir, "*.tmx")
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoLevels, levelsDir)
	}

	levels := make(map[string]*LevelData, len(matches))
	names := make([]string, 0, len(matches))

	for _, match := range matches {
		data, err := LoadLevel(fsys, match)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", match, err)
		}
		levels[data.Name] = data
		names = append(names, data.Name)
	}

	sort.Strings(names)
	return levels, names, nil
}
