package archetypes

import (
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/automoto/haulers-mp/tags"
	"github.com/yohamta/donburi"
)

// Replicated entities the authority creates. Physics state stays outside the
// ECS world and is never synced.
var (
	Item = newArchetype(
		tags.Item,
		netcomponents.NetTransform,
		netcomponents.NetItem,
	)
	Holder = newArchetype(
		tags.Holder,
		netcomponents.NetTransform,
		netcomponents.NetHolder,
	)
	Session = newArchetype(
		tags.Session,
		netcomponents.NetSession,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

// Spawn creates an entity with the archetype's components plus cs.
func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(a.components)+len(cs))
	all = append(all, a.components...)
	all = append(all, cs...)
	return world.Entry(world.Create(all...))
}
