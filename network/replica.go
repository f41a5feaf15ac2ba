package network

import (
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// ItemView is an item as observers see it.
type ItemView struct {
	netcomponents.NetItemData
	Transform netcomponents.NetTransformData
}

// HolderView is a holder as observers see it.
type HolderView struct {
	netcomponents.NetHolderData
	Transform netcomponents.NetTransformData
}

// Replica is the observer copy of replicated state, rebuilt from snapshots.
// It is read-only: nothing in it is ever sent back.
type Replica struct {
	Items   map[netconfig.ItemID]ItemView
	Holders map[netconfig.HolderID]HolderView
	Session netcomponents.NetSessionData
}

func NewReplica() *Replica {
	return &Replica{
		Items:   make(map[netconfig.ItemID]ItemView),
		Holders: make(map[netconfig.HolderID]HolderView),
	}
}

// Apply replaces the replica with a snapshot. Components that fail to
// decode are skipped.
func (r *Replica) Apply(snapshot esync.WorldSnapshot) {
	clear(r.Items)
	clear(r.Holders)
	for _, ent := range snapshot {
		var compData []any
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			compData = append(compData, instance)
		}
		r.applyEntity(compData)
	}
}

// applyEntity files one entity's decoded components by what it carries.
func (r *Replica) applyEntity(compData []any) {
	var (
		transform netcomponents.NetTransformData
		item      *netcomponents.NetItemData
		holder    *netcomponents.NetHolderData
	)
	for _, data := range compData {
		switch v := data.(type) {
		case netcomponents.NetTransformData:
			transform = v
		case netcomponents.NetItemData:
			item = &v
		case netcomponents.NetHolderData:
			holder = &v
		case netcomponents.NetSessionData:
			r.Session = v
		}
	}
	if item != nil {
		r.Items[item.ItemID] = ItemView{NetItemData: *item, Transform: transform}
	}
	if holder != nil {
		r.Holders[holder.HolderID] = HolderView{NetHolderData: *holder, Transform: transform}
	}
}

// Nearest returns the closest item to a holder that is neither broken nor
// carried by someone else.
func (r *Replica) Nearest(self netconfig.HolderID) (ItemView, bool) {
	me, ok := r.Holders[self]
	if !ok {
		return ItemView{}, false
	}
	var best ItemView
	bestDist := -1.0
	for _, it := range r.Items {
		if it.State == netconfig.ItemBroken {
			continue
		}
		if it.State == netconfig.ItemHeld {
			continue
		}
		d := it.Transform.Position().Sub(me.Transform.Position()).Len()
		if bestDist < 0 || d < bestDist || (d == bestDist && it.ItemID < best.ItemID) {
			best, bestDist = it, d
		}
	}
	return best, bestDist >= 0
}
