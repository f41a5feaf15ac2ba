package core

import (
	"math"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/carry"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

func itemID(id uint32) netconfig.ItemID { return netconfig.ItemID(id) }

// cfgAttach is the hands offset for a holder facing +Z.
func cfgAttach() mgl64.Vec3 { return mgl64.Vec3(cfg.Holder.AttachOffset) }

// placeItem teleports an item onto the floor at (x, z).
func placeItem(it *carry.Item, x, z float64) {
	b := it.Body()
	b.Teleport(physics.NewPose(mgl64.Vec3{x, b.HalfExtents()[1], z}, b.Pose().Rotation))
	b.SetVelocity(mgl64.Vec3{})
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func netTransformOf(s *Server, e donburi.Entity) *netcomponents.NetTransformData {
	return netcomponents.NetTransform.Get(s.world.Entry(e))
}

func netItemOf(s *Server, e donburi.Entity) *netcomponents.NetItemData {
	return netcomponents.NetItem.Get(s.world.Entry(e))
}

func netHolderOf(s *Server, e donburi.Entity) *netcomponents.NetHolderData {
	return netcomponents.NetHolder.Get(s.world.Entry(e))
}

func netSessionOf(s *Server) *netcomponents.NetSessionData {
	return netcomponents.NetSession.Get(s.world.Entry(s.session))
}
