package carry

import (
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/messages"
)

// OnCollision evaluates damage for one contact. Each contact is judged on
// its own; a step with several contacts may force a drop after any of them.
func (it *Item) OnCollision(c physics.Collision) {
	if it.IsBroken() {
		return
	}
	d := it.damage
	speed := c.ImpactSpeed()
	now := it.clock.Now()

	thrown := it.thrown && now-it.thrownAt < d.ThrownWindow
	inGrace := it.released && now-it.releasedAt < d.GraceWindow
	if inGrace && !thrown && speed < d.GraceIgnoreBelow {
		return
	}

	perCollision, threshold, fragile := it.Type.DamageScale(d)
	base := gamemath.CalculateImpactDamage(perCollision, threshold, speed)
	if base <= 0 {
		return
	}
	held := it.coord.Occupied()
	dmg := gamemath.ScaleDamage(base, fragile, held, d.CarriedMultiplier, thrown, d.ThrownMultiplier)

	before := it.value
	it.value = gamemath.ApplyDamage(before, it.Type.MinValue, dmg)
	if it.value == before {
		return
	}

	if held {
		it.body.AddImpulse(gamemath.CalculateRecoil(c.Normal, speed, d.RecoilStrength))
	}

	it.events.Emit(messages.ItemDamagedEvent{
		ItemID:        it.ID,
		Damage:        before - it.value,
		Value:         it.value,
		ImpactSpeed:   speed,
		PointX:        c.Point[0],
		PointY:        c.Point[1],
		PointZ:        c.Point[2],
		WhileHeld:     held,
		AfterThrowHit: thrown,
	})

	broken := it.IsBroken()
	if broken {
		it.events.Emit(messages.ItemBrokenEvent{ItemID: it.ID})
		it.logf("broken at speed %.2f", speed)
	}

	if held && (broken || gamemath.ShouldForceDrop(dmg, before, it.Type.MinValue, d.DropFraction)) {
		it.logf("forced drop after %.1f damage", dmg)
		it.ForceDrop(it.body.Velocity())
		return
	}
	it.emitSummary()
}
