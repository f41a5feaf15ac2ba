package gamemath

import "github.com/go-gl/mathgl/mgl64"

// CalculateImpactDamage returns the base damage for an impact. Impacts slower
// than threshold deal nothing.
func CalculateImpactDamage(perCollision, threshold, speed float64) float64 {
	if threshold <= 0 || speed < threshold {
		return 0
	}
	return perCollision * speed / threshold
}

// ScaleDamage applies the fragile, carried and thrown multipliers.
func ScaleDamage(base, fragile float64, held bool, carriedMult float64, thrown bool, thrownMult float64) float64 {
	dmg := base * fragile
	if held {
		dmg *= carriedMult
	}
	if thrown {
		dmg *= thrownMult
	}
	return dmg
}

// ApplyDamage subtracts damage from value, never going below minValue.
func ApplyDamage(value, minValue, damage float64) float64 {
	if damage <= 0 {
		return value
	}
	value -= damage
	if value < minValue {
		return minValue
	}
	return value
}

// ShouldForceDrop reports whether a single hit is large relative to what was
// left of the item's durability window before the hit.
func ShouldForceDrop(damage, valueBefore, minValue, dropFraction float64) bool {
	remaining := valueBefore - minValue
	if remaining <= 0 {
		return true
	}
	return damage >= dropFraction*remaining
}

// CalculateRecoil returns the counter impulse for a held item: opposite the
// contact normal, proportional to the impact speed.
func CalculateRecoil(normal mgl64.Vec3, speed, strength float64) mgl64.Vec3 {
	if normal.Len() == 0 {
		return mgl64.Vec3{}
	}
	return normal.Normalize().Mul(-speed * strength)
}
