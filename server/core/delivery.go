package core

// DeliverableValue sums the value of items resting over a delivery zone.
// Held and broken items do not count.
func (s *Server) DeliverableValue() float64 {
	var total float64
	for _, e := range s.items {
		if e.item.IsGrabbed() || e.item.IsBroken() {
			continue
		}
		if s.level.InZone(e.item.Body().Position()) {
			total += e.item.Value()
		}
	}
	return total
}
