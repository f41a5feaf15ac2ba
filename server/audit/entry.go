// Package audit records every item event the server broadcasts. The
// compressed JSONL log is the source of truth; the SQLite index answers
// per-item history queries and may drop rows if it falls behind.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
)

// Event kinds as stored in the log.
const (
	KindSummary = "summary"
	KindGrabbed = "grabbed"
	KindRelease = "released"
	KindDamaged = "damaged"
	KindBroken  = "broken"
	KindReset   = "reset"
)

// Entry is one logged event.
type Entry struct {
	Session string             `json:"session"`
	Seq     uint64             `json:"seq"`
	Tick    uint64             `json:"tick"`
	At      float64            `json:"at"`
	Kind    string             `json:"kind"`
	ItemID  netconfig.ItemID   `json:"item,omitempty"`
	Holder  netconfig.HolderID `json:"holder,omitempty"`
	Value   float64            `json:"value"`
	Damage  float64            `json:"damage,omitempty"`
	Raw     json.RawMessage    `json:"raw"`
}

// entryFor converts a broadcast event. Events that are not about items or
// the session (join replies) report ok=false.
func entryFor(event any) (Entry, bool, error) {
	var e Entry
	switch ev := event.(type) {
	case messages.ItemSummaryEvent:
		e = Entry{Kind: KindSummary, ItemID: ev.ItemID, Value: ev.Value}
	case messages.ItemGrabbedEvent:
		e = Entry{Kind: KindGrabbed, ItemID: ev.ItemID, Holder: ev.HolderID}
	case messages.ItemReleasedEvent:
		e = Entry{Kind: KindRelease, ItemID: ev.ItemID}
	case messages.ItemDamagedEvent:
		e = Entry{Kind: KindDamaged, ItemID: ev.ItemID, Value: ev.Value, Damage: ev.Damage}
	case messages.ItemBrokenEvent:
		e = Entry{Kind: KindBroken, ItemID: ev.ItemID}
	case messages.SessionResetEvent:
		e = Entry{Kind: KindReset}
	default:
		return Entry{}, false, nil
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return Entry{}, false, fmt.Errorf("marshal %T: %w", event, err)
	}
	e.Raw = raw
	return e, true, nil
}
