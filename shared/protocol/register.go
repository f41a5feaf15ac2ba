package protocol

import (
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetTransform uint = 10
	SyncIDNetItem      uint = 11
	SyncIDNetHolder    uint = 12
	SyncIDNetSession   uint = 13
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetTransform uint8 = 10
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Register with interpolation for smooth observer-side motion
	if err := esync.RegisterComponent(
		SyncIDNetTransform,
		netcomponents.NetTransformData{},
		netcomponents.NetTransform,
		esync.WithInterpFn(InterpIDNetTransform, netcomponents.LerpNetTransform),
	); err != nil {
		return err
	}

	// Item, holder and session summaries: no interpolation (discrete values)
	if err := esync.RegisterComponent(
		SyncIDNetItem,
		netcomponents.NetItemData{},
		netcomponents.NetItem,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetHolder,
		netcomponents.NetHolderData{},
		netcomponents.NetHolder,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetSession,
		netcomponents.NetSessionData{},
		netcomponents.NetSession,
	); err != nil {
		return err
	}

	return nil
}
