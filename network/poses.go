package network

import (
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/go-gl/mathgl/mgl64"
)

const poseHistorySize = 64

// PoseHistory stamps outgoing pose updates with increasing sequence numbers
// and remembers the recent ones, so the replicated holder position can be
// compared with what was sent.
type PoseHistory struct {
	history [poseHistorySize]messages.HolderPoseUpdate
	nextSeq uint32
}

// Next builds the update for a pose. Sequences start at 1; the server
// treats 0 as "nothing applied yet".
func (ph *PoseHistory) Next(pos mgl64.Vec3, yaw float64) messages.HolderPoseUpdate {
	ph.nextSeq++
	update := messages.HolderPoseUpdate{
		Sequence: ph.nextSeq,
		X:        pos[0],
		Y:        pos[1],
		Z:        pos[2],
		Yaw:      yaw,
	}
	ph.history[update.Sequence%poseHistorySize] = update
	return update
}

// Get retrieves a sent update by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (ph *PoseHistory) Get(seq uint32) (messages.HolderPoseUpdate, bool) {
	update := ph.history[seq%poseHistorySize]
	if seq == 0 || update.Sequence != seq {
		return messages.HolderPoseUpdate{}, false
	}
	return update, true
}

// LastSeq returns the most recently issued sequence number.
func (ph *PoseHistory) LastSeq() uint32 {
	return ph.nextSeq
}

// Error is the distance between a sent pose and the server's position.
func (ph *PoseHistory) Error(seq uint32, server mgl64.Vec3) float64 {
	update, ok := ph.Get(seq)
	if !ok {
		return 0
	}
	return mgl64.Vec3{update.X, update.Y, update.Z}.Sub(server).Len()
}
