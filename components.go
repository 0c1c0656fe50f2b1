package grove

import (
	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/native"
)

// NodeName is the node's current name, kept up to date on rename.
type NodeName string

// Components every scene-tree entity carries.
var (
	Handle = donburi.NewComponentType[NodeHandle]().SetName("Handle")
	Name   = donburi.NewComponentType[NodeName]().SetName("Name")
)

// Transform state. Present only when transform sync is enabled for the
// entity's dimension; write to it from gameplay systems and the sync engine
// pushes the change to the node.
var (
	Transform2D = donburi.NewComponentType[native.Transform2D]().SetName("Transform2D")
	Transform3D = donburi.NewComponentType[native.Transform3D]().SetName("Transform3D")
)

// Last value known to be equal on both sides.
var (
	mirror2D = donburi.NewComponentType[native.Transform2D]().SetName("mirror2D")
	mirror3D = donburi.NewComponentType[native.Transform3D]().SetName("mirror3D")
)

// Singleton resources, one entity each.
var (
	Clock    = donburi.NewComponentType[FrameClock]().SetName("Clock")
	Settings = donburi.NewComponentType[SyncConfig]().SetName("Settings")
)

// FrameClockOf returns the world's frame clock.
func FrameClockOf(w donburi.World) FrameClock {
	if e, ok := Clock.First(w); ok {
		return Clock.GetValue(e)
	}
	return FrameClock{}
}

// SettingsOf returns the sync configuration the world was started with.
func SettingsOf(w donburi.World) SyncConfig {
	if e, ok := Settings.First(w); ok {
		return Settings.GetValue(e)
	}
	return SyncConfig{}
}
