package grove

import (
	"slices"
	"sync"

	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/native"
)

var (
	markersMu sync.RWMutex
	markers   = make(map[native.Class]*donburi.ComponentType[donburi.Tag])
)

// Marker tags for the well-known classes. Query on these instead of probing
// node types at run time.
var (
	NodeMarker = newMarker(native.ClassNode)

	CanvasItemMarker = newMarker(native.ClassCanvasItem)
	ControlMarker    = newMarker(native.ClassControl)
	Node2DMarker     = newMarker(native.ClassNode2D)
	Sprite2DMarker   = newMarker(native.ClassSprite2D)
	Camera2DMarker   = newMarker(native.ClassCamera2D)

	CollisionObject2DMarker = newMarker(native.ClassCollisionObject2D)
	Area2DMarker            = newMarker(native.ClassArea2D)
	PhysicsBody2DMarker     = newMarker(native.ClassPhysicsBody2D)
	StaticBody2DMarker      = newMarker(native.ClassStaticBody2D)
	CharacterBody2DMarker   = newMarker(native.ClassCharacterBody2D)
	RigidBody2DMarker       = newMarker(native.ClassRigidBody2D)

	Node3DMarker             = newMarker(native.ClassNode3D)
	VisualInstance3DMarker   = newMarker(native.ClassVisualInstance3D)
	GeometryInstance3DMarker = newMarker(native.ClassGeometryInstance3D)
	MeshInstance3DMarker     = newMarker(native.ClassMeshInstance3D)
	Camera3DMarker           = newMarker(native.ClassCamera3D)

	CollisionObject3DMarker = newMarker(native.ClassCollisionObject3D)
	Area3DMarker            = newMarker(native.ClassArea3D)
	PhysicsBody3DMarker     = newMarker(native.ClassPhysicsBody3D)
	StaticBody3DMarker      = newMarker(native.ClassStaticBody3D)
	CharacterBody3DMarker   = newMarker(native.ClassCharacterBody3D)
	RigidBody3DMarker       = newMarker(native.ClassRigidBody3D)

	TimerMarker = newMarker(native.ClassTimer)
)

func newMarker(class native.Class) *donburi.ComponentType[donburi.Tag] {
	m := donburi.NewTag().SetName(string(class) + "Marker")
	markersMu.Lock()
	markers[class] = m
	markersMu.Unlock()
	return m
}

// Marker returns the tag for class, creating it the first time a custom class
// is seen. The same class always yields the same tag.
func Marker(class native.Class) *donburi.ComponentType[donburi.Tag] {
	markersMu.RLock()
	m, ok := markers[class]
	markersMu.RUnlock()
	if ok {
		return m
	}
	markersMu.Lock()
	defer markersMu.Unlock()
	if m, ok := markers[class]; ok {
		return m
	}
	m = donburi.NewTag().SetName(string(class) + "Marker")
	markers[class] = m
	return m
}

// MarkersOf returns the classes whose marker entry carries, sorted by name.
func MarkersOf(entry *donburi.Entry) []native.Class {
	markersMu.RLock()
	defer markersMu.RUnlock()
	var out []native.Class
	for class, m := range markers {
		if entry.HasComponent(m) {
			out = append(out, class)
		}
	}
	slices.Sort(out)
	return out
}
