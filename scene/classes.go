package scene

import (
	"fmt"
	"sync"

	"github.com/phanxgames/grove/native"
)

var (
	classMu      sync.RWMutex
	classParents = map[native.Class]native.Class{
		native.ClassCanvasItem: native.ClassNode,
		native.ClassControl:    native.ClassCanvasItem,
		native.ClassNode2D:     native.ClassCanvasItem,
		native.ClassSprite2D:   native.ClassNode2D,
		native.ClassCamera2D:   native.ClassNode2D,

		native.ClassCollisionObject2D: native.ClassNode2D,
		native.ClassArea2D:            native.ClassCollisionObject2D,
		native.ClassPhysicsBody2D:     native.ClassCollisionObject2D,
		native.ClassStaticBody2D:      native.ClassPhysicsBody2D,
		native.ClassCharacterBody2D:   native.ClassPhysicsBody2D,
		native.ClassRigidBody2D:       native.ClassPhysicsBody2D,

		native.ClassNode3D:             native.ClassNode,
		native.ClassVisualInstance3D:   native.ClassNode3D,
		native.ClassGeometryInstance3D: native.ClassVisualInstance3D,
		native.ClassMeshInstance3D:     native.ClassGeometryInstance3D,
		native.ClassCamera3D:           native.ClassNode3D,

		native.ClassCollisionObject3D: native.ClassNode3D,
		native.ClassArea3D:            native.ClassCollisionObject3D,
		native.ClassPhysicsBody3D:     native.ClassCollisionObject3D,
		native.ClassStaticBody3D:      native.ClassPhysicsBody3D,
		native.ClassCharacterBody3D:   native.ClassPhysicsBody3D,
		native.ClassRigidBody3D:       native.ClassPhysicsBody3D,

		native.ClassTimer: native.ClassNode,
	}
)

// RegisterClass adds a custom class deriving from parent, the way a script
// class extends a built-in one. Registering the same pair twice is a no-op.
func RegisterClass(class, parent native.Class) error {
	classMu.Lock()
	defer classMu.Unlock()
	if class == native.ClassNode {
		return fmt.Errorf("scene: cannot redefine %s", class)
	}
	if parent != native.ClassNode {
		if _, ok := classParents[parent]; !ok {
			return fmt.Errorf("scene: unknown parent class %q", parent)
		}
	}
	if existing, ok := classParents[class]; ok {
		if existing != parent {
			return fmt.Errorf("scene: class %q already extends %q", class, existing)
		}
		return nil
	}
	classParents[class] = parent
	return nil
}

// IsKnownClass reports whether class is the root class or has been registered.
func IsKnownClass(class native.Class) bool {
	if class == native.ClassNode {
		return true
	}
	classMu.RLock()
	_, ok := classParents[class]
	classMu.RUnlock()
	return ok
}

// ClassChain returns class followed by each of its ancestors up to ClassNode.
// Returns nil for unknown classes.
func ClassChain(class native.Class) []native.Class {
	if !IsKnownClass(class) {
		return nil
	}
	classMu.RLock()
	defer classMu.RUnlock()
	chain := []native.Class{class}
	for c := class; c != native.ClassNode; {
		c = classParents[c]
		chain = append(chain, c)
	}
	return chain
}
