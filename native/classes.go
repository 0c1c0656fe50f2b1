package native

// Well-known engine classes. Hosts may define more; grove creates marker tags
// for unknown classes the first time it sees them.
const (
	ClassNode Class = "Node"

	ClassCanvasItem Class = "CanvasItem"
	ClassControl    Class = "Control"
	ClassNode2D     Class = "Node2D"
	ClassSprite2D   Class = "Sprite2D"
	ClassCamera2D   Class = "Camera2D"

	ClassCollisionObject2D Class = "CollisionObject2D"
	ClassArea2D            Class = "Area2D"
	ClassPhysicsBody2D     Class = "PhysicsBody2D"
	ClassStaticBody2D      Class = "StaticBody2D"
	ClassCharacterBody2D   Class = "CharacterBody2D"
	ClassRigidBody2D       Class = "RigidBody2D"

	ClassNode3D             Class = "Node3D"
	ClassVisualInstance3D   Class = "VisualInstance3D"
	ClassGeometryInstance3D Class = "GeometryInstance3D"
	ClassMeshInstance3D     Class = "MeshInstance3D"
	ClassCamera3D           Class = "Camera3D"

	ClassCollisionObject3D Class = "CollisionObject3D"
	ClassArea3D            Class = "Area3D"
	ClassPhysicsBody3D     Class = "PhysicsBody3D"
	ClassStaticBody3D      Class = "StaticBody3D"
	ClassCharacterBody3D   Class = "CharacterBody3D"
	ClassRigidBody3D       Class = "RigidBody3D"

	ClassTimer Class = "Timer"
)

// HasClass reports whether chain contains c.
func HasClass(chain []Class, c Class) bool {
	for _, x := range chain {
		if x == c {
			return true
		}
	}
	return false
}
