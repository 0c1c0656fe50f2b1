package schedule

import "fmt"

// Phase is an ordered stage within one scheduler pass.
type Phase uint8

const (
	// First runs at the start of every visual frame. grove applies scene tree
	// changes here and, in two-way mode, reads engine transforms.
	First Phase = iota
	// PreUpdate runs before gameplay logic.
	PreUpdate
	// FixedUpdate runs zero or more times per visual frame, driven by the
	// FixedTime accumulator.
	FixedUpdate
	// Update is the gameplay-logic phase.
	Update
	// PostUpdate runs after gameplay logic.
	PostUpdate
	// Last runs at the end of every visual frame. grove writes changed
	// transforms back to the engine here.
	Last

	// PrePhysicsUpdate runs at the start of every physics frame.
	PrePhysicsUpdate
	// PhysicsUpdate is the physics-cadence logic phase.
	PhysicsUpdate
	// PostPhysicsUpdate runs at the end of every physics frame.
	PostPhysicsUpdate

	numPhases
)

var phaseNames = [numPhases]string{
	First:             "First",
	PreUpdate:         "PreUpdate",
	FixedUpdate:       "FixedUpdate",
	Update:            "Update",
	PostUpdate:        "PostUpdate",
	Last:              "Last",
	PrePhysicsUpdate:  "PrePhysicsUpdate",
	PhysicsUpdate:     "PhysicsUpdate",
	PostPhysicsUpdate: "PostPhysicsUpdate",
}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool { return p < numPhases }

// MainPhases are the phases of a visual frame in order. FixedUpdate runs
// between PreUpdate and Update as many times as the accumulator allows.
var MainPhases = []Phase{First, PreUpdate, FixedUpdate, Update, PostUpdate, Last}

// PhysicsPhases are the phases of a physics frame in order.
var PhysicsPhases = []Phase{PrePhysicsUpdate, PhysicsUpdate, PostPhysicsUpdate}
