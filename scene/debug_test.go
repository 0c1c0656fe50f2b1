package scene

import (
	"fmt"
	"strings"
	"testing"
)

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_FreedNodePanics(t *testing.T) {
	s := New()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewNode2D("parent")
	s.Root().AddChild(parent)

	child := NewSprite2D("child")
	child.Free()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with freed node, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "freed") {
			t.Errorf("panic message should mention 'freed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_FreedParentPanics(t *testing.T) {
	s := New()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewNode2D("parent")
	parent.Free()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on AddChild to freed parent, got none")
		}
	}()

	parent.AddChild(NewSprite2D("child"))
}

func TestReleaseMode_FreedNodeDoesNotPanic(t *testing.T) {
	parent := NewNode2D("parent")
	child := NewNode2D("child")
	child.Free()
	parent.AddChild(child)
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
}
