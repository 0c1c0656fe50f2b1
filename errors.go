package grove

import (
	"errors"
	"fmt"

	"github.com/phanxgames/grove/native"
)

var (
	// ErrAttached is returned by Attach when the App already drives a host.
	ErrAttached = errors.New("grove: app already attached to a host")
	// ErrNotAttached is returned by operations that need a host.
	ErrNotAttached = errors.New("grove: app is not attached to a host")
	// ErrBundlesFrozen is returned when a bundle is registered after Attach.
	ErrBundlesFrozen = errors.New("grove: bundles are frozen once the app is attached")
	// ErrNotRegistered is returned for an entity the registry does not track.
	ErrNotRegistered = errors.New("grove: entity is not registered")
	// ErrSyncDisabled is returned by EnableTransformSync under SyncDisabled.
	ErrSyncDisabled = errors.New("grove: transform sync is disabled")
)

// ContractViolation reports a caller bug: an infallible accessor was used on
// a node that is gone or of the wrong type, or a malformed node was handed to
// the registry. Get panics with a *ContractViolation.
type ContractViolation struct {
	Op     string        // operation that was attempted
	NodeID native.NodeID // zero when no id was available
	Reason string
}

func (e *ContractViolation) Error() string {
	if e.NodeID == 0 {
		return fmt.Sprintf("grove: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("grove: %s: node %d: %s", e.Op, e.NodeID, e.Reason)
}

// IsContractViolation reports whether err, or anything it wraps, is a
// *ContractViolation.
func IsContractViolation(err error) bool {
	var cv *ContractViolation
	return errors.As(err, &cv)
}
