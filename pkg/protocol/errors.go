package protocol

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing or invalid node configuration field. It is
// node-local: the run fails, but the process does not.
type ConfigError struct {
	NodeID string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("node %s: invalid configuration field '%s': %s", e.NodeID, e.Field, e.Reason)
}

// NewConfigError creates a configuration error for the given node and field.
func NewConfigError(nodeID, field, reason string) *ConfigError {
	return &ConfigError{NodeID: nodeID, Field: field, Reason: reason}
}

// CacheMissError reports that an upstream node's output was evicted from the
// output store before a downstream node could read it.
type CacheMissError struct {
	NodeID   string
	Capacity int
}

// NewCacheMissError creates a cache miss error for the given upstream node.
func NewCacheMissError(nodeID string, capacity int) *CacheMissError {
	return &CacheMissError{NodeID: nodeID, Capacity: capacity}
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf(
		"output of node %s is unavailable: evicted from the output store (capacity %d); increase the store capacity",
		e.NodeID, e.Capacity)
}

// SandboxViolationError reports user code that tried to reach outside the
// sandbox (host-only APIs, unknown identifiers). Distinguished from timeouts
// so operators can tell broken code from slow code.
type SandboxViolationError struct {
	NodeID string
	Detail string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("node %s: sandbox violation: %s", e.NodeID, e.Detail)
}

// SandboxTimeoutError reports user code that exceeded its wall-clock budget.
type SandboxTimeoutError struct {
	NodeID  string
	Timeout string
}

func (e *SandboxTimeoutError) Error() string {
	return fmt.Sprintf("node %s: script exceeded the %s execution timeout", e.NodeID, e.Timeout)
}

func IsConfigError(err error) bool {
	var target *ConfigError

	return errors.As(err, &target)
}

func IsCacheMiss(err error) bool {
	var target *CacheMissError

	return errors.As(err, &target)
}

func IsSandboxViolation(err error) bool {
	var target *SandboxViolationError

	return errors.As(err, &target)
}

func IsSandboxTimeout(err error) bool {
	var target *SandboxTimeoutError

	return errors.As(err, &target)
}
