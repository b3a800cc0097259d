// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"log/slog"

	"github.com/fluxohq/fluxo/pkg/registry"
)

// NewRegistry builds a registry with all built-in node types.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	return reg
}
