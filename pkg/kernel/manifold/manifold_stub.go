//go:build !manifold

// Package manifold binds the Manifold mesh-boolean library as a
// kernel.Kernel. Without the "manifold" build tag this stub is compiled
// instead and New reports ErrUnavailable.
//
// Build with: go build -tags=manifold
package manifold

import "github.com/chazu/skeletal/pkg/kernel"

// Available reports whether the Manifold backend was compiled in.
const Available = false

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
