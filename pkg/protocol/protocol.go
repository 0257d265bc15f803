package protocol

import "github.com/picogrid/mdrun/pkg/amber"

// Protocol is a named recipe that turns a set of parameters into solver
// settings (minimisation, heating, equilibration, production, ...).
type Protocol interface {
	// Name returns the registry key of the protocol
	Name() string

	// Description returns a one line summary
	Description() string

	// Parameters lists the inputs Apply understands
	Parameters() []Parameter

	// Apply configures cfg. params have been through Resolve.
	Apply(cfg *amber.Config, params map[string]interface{}) error
}
