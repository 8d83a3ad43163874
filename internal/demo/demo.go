// Package demo holds the components and systems of the demo binaries. The
// Go files other than this one are generated from schema/ and kernels/.
package demo

import "github.com/plus3/computecs/ecs"

//go:generate go run ../../cmd/componentc -in schema -host . -device cl -pkg demo
//go:generate go run ../../cmd/systemc -in kernels -include cl -out . -pkg demo

// RegisterComponents adds the demo component types to components.
func RegisterComponents(components *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](components)
	ecs.RegisterComponent[Velocity](components)
}
