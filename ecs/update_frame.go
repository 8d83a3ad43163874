package ecs

// DeltaTime is the singleton holding the seconds elapsed since the
// previous scheduler frame. Kernels read it as a scalar float array of
// length one.
type DeltaTime float32

type updateFrame struct {
	dt     float64
	number int64
}
