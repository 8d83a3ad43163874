package compute_test

import (
	"fmt"

	"github.com/plus3/computecs/compute"
)

func Example() {
	dev, _ := compute.GetDevice(0)
	ctx, _ := compute.NewContext(dev)
	defer ctx.Close()

	values, _ := compute.NewArrayBuffer[float32](ctx, 4)
	_ = values.SetAll([]float32{1, 2, 3, 4})

	square, _ := compute.NewKernel(ctx, `
function square(values)
  local i = get_global_id(0)
  values[i] = values[i] * values[i]
end
`, "square")
	_ = square.SetArg(0, values)
	_, _ = square.Run(values.Size())

	f, _ := values.FetchAll()
	result, _ := f.Get()
	fmt.Println(result)
	// Output: [1 4 9 16]
}

func ExampleThen() {
	dev, _ := compute.GetDevice(0)
	ctx, _ := compute.NewContext(dev)
	defer ctx.Close()

	arr, _ := compute.NewArrayBuffer[Position](ctx, 2)
	_ = arr.Set(1, Position{X: 3, Y: 4})

	f, _ := arr.Fetch(1)
	label := compute.Then(f, func(p Position) (string, error) {
		return fmt.Sprintf("(%g, %g)", p.X, p.Y), nil
	})
	s, _ := label.Get()
	fmt.Println(s)
	// Output: (3, 4)
}
