package monitor

import (
	"fmt"

	"github.com/kbinani/screenshot"
)

// screenOutputs names every active display by index and size.
// The names do not match compositor output names, so setters
// that target outputs apply these globally.
func screenOutputs() []string {
	n := screenshot.NumActiveDisplays()
	outputs := make([]string, 0, max(n, 0))
	for i := range n {
		b := screenshot.GetDisplayBounds(i)
		outputs = append(outputs, fmt.Sprintf("display-%d-%dx%d", i, b.Dx(), b.Dy()))
	}
	return outputs
}
