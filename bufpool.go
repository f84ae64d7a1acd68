package chronicles

import (
	"bytes"
	"sync"
)

// blockPool reuses buffers for assembling per-instance blocks. Complex
// repeats recurse with their own pooled buffer, so nesting costs one
// buffer per depth level rather than one allocation per instance.
var blockPool = sync.Pool{
	New: func() any {
		// 1KB covers typical record blocks without growing.
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}
