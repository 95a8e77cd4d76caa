package assert

import (
	"fmt"
	"runtime"
)

// NotNil panics when any of the given values is nil. Used at wiring time to
// fail fast on a missing dependency instead of a nil deref at request time.
func NotNil(values ...interface{}) {
	for i, v := range values {
		if v == nil {
			panic(fmt.Sprintf("assert: dependency %d is nil", i))
		}
	}
}

// NotCircular panics when the calling constructor already appears further up
// the stack, which means two singleton constructors depend on each other.
func NotCircular() {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	if n < 2 {
		return
	}
	frames := runtime.CallersFrames(pcs[:n])
	first, _ := frames.Next()
	for {
		frame, more := frames.Next()
		if frame.Function != "" && frame.Function == first.Function {
			panic(fmt.Sprintf("assert: circular construction in %s", first.Function))
		}
		if !more {
			return
		}
	}
}

// Must panics when err is non-nil. For initialization paths only.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
