package binding

import (
	"context"

	"github.com/reglet-dev/native-starter/domain/ports"
)

var _ ports.Native = InProcess{}

// InProcess runs the exports directly in the calling goroutine.
type InProcess struct{}

// Sum coerces a and b and adds them.
func (InProcess) Sum(_ context.Context, a, b any) (int32, error) {
	return Sum(a, b)
}

// Hello returns the greeting.
func (InProcess) Hello(_ context.Context) (string, error) {
	return Hello(), nil
}
