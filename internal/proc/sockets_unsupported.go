//go:build !linux && !darwin

package proc

import (
	"fmt"
	"runtime"

	"github.com/noteports/noteports/pkg/model"
)

func listSockets() ([]model.SocketRecord, error) {
	return nil, fmt.Errorf("socket enumeration is not supported on %s", runtime.GOOS)
}
