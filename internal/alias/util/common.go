package util

import (
	"os"

	"github.com/hndinh/tabstore/internal/logging"
)

// CloseFileFunc closes f and reports (but does not propagate) the error.
// Meant for defer on read paths where the close error is uninteresting.
func CloseFileFunc(f *os.File) {
	if err := f.Close(); err != nil {
		logging.Global().Log("close " + f.Name() + ": " + err.Error())
	}
}
