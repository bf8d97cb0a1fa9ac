package vrend

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrNoDevice is returned when no processor is visible or none passes filtering.
	ErrNoDevice = errors.New("vulkan error: no suitable GPU device found")
	// ErrWindowClosed is returned when the window closes while the renderer waits
	// for a drawable (non-zero) extent.
	ErrWindowClosed = errors.New("window closed while waiting for drawable extent")
	// ErrTimeout is returned when a bounded fence wait or image acquisition expires.
	ErrTimeout = errors.New("vulkan error: wait timed out")
	// ErrTornDown is returned by DrawFrame after Teardown.
	ErrTornDown = errors.New("renderer: used after teardown")
)

// MissingExtensionsError lists required names the platform does not provide.
type MissingExtensionsError struct {
	Kind    string
	Missing []string
}

func (e *MissingExtensionsError) Error() string {
	return fmt.Sprintf("vulkan error: missing required %s: %s", e.Kind, strings.Join(e.Missing, ", "))
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// newError converts a result code into an error annotated with the failed call.
// Success yields nil.
func newError(ret vk.Result, op string) error {
	if ret == vk.Success {
		return nil
	}
	if ret == vk.Timeout {
		return errors.Wrap(ErrTimeout, op)
	}
	return errors.Wrapf(vk.Error(ret), "%s (%d)", op, ret)
}

// Fatal is the process-wide policy for unrecoverable errors: finalizers run,
// the error and its stack are printed to stderr and the process exits.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	fmt.Fprintf(os.Stderr, "FATAL: %+v\n", err)
	os.Exit(1)
}
