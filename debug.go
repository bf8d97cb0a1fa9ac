package vrend

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/muesli/termenv"
	vk "github.com/vulkan-go/vulkan"
)

// Severity classifies validation messages.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityPerformance
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFORMATION"
	case SeverityPerformance:
		return "PERFORMANCE WARNING"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// severityOf picks the most severe bit set in the report flags.
func severityOf(flags vk.DebugReportFlags) Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityPerformance
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

// DiagnosticsPrinter writes validation messages to a console, colored by severity.
type DiagnosticsPrinter struct {
	out *termenv.Output
}

// NewDiagnosticsPrinter prints to w, or stdout when w is nil.
func NewDiagnosticsPrinter(w io.Writer) *DiagnosticsPrinter {
	if w == nil {
		w = os.Stdout
	}
	return &DiagnosticsPrinter{out: termenv.NewOutput(w)}
}

func (p *DiagnosticsPrinter) color(s Severity) termenv.Color {
	switch s {
	case SeverityError:
		return termenv.ANSIRed
	case SeverityWarning, SeverityPerformance:
		return termenv.ANSIMagenta
	default:
		return termenv.ANSIYellow
	}
}

// Print writes one message line.
func (p *DiagnosticsPrinter) Print(s Severity, layer string, code int32, msg string) {
	line := fmt.Sprintf("%s: [%s] Code %d : %s", s, layer, code, msg)
	fmt.Fprintln(p.out, p.out.String(line).Foreground(p.color(s)).String())
}

// DebugHook owns the debug report callback registered on the instance.
type DebugHook struct {
	callback vk.DebugReportCallback
	printer  *DiagnosticsPrinter
}

// reportedBits are the message classes the hook subscribes to, one per Severity.
var reportedBits = []vk.DebugReportFlagBits{
	vk.DebugReportErrorBit,
	vk.DebugReportWarningBit,
	vk.DebugReportPerformanceWarningBit,
	vk.DebugReportInformationBit,
	vk.DebugReportDebugBit,
}

func reportFlags() vk.DebugReportFlags {
	var flags vk.DebugReportFlags
	for _, bit := range reportedBits {
		flags |= vk.DebugReportFlags(bit)
	}
	return flags
}

// NewDebugHook registers a callback for every message class.
func NewDebugHook(instance vk.Instance, printer *DiagnosticsPrinter) (*DebugHook, error) {
	hook := &DebugHook{printer: printer}
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       reportFlags(),
		PfnCallback: hook.report,
	}, nil, &hook.callback)
	if err := newError(ret, "create debug report callback"); err != nil {
		return nil, err
	}
	Logger().Info("vulkan: debug report callback enabled")
	return hook, nil
}

// report never suppresses the triggering call.
func (h *DebugHook) report(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	h.printer.Print(severityOf(flags), pLayerPrefix, messageCode, pMessage)
	return vk.Bool32(vk.False)
}

func (h *DebugHook) Destroy(instance vk.Instance) {
	if h.callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(instance, h.callback, nil)
		h.callback = vk.NullDebugReportCallback
	}
}
