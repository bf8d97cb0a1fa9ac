package vrend

import (
	"bytes"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Diagnostics toggles the validation layer and the debug report hook.
type Diagnostics bool

const (
	DiagnosticsDisabled Diagnostics = false
	DiagnosticsEnabled  Diagnostics = true
)

func (d Diagnostics) String() string {
	if d {
		return "enabled"
	}
	return "disabled"
}

func (d Diagnostics) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Diagnostics) UnmarshalText(text []byte) error {
	switch string(bytes.ToLower(text)) {
	case "enabled", "on", "true":
		*d = DiagnosticsEnabled
	case "disabled", "off", "false", "":
		*d = DiagnosticsDisabled
	default:
		return errors.Errorf("diagnostics: unknown value %q (want enabled|disabled)", text)
	}
	return nil
}

// PresentModePreference names the present mode tried before the FIFO fallback.
type PresentModePreference string

const (
	PresentMailbox   PresentModePreference = "mailbox"
	PresentImmediate PresentModePreference = "immediate"
	PresentFifo      PresentModePreference = "fifo"
)

// Mode returns the Vulkan present mode for the preference.
func (p PresentModePreference) Mode() vk.PresentMode {
	switch p {
	case PresentImmediate:
		return vk.PresentModeImmediate
	case PresentFifo:
		return vk.PresentModeFifo
	default:
		return vk.PresentModeMailbox
	}
}

func (p *PresentModePreference) UnmarshalText(text []byte) error {
	switch v := PresentModePreference(bytes.ToLower(text)); v {
	case PresentMailbox, PresentImmediate, PresentFifo:
		*p = v
	default:
		return errors.Errorf("present_mode: unknown value %q", text)
	}
	return nil
}

// CullMode selects rasterizer face culling.
type CullMode string

const (
	CullNone CullMode = "none"
	CullBack CullMode = "back"
)

func (c CullMode) flags() vk.CullModeFlags {
	if c == CullBack {
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

func (c *CullMode) UnmarshalText(text []byte) error {
	switch v := CullMode(bytes.ToLower(text)); v {
	case CullNone, CullBack:
		*c = v
	default:
		return errors.Errorf("cull_mode: unknown value %q", text)
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("2s", "500ms").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	if v <= 0 {
		return errors.Errorf("duration must be positive, got %s", v)
	}
	d.Duration = v
	return nil
}

// Nanoseconds returns the duration as a Vulkan timeout value.
func (d Duration) Nanoseconds() uint64 {
	return uint64(d.Duration.Nanoseconds())
}

// Config holds the renderer and driver settings.
type Config struct {
	Title          string                `toml:"title"`
	Width          int                   `toml:"width"`
	Height         int                   `toml:"height"`
	Diagnostics    Diagnostics           `toml:"diagnostics"`
	VertexShader   string                `toml:"vertex_shader"`
	FragmentShader string                `toml:"fragment_shader"`
	PresentMode    PresentModePreference `toml:"present_mode"`
	FrameTimeout   Duration              `toml:"frame_timeout"`
	AlphaBlend     bool                  `toml:"alpha_blend"`
	CullMode       CullMode              `toml:"cull_mode"`
	FrameRate      int                   `toml:"frame_rate"`
	ClearPeriod    int                   `toml:"clear_period"`
}

func DefaultConfig() Config {
	return Config{
		Title:          "Vulkan Triangle",
		Width:          640,
		Height:         480,
		Diagnostics:    DiagnosticsDisabled,
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		PresentMode:    PresentMailbox,
		FrameTimeout:   Duration{5 * time.Second},
		AlphaBlend:     true,
		CullMode:       CullNone,
		FrameRate:      60,
		ClearPeriod:    120,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("config: window size must be positive, got %dx%d", c.Width, c.Height)
	case c.VertexShader == "" || c.FragmentShader == "":
		return errors.New("config: shader paths must be set")
	case c.FrameTimeout.Duration <= 0:
		return errors.New("config: frame_timeout must be positive")
	case c.FrameRate < 0:
		return errors.New("config: frame_rate must not be negative")
	case c.ClearPeriod <= 1:
		return errors.Errorf("config: clear_period must be greater than 1, got %d", c.ClearPeriod)
	}
	return nil
}

// ParseConfig decodes TOML on top of DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}
