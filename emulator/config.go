package emulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the emulator run configuration, as read from a TOML file.
//
//	verbose = true
//	unsupported = "skip"
//	source = "hello.asm"
//	images = ["os.obj"]
//
//	[predefine]
//	COUNT = "#10"
type Config struct {
	Verbose     bool              `toml:"verbose"`
	Unsupported Policy            `toml:"unsupported"`
	Source      string            `toml:"source"` // Assembly source to run.
	Images      []string          `toml:"images"` // Object images to load.
	Object      string            `toml:"object"` // Object image to save.
	Input       string            `toml:"input"`  // Console input, "-" for stdin.
	Output      string            `toml:"output"` // Console output, "-" for stdout.
	Echo        bool              `toml:"echo"`
	Raw         bool              `toml:"raw"`       // Raw mode for a terminal on stdin.
	Predefine   map[string]string `toml:"predefine"` // Assembler equates.
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() (cfg *Config) {
	cfg = &Config{
		Unsupported: POLICY_FATAL,
		Input:       "-",
		Output:      "-",
	}

	return
}

// LoadConfig reads a TOML configuration over the defaults.
// Unknown keys are an error.
func LoadConfig(r io.Reader) (cfg *Config, err error) {
	cfg = DefaultConfig()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		cfg = nil
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		cfg = nil
		err = fmt.Errorf("%w: %v", ErrConfigKey, strings.Join(keys, ", "))
		return
	}

	return
}

// Apply sets the emulator options from the configuration.
func (cfg *Config) Apply(emu *Emulator) {
	emu.Verbose = cfg.Verbose
	emu.Unsupported = cfg.Unsupported
	emu.Console.Echo = cfg.Echo
}
