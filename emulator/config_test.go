package emulator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	text := `
verbose = true
unsupported = "SKIP"
source = "hello.asm"
images = ["os.obj", "lib.obj"]
echo = true

[predefine]
COUNT = "#10"
`

	cfg, err := LoadConfig(strings.NewReader(text))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.True(cfg.Verbose)
	assert.Equal(POLICY_SKIP, cfg.Unsupported)
	assert.Equal("hello.asm", cfg.Source)
	assert.Equal([]string{"os.obj", "lib.obj"}, cfg.Images)
	assert.Equal(map[string]string{"COUNT": "#10"}, cfg.Predefine)

	// Defaults survive when not set.
	assert.Equal("-", cfg.Input)
	assert.Equal("-", cfg.Output)
	assert.False(cfg.Raw)

	emu := NewEmulator(nil)
	cfg.Apply(emu)
	assert.True(emu.Verbose)
	assert.True(emu.Console.Echo)
	assert.Equal(POLICY_SKIP, emu.Unsupported)
}

func TestLoadConfig_Empty(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(DefaultConfig(), cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(strings.NewReader("verbose = true\nspeed = 10\n"))
	assert.Nil(cfg)
	assert.ErrorIs(err, ErrConfigKey)
	assert.Contains(err.Error(), "speed")

	cfg, err = LoadConfig(strings.NewReader(`unsupported = "ignore"`))
	assert.Nil(cfg)
	assert.Error(err)

	cfg, err = LoadConfig(strings.NewReader(`verbose = `))
	assert.Nil(cfg)
	assert.Error(err)
}

func TestPolicy(t *testing.T) {
	assert := assert.New(t)

	var policy Policy
	assert.NoError(policy.Set("fatal"))
	assert.Equal(POLICY_FATAL, policy)
	assert.NoError(policy.Set("Skip"))
	assert.Equal(POLICY_SKIP, policy)
	assert.Equal("skip", policy.String())

	err := policy.Set("maybe")
	assert.ErrorIs(err, ErrPolicy("maybe"))
	assert.Equal(POLICY_SKIP, policy)
}
