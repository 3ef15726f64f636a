package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	width int
	name  string
	calls []string
}

func withWidth(w int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if w <= 0 {
			return errors.New("width must be positive")
		}
		c.width = w
		c.calls = append(c.calls, "width")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, Apply(cfg, withName("a"), withWidth(4), nil))
	require.Equal(t, 4, cfg.width)
	require.Equal(t, "a", cfg.name)
	require.Equal(t, []string{"name", "width"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &testConfig{}
	err := Apply(cfg, withWidth(-1), withName("never"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "width must be positive")
	require.Empty(t, cfg.name)
}

func TestApply_Empty(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, Apply[*testConfig](cfg))
	require.Empty(t, cfg.calls)
}

func TestFunc_NilIsNoop(t *testing.T) {
	var f Func[*testConfig]
	require.NoError(t, f.apply(&testConfig{}))
}
