package blob

import (
	"fmt"

	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
	"github.com/vaseug/PowerLib-sub000/internal/options"
	"github.com/vaseug/PowerLib-sub000/section"
)

// Config holds the layout a sequence is created or opened with.
//
// The layout is not persisted in the stream, so a sequence must be opened
// with the same options it was created with.
type Config struct {
	layout section.Layout
}

// Option represents a functional option for configuring sequences.
// This is a type alias for the generic Option interface specialized for Config.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{layout: section.DefaultLayout()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.layout.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Layout returns the configured layout.
func (c *Config) Layout() section.Layout {
	return c.layout
}

// LayoutOf resolves options into the layout they describe.
func LayoutOf(opts ...Option) (section.Layout, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return section.Layout{}, err
	}

	return cfg.layout, nil
}

// WithLayout replaces the whole layout. Later options still apply on top of it.
func WithLayout(layout section.Layout) Option {
	return options.NoError(func(c *Config) {
		c.layout = layout
	})
}

// WithCountWidth sets the width of the persisted element count.
// The default is format.Size32.
func WithCountWidth(code format.SizeCode) Option {
	return options.New(func(c *Config) error {
		if !code.IsValid() {
			return fmt.Errorf("count width %d: %w", code, errs.ErrInvalidSizeCode)
		}
		c.layout.CountWidth = code

		return nil
	})
}

// WithItemWidth sets the width of the length prefix of variable-width elements.
// It bounds the largest element payload to code.Max()-1 bytes.
func WithItemWidth(code format.SizeCode) Option {
	return options.New(func(c *Config) error {
		if !code.IsValid() {
			return fmt.Errorf("item width %d: %w", code, errs.ErrInvalidSizeCode)
		}
		c.layout.ItemWidth = code

		return nil
	})
}

// WithNullable controls whether elements may be null. Sequences are nullable by default.
func WithNullable(nullable bool) Option {
	return options.NoError(func(c *Config) {
		c.layout.Nullable = nullable
	})
}

// WithNullStrategy selects how nulls of fixed-width elements are recorded.
func WithNullStrategy(strategy format.NullStrategy) Option {
	return options.New(func(c *Config) error {
		if !strategy.IsValid() {
			return fmt.Errorf("null strategy %d: %w", strategy, errs.ErrInvalidNullStrategy)
		}
		c.layout.Strategy = strategy

		return nil
	})
}

// WithCompact selects the bitmap strategy when compact is true and the
// per-element sentinel strategy otherwise.
func WithCompact(compact bool) Option {
	return options.NoError(func(c *Config) {
		c.layout.Strategy = format.StrategyOf(compact)
	})
}

// WithLittleEndian selects little-endian integers. It is the default option.
func WithLittleEndian() Option {
	return options.NoError(func(c *Config) {
		c.layout.BigEndian = false
	})
}

// WithBigEndian selects big-endian integers.
// It rarely needs to be used unless interoperability with big-endian systems is required.
func WithBigEndian() Option {
	return options.NoError(func(c *Config) {
		c.layout.BigEndian = true
	})
}
