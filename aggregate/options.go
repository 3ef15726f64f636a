package aggregate

import (
	"fmt"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/compress"
	"github.com/vaseug/PowerLib-sub000/format"
	"github.com/vaseug/PowerLib-sub000/internal/options"
)

type config struct {
	compression format.CompressionType
	seqOpts     []blob.Option
}

// Option configures an Accumulator.
type Option = options.Option[*config]

// WithStateCompression selects the codec applied to serialized state.
// The default is format.CompressionNone.
func WithStateCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.CreateCodec(ct, "state"); err != nil {
			return fmt.Errorf("state compression: %w", err)
		}
		c.compression = ct

		return nil
	})
}

// WithSequenceOptions sets the layout of the accumulated and emitted sequences.
func WithSequenceOptions(opts ...blob.Option) Option {
	return options.NoError(func(c *config) {
		c.seqOpts = append(c.seqOpts, opts...)
	})
}
