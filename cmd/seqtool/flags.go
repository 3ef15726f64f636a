package main

import (
	"fmt"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// layoutFlags are the global flags describing the element kind and layout.
type layoutFlags struct {
	kind       *string
	codepage   *int
	regular    *bool
	countWidth *int
	itemWidth  *int
	notNull    *bool
	sentinel   *bool
	bigEndian  *bool
}

func addLayoutFlags(app *kingpin.Application) *layoutFlags {
	return &layoutFlags{
		kind:       app.Flag("kind", "Element kind, see the kinds command.").Short('k').Default("Int32").String(),
		codepage:   app.Flag("codepage", "Windows codepage of Text elements (default UTF-8).").Int(),
		regular:    app.Flag("regular", "Treat the blob as a regular array with a shape header.").Short('r').Bool(),
		countWidth: app.Flag("count-width", "Bytes of the count field: 1, 2, 4 or 8.").Default("4").Int(),
		itemWidth:  app.Flag("item-width", "Bytes of variable-width length prefixes: 1, 2, 4 or 8.").Default("4").Int(),
		notNull:    app.Flag("not-null", "Elements are never null.").Bool(),
		sentinel:   app.Flag("sentinel", "Mark nulls with a byte per element instead of a bitmap.").Bool(),
		bigEndian:  app.Flag("big-endian", "Encode integers big-endian.").Bool(),
	}
}

func sizeFlag(name string, width int) (format.SizeCode, error) {
	code, ok := format.SizeCodeOf(width)
	if !ok {
		return 0, fmt.Errorf("--%s %d: %w", name, width, errs.ErrInvalidSizeCode)
	}

	return code, nil
}

// resolve returns the kind tool and the sequence options the flags describe.
func (lf *layoutFlags) resolve() (kindTool, []blob.Option, error) {
	t, err := lookupTool(*lf.kind, *lf.codepage)
	if err != nil {
		return nil, nil, err
	}

	countWidth, err := sizeFlag("count-width", *lf.countWidth)
	if err != nil {
		return nil, nil, err
	}
	itemWidth, err := sizeFlag("item-width", *lf.itemWidth)
	if err != nil {
		return nil, nil, err
	}

	opts := []blob.Option{
		blob.WithCountWidth(countWidth),
		blob.WithItemWidth(itemWidth),
		blob.WithNullable(!*lf.notNull),
		blob.WithCompact(!*lf.sentinel),
	}
	if *lf.bigEndian {
		opts = append(opts, blob.WithBigEndian())
	}

	return t, opts, nil
}
