package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/vaseug/PowerLib-sub000/blob"
)

// withFile opens name as a stream for fn. Writable files are created when
// missing.
func withFile(name string, writable bool, fn func(st blob.Stream) error) error {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}

	f, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := blob.NewFileStream(f)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if writable {
		return st.Sync()
	}

	return nil
}

func runParse(lf *layoutFlags, output, text string, stdin io.Reader) error {
	t, opts, err := lf.resolve()
	if err != nil {
		return err
	}

	if text == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read literal: %w", err)
		}
		text = strings.TrimSpace(string(raw))
	}

	return withFile(output, true, func(st blob.Stream) error {
		n, err := t.parse(st, text, *lf.regular, opts)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"file":  output,
			"kind":  *lf.kind,
			"count": n,
			"size":  humanize.IBytes(uint64(st.Size())), //nolint:gosec
		}).Info("wrote blob")

		return nil
	})
}

func runFormat(lf *layoutFlags, name string, out io.Writer) error {
	t, opts, err := lf.resolve()
	if err != nil {
		return err
	}

	return withFile(name, false, func(st blob.Stream) error {
		text, err := t.format(st, *lf.regular, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)

		return err
	})
}

func runInspect(lf *layoutFlags, name string, out io.Writer) error {
	t, opts, err := lf.resolve()
	if err != nil {
		return err
	}
	layout, err := blob.LayoutOf(opts...)
	if err != nil {
		return err
	}

	return withFile(name, false, func(st blob.Stream) error {
		sum, err := t.inspect(st, *lf.regular, opts)
		if err != nil {
			return err
		}

		logrus.WithField("file", name).Debug("inspected blob")

		var sb strings.Builder
		fmt.Fprintf(&sb, "kind:        %s\n", *lf.kind)
		fmt.Fprintf(&sb, "layout:      count %s, item %s, nullable %t, %s nulls, big-endian %t\n",
			layout.CountWidth, layout.ItemWidth, layout.Nullable, layout.Strategy, layout.BigEndian)
		if sum.Dims != nil {
			fmt.Fprintf(&sb, "shape:       %v\n", sum.Dims)
		}
		fmt.Fprintf(&sb, "count:       %s\n", humanize.Comma(int64(sum.Count)))
		fmt.Fprintf(&sb, "size:        %s (%d bytes)\n", humanize.IBytes(uint64(sum.Size)), sum.Size) //nolint:gosec
		fmt.Fprintf(&sb, "fingerprint: %016x\n", sum.Fingerprint)
		_, err = io.WriteString(out, sb.String())

		return err
	})
}

func runGet(lf *layoutFlags, name string, index int, out io.Writer) error {
	t, opts, err := lf.resolve()
	if err != nil {
		return err
	}

	return withFile(name, false, func(st blob.Stream) error {
		text, err := t.get(st, index, *lf.regular, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)

		return err
	})
}

func runSet(lf *layoutFlags, name string, index int, value string) error {
	t, opts, err := lf.resolve()
	if err != nil {
		return err
	}

	return withFile(name, true, func(st blob.Stream) error {
		if err := t.set(st, index, value, *lf.regular, opts); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{"file": name, "index": index}).Info("updated element")

		return nil
	})
}
