// Command seqtool converts between sequence literals and sequence blobs and
// inspects blob files.
//
//	seqtool parse --kind Int32 -o ids.bin '{1,NULL,3}'
//	seqtool format --kind Int32 ids.bin
//	seqtool inspect --kind Int32 ids.bin
//	seqtool set --kind Int32 ids.bin 1 2
//	seqtool get --kind Int32 ids.bin 1
//
// The layout flags must match between the command that wrote a blob and the
// commands that read it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	app, handlers := newApp(os.Stdout)

	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		app.Fatalf("%v, try --help", err)
	}

	if err := handlers[cmd](); err != nil {
		logrus.WithField("command", cmd).WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// newApp builds the command line and returns the handler of every command.
func newApp(out io.Writer) (*kingpin.Application, map[string]func() error) {
	app := kingpin.New("seqtool", "Build, inspect and edit streamed sequence blobs.")
	app.HelpFlag.Short('h')

	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error).").Default("info").Enum("debug", "info", "warn", "error")
	lf := addLayoutFlags(app)

	app.PreAction(func(*kingpin.ParseContext) error {
		level, err := logrus.ParseLevel(*logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		logrus.SetOutput(os.Stderr)

		return nil
	})

	handlers := map[string]func() error{}

	parse := app.Command("parse", "Parse a literal into a blob file.")
	parseOut := parse.Flag("output", "Blob file to write.").Short('o').Required().String()
	parseText := parse.Arg("literal", "Sequence literal, e.g. {1,NULL,3}; '-' reads stdin.").Required().String()
	handlers[parse.FullCommand()] = func() error {
		return runParse(lf, *parseOut, *parseText, os.Stdin)
	}

	formatCmd := app.Command("format", "Print a blob file as a literal.")
	formatFile := formatCmd.Arg("file", "Blob file.").Required().ExistingFile()
	handlers[formatCmd.FullCommand()] = func() error {
		return runFormat(lf, *formatFile, out)
	}

	inspect := app.Command("inspect", "Print the count, size and fingerprint of a blob file.")
	inspectFile := inspect.Arg("file", "Blob file.").Required().ExistingFile()
	handlers[inspect.FullCommand()] = func() error {
		return runInspect(lf, *inspectFile, out)
	}

	get := app.Command("get", "Print one element of a blob; regular arrays take a flat index.")
	getFile := get.Arg("file", "Blob file.").Required().ExistingFile()
	getIndex := get.Arg("index", "Element index.").Required().Int()
	handlers[get.FullCommand()] = func() error {
		return runGet(lf, *getFile, *getIndex, out)
	}

	set := app.Command("set", "Replace one element of a blob in place; regular arrays take a flat index.")
	setFile := set.Arg("file", "Blob file.").Required().ExistingFile()
	setIndex := set.Arg("index", "Element index.").Required().Int()
	setValue := set.Arg("value", "Element literal, NULL for null.").Required().String()
	handlers[set.FullCommand()] = func() error {
		return runSet(lf, *setFile, *setIndex, *setValue)
	}

	kinds := app.Command("kinds", "List the element kinds.")
	handlers[kinds.FullCommand()] = func() error {
		for _, name := range kindNames() {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}

		return nil
	}

	return app, handlers
}
