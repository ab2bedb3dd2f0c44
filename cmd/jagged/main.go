// Command jagged inspects array schemas and buffer archives.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var logger log.Logger = log.NewNopLogger()

func main() {
	app := kingpin.New("jagged", "Inspect jagged array schemas and buffer archives.")
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above. One of: [debug, info, warn, error]").Default("warn").Enum("debug", "info", "warn", "error")
	app.PreAction(func(_ *kingpin.ParseContext) error {
		logger = newLogger(*logLevel)
		return nil
	})

	addFormCommands(app)
	addInspectCommand(app)
	addListCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func newLogger(lvl string) log.Logger {
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowWarn()
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(l, allow)
}

func exitWithErr(err error) {
	level.Debug(logger).Log("msg", "command failed", "err", fmt.Sprintf("%+v", err))
	color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", err)
	os.Exit(1)
}
