package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/qri-io/jagged"
)

func openArchive(name string) (*jagged.MemoryStore, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open archive")
	}
	defer func() { _ = f.Close() }()
	s, err := jagged.ReadMemoryStore(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read archive")
	}
	level.Debug(logger).Log("msg", "read archive", "file", name, "buffers", len(s.Keys()), "bytes", s.Size())
	return s, nil
}

// inspectCommand prints the array stored at a path of an archive.
type inspectCommand struct {
	file        string
	path        string
	maxdecimals int
	values      bool
}

func (cmd *inspectCommand) run(_ *kingpin.ParseContext) error {
	s, err := openArchive(cmd.file)
	if err != nil {
		exitWithErr(err)
	}
	a, err := jagged.Open(s, cmd.path, jagged.ModeRead)
	if err != nil {
		exitWithErr(err)
	}
	parts, err := a.ReadAll()
	if err != nil {
		exitWithErr(errors.Wrap(err, "failed to read array"))
	}

	bold := color.New(color.Bold)
	bold.Printf("Array %q:\n", a.Path())
	form := a.Form()
	branch, depth := form.BranchDepth()
	fmt.Printf(
		"\tclass: %s, length: %d, partitions: %d, purelist depth: %d, branch depth: %d (branching: %v)\n",
		form.ClassName(),
		a.Length(),
		a.NumPartitions(),
		form.PurelistDepth(),
		depth,
		branch,
	)
	if c := a.Meta().Compressor; c != nil {
		fmt.Printf("\tcompressor: %s\n", c.ID)
	}
	for i, part := range parts {
		if err := jagged.Validate(part); err != nil {
			color.New(color.FgYellow).Printf("\tpartition %d is invalid: %s\n", i, err)
			continue
		}
		fmt.Printf("\tpartition %d: length %d, %v in memory\n", i, part.Length(), humanize.Bytes(uint64(jagged.NBytes(part))))
		if cmd.values {
			out, err := jagged.ToJSON(part, false, cmd.maxdecimals)
			if err != nil {
				exitWithErr(err)
			}
			fmt.Printf("\t\t%s\n", out)
		}
	}
	return nil
}

func addInspectCommand(app *kingpin.Application) {
	cmd := &inspectCommand{}
	inspect := app.Command("inspect", "Print an array stored in a buffers archive.").Action(cmd.run)
	inspect.Flag("path", "Path of the array within the archive.").Default("").StringVar(&cmd.path)
	inspect.Flag("max-decimals", "Decimal places for floating point values; -1 for full precision.").Default("-1").IntVar(&cmd.maxdecimals)
	inspect.Flag("values", "Print the values of every partition as JSON.").Default("true").BoolVar(&cmd.values)
	inspect.Arg("archive", "Archive file.").Required().ExistingFileVar(&cmd.file)
}

// listCommand prints every array in an archive.
type listCommand struct {
	file string
}

func (cmd *listCommand) run(_ *kingpin.ParseContext) error {
	s, err := openArchive(cmd.file)
	if err != nil {
		exitWithErr(err)
	}
	cm, err := jagged.Consolidate(s)
	if err != nil {
		exitWithErr(errors.Wrap(err, "failed to read archive metadata"))
	}
	bold := color.New(color.Bold)
	bold.Printf("Archive: %d buffers, %v\n", len(s.Keys()), humanize.Bytes(uint64(s.Size())))
	for _, path := range cm.Arrays() {
		a, err := jagged.Open(s, path, jagged.ModeRead)
		if err != nil {
			exitWithErr(err)
		}
		fmt.Printf("\t%q: %s, length %d, %d partitions\n", a.Path(), a.Form().ClassName(), a.Length(), a.NumPartitions())
	}
	return nil
}

func addListCommand(app *kingpin.Application) {
	cmd := &listCommand{}
	ls := app.Command("ls", "List the arrays in a buffers archive.").Action(cmd.run)
	ls.Arg("archive", "Archive file.").Required().ExistingFileVar(&cmd.file)
}
