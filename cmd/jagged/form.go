package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/qri-io/jagged"
)

type formCommand struct {
	file    string
	compact bool
	verbose bool
}

func readForm(name string) (jagged.Form, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read form")
	}
	return jagged.FormFromJSON(data)
}

func (cmd *formCommand) runFmt(_ *kingpin.ParseContext) error {
	f, err := readForm(cmd.file)
	if err != nil {
		exitWithErr(err)
	}
	fmt.Println(f.ToJSON(!cmd.compact, cmd.verbose))
	return nil
}

func (cmd *formCommand) runYAML(_ *kingpin.ParseContext) error {
	f, err := readForm(cmd.file)
	if err != nil {
		exitWithErr(err)
	}
	out, err := formYAML(f, cmd.verbose)
	if err != nil {
		exitWithErr(err)
	}
	fmt.Print(out)
	return nil
}

func (cmd *formCommand) runDepth(_ *kingpin.ParseContext) error {
	f, err := readForm(cmd.file)
	if err != nil {
		exitWithErr(err)
	}
	bold := color.New(color.Bold)
	mindepth, maxdepth := f.MinMaxDepth()
	branch, depth := f.BranchDepth()
	bold.Printf("%s\n", f.ClassName())
	fmt.Printf("\tpurelist depth: %d\n", f.PurelistDepth())
	fmt.Printf("\tpurelist regular: %v\n", f.PurelistIsRegular())
	fmt.Printf("\tmin/max depth: %d/%d\n", mindepth, maxdepth)
	fmt.Printf("\tbranch depth: %d (branching: %v)\n", depth, branch)
	if keys := f.Keys(); len(keys) > 0 {
		fmt.Printf("\tfields: %v\n", keys)
	}
	if nf, ok := f.(*jagged.NumpyForm); ok {
		dt := jagged.DtypeOf(jagged.PrimitiveOf(nf.Format, nf.ItemSize))
		fmt.Printf("\tdtype: %s (%s)\n", dt, dt.BasicType.Human())
	}
	return nil
}

// formYAML re-encodes the form's JSON as YAML, keeping key order.
func formYAML(f jagged.Form, verbose bool) (string, error) {
	iter := jsoniter.ParseString(jsoniter.ConfigDefault, f.ToJSON(false, verbose))
	node := yamlNode(iter)
	if iter.Error != nil {
		return "", iter.Error
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func yamlNode(iter *jsoniter.Iterator) *yaml.Node {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		n := &yaml.Node{Kind: yaml.MappingNode}
		iter.ReadMapCB(func(iter *jsoniter.Iterator, key string) bool {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, yamlNode(iter))
			return true
		})
		return n
	case jsoniter.ArrayValue:
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			n.Content = append(n.Content, yamlNode(iter))
			return true
		})
		return n
	case jsoniter.StringValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: iter.ReadString()}
	case jsoniter.NumberValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: iter.ReadNumber().String()}
	case jsoniter.BoolValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(iter.ReadBool())}
	}
	iter.Skip()
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func addFormCommands(app *kingpin.Application) {
	cmd := &formCommand{}
	form := app.Command("form", "Work with array schemas (Forms).")

	fmtCmd := form.Command("fmt", "Re-emit a form as JSON.").Action(cmd.runFmt)
	fmtCmd.Flag("compact", "Print on one line.").BoolVar(&cmd.compact)
	fmtCmd.Flag("verbose", "Include default attributes (has_identities, parameters).").BoolVar(&cmd.verbose)
	fmtCmd.Arg("file", "JSON form file.").Required().ExistingFileVar(&cmd.file)

	yamlCmd := form.Command("yaml", "Print a form as YAML.").Action(cmd.runYAML)
	yamlCmd.Flag("verbose", "Include default attributes (has_identities, parameters).").BoolVar(&cmd.verbose)
	yamlCmd.Arg("file", "JSON form file.").Required().ExistingFileVar(&cmd.file)

	depthCmd := form.Command("depth", "Print the depths of a form.").Action(cmd.runDepth)
	depthCmd.Arg("file", "JSON form file.").Required().ExistingFileVar(&cmd.file)
}
