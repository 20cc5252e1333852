// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Command npedit edits netplan configuration files: it merges all the
// files in the netplan directory into one logical tree and lets you
// search, read and change values by slash delimited paths with "*"
// wildcards, writing back only the files that actually changed.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	getter "github.com/hashicorp/go-getter"
	"github.com/rs/zerolog"
	"npedit.io/pkg/atomicfile"
	"npedit.io/pkg/editor"
	"npedit.io/pkg/overlay"
	"npedit.io/pkg/yamltree"
)

type Context struct {
	log zerolog.Logger
}

var cli struct {
	SearchParams SearchParamsCmd `cmd:"" name:"search-params" help:"List interface parameters matching a key glob."`
	Get          GetCmd          `cmd:"" help:"Print the value at a path."`
	Set          SetCmd          `cmd:"" help:"Change an existing value."`
	SetAll       SetAllCmd       `cmd:"" name:"set-all" help:"Change a parameter on every interface that defines it."`
	Add          AddCmd          `cmd:"" help:"Create a new entry."`
	Delete       DeleteCmd       `cmd:"" help:"Delete an entry."`
	Pull         PullCmd         `cmd:"" help:"Fetch a config file and install it into the netplan directory."`

	NetplanDir string           `name:"netplan-dir" default:"/etc/netplan" help:"Directory containing the netplan config files."`
	ConfFile   []string         `name:"conf-file" help:"Config file candidates; the first existing one is used instead of scanning the directory."`
	Verbose    int              `short:"v" type:"counter" help:"Increase log verbosity."`
	Version    kong.VersionFlag `name:"version" help:"Print version information and quit"`
}

func openEditor(ctx *Context) (*editor.Editor, error) {
	opts := []editor.Option{
		editor.WithDir(cli.NetplanDir),
		editor.WithLogger(ctx.log),
	}
	if len(cli.ConfFile) > 0 {
		opts = append(opts, editor.WithConfFile(cli.ConfFile...))
	}
	return editor.New(opts...)
}

type SearchParamsCmd struct {
	Glob string `arg:"" optional:"" default:"*" help:"Key glob, e.g. \"addresses\" or \"nameservers/search\"."`
}

func (s *SearchParamsCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	matches, err := e.SearchParams(s.Glob)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Printf("%s\t%s\t%s\n", m.File, m.Path, yamltree.String(m.Node))
	}
	return nil
}

type GetCmd struct {
	Path string `arg:"" help:"Slash delimited path, e.g. network/ethernets/eth0/mtu."`
}

func (s *GetCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	n, ok, err := e.Get(s.Path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: not found", s.Path)
	}
	fmt.Println(yamltree.String(n))
	return nil
}

type SetCmd struct {
	Path  string `arg:"" help:"Path of an existing value."`
	Value Value  `arg:"" help:"New value: plain string or JSON. Format: value or @filename, where a leading @ can be escaped with a backslash."`
	To    string `name:"to" help:"Force the file to change." type:"file"`
}

func (s *SetCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	if err := e.Set(s.Path, string(s.Value), s.To); err != nil {
		return err
	}
	return e.Save()
}

type SetAllCmd struct {
	Glob  string `arg:"" help:"Key glob matched against every interface."`
	Value Value  `arg:"" help:"New value: plain string or JSON."`
}

func (s *SetAllCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	n, err := e.SetAll(s.Glob, string(s.Value))
	if err != nil {
		return err
	}
	if n == 0 {
		ctx.log.Warn().Str("glob", s.Glob).Msg("no interface parameter matched")
		return nil
	}
	return e.Save()
}

type AddCmd struct {
	Path  string `arg:"" help:"Path of the new entry; must not exist yet in any file."`
	Value Value  `arg:"" help:"Value: plain string or JSON."`
	To    string `name:"to" help:"Force the file to change." type:"file"`
}

func (s *AddCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	if err := e.Add(s.Path, string(s.Value), s.To); err != nil {
		return err
	}
	return e.Save()
}

type DeleteCmd struct {
	Path string `arg:"" help:"Path of the entry to remove."`
	To   string `name:"to" help:"Force the file to change." type:"file"`
}

func (s *DeleteCmd) Run(ctx *Context) error {
	e, err := openEditor(ctx)
	if err != nil {
		return err
	}
	if _, err := e.Delete(s.Path, s.To); err != nil {
		return err
	}
	return e.Save()
}

type PullCmd struct {
	Source string `arg:"" help:"Local path or URL of the config to install."`
	As     string `name:"as" help:"Destination file name; defaults to the source base name."`
}

func (s *PullCmd) Run(ctx *Context) error {
	tmp, err := os.CreateTemp("", "npedit")
	if err != nil {
		return err
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	opt := func(c *getter.Client) (err error) {
		c.Pwd, err = os.Getwd()
		return
	}
	if err := getter.GetFile(tmp.Name(), s.Source, opt); err != nil {
		return err
	}

	b, err := os.ReadFile(tmp.Name())
	if err != nil {
		return err
	}

	name := s.As
	if name == "" {
		name = filepath.Base(s.Source)
	}
	if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
		return fmt.Errorf("destination name %q must end in .yaml or .yml", name)
	}
	if _, err := overlay.ParseDocument(name, b); err != nil {
		return err
	}

	dest := filepath.Join(cli.NetplanDir, name)
	if err := atomicfile.WriteFile(dest, b, 0o644); err != nil {
		return err
	}
	ctx.log.Info().Str("source", s.Source).Str("file", dest).Msg("installed config file")
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Vars{
			"version": "0.1.0",
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	err := ctx.Run(&Context{log: setupLogging(cli.Verbose)})
	ctx.FatalIfErrorf(err)
}
