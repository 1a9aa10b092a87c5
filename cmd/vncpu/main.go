// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/vncpu/cpu"
	"github.com/ezrec/vncpu/emulator"
	"github.com/ezrec/vncpu/translate"
)

var ErrMemorySize = errors.New(translate.From("memory size smaller than a word"))

//go:embed demo.asm
var demoProgram string

type options struct {
	compile  string
	input    string
	output   string
	codeSize int
	dataSize int
	maxTicks int
	verbose  bool
	listing  bool
	lang     string
}

func openInput(name string) (rc io.ReadCloser, err error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(name string) (wc io.WriteCloser, err error) {
	if name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

func run(cmd *cobra.Command, opt *options) (err error) {
	if len(opt.lang) != 0 {
		err = translate.SetLanguage(opt.lang)
		if err != nil {
			return
		}
	}

	for _, size := range []int{opt.codeSize, opt.dataSize} {
		if size < cpu.WORD_SIZE {
			err = fmt.Errorf("%w: %d", ErrMemorySize, size)
			return
		}
	}

	emu := emulator.NewEmulatorSize(opt.codeSize, opt.dataSize)
	emu.Verbose = opt.verbose
	emu.MaxTicks = opt.maxTicks

	// Compile a new instruction stream.
	var source io.Reader = strings.NewReader(demoProgram)
	if len(opt.compile) != 0 {
		inf, err := os.Open(opt.compile)
		if err != nil {
			return err
		}
		defer inf.Close()
		source = inf
	}

	err = emu.Assemble(source)
	if err != nil {
		if len(opt.compile) != 0 {
			err = fmt.Errorf("%v: %w", opt.compile, err)
		}
		return
	}

	if opt.listing {
		fmt.Fprint(cmd.OutOrStdout(), emu.Program.Listing())
		return
	}

	inf, err := openInput(opt.input)
	if err != nil {
		return
	}
	defer inf.Close()
	emu.Tape.Input = inf

	ouf, err := openOutput(opt.output)
	if err != nil {
		return
	}
	defer ouf.Close()
	emu.Tape.Output = ouf

	err = emu.Reset()
	if err != nil {
		return
	}

	report, err := emu.Run()
	fmt.Fprint(cmd.ErrOrStderr(), report.String())

	return
}

func newRootCommand() *cobra.Command {
	opt := &options{}

	rootCmd := &cobra.Command{
		Use:          "vncpu",
		Short:        "Assemble and run a program on the vncpu emulator",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opt)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.Flags()
	flags.StringVarP(&opt.compile, "compile", "c", "", "Assembly file to compile (default: built-in demo)")
	flags.StringVarP(&opt.input, "input", "i", "-", "Tape input")
	flags.StringVarP(&opt.output, "output", "o", "-", "Tape output")
	flags.IntVar(&opt.codeSize, "code-size", cpu.MEM_SIZE, "Code memory size, in bytes")
	flags.IntVar(&opt.dataSize, "data-size", cpu.MEM_SIZE, "Data memory size, in bytes")
	flags.IntVar(&opt.maxTicks, "max-ticks", 0, "Stop after this many instructions (0: no limit)")
	flags.BoolVarP(&opt.verbose, "verbose", "v", false, "Verbose mode")
	flags.BoolVarP(&opt.listing, "listing", "l", false, "Print the assembled listing, do not execute")
	flags.StringVar(&opt.lang, "lang", "", "Number format locale for messages (BCP 47 tag)")

	return rootCmd
}

func main() {
	log.SetFlags(0)

	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}
