// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/emulator"
	"github.com/ezrec/lc3/io"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lc3: ")

	var configFile string
	var images string
	var save bool

	opts := emulator.DefaultConfig()

	flag.StringVar(&configFile, "config", "", ".toml configuration file")
	flag.StringVar(&opts.Source, "c", "", ".asm file to assemble")
	flag.StringVar(&images, "i", "", "comma separated .obj images to load")
	flag.BoolVar(&save, "s", false, "Save the assembled image, do not execute")
	flag.StringVar(&opts.Object, "o", "", ".obj file to save the assembled image to")
	flag.StringVar(&opts.Input, "in", opts.Input, "Console input")
	flag.StringVar(&opts.Output, "out", opts.Output, "Console output")
	flag.BoolVar(&opts.Echo, "echo", false, "Echo console input")
	flag.BoolVar(&opts.Raw, "raw", false, "Raw mode console, if stdin is a terminal")
	flag.Var(&opts.Unsupported, "unsupported", "Unsupported operation policy: fatal or skip")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(images) != 0 {
		opts.Images = strings.Split(images, ",")
	}

	cfg := opts
	if len(configFile) != 0 {
		inf, err := os.Open(configFile)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
		cfg, err = emulator.LoadConfig(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}

		// Flags override the configuration file.
		flag.Visit(func(fl *flag.Flag) {
			override(cfg, opts, fl.Name)
		})
	}

	err := run(cfg, save)
	if err != nil {
		log.Fatal(err)
	}
}

// override copies the setting of a command line flag.
func override(cfg, opts *emulator.Config, name string) {
	switch name {
	case "c":
		cfg.Source = opts.Source
	case "i":
		cfg.Images = opts.Images
	case "o":
		cfg.Object = opts.Object
	case "in":
		cfg.Input = opts.Input
	case "out":
		cfg.Output = opts.Output
	case "echo":
		cfg.Echo = opts.Echo
	case "raw":
		cfg.Raw = opts.Raw
	case "unsupported":
		cfg.Unsupported = opts.Unsupported
	case "v":
		cfg.Verbose = opts.Verbose
	}
}

// assemble compiles an assembly source file.
func assemble(cfg *emulator.Config) (prog *cpu.Program, err error) {
	inf, err := os.Open(cfg.Source)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: cfg.Verbose}
	for name, value := range cfg.Predefine {
		asm.Predefine(name, value)
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = &os.PathError{Op: "assemble", Path: cfg.Source, Err: err}
	}

	return
}

// saveImage writes the program as an object image.
func saveImage(prog *cpu.Program, path string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	_, err = prog.Image().WriteTo(ouf)
	if err != nil {
		ouf.Close()
		return
	}

	err = ouf.Close()
	return
}

// loadImage reads an object image file.
func loadImage(path string) (img *io.Image, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	img, err = io.ReadImage(inf)
	if err != nil {
		err = &os.PathError{Op: "load", Path: path, Err: err}
	}

	return
}

func run(cfg *emulator.Config, save bool) (err error) {
	var prog *cpu.Program

	// Compile a new instruction stream.
	if len(cfg.Source) != 0 {
		prog, err = assemble(cfg)
		if err != nil {
			return
		}

		if len(cfg.Object) != 0 {
			err = saveImage(prog, cfg.Object)
			if err != nil {
				return
			}
		}
	}

	if save {
		return
	}

	console := io.NewConsole(os.Stdin, os.Stdout)
	emu := emulator.NewEmulator(console)
	cfg.Apply(emu)

	for _, path := range cfg.Images {
		var img *io.Image
		img, err = loadImage(path)
		if err != nil {
			return
		}
		emu.LoadImage(img)
	}

	if prog != nil {
		emu.LoadProgram(prog)
	}

	if cfg.Input != "-" {
		var inf *os.File
		inf, err = os.Open(cfg.Input)
		if err != nil {
			return
		}
		defer inf.Close()
		console.Input = inf
	}

	if cfg.Output != "-" {
		var ouf *os.File
		ouf, err = os.Create(cfg.Output)
		if err != nil {
			return
		}
		defer ouf.Close()
		console.Output = ouf
	}

	if cfg.Raw && cfg.Input == "-" {
		var tm *io.Terminal
		tm, err = io.MakeRaw(os.Stdin, console.Output)
		switch {
		case errors.Is(err, io.ErrNotTerminal):
			err = nil
		case err != nil:
			return
		default:
			defer tm.Restore()
			console.Input = tm
			console.Output = tm
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu.Reset()
	err = emu.Run(ctx)

	if cfg.Verbose {
		log.Printf("ticks %v, power %v", emu.Ticks(), emu.Power())
	}

	return
}
