// Command systemc resolves kernel includes and wraps each kernel in a
// generated ecs.System declaration.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plus3/computecs/internal/codegen"
	"github.com/plus3/computecs/internal/config"
	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "Directory of .lua kernel files.")
	include := flag.String("include", "", "Base directory include paths are resolved against.")
	out := flag.String("out", "", "Output directory for generated Go files (defaults to -include).")
	pkg := flag.String("pkg", "", "Package name of the generated Go files (defaults to the -out directory name).")
	level := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	if *in == "" || *include == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in <kernel_dir> -include <include_base> [-out <go_out_dir>] [-pkg name]\n", os.Args[0])
		os.Exit(2)
	}
	if *out == "" {
		*out = *include
	}
	if *pkg == "" {
		abs, err := filepath.Abs(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		*pkg = filepath.Base(abs)
	}

	log, err := config.NewLogger(config.LoggingConfig{Level: *level, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	generated, err := codegen.GenerateSystems(*in, *include, *out, *pkg, log)
	log.Info("done", zap.Int("systems", len(generated)))
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
