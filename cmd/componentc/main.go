// Command componentc generates Go component structs and device layouts
// from component schema files.
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
	in := flag.String("in", "", "Directory of .json/.yaml schema files.")
	hostDir := flag.String("host", "", "Output directory for generated Go files.")
	deviceDir := flag.String("device", "", "Output directory for generated device layouts (defaults to -host).")
	pkg := flag.String("pkg", "", "Package name of the generated Go files (defaults to the -host directory name).")
	level := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	if *in == "" || *hostDir == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in <schema_dir> -host <go_out_dir> [-device <device_out_dir>] [-pkg name]\n", os.Args[0])
		os.Exit(2)
	}
	if *deviceDir == "" {
		*deviceDir = *hostDir
	}
	if *pkg == "" {
		abs, err := filepath.Abs(*hostDir)
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

	generated, err := codegen.GenerateComponents(*in, *hostDir, *deviceDir, *pkg, log)
	log.Info("done", zap.Int("components", len(generated)))
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
