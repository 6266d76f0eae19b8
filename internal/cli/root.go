package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/config"
)

var (
	version = "dev"     // semantic version (e.g., "v1.2.3")
	commit  = "none"    // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version.  It is
// called by main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	cfgPath string
	verbose bool
	cfg     config.Config
	stderr  io.Writer
}

// converter builds a Converter from the loaded config, logging through the
// command logger.  Callers must Close it.
func (a *app) converter(cmd *cobra.Command) (*imageconverter.Converter, error) {
	opts, err := backendOptions(a.cfg)
	if err != nil {
		return nil, err
	}
	conv := imageconverter.New(a.cfg, opts...)
	conv.SetLogger(coreLogger(loggerFromContext(cmd.Context())))
	return conv, nil
}

// Execute runs the imgconv CLI and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{cfg: config.Default(), stderr: stderr}

	root := &cobra.Command{
		Use:          "imgconv",
		Short:        "imgconv converts images between JPEG, PNG, GIF and WebP",
		Long:         `imgconv reads one image, paints it onto a canvas of the same size and saves it as JPEG, PNG, GIF or WebP under the original base name.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := parseLevel(cfg.LogLevel)
			if a.verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(a.stderr, level)))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("imgconv %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "YAML config file")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newPreviewCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}
