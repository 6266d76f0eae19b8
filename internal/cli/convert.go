package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skryldev/image-converter/core"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	format string // output format; unknown values fall back to the default
	out    string // output directory
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert an image and save it as <name>.<format>",
		Long: `Convert reads the image, paints it onto a canvas of the same size and saves
the result in --out under the original base name with the new extension.

Formats: ` + formatList() + `. Anything else falls back to the default format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if opts.out == "" {
				opts.out = a.cfg.Local.RootDir
			}

			conv, err := a.converter(cmd)
			if err != nil {
				return err
			}
			defer conv.Close()

			prog := newProgress(logger)
			res, err := conv.ConvertFile(cmd.Context(), args[0], opts.format, opts.out)
			if err != nil {
				return err
			}
			prog.done("Converted "+args[0],
				"output", filepath.Join(opts.out, res.Filename),
				"size", res.SizeBytes,
				"dimensions", fmt.Sprintf("%dx%d", res.Width, res.Height),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format ("+formatList()+")")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (default: config local.root_dir)")
	return cmd
}

func formatList() string {
	names := make([]string, len(core.OutputFormats))
	for i, f := range core.OutputFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
