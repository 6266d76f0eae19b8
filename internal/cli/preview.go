package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/adapters/display"
)

func newPreviewCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Write an HTML page that shows the image without converting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := a.converter(cmd)
			if err != nil {
				return err
			}
			defer conv.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			page := display.NewPage(filepath.Base(args[0]), false)
			sel := imageconverter.Select("", imageconverter.FromReader(args[0], f))
			if err := conv.Preview(cmd.Context(), sel, page); err != nil {
				return err
			}

			dst, err := os.Create(out)
			if err != nil {
				return err
			}
			if _, err := page.WriteTo(dst); err != nil {
				dst.Close()
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote preview", "path", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "preview.html", "output HTML file")
	return cmd
}
