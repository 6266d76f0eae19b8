//go:build !vips

package cli

import (
	"fmt"

	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/config"
)

// backendOptions returns the converter options for cfg.Backend.  This build
// has no libvips support.
func backendOptions(cfg config.Config) ([]imageconverter.Option, error) {
	if cfg.Backend == config.BackendVips {
		return nil, fmt.Errorf("backend %q requires a build with -tags vips", cfg.Backend)
	}
	return nil, nil
}
