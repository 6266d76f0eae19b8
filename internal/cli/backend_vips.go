//go:build vips

package cli

import (
	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/adapters/vips"
	"github.com/Skryldev/image-converter/config"
)

var _ imageconverter.Backend = (*vips.Backend)(nil)

// backendOptions returns the converter options for cfg.Backend.
func backendOptions(cfg config.Config) ([]imageconverter.Option, error) {
	if cfg.Backend != config.BackendVips {
		return nil, nil
	}
	b := vips.NewBackend(vips.BackendConfig{DefaultQuality: cfg.DefaultQuality})
	return []imageconverter.Option{imageconverter.WithBackend(b)}, nil
}
