package imageconverter

import (
	"github.com/Skryldev/image-converter/core"
	"github.com/Skryldev/image-converter/pipeline"
)

// Inner exposes the underlying pipeline.Converter for advanced use (e.g.,
// direct access in tests).  Prefer the high-level API for normal usage.
func (c *Converter) Inner() *pipeline.Converter { return c.inner }

// Registry exposes the codec registry.
func (c *Converter) Registry() core.Registry { return c.reg }
