package pipeline

import (
	"context"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// Step names, in the order Process runs them.
const (
	StepRead     = "read"
	StepDecode   = "decode"
	StepRender   = "render"
	StepDownload = "download"
	StepShow     = "show"
)

// ── Read ──────────────────────────────────────────────────────────────────────

// ReadStep loads the source file into c.SourceURL.
type ReadStep struct {
	Reader core.FileReader
}

func (s *ReadStep) Name() string { return StepRead }

func (s *ReadStep) Execute(ctx context.Context, c *core.Conversion) (*core.Conversion, error) {
	if c.Source.Body == nil {
		return nil, apperrors.New(apperrors.CategoryInput, s.Name(), apperrors.ErrMissingInput)
	}
	url, err := s.Reader.Read(ctx, c.Source)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryInput, s.Name(), err)
	}
	out := *c
	out.SourceURL = url
	return &out, nil
}

// ── Decode ────────────────────────────────────────────────────────────────────

// DecodeStep decodes c.SourceURL into c.Image.
type DecodeStep struct {
	Decoder core.ImageDecoder
}

func (s *DecodeStep) Name() string { return StepDecode }

func (s *DecodeStep) Execute(ctx context.Context, c *core.Conversion) (*core.Conversion, error) {
	if c.SourceURL == "" {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	img, err := s.Decoder.Decode(ctx, c.SourceURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	out := *c
	out.Image = img
	out.Width, out.Height = img.Width, img.Height
	return &out, nil
}

// ── Render ────────────────────────────────────────────────────────────────────

// RenderStep paints c.Image and serialises it to c.OutputURL in c.Format.
// The decoded image is released afterwards.
type RenderStep struct {
	Renderer core.CanvasRenderer
}

func (s *RenderStep) Name() string { return StepRender }

func (s *RenderStep) Execute(ctx context.Context, c *core.Conversion) (*core.Conversion, error) {
	if c.Image == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	url, err := s.Renderer.Render(ctx, c.Image, c.Format)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), err)
	}
	out := *c
	out.OutputURL = url
	out.Image = nil
	return &out, nil
}

// ── Download ──────────────────────────────────────────────────────────────────

// DownloadStep names the output and hands c.OutputURL to the trigger.
type DownloadStep struct {
	Trigger core.DownloadTrigger
}

func (s *DownloadStep) Name() string { return StepDownload }

func (s *DownloadStep) Execute(ctx context.Context, c *core.Conversion) (*core.Conversion, error) {
	if c.OutputURL == "" {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	name := core.OutputFilename(c.Source.Name, c.Format)
	if err := s.Trigger.Trigger(ctx, c.OutputURL, name); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryStorage, s.Name(), err)
	}
	out := *c
	out.Filename = name
	return &out, nil
}

// ── Show ──────────────────────────────────────────────────────────────────────

// ShowStep reveals c.SourceURL on a Display.
type ShowStep struct {
	Display core.Display
}

func (s *ShowStep) Name() string { return StepShow }

func (s *ShowStep) Execute(ctx context.Context, c *core.Conversion) (*core.Conversion, error) {
	if c.SourceURL == "" {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	if err := s.Display.Show(ctx, c.SourceURL); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	return c, nil
}

var (
	_ core.Step = (*ReadStep)(nil)
	_ core.Step = (*DecodeStep)(nil)
	_ core.Step = (*RenderStep)(nil)
	_ core.Step = (*DownloadStep)(nil)
	_ core.Step = (*ShowStep)(nil)
)
