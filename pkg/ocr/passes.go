package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog/log"

	"trainercard/pkg/imgproc"
)

// UpscaleFactor magnifies each prepared image before it is read; the card's
// glyphs are only a few pixels tall at native resolution.
const UpscaleFactor = 3

// Variant is one preprocessing of the grayscale region.
type Variant struct {
	Name    string
	Prepare func(g *image.Gray) *image.Gray
}

// Variants returns the preprocessing passes in the order their transcriptions
// are fused.
func Variants() []Variant {
	return []Variant{
		{Name: "enhanced", Prepare: func(g *image.Gray) *image.Gray {
			return imgproc.CLAHE(imgproc.Bilateral(g, 9, 75, 75), 2.0, 8, 8)
		}},
		{Name: "adaptive", Prepare: func(g *image.Gray) *image.Gray {
			return imgproc.AdaptiveGaussian(g, 11, 2)
		}},
		{Name: "otsu", Prepare: imgproc.Otsu},
		{Name: "fixed", Prepare: func(g *image.Gray) *image.Gray {
			return imgproc.Threshold(g, 127)
		}},
	}
}

// Pass is the outcome of reading one variant.
type Pass struct {
	Variant string
	Text    string
	Err     error
}

// RunPasses prepares and reads every variant of img in order.
func RunPasses(engine Engine, img image.Image) []Pass {
	gray := imgproc.Gray(img)
	variants := Variants()
	passes := make([]Pass, 0, len(variants))
	for _, v := range variants {
		prepared := imgproc.Upscale(v.Prepare(gray), UpscaleFactor)
		text, err := engine.Text(prepared)
		if err != nil {
			log.Warn().Err(err).Str("variant", v.Name).Msg("ocr pass failed")
		}
		passes = append(passes, Pass{Variant: v.Name, Text: text, Err: err})
	}
	return passes
}

// Fuse reads every variant and joins the raw transcriptions with newlines.
// Nothing is filtered; a failed pass contributes an empty line. It only
// errors when every pass failed.
func Fuse(engine Engine, img image.Image) (string, error) {
	passes := RunPasses(engine, img)
	texts := make([]string, len(passes))
	failed := 0
	var lastErr error
	for i, p := range passes {
		texts[i] = p.Text
		if p.Err != nil {
			failed++
			lastErr = p.Err
		}
	}
	if failed == len(passes) {
		return "", fmt.Errorf("%w: %v", ErrAllPassesFailed, lastErr)
	}
	fused := strings.Join(texts, "\n")
	log.Debug().Int("length", len(fused)).Str("text", Snippet(fused, 120)).Msg("ocr fused")
	return fused, nil
}
