package card

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"trainercard/pkg/ocr"
)

// Reader runs the recognition pipeline with one OCR engine. It keeps no
// state between calls and can be shared by any number of goroutines.
type Reader struct {
	engine ocr.Engine
	// slots bounds RecognizeContext calls in flight, abandoned ones
	// included; nil means unbounded.
	slots chan struct{}
}

func NewReader(engine ocr.Engine) *Reader {
	return &Reader{engine: engine}
}

// WithConcurrency caps how many RecognizeContext pipelines may run at once.
// n < 1 removes the cap.
func (r *Reader) WithConcurrency(n int) *Reader {
	r.slots = nil
	if n > 0 {
		r.slots = make(chan struct{}, n)
	}
	return r
}

// Trace is the intermediate evidence of one recognition.
type Trace struct {
	Region Region
	Text   string
	Fields Fields
	Badges BadgeReport
}

// Decode reads an image, honoring EXIF orientation for camera photos.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// Recognize reads the card in img. Every failure to produce a full card is
// a *Failure; other errors mean the OCR engine itself broke.
func (r *Reader) Recognize(img image.Image) (ParsedCard, error) {
	c, _, err := r.Trace(img)
	return c, err
}

// Trace is Recognize that also returns the evidence it collected.
func (r *Reader) Trace(img image.Image) (ParsedCard, Trace, error) {
	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	var tr Trace
	tr.Region = LocateRegion(img)

	text, err := ocr.Fuse(r.engine, imaging.Crop(img, tr.Region.Rect()))
	if err != nil {
		return ParsedCard{}, tr, fmt.Errorf("read card text: %w", err)
	}
	tr.Text = text
	if !Validate(text) {
		return ParsedCard{}, tr, &Failure{
			Kind:   NotACardFailure,
			Reason: fmt.Sprintf("no header, %d of 4 field labels", len(FieldLabels(text))),
		}
	}

	tr.Fields = Extract(text)
	tr.Badges = AnalyzeBadges(img, tr.Region)
	log.Debug().
		Str("name", tr.Fields.Name).Str("name_rule", tr.Fields.NameRule).
		Str("time", tr.Fields.Time).Str("time_rule", tr.Fields.TimeRule).
		Int("pokedex", tr.Fields.Pokedex).Str("pokedex_rule", tr.Fields.PokedexRule).
		Int("badges", tr.Badges.Count).
		Msg("card fields")

	var missing []string
	if tr.Fields.Name == UnknownName {
		missing = append(missing, "name")
	}
	if tr.Fields.Time == UnknownTime {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return ParsedCard{}, tr, &Failure{Kind: IncompleteExtractionFailure, Reason: fmt.Sprintf("unreadable %v", missing)}
	}
	return ParsedCard{
		Name:    tr.Fields.Name,
		Badges:  tr.Badges.Count,
		Time:    tr.Fields.Time,
		Pokedex: tr.Fields.Pokedex,
	}, tr, nil
}

// RecognizeBytes decodes data and recognizes it.
func (r *Reader) RecognizeBytes(data []byte) (ParsedCard, error) {
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return ParsedCard{}, &Failure{Kind: LoadFailure, Err: err}
	}
	return r.Recognize(img)
}

// RecognizeFile opens path and recognizes it.
func (r *Reader) RecognizeFile(path string) (ParsedCard, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return ParsedCard{}, &Failure{Kind: LoadFailure, Reason: path, Err: err}
	}
	return r.Recognize(img)
}

// RecognizeContext bounds a whole RecognizeBytes call by ctx. The pipeline
// cannot be interrupted, so on cancellation the call keeps running in the
// background until the OCR engine returns; only the caller is released.
// An abandoned call keeps its concurrency slot until it finishes, so with
// WithConcurrency(n) at most n pipelines ever run and later callers wait
// for a slot or their own ctx.
func (r *Reader) RecognizeContext(ctx context.Context, data []byte) (ParsedCard, error) {
	if err := ctx.Err(); err != nil {
		return ParsedCard{}, err
	}
	if r.slots != nil {
		select {
		case r.slots <- struct{}{}:
		case <-ctx.Done():
			return ParsedCard{}, fmt.Errorf("recognize: waiting for a slot: %w", ctx.Err())
		}
	}
	type result struct {
		card ParsedCard
		err  error
	}
	done := make(chan result, 1)
	go func() {
		if r.slots != nil {
			defer func() { <-r.slots }()
		}
		c, err := r.RecognizeBytes(data)
		done <- result{c, err}
	}()
	select {
	case <-ctx.Done():
		return ParsedCard{}, fmt.Errorf("recognize: %w", ctx.Err())
	case res := <-done:
		return res.card, res.err
	}
}
