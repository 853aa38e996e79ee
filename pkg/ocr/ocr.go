package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Engine turns an image into a best-effort transcription. Implementations
// must be safe for concurrent use.
type Engine interface {
	Text(img image.Image) (string, error)
}

// EngineFunc adapts a plain function to Engine.
type EngineFunc func(img image.Image) (string, error)

func (f EngineFunc) Text(img image.Image) (string, error) { return f(img) }

// Tesseract reads images with a fresh gosseract client per call, so one
// value can be shared between goroutines.
type Tesseract struct {
	Languages []string
	Whitelist string
	PSM       gosseract.PageSegMode
}

// NewTesseract returns an engine configured for a single uniform block of text.
func NewTesseract(langs ...string) *Tesseract {
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Tesseract{Languages: langs, PSM: gosseract.PSM_SINGLE_BLOCK}
}

// WithWhitelist limits recognition to chars; empty means no limit.
func (t *Tesseract) WithWhitelist(chars string) *Tesseract {
	t.Whitelist = chars
	return t
}

func (t *Tesseract) Text(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(t.PSM); err != nil {
		return "", fmt.Errorf("set psm: %w", err)
	}
	if t.Whitelist != "" {
		if err := client.SetWhitelist(t.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	return client.Text()
}

// Version reports the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
