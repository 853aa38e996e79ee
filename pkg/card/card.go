// Package card reads the status card of a trainer-card screenshot: it locates
// the card, counts the badges from pixel statistics, fuses several OCR passes
// and pulls the name, play time and registry count out of the noisy text.
package card

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Sentinel field values used when extraction fails.
const (
	UnknownName = "UNKNOWN"
	UnknownTime = "0:00"
	MaxBadges   = 8
	MaxPokedex  = 999
)

// Provenance tells where a Region came from.
type Provenance int

const (
	// WholeImage means no card was detected and the full image is used.
	WholeImage Provenance = iota
	// ColorSegmented regions come from the background hue mask.
	ColorSegmented
	// BrightnessSegmented regions come from the bright-card fallback for photos.
	BrightnessSegmented
)

func (p Provenance) String() string {
	switch p {
	case ColorSegmented:
		return "color"
	case BrightnessSegmented:
		return "brightness"
	default:
		return "whole-image"
	}
}

// Detected reports whether the region came from segmentation.
func (p Provenance) Detected() bool { return p != WholeImage }

// Region is an axis-aligned rectangle in image coordinates. Width and Height
// are always positive for regions produced by this package.
type Region struct {
	X, Y          int
	Width, Height int
	Source        Provenance
}

// RegionFromRect converts a rectangle into a Region.
func RegionFromRect(r image.Rectangle, src Provenance) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy(), Source: src}
}

// Whole returns the default region covering all of img.
func Whole(img image.Image) Region {
	return RegionFromRect(img.Bounds(), WholeImage)
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d (%s)", r.Width, r.Height, r.X, r.Y, r.Source)
}

// BadgeSlotMetrics aggregates the trimmed center of one badge slot.
type BadgeSlotMetrics struct {
	Slot             int
	Rect             image.Rectangle
	Empty            bool
	MeanSaturation   float64
	BrightnessStdDev float64
	MinBrightness    float64
	MeanBrightness   float64
}

// ParsedCard is a fully recovered card. It is only ever returned whole.
type ParsedCard struct {
	Name    string `json:"name"`
	Badges  int    `json:"badges"`
	Time    string `json:"time"`
	Pokedex int    `json:"pokedex"`
}

// PlayMinutes converts Time ("H:MM") to minutes; malformed values yield -1.
func (c ParsedCard) PlayMinutes() int {
	return PlayMinutes(c.Time)
}

// PlayMinutes converts an "H:MM" play time to minutes, or -1 when malformed.
func PlayMinutes(t string) int {
	h, m, ok := strings.Cut(t, ":")
	if !ok {
		return -1
	}
	hours, err1 := strconv.Atoi(h)
	mins, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hours < 0 || mins < 0 || mins >= 60 {
		return -1
	}
	return hours*60 + mins
}
