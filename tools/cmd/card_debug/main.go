// Command card_debug prints everything the recognizer sees for one image:
// the located region, each OCR pass, the badge slot scores and the verdict.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"trainercard/pkg/card"
	"trainercard/pkg/config"
	"trainercard/pkg/imgproc"
	"trainercard/pkg/logging"
	"trainercard/pkg/ocr"
)

func main() {
	imgPath := flag.String("img", "", "screenshot to inspect")
	dump := flag.String("dump", "", "write the region, badge strip and OCR variants as PNGs into this directory")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()
	if *imgPath == "" && flag.NArg() > 0 {
		*imgPath = flag.Arg(0)
	}
	if *imgPath == "" {
		fmt.Println("usage: card_debug [--dump dir] [--verbose] <image>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	logging.Setup(level, true)

	f, err := os.Open(*imgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open image")
	}
	img, err := card.Decode(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("decode image")
	}
	img = imaging.Clone(img)

	engine := ocr.NewTesseract(cfg.TesseractLanguages()...).WithWhitelist(cfg.TesseractWhitelist)
	fmt.Printf("image %s %dx%d (imgproc=%s tesseract=%s)\n", *imgPath, img.Bounds().Dx(), img.Bounds().Dy(), imgproc.Backend, ocr.Version())

	parsed, tr, err := card.NewReader(engine).Trace(img)
	fmt.Printf("region %s aspect=%.2f\n", tr.Region, tr.Region.AspectRatio())

	crop := imaging.Crop(img, tr.Region.Rect())
	fmt.Println("ocr passes:")
	for _, p := range ocr.RunPasses(engine, crop) {
		if p.Err != nil {
			fmt.Printf("  %-9s error: %v\n", p.Variant, p.Err)
			continue
		}
		fmt.Printf("  %-9s %q\n", p.Variant, ocr.Snippet(p.Text, 160))
	}
	fmt.Printf("header=%v labels=%v\n", card.HasHeader(tr.Text), card.FieldLabels(tr.Text))

	if tr.Text != "" {
		fmt.Printf("name=%q (%s) time=%q (%s) pokedex=%d (%s)\n",
			tr.Fields.Name, tr.Fields.NameRule, tr.Fields.Time, tr.Fields.TimeRule, tr.Fields.Pokedex, tr.Fields.PokedexRule)
	}
	if len(tr.Badges.Slots) > 0 {
		fmt.Printf("badge strip %v (refined region %s)\n", tr.Badges.Strip, tr.Badges.Region)
		for i, m := range tr.Badges.Slots {
			fmt.Printf("  slot %d %v empty=%v sat=%.1f std=%.1f min=%.1f mean=%.1f score=%d\n",
				m.Slot, m.Rect, m.Empty, m.MeanSaturation, m.BrightnessStdDev, m.MinBrightness, m.MeanBrightness, tr.Badges.Scores[i])
		}
		fmt.Printf("badges=%d\n", tr.Badges.Count)
	}

	if err != nil {
		fmt.Printf("verdict: %v (kind=%s)\n", err, card.KindOf(err))
	} else {
		fmt.Printf("verdict: name=%s badges=%d time=%s pokedex=%d\n", parsed.Name, parsed.Badges, parsed.Time, parsed.Pokedex)
	}

	if *dump != "" {
		if err := dumpImages(*dump, img, crop, tr); err != nil {
			log.Fatal().Err(err).Msg("dump images")
		}
		fmt.Printf("images written to %s\n", *dump)
	}
}

func dumpImages(dir string, img, crop image.Image, tr card.Trace) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := imaging.Save(crop, filepath.Join(dir, "region.png")); err != nil {
		return err
	}
	if !tr.Badges.Strip.Empty() {
		if err := imaging.Save(imaging.Crop(img, tr.Badges.Strip), filepath.Join(dir, "badges.png")); err != nil {
			return err
		}
	}
	gray := imgproc.Gray(crop)
	for _, v := range ocr.Variants() {
		prepared := imgproc.Upscale(v.Prepare(gray), ocr.UpscaleFactor)
		if err := imaging.Save(prepared, filepath.Join(dir, "variant-"+v.Name+".png")); err != nil {
			return err
		}
	}
	return nil
}
