package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/krisalay/kiro"
	"github.com/krisalay/kiro/images"
	"github.com/krisalay/kiro/layout"
	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/metadata"
	"github.com/krisalay/kiro/scene"
	"github.com/krisalay/kiro/typeset"
)

// ================= FLAGS =================

type options struct {
	sheets  string
	image   string
	keyset  string
	layouts string

	text       string
	length     int
	layout     string
	start      int
	spaceAsGap bool

	gap      float64
	spaceGap float64
	axis     string
	guide    bool
	size     float64

	validate string
	strict   bool
	list     bool
	verbose  bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.sheets, "sheets", ".", "directory holding legend sheets and their .kiro.json files")
	flag.StringVar(&o.image, "image", "", "only pick keysets from this image (file name)")
	flag.StringVar(&o.keyset, "keyset", "", "keyset to typeset with (default: first in picker order)")
	flag.StringVar(&o.layouts, "layouts", "", "layouts.json to use instead of the built-in layouts")

	flag.StringVar(&o.text, "text", "", "string to typeset, [Name] for long glyph names")
	flag.IntVar(&o.length, "length", 0, "number of keys to array when -text is empty, negative walks backwards")
	flag.StringVar(&o.layout, "layout", layout.Native, "layout to follow with -length, "+layout.Native+" for keyset order")
	flag.IntVar(&o.start, "start", -1, "glyph index shown by the template keycap")
	flag.BoolVar(&o.spaceAsGap, "space-as-gap", false, "unbracketed spaces leave a gap")

	flag.Float64Var(&o.gap, "gap", 0, "gap between keycaps")
	flag.Float64Var(&o.spaceGap, "space-gap", 0, "extra gap for spaces")
	flag.StringVar(&o.axis, "axis", "+x", "placement axis: +x, +y, +z, -x, -y, -z")
	flag.BoolVar(&o.guide, "guide", false, "hang keycaps on a guide polyline")
	flag.Float64Var(&o.size, "size", 1, "template keycap size")

	flag.StringVar(&o.validate, "validate", "", "validate a .kiro.json file and exit")
	flag.BoolVar(&o.strict, "strict", false, "with -validate, reject unknown properties")
	flag.BoolVar(&o.list, "list", false, "list keysets and layouts and exit")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Parse()
	return o
}

// ================= MAIN =================

func main() {
	o := parseFlags()

	level := logger.LevelInfo
	if o.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(os.Stderr, level, "kiro")

	if o.validate != "" {
		os.Exit(validate(o.validate, o.strict, log))
	}

	cfg := kiro.NewConfig()
	cfg.LayoutsPath = o.layouts
	cfg.LogLevel = level
	k := kiro.New(cfg, images.Dir(o.sheets), log)

	if o.list {
		if err := list(k); err != nil {
			log.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	if err := run(k, o, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

// ================= VALIDATE =================

func validate(path string, strict bool, log *logger.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Error("%s: %v", path, err)
		return 1
	}

	loader := metadata.NewLoader(log.WithPrefix("metadata"))
	if _, err := loader.Validate(doc, path, strict); err != nil {
		log.Error("%v", err)
		return 1
	}
	fmt.Printf("%s: ok\n", path)
	return 0
}

// ================= LIST =================

func list(k *kiro.Kiro) error {
	picks, err := k.Keysets()
	if err != nil {
		return err
	}

	fmt.Println("KEYSETS")
	for i, p := range picks {
		fmt.Printf("  %2d  %-30s length=%d start=%d\n", i, p, p.Keyset.Length, p.Keyset.Start)
	}

	fmt.Println("LAYOUTS")
	fmt.Printf("  %s  (keyset order)\n", layout.Native)
	for _, name := range k.LayoutNames() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

// ================= TYPESET =================

func run(k *kiro.Kiro, o options, log *logger.Logger) error {
	p, err := choose(k, o.image, o.keyset)
	if err != nil {
		return err
	}
	log.Debug("typesetting with %s", p)

	s := scene.New()
	template := s.NewObject("Key", typeset.Splat(o.size), s.Root())
	if o.start >= 0 {
		template.SetGlyph(o.start)
	}

	po := kiro.PlaceOptions{
		Gap:        o.gap,
		SpaceGap:   o.spaceGap,
		Axis:       o.axis,
		Guide:      o.guide,
		SpaceAsGap: o.spaceAsGap,
	}

	var res typeset.Result
	if o.text != "" {
		res, err = k.StringKeys(s, template, s.Root(), p, o.text, po)
	} else {
		res, err = k.ArrayKeys(s, template, s.Root(), p, o.layout, o.length, po)
	}
	if err != nil {
		return err
	}
	if res.Outcome.Degraded {
		log.Warn("%s", res.Outcome)
	}

	views := make([]scene.View, 0, len(s.Objects()))
	for _, obj := range s.Objects() {
		views = append(views, obj.View())
	}
	out, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	log.Debug("cache %s", k.Stats())
	return nil
}

func choose(k *kiro.Kiro, image, keyset string) (kiro.Pick, error) {
	if keyset != "" {
		return k.FindKeyset(image, keyset)
	}

	picks, err := k.Keysets()
	if err != nil {
		return kiro.Pick{}, err
	}
	for _, p := range picks {
		if image == "" || p.Image == image {
			return p, nil
		}
	}
	return kiro.Pick{}, fmt.Errorf("no keysets found under the sheets directory")
}
