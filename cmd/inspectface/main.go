package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/matcher"
	"elevation-marker/internal/mathutil"
	"elevation-marker/internal/scene"
)

func main() {
	scenePath := flag.String("scene", "", "Path to scene YAML")
	elementID := flag.String("element", "", "Element id")
	viewID := flag.String("view", "", "View id (default: active view)")
	flag.Parse()

	if *scenePath == "" || *elementID == "" {
		fmt.Fprintln(os.Stderr, "usage: inspectface -scene FILE -element ID [-view ID]")
		os.Exit(2)
	}

	doc, err := scene.Load(*scenePath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	el, ok := doc.Element(*elementID)
	if !ok {
		fmt.Printf("Error: element %q not found\n", *elementID)
		os.Exit(1)
	}

	v, ok := doc.ActiveView()
	if *viewID != "" {
		ok = false
		for _, cand := range doc.Views() {
			if cand.ID == *viewID {
				v, ok = cand, true
			}
		}
	}
	if !ok {
		fmt.Println("Error: no view")
		os.Exit(1)
	}

	g, err := doc.Geometry(el, document.OptionsFor(v))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	inv, err := el.Transform.Inverse()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Element %s (%s) in view %s\n", el.ID, el.Family, v.ID)
	fmt.Printf("  Origin: %.3f\n", el.Transform.T)
	fmt.Printf("  Axes:   x %+.3f  y %+.3f  z %+.3f\n",
		el.Transform.BasisX(), el.Transform.BasisY(), el.Transform.BasisZ())
	if g.Empty() {
		fmt.Println("  No geometry")
		return
	}

	dirs := matcher.Directions()
	for si, solid := range g.Solids {
		fmt.Printf("  Solid[%d]: volume=%.4f, faces=%d\n", si, solid.Volume, len(solid.Faces))
		if math.Abs(solid.Volume) < mathutil.Epsilon {
			fmt.Println("    skipped: zero volume")
			continue
		}
		for fi, f := range solid.Faces {
			ref := "(no reference)"
			if f.Ref != nil {
				ref = f.Ref.String()
			}
			s, ok := geom.SampleSurface(f.Surface)
			if !ok {
				fmt.Printf("    Face[%d] %s: not sampleable\n", fi, ref)
				continue
			}
			local := inv.ApplyVector(s.Normal).Normalize()
			fmt.Printf("    Face[%d] %s\n", fi, ref)
			fmt.Printf("      Point:  (%.3f, %.3f, %.3f)\n", s.Point[0], s.Point[1], s.Point[2])
			fmt.Printf("      Normal: world (%+.3f, %+.3f, %+.3f) local (%+.3f, %+.3f, %+.3f)\n",
				s.Normal[0], s.Normal[1], s.Normal[2], local[0], local[1], local[2])
			fmt.Print("      Scores:")
			for _, d := range dirs {
				fmt.Printf(" %s=%+.3f", d.Token, local.Dot(d.Local))
			}
			fmt.Println()
		}
	}
}
