package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"elevation-marker/internal/document"
	"elevation-marker/internal/matcher"
	"elevation-marker/internal/placement"
	"elevation-marker/internal/scene"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run the face matcher for one element in one view and print every score",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requireScene(cfg); err != nil {
			return err
		}
		elementID, _ := cmd.Flags().GetString("element")
		viewID, _ := cmd.Flags().GetString("view")
		token, _ := cmd.Flags().GetString("dir")
		if token == "" {
			token = cfg.Direction
		}

		doc, err := scene.Load(cfg.Scene)
		if err != nil {
			return err
		}
		el, ok := doc.Element(elementID)
		if !ok {
			return errors.Errorf("element %q not found", elementID)
		}
		v, ok := findView(doc, viewID)
		if !ok {
			return errors.Errorf("view %q not found", viewID)
		}
		dir, err := matcher.ParseDirection(token)
		if err != nil {
			return err
		}
		if err := doc.PrepareView(v); err != nil {
			logger.Warn("view not prepared", "view", v.ID, "error", err)
		}

		g, err := placement.Target{Doc: doc, Element: el, View: v}.Geometry()
		if err != nil {
			return err
		}
		log := matcher.NewLog()
		m := matcher.Matcher{Policy: matcher.Policy{RejectAntiAligned: cfg.RejectAntiAligned}}
		best, out := m.Match(log, matcher.Subject{
			ElementID: el.ID,
			ViewID:    v.ID,
			Geometry:  g,
			Transform: el.Transform,
		}, dir.Local)

		fmt.Printf("%s in %s, direction %s %v\n", el.ID, v.ID, dir.Token, dir.Local)
		for _, e := range out.Evaluations {
			mark := " "
			if best != nil && e.Index == best.Index {
				mark = "*"
			}
			fmt.Printf(" %s candidate %2d  alignment %+.4f\n", mark, e.Index, e.Alignment)
		}
		fmt.Printf("note: %s\n", out.Note)
		if best != nil {
			fmt.Printf("face: %s  anchor: %.3f\n", best.Ref, best.Sample.Point)
		}
		return nil
	},
}

func init() {
	f := inspectCmd.Flags()
	f.String("element", "", "element id")
	f.String("view", "", "view id (default: active view)")
	f.String("dir", "", "direction token (default: config direction)")
	_ = inspectCmd.MarkFlagRequired("element")
}

func findView(doc document.Document, id string) (document.View, bool) {
	if id == "" {
		return doc.ActiveView()
	}
	for _, v := range doc.Views() {
		if v.ID == id {
			return v, true
		}
	}
	return document.View{}, false
}
