package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"elevation-marker/internal/batch"
	"elevation-marker/internal/config"
	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/leader"
	"elevation-marker/internal/matcher"
	"elevation-marker/internal/preview"
	"elevation-marker/internal/scene"
	"elevation-marker/internal/store"
)

var errFailures = errors.New("some markers could not be placed")

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Place markers for the selected elements in every printable section view",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requireScene(cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := placeOptions{
			all:       viper.GetBool("all"),
			noHistory: viper.GetBool("no-history"),
		}
		if !viper.GetBool("watch") {
			return runPlace(ctx, cfg, opts)
		}
		return watchScene(ctx, cfg.Scene, func() {
			if err := runPlace(ctx, cfg, opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		})
	},
}

func init() {
	f := placeCmd.Flags()
	f.String("direction", "", `local direction: "Left Face", "Right Face", "Front Face" or "Back Face"`)
	f.String("side", "", "leader side: left or right (default: right)")
	f.String("template", "", "template element id")
	f.String("face", "", "template face reference <element>:<solid>:<face>")
	f.StringSlice("select", nil, "element ids to place markers on, in order")
	f.Bool("all", false, "select every element in the scene")
	f.Bool("any-face", false, "fall back to the first referenceable face")
	f.Bool("reject-anti-aligned", false, "treat a best face pointing away from the direction as no match")
	f.String("preview", "", "write preview images in this format (webp or tga)")
	f.Bool("no-preview", false, "skip preview images")
	f.Bool("no-history", false, "do not record the run in the history database")
	f.Bool("watch", false, "re-run whenever the scene file changes")

	bindFlags(f, "direction", "side", "template", "face", "select", "all", "any-face",
		"reject-anti-aligned", "preview", "no-preview", "no-history", "watch")
}

type placeOptions struct {
	all       bool
	noHistory bool
}

func runPlace(ctx context.Context, cfg config.Config, opts placeOptions) error {
	doc, err := scene.Load(cfg.Scene)
	if err != nil {
		return err
	}
	side, err := leader.ParseSide(cfg.Side)
	if err != nil {
		return err
	}

	selection := cfg.Selection
	if opts.all {
		selection = nil
		for _, el := range doc.Elements() {
			selection = append(selection, el.ID)
		}
	}

	bcfg := batch.Config{
		Doc:             doc,
		Selection:       selection,
		Direction:       cfg.Direction,
		Side:            side,
		AnyFaceFallback: cfg.AnyFaceFallback,
		Policy:          matcher.Policy{RejectAntiAligned: cfg.RejectAntiAligned},
		Style:           cfg.Style,
		MatchLogPath:    cfg.MatchLog,
		Logger:          logger,
		Progress:        os.Stdout,
	}
	if cfg.TemplateElement != "" || cfg.TemplateFace != "" {
		bcfg.Template = &batch.TemplatePick{ElementID: cfg.TemplateElement, Face: cfg.TemplateFace}
	}

	fmt.Printf("Elevation markers: %s\n", doc.Name())
	fmt.Printf("Elements: %d, Output: %s\n", len(selection), cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	rep, err := batch.Run(ctx, bcfg)
	if err != nil {
		if batch.IsInputAbsent(err) {
			return errors.Wrap(err, "nothing placed")
		}
		return err
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Print(rep.Format(cfg.ReportLimit))
	fmt.Printf("Match log: %s\n", cfg.MatchLog)

	if cfg.SceneOutput != "" {
		if err := scene.Save(cfg.SceneOutput, doc); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: annotated scene not written: %v\n", err)
		} else {
			fmt.Printf("Annotated scene: %s\n", cfg.SceneOutput)
		}
	}

	if !opts.noHistory {
		if err := saveHistory(ctx, cfg, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history not recorded: %v\n", err)
		}
	}

	if cfg.Preview.Enabled {
		writePreviews(doc, rep, cfg)
	}

	if rep.Total() < len(rep.Results) {
		return errFailures
	}
	return nil
}

func saveHistory(ctx context.Context, cfg config.Config, rep *batch.Report) error {
	db, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveRun(ctx, cfg.Scene, rep)
}

// writePreviews renders one image per processed view. Failures are reported
// and do not affect the run.
func writePreviews(doc *scene.Scene, rep *batch.Report, cfg config.Config) {
	views := make(map[string]document.View)
	for _, v := range doc.Views() {
		views[v.ID] = v
	}
	byView := make(map[string][]preview.Marker)
	for _, a := range doc.Annotations() {
		ref, err := geom.ParseReference(a.Ref)
		if err != nil {
			continue
		}
		m := preview.Marker{Ref: ref, Anchor: a.Anchor}
		if a.Bend != nil && a.End != nil {
			m.Bend, m.End, m.HasLeader = *a.Bend, *a.End, true
		}
		byView[a.ViewID] = append(byView[a.ViewID], m)
	}

	opts := preview.Options{Size: cfg.Preview.Size, Supersample: cfg.Preview.Supersample}
	for _, vs := range rep.Views {
		img, err := preview.Render(doc, views[vs.ID], doc.Elements(), byView[vs.ID], opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preview %s: %v\n", vs.ID, err)
			continue
		}
		path, err := preview.WriteFile(cfg.PreviewDir(), vs.ID, img, cfg.Preview.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preview %s: %v\n", vs.ID, err)
			continue
		}
		fmt.Printf("Preview: %s\n", path)
	}
}

// watchScene runs fn once and then again after every write to path, until
// ctx is done. Bursts of events within the debounce window trigger one run.
func watchScene(ctx context.Context, path string, fn func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(absPath))
	}

	fn()
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", absPath)

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, _ := filepath.Abs(event.Name); p != absPath {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			logger.Info("scene changed, re-running", "scene", absPath)
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
