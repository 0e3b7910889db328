// Command render exports a canvas document or an SVG file to PNG or SVG.
//
//	render -in drawing.json -out drawing.png -multiplier 2
//	render -in logo.svg -out logo.png -watch
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inamate/inamate/canvas-go/internal/asset"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/export"
	"github.com/inamate/inamate/canvas-go/internal/svgimport"
)

// Editors save in several writes; wait for them to settle.
const debounce = 150 * time.Millisecond

type job struct {
	in, out    string
	engine     string
	assets     string
	format     export.Format
	multiplier float64
	renderer   *export.Renderer
	logger     *slog.Logger
}

func main() {
	var (
		in         = flag.String("in", "", "input document (.json or .svg)")
		out        = flag.String("out", "", "output file (.png or .svg)")
		format     = flag.String("format", "", "output format, png or svg (default from -out)")
		multiplier = flag.Float64("multiplier", 1, "pixel multiplier for png output")
		assets     = flag.String("assets", ".", "directory images are resolved against")
		engine     = flag.String("engine", "", "engine tuning file (TOML)")
		watch      = flag.Bool("watch", false, "render again whenever the input changes")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}
	f := export.Format(strings.ToLower(*format))
	if f == "" {
		f = export.Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(*out)), "."))
	}

	j := &job{
		in:         *in,
		out:        *out,
		engine:     *engine,
		assets:     *assets,
		format:     f,
		multiplier: *multiplier,
		logger:     logger,
	}
	if err := j.loadEngine(); err != nil {
		logger.Error("load engine config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := j.run(ctx); err != nil {
		logger.Error("render", "in", j.in, "error", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if *watch {
		if err := j.watch(ctx); err != nil {
			logger.Error("watch", "error", err)
			os.Exit(1)
		}
	}
}

// loadEngine reads the tuning file and replaces the renderer.
func (j *job) loadEngine() error {
	cfg, err := config.LoadEngine(j.engine)
	if err != nil {
		return err
	}
	j.renderer = export.NewRenderer(cfg, asset.NewLoader(j.assets), j.logger)
	return nil
}

// run renders the input once. The output is written through a temporary
// file so a failed render leaves the previous output in place.
func (j *job) run(ctx context.Context) error {
	data, err := readDocument(j.in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	start := time.Now()
	if err := j.renderer.Render(ctx, data, &buf, export.Options{Format: j.format, Multiplier: j.multiplier}); err != nil {
		return err
	}

	tmp := j.out + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp, j.out); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write output: %w", err)
	}
	j.logger.Info("rendered", "out", j.out, "format", j.format, "bytes", buf.Len(), "took", time.Since(start).Round(time.Millisecond))
	return nil
}

// readDocument returns the canvas JSON for path, converting SVG input.
func readDocument(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(path), ".svg") {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(file); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return buf.Bytes(), nil
	}

	doc, err := svgimport.ParseDocument(file)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return doc.Marshal()
}

// watch renders again after each change to the input or the engine file
// until ctx is done. Directories are watched rather than files, since
// editors often save by replacing the file.
func (j *job) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	input, err := j.watchFile(w, j.in)
	if err != nil {
		return err
	}
	var engine string
	if j.engine != "" {
		if engine, err = j.watchFile(w, j.engine); err != nil {
			return err
		}
	}
	j.logger.Info("watching", "in", j.in, "engine", j.engine)
	reload := false

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if name != input && name != engine || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			j.logger.Debug("file changed", "name", name, "op", event.Op.String())
			reload = reload || name == engine
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(debounce)
				continue
			}
			j.logger.Warn("watcher error", "error", err)
		case <-timer.C:
			if reload {
				reload = false
				if err := j.loadEngine(); err != nil {
					j.logger.Error("reload engine config", "error", err)
					continue
				}
			}
			if err := j.run(ctx); err != nil {
				j.logger.Error("render", "in", j.in, "error", err)
			}
		}
	}
}

// watchFile adds the directory of path to w and returns the cleaned
// absolute path events will carry.
func (j *job) watchFile(w *fsnotify.Watcher, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return "", fmt.Errorf("watch %s: %w", path, err)
	}
	return abs, nil
}
