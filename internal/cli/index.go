package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdmorrow/docqa/internal/parser"
	"github.com/jdmorrow/docqa/internal/watcher"
)

var indexWatch bool

var indexCmd = &cobra.Command{
	Use:   "index [files or directories...]",
	Short: "Index documents into the vector store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := d.store.CreateCollection(ctx, cfg.Collection); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		files, dirs, err := expandPaths(args)
		if err != nil {
			return err
		}

		for _, path := range files {
			if err := indexFile(ctx, d, path); err != nil {
				log.Error("indexing failed", "path", path, "error", err)
			}
		}

		if !indexWatch {
			return nil
		}
		if len(dirs) == 0 {
			return fmt.Errorf("--watch requires at least one directory argument")
		}
		return watchAndIndex(ctx, d, dirs)
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep watching directories and re-index changed files")
	rootCmd.AddCommand(indexCmd)
}

// expandPaths splits arguments into indexable files and directories,
// collecting supported files from each directory.
func expandPaths(args []string) (files, dirs []string, err error) {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		dirs = append(dirs, arg)
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(arg, e.Name())
			if parser.IsSupportedExtension(path) {
				files = append(files, path)
			}
		}
	}
	return files, dirs, nil
}

func indexFile(ctx context.Context, d *deps, path string) error {
	p, err := parser.ForFile(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	result, err := d.indexer.IndexDocument(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %s: %d chunks (%d stored)\n", path, result.ChunksTotal, result.ChunksStored)
	return nil
}

func watchAndIndex(ctx context.Context, d *deps, dirs []string) error {
	w, err := watcher.New(0, log)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		events, err := w.Watch(ctx, dir)
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		go func(dir string) {
			for ev := range events {
				if ev.Op == watcher.OpRemoved {
					log.Info("file removed, leaving index entries in place", "path", ev.Path)
					continue
				}
				log.Info("change detected", "path", ev.Path, "op", ev.Op)
				if err := indexFile(ctx, d, ev.Path); err != nil {
					log.Error("re-indexing failed", "path", ev.Path, "error", err)
				}
			}
		}(dir)
	}

	log.Info("watching for changes", "dirs", dirs)
	<-ctx.Done()
	return nil
}
