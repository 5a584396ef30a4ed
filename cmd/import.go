package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/inkframe/inkframe/internal/store"
)

var importFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "data-dir",
		Usage:  "database and settings `DIR`",
		EnvVar: "INKFRAME_DATA",
	},
	cli.StringFlag{
		Name:   "photo-dir",
		Usage:  "photo library `DIR`",
		EnvVar: "INKFRAME_PHOTOS",
	},
}

// photoExts are the file types the importer picks up from directories.
var photoExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// importPhotos copies local files into the library and registers them in
// the photo database. It works directly on the data directory, daemon
// running or not.
func importPhotos(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return errors.New("no files or directories provided")
	}

	dataDir := ctx.String("data-dir")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	photoDir := ctx.String("photo-dir")
	if photoDir == "" {
		photoDir = filepath.Join(dataDir, "photos")
	}

	sources, err := collectSources(ctx.Args())
	if err != nil {
		return printRuntimeErr("import", err)
	}
	if len(sources) == 0 {
		return errors.New("no photos found in the given paths")
	}

	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		return printRuntimeErr("import", err)
	}
	st, err := store.Open(filepath.Join(dataDir, "photos.db"))
	if err != nil {
		return printRuntimeErr("import", err)
	}
	defer st.Close()

	p := mpb.New(mpb.WithWidth(48))
	bar := p.New(int64(len(sources)),
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name("Importing", decor.WC{W: 10, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)

	var imported int
	for _, src := range sources {
		if err := importOne(st, photoDir, src); err != nil {
			fmt.Fprintf(os.Stderr, "inkframe import: %s: %v\n", src, err)
		} else {
			imported++
		}
		bar.Increment()
	}
	p.Wait()

	fmt.Printf("Imported %d of %d photos.\n", imported, len(sources))
	if imported < len(sources) {
		return cli.NewExitError("", 1)
	}
	return nil
}

// collectSources expands the arguments into a flat list of photo files.
func collectSources(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := photoExts[strings.ToLower(filepath.Ext(path))]; ok {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func importOne(st *store.Store, photoDir, src string) error {
	ext := strings.ToLower(filepath.Ext(src))
	mime, ok := photoExts[ext]
	if !ok {
		return fmt.Errorf("unsupported file type %q", ext)
	}

	name := uuid.New().String() + ext
	dest := filepath.Join(photoDir, name)
	size, err := copyFile(dest, src)
	if err != nil {
		return err
	}

	if _, err := st.Add(store.Photo{
		Filename:      name,
		OriginalPath:  dest,
		DisplayPath:   dest,
		ThumbnailPath: dest,
		FileSize:      size,
		MimeType:      mime,
		UploadedAt:    time.Now().Format(time.RFC3339),
	}); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

func copyFile(dest, src string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}
	return size, nil
}
