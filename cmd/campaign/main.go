package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"campaignkit/internal/assets"
	"campaignkit/internal/bootstrap"
	"campaignkit/internal/campaign"
	"campaignkit/internal/content"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
	"campaignkit/internal/presets"
	"campaignkit/internal/storage"
)

const cliWorkspace = "cli"

func main() {
	infra.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "campaign:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	outFlag := &cli.StringFlag{Name: "out", Value: "./output", Usage: "directory for generated files"}
	referenceFlag := &cli.StringFlag{Name: "reference", Usage: "path to a reference image"}
	waitFlag := &cli.DurationFlag{Name: "wait", Value: 3 * time.Minute, Usage: "how long to wait for the batch to settle"}

	return &cli.App{
		Name:  "campaign",
		Usage: "generate marketing kits and image batches from the command line",
		Commands: []*cli.Command{
			{
				Name:   "catalog",
				Usage:  "list content categories",
				Action: runCatalog,
			},
			{
				Name:  "content",
				Usage: "generate the content kit for a product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Usage: "product photo path"},
					&cli.StringFlag{Name: "url", Usage: "product page url"},
					&cli.StringFlag{Name: "name", Usage: "product name"},
					&cli.StringFlag{Name: "description", Usage: "product description"},
					&cli.StringFlag{Name: "category", Usage: "product category"},
					&cli.StringFlag{Name: "audience", Usage: "target audience"},
					&cli.StringFlag{Name: "price", Usage: "price as shown to buyers"},
					&cli.StringSliceFlag{Name: "differential", Usage: "selling point (repeatable)"},
					&cli.StringFlag{Name: "locale", Usage: "output language tag"},
					outFlag,
				},
				Action: runContent,
			},
			{
				Name:  "assets",
				Usage: "generate a free-form image batch",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt", Required: true},
					&cli.IntFlag{Name: "count", Value: 4},
					&cli.StringFlag{Name: "aspect", Value: string(domain.DefaultAspectRatio)},
					&cli.StringFlag{Name: "field", Value: campaign.DefaultField},
					referenceFlag,
					waitFlag,
					outFlag,
				},
				Action: runAssets,
			},
			{
				Name:      "preset",
				Usage:     "generate a batch for a named preset",
				ArgsUsage: "<logo|banner|app_icon|wallpaper|product_media>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt"},
					&cli.StringFlag{Name: "style"},
					&cli.StringFlag{Name: "media", Usage: "product media kind"},
					&cli.IntFlag{Name: "count"},
					referenceFlag,
					waitFlag,
					outFlag,
				},
				Action: runPreset,
			},
		},
	}
}

type env struct {
	svc   *campaign.Service
	store *storage.FileStore
	log   infra.Logger
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	svc, err := bootstrap.NewService(c.Context, cfg, &logger)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(c.String("out"))
	if err != nil {
		return nil, err
	}
	return &env{svc: svc, store: store, log: logger}, nil
}

func runCatalog(c *cli.Context) error {
	for _, cat := range content.Categories() {
		fmt.Fprintf(c.App.Writer, "%-24s %-14s %2d  %s\n", cat.ID, cat.Shape, cat.Count, cat.Title)
	}
	return nil
}

func runContent(c *cli.Context) error {
	src, err := signalFromFlags(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	res, err := e.svc.RequestContent(c.Context, cliWorkspace, src)
	if err != nil {
		return err
	}
	key, err := e.store.WriteJSON(c.Context, res.RequestID+"/content.json", res)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d items from %s written to %s\n", res.Content.Total(), res.Provider, filepath.Join(e.store.BasePath(), key))
	return nil
}

func runAssets(c *cli.Context) error {
	ratio, ok := domain.ParseAspectRatio(c.String("aspect"))
	if !ok {
		return fmt.Errorf("%w: unsupported aspect ratio %q", domain.ErrInvalidInput, c.String("aspect"))
	}
	ref, err := readImage(c.String("reference"))
	if err != nil {
		return err
	}
	job := domain.GenerationJob{Prompt: c.String("prompt"), Count: c.Int("count"), AspectRatio: ratio, ReferenceImage: ref}
	e, err := setup(c)
	if err != nil {
		return err
	}
	b, err := e.svc.RequestAssetBatch(c.Context, cliWorkspace, c.String("field"), job)
	if err != nil {
		return err
	}
	return e.export(c, b)
}

func runPreset(c *cli.Context) error {
	kind, ok := presets.ParseKind(c.Args().First())
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidInput, c.Args().First())
	}
	if kind == presets.KindNotification {
		return fmt.Errorf("%w: notification mockups are only available over HTTP", domain.ErrInvalidInput)
	}
	ref, err := readImage(c.String("reference"))
	if err != nil {
		return err
	}
	req := presets.Request{
		Kind:      kind,
		Prompt:    c.String("prompt"),
		Style:     c.String("style"),
		Media:     presets.MediaKind(c.String("media")),
		Count:     c.Int("count"),
		Reference: ref,
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	b, err := e.svc.RequestPreset(c.Context, cliWorkspace, req)
	if err != nil {
		return err
	}
	return e.export(c, b)
}

// export waits for b to settle and stores its images and snapshot.
func (e *env) export(c *cli.Context, b *assets.Batch) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait"))
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		return fmt.Errorf("batch %s did not settle: %w", b.ID(), err)
	}
	snap := b.Snapshot()
	keys, err := e.store.SaveSnapshot(c.Context, b.ID(), snap)
	if err != nil {
		return err
	}
	if _, err := e.store.WriteJSON(c.Context, b.ID()+"/batch.json", snap); err != nil {
		return err
	}
	for _, slot := range snap.Slots {
		if slot.State == assets.SlotError {
			e.log.Warn().Int("slot", slot.Index).Str("error", slot.Error).Msg("campaign: slot failed")
		}
	}
	fmt.Fprintf(c.App.Writer, "%d/%d images written to %s\n", len(keys), len(snap.Slots), filepath.Join(e.store.BasePath(), b.ID()))
	return nil
}

func signalFromFlags(c *cli.Context) (domain.SourceSignal, error) {
	src := domain.SourceSignal{Locale: c.String("locale")}
	switch {
	case c.String("image") != "":
		img, err := readImage(c.String("image"))
		if err != nil {
			return domain.SourceSignal{}, err
		}
		src.Kind, src.Image = domain.SourceImage, img
	case c.String("url") != "":
		src.Kind, src.URL = domain.SourceURL, c.String("url")
	default:
		src.Kind = domain.SourceManual
		src.Product = domain.ManualProduct{
			Name:          c.String("name"),
			Category:      c.String("category"),
			Description:   c.String("description"),
			Audience:      c.String("audience"),
			Price:         c.String("price"),
			Differentials: c.StringSlice("differential"),
		}
	}
	return src, src.Validate()
}

// readImage loads path and sniffs its MIME type. An empty path yields nil.
func readImage(path string) (*domain.InlineImage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image (%s)", domain.ErrInvalidInput, path, mime)
	}
	return &domain.InlineImage{Data: data, MIMEType: mime}, nil
}
