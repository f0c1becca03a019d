// Package ingest turns user-selected image files into storage-ready inline
// payloads: decode, downscale oversized images, re-encode, and emit a
// self-contained data URL plus a BlurHash placeholder per image.
package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"sync"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
)

// Defaults for the pipeline configuration.
const (
	DefaultMaxWidth    = 1024
	DefaultJPEGQuality = 82
	defaultConcurrency = 4
)

// File is one user-selected input.
type File struct {
	Name string
	Data []byte
}

// Result aggregates a batch: successfully produced payloads in input order,
// plus success and failure counts. Failed files leave no gap marker, they
// are simply absent.
type Result struct {
	Images    []domain.Image
	Processed int
	Failed    int
}

// Config tunes the pipeline.
type Config struct {
	// MaxWidth is the width above which images are downscaled,
	// preserving aspect ratio.
	MaxWidth int
	// JPEGQuality is the fixed re-encode quality factor.
	JPEGQuality int
	// Concurrency bounds the number of files processed at once.
	Concurrency int
}

// Pipeline converts image files into inline payloads.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// NewPipeline creates a pipeline, applying defaults for zero config fields.
func NewPipeline(cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// IngestBatch processes a batch of files. Every file must sniff as an image
// before any processing starts; a batch containing a non-image file is
// rejected whole with a validation error. After that, files are independent:
// one file's decode failure increments the failure count and the rest
// continue. Successful payloads keep input order.
func (p *Pipeline) IngestBatch(ctx context.Context, files []File) (*Result, error) {
	if len(files) == 0 {
		return &Result{}, nil
	}

	// Whole-batch precondition: reject non-image files up front.
	for _, f := range files {
		if _, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err != nil {
			return nil, errors.Validationf("%q is not an image file", f.Name).WithCause(err)
		}
	}

	payloads := make([]*domain.Image, len(files))
	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := p.processOne(f)
			if err != nil {
				p.logger.Warn("image ingest failed", "file", f.Name, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil // per-file failures never abort the batch
			}
			payloads[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Failed: failed}
	for _, img := range payloads {
		if img != nil {
			result.Images = append(result.Images, *img)
			result.Processed++
		}
	}
	p.logger.Info("ingested image batch",
		"total", len(files),
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return result, nil
}

// processOne runs decode, downscale, and re-encode for a single file.
func (p *Pipeline) processOne(f File) (*domain.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", f.Name, err)
	}

	if img.Bounds().Dx() > p.cfg.MaxWidth {
		img = downscale(img, p.cfg.MaxWidth)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode %q: %w", f.Name, err)
	}

	hash, err := blurhash.Encode(4, 3, img)
	if err != nil {
		// A missing placeholder is cosmetic; keep the payload.
		p.logger.Debug("blurhash failed", "file", f.Name, "format", format, "error", err)
		hash = ""
	}

	return &domain.Image{
		URL:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		BlurHash: hash,
	}, nil
}

// downscale resizes to maxWidth preserving aspect ratio.
func downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	dstW := maxWidth
	dstH := (srcH * maxWidth) / srcW
	if dstH < 1 {
		dstH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
