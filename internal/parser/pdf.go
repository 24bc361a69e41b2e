package parser

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFReader handles PDF files. Text comes from the Go library first,
// then from pdftotext if enabled and available.
type PDFReader struct {
	FallbackPdftotext bool
}

// Text returns the text of every non-empty page joined by newlines.
func (p *PDFReader) Text(ctx context.Context, src string) (string, error) {
	text, err := extractPDFText(src)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(ctx, src)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return text, nil
}

func extractPDFText(src string) (text string, err error) {
	defer guard("pdf text", &err)

	f, reader, err := pdflib.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func extractPdftotext(ctx context.Context, src string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", src, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// Images writes each page's raster images as page_<N>_img_<M>.<ext>,
// numbering from 1 in object order within a page.
func (p *PDFReader) Images(ctx context.Context, src, outDir string) (images []Image, err error) {
	defer guard("pdf images", &err)

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return images, err
		}
		pageImages, err := pdfcpu.ExtractPageImages(pctx, pageNr, false)
		if err != nil {
			return images, fmt.Errorf("pdf images page %d: %w", pageNr, err)
		}
		for i, objNr := range slices.Sorted(maps.Keys(pageImages)) {
			img := pageImages[objNr]
			ext := img.FileType
			if ext == "" {
				ext = "png"
			}
			dst := filepath.Join(outDir, fmt.Sprintf("page_%d_img_%d.%s", pageNr, i+1, ext))
			if err := writeImage(dst, img); err != nil {
				return images, err
			}
			w, h := pdfImageSize(pctx, objNr, img)
			images = append(images, Image{Path: dst, Page: intPtr(pageNr), Width: w, Height: h})
		}
	}
	return images, nil
}

// pdfImageSize returns an image's pixel size. Extraction leaves the
// decoded image's size unset, so the image dictionary is consulted.
// Unknown or non-positive values are nil.
func pdfImageSize(pctx *model.Context, objNr int, img model.Image) (width, height *int) {
	w, h := img.Width, img.Height
	if (w <= 0 || h <= 0) && pctx.Optimize != nil {
		if obj := pctx.Optimize.ImageObjects[objNr]; obj != nil && obj.ImageDict != nil {
			if v := obj.ImageDict.IntEntry("Width"); v != nil {
				w = *v
			}
			if v := obj.ImageDict.IntEntry("Height"); v != nil {
				h = *v
			}
		}
	}
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	return intPtr(w), intPtr(h)
}
