package parser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// writeTextPDF writes a PDF with one page per entry; an empty entry is a
// page without a content stream.
func writeTextPDF(t *testing.T, path string, pages ...string) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) int {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
		return len(offsets)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	// Pages is rewritten below once the kids are known; reserve its slot.
	pagesAt := len(offsets)
	offsets = append(offsets, 0)
	font := obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var kids []int
	for _, text := range pages {
		contents := ""
		if text != "" {
			stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
			n := obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
			contents = fmt.Sprintf(" /Contents %d 0 R", n)
		}
		kids = append(kids, obj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >>%s >>",
			font, contents)))
	}
	kidRefs := ""
	for _, k := range kids {
		kidRefs += fmt.Sprintf("%d 0 R ", k)
	}
	offsets[pagesAt] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kidRefs, len(kids))

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pngOf(t *testing.T, w, h int) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 3), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

// writeImagePDF writes a PDF with one imported image per page.
func writeImagePDF(t *testing.T, path string, sizes ...[2]int) {
	t.Helper()
	var imgs []io.Reader
	for _, s := range sizes {
		imgs = append(imgs, pngOf(t, s[0], s[1]))
	}
	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, imgs, nil, nil); err != nil {
		t.Fatalf("build image pdf: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPDFReader_TextSkipsEmptyPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dep4.pdf")
	writeTextPDF(t, path, "first page", "", "third page")

	text, err := (&PDFReader{}).Text(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "first page\nthird page"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestPDFReader_Images(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dep5.pdf")
	writeImagePDF(t, path, [2]int{40, 20}, [2]int{30, 60})
	out := filepath.Join(dir, "out")

	images, err := (&PDFReader{}).Images(context.Background(), path, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		name       string
		page, w, h int
	}{
		{"page_1_img_1.png", 1, 40, 20},
		{"page_2_img_1.png", 2, 30, 60},
	}
	if len(images) != len(want) {
		t.Fatalf("expected %d images, got %+v", len(want), images)
	}
	for i, w := range want {
		img := images[i]
		if img.Path != filepath.Join(out, w.name) {
			t.Errorf("image %d: expected %q, got %q", i, filepath.Join(out, w.name), img.Path)
		}
		if img.Page == nil || *img.Page != w.page {
			t.Errorf("image %d: expected page %d, got %v", i, w.page, img.Page)
		}
		if img.Width == nil || img.Height == nil || *img.Width != w.w || *img.Height != w.h {
			t.Errorf("image %d: expected %dx%d, got %v x %v", i, w.w, w.h, img.Width, img.Height)
		}
		if st, err := os.Stat(img.Path); err != nil || st.Size() == 0 {
			t.Errorf("image %d: expected file written, got %v", i, err)
		}
	}
}
