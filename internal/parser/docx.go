package parser

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
)

const docxMediaPrefix = "word/media/"

// DOCXReader handles .docx files.
type DOCXReader struct{}

// Text returns the trimmed, non-empty body paragraphs joined by newlines.
func (r *DOCXReader) Text(ctx context.Context, src string) (text string, err error) {
	defer guard("docx text", &err)

	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx: %w", err)
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if t := docxParagraphText(para); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Images copies every word/media entry of the package into outDir under
// its own base name.
func (r *DOCXReader) Images(ctx context.Context, src, outDir string) (images []Image, err error) {
	defer guard("docx images", &err)

	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open docx package: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, docxMediaPrefix) || f.FileInfo().IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return images, err
		}
		base := path.Base(f.Name)
		if base == "." || base == "/" || base == ".." {
			continue
		}
		dst := filepath.Join(outDir, base)
		if err := writeZipEntry(f, dst); err != nil {
			return images, err
		}
		images = append(images, Image{Path: dst})
	}
	return images, nil
}

func writeZipEntry(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return writeImage(dst, rc)
}

func writeImage(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write image %s: %w", dst, err)
	}
	return out.Close()
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
