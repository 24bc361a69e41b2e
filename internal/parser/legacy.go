package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrConverterUnavailable is returned when the conversion tool is not
// installed.
var ErrConverterUnavailable = errors.New("converter unavailable")

// Converter turns a legacy binary document into a .docx file and returns
// the new file's path.
type Converter interface {
	Convert(ctx context.Context, src string) (string, error)
}

// SofficeConverter converts with a headless office suite. The converted
// file is placed next to the source.
type SofficeConverter struct {
	Bin string
	// Timeout bounds one conversion. Zero means unbounded.
	Timeout time.Duration
}

func (c *SofficeConverter) bin() string {
	if c.Bin == "" {
		return "soffice"
	}
	return c.Bin
}

// Available reports whether the converter binary can be found.
func (c *SofficeConverter) Available() bool {
	_, err := exec.LookPath(c.bin())
	return err == nil
}

func (c *SofficeConverter) Convert(ctx context.Context, src string) (string, error) {
	bin, err := exec.LookPath(c.bin())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrConverterUnavailable, c.bin())
	}

	tmp, err := os.MkdirTemp("", "docgloss-convert-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "docx", "--outdir", tmp, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("convert %s: %w: %s", src, err, strings.TrimSpace(string(out)))
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	converted := filepath.Join(tmp, stem+".docx")
	if _, err := os.Stat(converted); err != nil {
		return "", fmt.Errorf("convert %s: no output produced", src)
	}

	dst := filepath.Join(filepath.Dir(src), stem+".docx")
	if err := moveFile(converted, dst); err != nil {
		return "", fmt.Errorf("move converted file: %w", err)
	}
	return dst, nil
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
