package content

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bitlatte/redefine/internal/schema"
)

// AssetPrefix is the URL path images referenced from content are published under.
const AssetPrefix = "/_astro/"

var imageFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"webp": true, "avif": true, "svg": true, "tiff": true,
}

// fileAssets resolves image references relative to one entry's directory.
// References starting with "/" point into the public directory and are
// served as-is.
type fileAssets struct {
	entryDir  string
	publicDir string
	collected map[string]Asset
}

func (a *fileAssets) ResolveImage(ref string) (schema.Image, error) {
	if strings.Contains(ref, "://") {
		return schema.Image{}, fmt.Errorf("remote image %q is not supported", ref)
	}

	public := strings.HasPrefix(ref, "/")
	var path string
	if public {
		if a.publicDir == "" {
			return schema.Image{}, fmt.Errorf("image %q points into the public directory, but none is configured", ref)
		}
		path = filepath.Join(a.publicDir, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	} else {
		path = filepath.Join(a.entryDir, filepath.FromSlash(ref))
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !imageFormats[format] {
		return schema.Image{}, fmt.Errorf("unsupported image format for %q", ref)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return schema.Image{}, fmt.Errorf("image %q not found", ref)
		}
		return schema.Image{}, fmt.Errorf("failed to read image %q: %w", ref, err)
	}

	img := schema.Image{Format: format}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(b)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	} else if format == "png" || format == "jpg" || format == "jpeg" || format == "gif" {
		return schema.Image{}, fmt.Errorf("failed to decode image %q: %w", ref, err)
	}

	if public {
		img.Src = ref
		return img, nil
	}

	sum := sha256.Sum256(b)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	img.Src = AssetPrefix + stem + "." + hex.EncodeToString(sum[:4]) + filepath.Ext(base)
	if a.collected != nil {
		a.collected[img.Src] = Asset{Src: img.Src, Path: path}
	}
	return img, nil
}
