// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is an embedded picture blob.
type Image struct {
	// PartName is the archive path of the media part, e.g. "ppt/media/image3.png".
	PartName string

	// Blob is the encoded image data.
	Blob []byte
}

// rasterExts are part extensions whose bytes must decode as the named format.
var rasterExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"bmp": true, "tif": true, "tiff": true, "webp": true,
}

// Ext returns the file extension for the image, derived from the encoded
// bytes: png, jpg, gif, bmp, tiff or webp. Vector and metafile parts (emf,
// wmf, svg, ...) that cannot be sniffed fall back to the part's own
// extension. A raster part whose bytes do not decode is an error.
func (img *Image) Ext() (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Blob))
	if err == nil {
		return normalizeExt(format), nil
	}

	partExt := strings.ToLower(strings.TrimPrefix(path.Ext(img.PartName), "."))
	if partExt == "" || rasterExts[partExt] {
		return "", fmt.Errorf("unrecognized image data in %s: %w", img.PartName, err)
	}
	return normalizeExt(partExt), nil
}

func normalizeExt(ext string) string {
	switch ext {
	case "jpeg":
		return "jpg"
	case "tif":
		return "tiff"
	}
	return ext
}
