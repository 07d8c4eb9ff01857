package loaders

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

// TextureLoader decodes PNG, JPEG, GIF, BMP, TIFF and WebP files into
// RGBA8 pixels.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	typedParams, ok := params.(*metadata.ImageResourceParams)
	if !ok || typedParams == nil {
		typedParams = &metadata.ImageResourceParams{}
	}

	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image %s has no pixels", path)
	}

	width, height := fitDimensions(uint32(bounds.Dx()), uint32(bounds.Dy()), typedParams.MaxDimension)
	rgba := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	if int(width) == bounds.Dx() && int(height) == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		core.LogDebug("scaling %s from %dx%d to %dx%d", path, bounds.Dx(), bounds.Dy(), width, height)
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}
	if typedParams.FlipY {
		flipRows(rgba.Pix, rgba.Stride, int(height))
	}

	data := &metadata.ImageResourceData{
		ChannelCount:    4,
		Width:           width,
		Height:          height,
		HasTransparency: !rgba.Opaque(),
		Pixels:          rgba.Pix,
	}
	core.LogDebug("loaded %s image %s (%dx%d)", format, path, width, height)

	return &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return fmt.Errorf("unload of nil resource")
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// fitDimensions scales width and height down so the larger side is at
// most maxDimension, keeping the aspect ratio.
func fitDimensions(width, height, maxDimension uint32) (uint32, uint32) {
	largest := max(width, height)
	if maxDimension == 0 || largest <= maxDimension {
		return width, height
	}
	w := max(1, uint32(uint64(width)*uint64(maxDimension)/uint64(largest)))
	h := max(1, uint32(uint64(height)*uint64(maxDimension)/uint64(largest)))
	return w, h
}

func flipRows(pix []uint8, stride, rows int) {
	tmp := make([]uint8, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
