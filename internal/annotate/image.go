package annotate

import (
	"context"
	"fmt"

	"diagnote/internal/canvas"
)

// Placement of inserted images.
const (
	imageScale      = 0.5
	imageLeft       = 50
	imageTop        = 50
	imageClipRadius = 300
)

// DrawPNG loads src and places it on the canvas at half size, clipped to a
// circle around its centre, then makes it the active object. A failed
// load leaves the canvas untouched and is returned to the caller.
func DrawPNG(ctx context.Context, c *canvas.Canvas, loader ImageLoader, src string) (*canvas.Object, error) {
	info, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", src, err)
	}

	img := canvas.NewImage(info.Src, float64(info.Width), float64(info.Height))
	img.Dirty = true
	img.ScaleX, img.ScaleY = imageScale, imageScale
	img.Left, img.Top = imageLeft, imageTop
	img.Angle = 0

	clip := canvas.NewCircle(0, 0, imageClipRadius)
	clip.ObjectCaching = false
	clip.OriginCenter = true
	img.ClipPath = clip
	img.SetCoords()

	c.Add(img)
	c.SetActiveObject(img)
	c.RenderAll()
	return img, nil
}
