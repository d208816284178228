package annotate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"diagnote/internal/canvas"
)

type fakeLoader struct {
	info *ImageInfo
	err  error
	srcs []string
}

func (f *fakeLoader) Load(_ context.Context, src string) (*ImageInfo, error) {
	f.srcs = append(f.srcs, src)
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.Src = src
	return &info, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestStartDraw_Defaults(t *testing.T) {
	c := canvas.New(800, 600)
	p := NewFreeDrawPlugin(c)

	p.StartDraw(DrawOptions{})
	if !c.IsDrawingMode() {
		t.Fatal("drawing mode not enabled")
	}
	b := c.FreeDrawingBrush()
	if b == nil || b.Width != 5 || b.Color != "black" {
		t.Fatalf("brush = %+v, want width 5 black", b)
	}

	p.StartDraw(DrawOptions{Width: 12, Color: "#ff0000"})
	b2 := c.FreeDrawingBrush()
	if b2 == b {
		t.Error("each StartDraw should install a fresh brush")
	}
	if b2.Width != 12 || b2.Color != "#ff0000" {
		t.Errorf("brush = %+v, want width 12 #ff0000", b2)
	}

	p.EndDraw()
	if c.IsDrawingMode() {
		t.Error("drawing mode still enabled after EndDraw")
	}
	if c.FreeDrawingBrush() != b2 {
		t.Error("EndDraw should keep the brush")
	}
	if c.DrawStroke([]canvas.Point{{X: 1, Y: 1}}) != nil {
		t.Error("strokes must be ignored outside drawing mode")
	}
}

func TestFreeDrawPlugin_NilCanvas(t *testing.T) {
	p := NewFreeDrawPlugin(nil)
	p.StartDraw(DrawOptions{})
	p.EndDraw()
}

func TestDrawPNG_PlacesClippedImage(t *testing.T) {
	c := canvas.New(800, 600)
	loader := &fakeLoader{info: &ImageInfo{Width: 640, Height: 480, Format: "png"}}

	img, err := DrawPNG(context.Background(), c, loader, "https://example.test/xray.png")
	if err != nil {
		t.Fatalf("DrawPNG: %v", err)
	}

	if c.Len() != 1 || c.ActiveObject() != img {
		t.Fatal("image should be added and made active")
	}
	if c.RenderCount() != 1 {
		t.Errorf("render count = %d, want 1", c.RenderCount())
	}
	if img.Src != "https://example.test/xray.png" || img.Width != 640 || img.Height != 480 {
		t.Errorf("image = %+v", img)
	}
	if img.ScaleX != 0.5 || img.ScaleY != 0.5 || img.Left != 50 || img.Top != 50 || img.Angle != 0 {
		t.Errorf("placement = left %v top %v scale %v/%v angle %v", img.Left, img.Top, img.ScaleX, img.ScaleY, img.Angle)
	}
	if !img.Dirty {
		t.Error("image should be marked dirty")
	}

	clip := img.ClipPath
	if clip == nil || clip.Type != canvas.TypeCircle {
		t.Fatalf("clip = %+v, want circle", clip)
	}
	if clip.Radius != 300 || !clip.OriginCenter || clip.ObjectCaching {
		t.Errorf("clip = radius %v center %v caching %v", clip.Radius, clip.OriginCenter, clip.ObjectCaching)
	}

	want := canvas.Corners{TL: canvas.Point{X: 50, Y: 50}, BR: canvas.Point{X: 370, Y: 290}}
	if got := img.Coords(); got != want {
		t.Errorf("coords = %+v, want %+v", got, want)
	}
}

func TestDrawPNG_LoadFailureLeavesCanvas(t *testing.T) {
	c := canvas.New(800, 600)
	existing := canvas.NewRect(0, 0, 10, 10)
	c.Add(existing)
	c.SetActiveObject(existing)

	boom := errors.New("unreachable host")
	_, err := DrawPNG(context.Background(), c, &fakeLoader{err: boom}, "https://nowhere.test/a.png")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if c.Len() != 1 || c.ActiveObject() != existing || c.RenderCount() != 0 {
		t.Error("canvas changed after failed load")
	}
}

func TestSourceLoader_DataURL(t *testing.T) {
	data := encodePNG(t, 7, 3)
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	info, err := NewSourceLoader(time.Second).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.Width != 7 || info.Height != 3 || info.Format != "png" {
		t.Errorf("info = %+v", info)
	}
}

func TestSourceLoader_HTTP(t *testing.T) {
	data := encodePNG(t, 20, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	l := NewSourceLoader(time.Second)
	info, err := l.Load(context.Background(), srv.URL+"/scan.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.Width != 20 || info.Height != 10 {
		t.Errorf("info = %+v", info)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestSourceLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 9), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewSourceLoader(0)
	for _, src := range []string{path, "file://" + path} {
		info, err := l.Load(context.Background(), src)
		if err != nil {
			t.Fatalf("Load(%q): %v", src, err)
		}
		if info.Width != 4 || info.Height != 9 {
			t.Errorf("Load(%q) = %+v", src, info)
		}
	}
}

func TestSourceLoader_Errors(t *testing.T) {
	l := NewSourceLoader(time.Second)
	for _, src := range []string{
		"",
		"data:image/png;base64",
		"data:image/png;base64,!!!",
		"data:text/plain,hello",
		filepath.Join(t.TempDir(), "missing.png"),
	} {
		if _, err := l.Load(context.Background(), src); err == nil {
			t.Errorf("Load(%q): expected error", src)
		}
	}
}
