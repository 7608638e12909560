//go:build android

package mobile

import (
	"context"
	"image"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/exp/gl/glutil"
	"golang.org/x/mobile/geom"
	"golang.org/x/mobile/gl"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
	"github.com/vovakirdan/wearbridge/internal/platform/otoaudio"
)

// Main runs the activity until Android destroys it.
func Main(b *bridge.Bridge, logger *log.Logger) {
	app.Main(func(a app.App) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, err := otoaudio.Start(b.Audio())
		if err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer out.Close()
		}

		surface := emu.NewFrameSurface()
		router := NewRouter(b, surface)

		go func() {
			if err := b.Run(ctx); err != nil {
				logger.Error("bridge stopped", "err", err)
			}
		}()
		// Repaint whenever the bridge presented a frame.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-surface.Updated():
					a.Send(paint.Event{})
				}
			}
		}()

		var (
			glctx  gl.Context
			images *glutil.Images
			tex    *glutil.Image
			sz     size.Event
		)
		release := func() {
			if tex != nil {
				tex.Release()
				tex = nil
			}
			if images != nil {
				images.Release()
				images = nil
			}
			glctx = nil
		}

		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				if e.Crosses(lifecycle.StageVisible) == lifecycle.CrossOn {
					if c, ok := e.DrawContext.(gl.Context); ok {
						glctx = c
						images = glutil.NewImages(glctx)
					}
				}
				if out != nil {
					switch e.Crosses(lifecycle.StageFocused) {
					case lifecycle.CrossOn:
						out.SetPaused(false)
					case lifecycle.CrossOff:
						out.SetPaused(true)
					}
				}
				dead := router.Lifecycle(e)
				if e.Crosses(lifecycle.StageVisible) == lifecycle.CrossOff {
					release()
				}
				if dead {
					return
				}

			case size.Event:
				sz = e
				router.Size(e)

			case touch.Event:
				router.Touch(e)

			case key.Event:
				router.Key(e)

			case paint.Event:
				if glctx == nil || e.External {
					continue
				}
				tex = paintFrame(glctx, images, tex, surface, sz)
				a.Publish()
			}
		}
	})
}

// paintFrame uploads the latest presented frame and stretches it over the
// window. It returns the texture, reallocated when the frame size changed.
func paintFrame(glctx gl.Context, images *glutil.Images, tex *glutil.Image, surface *emu.FrameSurface, sz size.Event) *glutil.Image {
	glctx.ClearColor(0, 0, 0, 1)
	glctx.Clear(gl.COLOR_BUFFER_BIT)

	surface.View(func(frame *image.RGBA) {
		if frame == nil {
			return
		}
		fb := frame.Bounds()
		if tex == nil || tex.RGBA.Bounds().Size() != fb.Size() {
			if tex != nil {
				tex.Release()
			}
			tex = images.NewImage(fb.Dx(), fb.Dy())
		}
		xdraw.Draw(tex.RGBA, tex.RGBA.Bounds(), frame, fb.Min, xdraw.Src)
	})
	if tex == nil {
		return nil
	}

	tex.Upload()
	tex.Draw(sz,
		geom.Point{},
		geom.Point{X: sz.WidthPt},
		geom.Point{Y: sz.HeightPt},
		tex.RGBA.Bounds(),
	)
	return tex
}
