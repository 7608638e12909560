//go:build glfw

package desktop

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
	"github.com/vovakirdan/wearbridge/internal/platform/otoaudio"
)

// DefaultSize is the window size when none is given, a typical round watch.
var DefaultSize = core.Size{W: 454, H: 454}

const touchPointer = 0

var glfwKeys = map[glfw.Key]bridge.Key{
	glfw.KeyW:          bridge.KeyForward,
	glfw.KeyUp:         bridge.KeyForward,
	glfw.KeyS:          bridge.KeyBack,
	glfw.KeyDown:       bridge.KeyBack,
	glfw.KeyA:          bridge.KeyStrafeLeft,
	glfw.KeyD:          bridge.KeyStrafeRight,
	glfw.KeyQ:          bridge.KeyTurnLeft,
	glfw.KeyLeft:       bridge.KeyTurnLeft,
	glfw.KeyE:          bridge.KeyTurnRight,
	glfw.KeyRight:      bridge.KeyTurnRight,
	glfw.KeyLeftShift:  bridge.KeyRun,
	glfw.KeyRightShift: bridge.KeyRun,
	glfw.KeySpace:      bridge.KeyFire,
	glfw.KeyF:          bridge.KeyUse,
	glfw.KeyEscape:     bridge.KeyMenu,
	glfw.KeyEnter:      bridge.KeyConfirm,
	glfw.KeyM:          bridge.KeyStemPrimary,
	glfw.KeyTab:        bridge.KeyStemSecondary,
	glfw.Key1:          bridge.KeyWeapon1,
	glfw.Key2:          bridge.KeyWeapon2,
	glfw.Key3:          bridge.KeyWeapon3,
	glfw.Key4:          bridge.KeyWeapon4,
	glfw.Key5:          bridge.KeyWeapon5,
	glfw.Key6:          bridge.KeyWeapon6,
	glfw.Key7:          bridge.KeyWeapon7,
}

const vertSrc = `
#version 410 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const fragSrc = `
#version 410 core
in vec2 vUV;
uniform sampler2D uTex;
out vec4 FragColor;
void main() {
    FragColor = texture(uTex, vUV);
}
` + "\x00"

// Options configures Run.
type Options struct {
	Size   core.Size // window size in screen coordinates, zero means DefaultSize
	Audio  bool
	Logger *log.Logger
}

// window is the GLFW window state shared by the callbacks.
type window struct {
	win     *glfw.Window
	host    emu.Host
	surface *emu.FrameSurface
	out     *otoaudio.Output

	fb       core.Size
	touching bool
	paused   bool
	scroll   scrollAccumulator

	prog, vao, vbo, tex uint32
	texSize             core.Size
	painted             uint64
}

// Run opens the window, starts the bridge and returns when the window is
// closed or ctx ends. It must be called from the main goroutine.
func Run(ctx context.Context, b *bridge.Bridge, opts Options) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	size := opts.Size
	if size.Empty() {
		size = DefaultSize
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	gw, err := glfw.CreateWindow(size.W, size.H, "wearbridge - "+b.Core().Title(), nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer gw.Destroy()
	gw.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	w := &window{win: gw, host: b, surface: emu.NewFrameSurface()}
	if err := w.initGL(); err != nil {
		return err
	}
	defer w.destroyGL()

	if opts.Audio && b.Audio() != nil {
		w.out, err = otoaudio.Start(b.Audio())
		if err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer w.out.Close()
		}
	}

	w.installCallbacks()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fbW, fbH := gw.GetFramebufferSize()
	w.fb = core.Size{W: fbW, H: fbH}
	b.OnSurfaceCreated(w.surface, w.fb)

	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	faults := b.Faults()
	for !gw.ShouldClose() && ctx.Err() == nil {
		glfw.WaitEventsTimeout(1.0 / 60)

		select {
		case err := <-faults:
			logger.Error("core fault", "err", err)
			gw.SetTitle("wearbridge - core fault")
		default:
		}

		w.paint()
		gw.SwapBuffers()
	}

	b.OnSurfaceDestroyed()
	cancel()
	return <-runErr
}

func (w *window) installCallbacks() {
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		next := core.Size{W: width, H: height}
		if next == w.fb || next.Empty() {
			return
		}
		w.fb = next
		w.host.OnSurfaceResized(next)
	})

	w.win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			w.host.OnSurfaceDestroyed()
			return
		}
		w.host.OnSurfaceCreated(w.surface, w.fb)
	})

	w.win.SetKeyCallback(func(gw *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press && mods&glfw.ModControl != 0 && key == glfw.KeyQ {
			gw.SetShouldClose(true)
			return
		}
		if action == glfw.Press && key == glfw.KeyP {
			w.togglePause()
			return
		}
		k, ok := glfwKeys[key]
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			w.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventKeyDown, Key: k})
		case glfw.Release:
			w.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventKeyUp, Key: k})
		}
	})

	w.win.SetMouseButtonCallback(func(gw *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			w.touching = true
			w.host.OnInputEvent(w.touch(bridge.EventTouchDown))
		case glfw.Release:
			if w.touching {
				w.touching = false
				w.host.OnInputEvent(w.touch(bridge.EventTouchUp))
			}
		}
	})

	w.win.SetCursorPosCallback(func(_ *glfw.Window, _, _ float64) {
		if w.touching {
			w.host.OnInputEvent(w.touch(bridge.EventTouchMove))
		}
	})

	w.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if n := w.scroll.add(yoff); n != 0 {
			w.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: n})
		}
	})
}

func (w *window) togglePause() {
	w.paused = !w.paused
	if w.paused {
		w.host.OnPauseRequested()
	} else {
		w.host.OnResumeRequested()
	}
	if w.out != nil {
		w.out.SetPaused(w.paused)
	}
}

func (w *window) touch(kind bridge.EventKind) bridge.RawEvent {
	cx, cy := w.win.GetCursorPos()
	ww, wh := w.win.GetSize()
	x, y := cursorToSurface(cx, cy, core.Size{W: ww, H: wh}, w.fb)
	return bridge.RawEvent{Kind: kind, Pointer: touchPointer, X: x, Y: y, Surface: w.fb}
}

func (w *window) initGL() error {
	prog, err := linkProgram(vertSrc, fragSrc)
	if err != nil {
		return err
	}
	w.prog = prog

	// Full-screen quad as a triangle strip: position then texture coordinate.
	// The image's first row is the top of the window.
	verts := [16]float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		-1, 1, 0, 0,
		1, 1, 1, 0,
	}
	gl.GenVertexArrays(1, &w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(&verts[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 16, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 16, 8)

	gl.GenTextures(1, &w.tex)
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.UseProgram(w.prog)
	gl.Uniform1i(gl.GetUniformLocation(w.prog, gl.Str("uTex\x00")), 0)
	gl.ClearColor(0, 0, 0, 1)
	return nil
}

func (w *window) destroyGL() {
	gl.DeleteTextures(1, &w.tex)
	gl.DeleteBuffers(1, &w.vbo)
	gl.DeleteVertexArrays(1, &w.vao)
	gl.DeleteProgram(w.prog)
}

// paint uploads the latest frame when a new one arrived and draws the quad.
func (w *window) paint() {
	gl.Viewport(0, 0, int32(w.fb.W), int32(w.fb.H))
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if frames := w.surface.Frames(); frames != w.painted {
		w.painted = frames
		w.surface.View(func(img *image.RGBA) {
			if img != nil {
				w.upload(img)
			}
		})
	}
	if w.texSize.Empty() {
		return
	}

	gl.UseProgram(w.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (w *window) upload(img *image.RGBA) {
	b := img.Bounds()
	size := core.Size{W: b.Dx(), H: b.Dy()}
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if size != w.texSize {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.W), int32(size.H), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		w.texSize = size
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.W), int32(size.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func linkProgram(vert, frag string) (uint32, error) {
	vs, err := compileShader(vert, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(frag, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}
