//go:build glfw

package main

import (
	"context"
	"runtime"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/platform/desktop"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()

	hosts["window"] = func(ctx context.Context, b *bridge.Bridge, opts hostOptions) error {
		return desktop.Run(ctx, b, desktop.Options{Size: opts.Size, Audio: opts.Audio, Logger: opts.Logger})
	}
}
