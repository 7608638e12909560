package main

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/tcellhost"
	"github.com/vovakirdan/wearbridge/internal/platform/tui"
)

// hostOptions are the settings every interactive host understands.
type hostOptions struct {
	Size   core.Size
	Audio  bool
	Logger *log.Logger
}

// hostFunc attaches a bridge to a display and blocks until the user leaves.
type hostFunc func(ctx context.Context, b *bridge.Bridge, opts hostOptions) error

// hosts lists the interactive hosts of this build. Optional hosts add
// themselves from build-tagged files.
var hosts = map[string]hostFunc{
	"tui": func(ctx context.Context, b *bridge.Bridge, opts hostOptions) error {
		return tui.Run(ctx, b, tui.Options{Size: opts.Size, Audio: opts.Audio, Logger: opts.Logger})
	},
	"tcell": func(ctx context.Context, b *bridge.Bridge, opts hostOptions) error {
		return tcellhost.Run(ctx, b, tcellhost.Options{Size: opts.Size, Audio: opts.Audio, Logger: opts.Logger})
	},
}

func hostNames() []string {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
