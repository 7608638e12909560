//go:build android

// wearbridge-android is the Wear OS activity. Build it with
//
//	gomobile build -target=android ./cmd/wearbridge-android
package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/cores/corridor"
	"github.com/vovakirdan/wearbridge/internal/platform/mobile"
)

func main() {
	// The app runtime forwards stderr to logcat.
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "wearbridge"})

	// No user config on the device; the embedded default is used.
	cfg, err := config.Load("")
	if err != nil {
		logger.Warn("invalid config, using defaults", "err", err)
		cfg = config.DefaultBridgeConfig()
	}
	config.ApplyProfile(&cfg, config.ProfileSaver)
	// Touch is the only input on the watch; show where the controls are.
	cfg.Presenter.Overlay = true
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}

	b, err := bridge.New(corridor.New(), cfg, bridge.WithLogger(logger))
	if err != nil {
		logger.Fatal("cannot create bridge", "err", err)
	}
	defer b.Close()
	mobile.Main(b, logger)
}
