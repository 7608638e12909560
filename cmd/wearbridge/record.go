package main

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/storage"
)

// newSession builds the session record of a finished run.
func newSession(coreID, host string, profile config.Profile, started time.Time, elapsed time.Duration, st bridge.Stats, fault error) storage.Session {
	s := storage.Session{
		CoreID:          coreID,
		Host:            host,
		Profile:         string(profile),
		StartedAt:       started,
		Duration:        elapsed,
		Ticks:           st.Ticks,
		Presents:        st.Presents,
		DroppedPresents: st.DroppedPresents,
		SkippedTicks:    st.SkippedTicks,
		Underruns:       st.AudioUnderruns,
		Overruns:        st.AudioOverruns,
	}
	if fault != nil {
		s.Fault = fault.Error()
	}
	return s
}

// recordSession saves s. A failed write only logs.
func recordSession(store *storage.Store, s storage.Session, logger *log.Logger) {
	id, err := store.SaveSession(s)
	if err != nil {
		logger.Warn("could not record session", "err", err)
		return
	}
	logger.Debug("session recorded", "id", id, "core", s.CoreID, "ticks", s.Ticks)
}
