package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
	kclock "k8s.io/utils/clock"

	"github.com/elimuro/rglr-gnrtr-engine/clock"
	"github.com/elimuro/rglr-gnrtr-engine/config"
	"github.com/elimuro/rglr-gnrtr-engine/engine"
	"github.com/elimuro/rglr-gnrtr-engine/logger"
	"github.com/elimuro/rglr-gnrtr-engine/param"
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
)

// timedMessage carries a MIDI message with its arrival time from the driver
// callback goroutine into the frame loop.
type timedMessage struct {
	at  time.Time
	msg gomidi.Message
}

func main() {
	ctx := context.Background()
	Run(ctx)
}

// Run starts the engine demo loop.
func Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logger.GetProjectLogger()

	log.Info("Loading config...")
	cfg, err := config.Load()
	if err != nil {
		log.Warnf("using default config: %v", err)
	}

	log.Info("Initializing engine...")
	eng := engine.New(cfg, kclock.RealClock{})

	// Shape cycling: advance the animation type on every beat-division
	// boundary while the toggle is on.
	cycle := []string{"pulse", "wave", "ripple", "scatter"}
	cycleIdx := 0
	eng.Transport.OnBeat(func(p rhythm.BeatPosition) {
		if v, ok := eng.Store.Get("shapeCycling"); !ok || !v.BoolValue() {
			return
		}
		cycleIdx = (cycleIdx + 1) % len(cycle)
		if err := eng.Store.Set("animationType", param.Enum(cycle[cycleIdx])); err != nil {
			log.Warnf("shape cycle write failed: %v", err)
		}
	})
	eng.Transport.OnTransport(func(ev clock.TransportEvent) {
		log.WithFields(logrus.Fields{"event": ev}).Info("transport changed")
	})
	eng.Transport.OnBPM(func(bpm float64) {
		log.WithFields(logrus.Fields{"bpm": bpm}).Debug("tempo changed")
	})

	// MIDI input feeds the frame loop through a channel so all engine
	// mutation stays on one goroutine.
	midiCh := make(chan timedMessage, 256)
	if cfg.MIDIInputPort != "" {
		in, err := gomidi.FindInPort(cfg.MIDIInputPort)
		if err != nil {
			log.Errorf("MIDI input %q not found: %v", cfg.MIDIInputPort, err)
		} else {
			base := time.Now()
			stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
				select {
				case midiCh <- timedMessage{at: base.Add(time.Duration(timestampms) * time.Millisecond), msg: msg}:
				default:
				}
			})
			if err != nil {
				log.Errorf("could not listen on MIDI input: %v", err)
			} else {
				defer stop()
				log.Infof("Listening on MIDI input %q", in.String())
			}
		}
	}

	eng.Transport.Play()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	framePeriod := time.Second / time.Duration(cfg.FrameRate)
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	log.Info("Engine running...")
	for {
		select {
		case <-quit:
			log.Println("shutting down")
			cancel()
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// Drain pending MIDI before advancing the frame so the tick
			// sees a consistent input state.
			for drained := false; !drained; {
				select {
				case tm := <-midiCh:
					eng.HandleMIDI(tm.at, tm.msg)
				default:
					drained = true
				}
			}
			eng.Tick(now)
		}
	}
}
