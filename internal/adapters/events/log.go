package events

import (
	"fmt"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// LogListener forwards events to a structured logger. It replaces Linear when
// output is machine-read.
type LogListener struct {
	logger ports.Logger
}

// NewLogListener creates a LogListener.
func NewLogListener(logger ports.Logger) *LogListener {
	return &LogListener{logger: logger}
}

// OnEvent implements ports.EventListener.
func (l *LogListener) OnEvent(ev domain.Event) {
	switch ev.Kind {
	case domain.EventPackageStart:
		l.logger.Debug(fmt.Sprintf("loading %s (%s %s)", ev.Name, ev.SrcType, ev.SrcDesc))
	case domain.EventPackageComplete:
		l.logger.Info(fmt.Sprintf("loaded %s in %s cache_hit=%t", ev.Name, round(ev.Duration), ev.CacheHit))
	case domain.EventPackageError:
		l.logger.Error(zerr.With(zerr.New(ev.Message), "package", ev.Name))
	case domain.EventVenvStart:
		l.logger.Debug("creating python environment")
	case domain.EventVenvComplete:
		l.logger.Info(fmt.Sprintf("python environment ready in %s", round(ev.Duration)))
	case domain.EventVenvError:
		l.logger.Error(zerr.With(zerr.New(ev.Message), "handler", ev.Name))
	case domain.EventUpdateComplete:
		s := ev.Summary
		l.logger.Info(fmt.Sprintf(
			"update complete: total=%d cacheable=%d hits=%d misses=%d editable=%d errors=%d duration=%s",
			s.Total, s.Cacheable, s.CacheHits, s.CacheMisses, s.Editable, s.Errors, round(s.Duration),
		))
	}
}
