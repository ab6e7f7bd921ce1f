package notify

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/metrics"
)

// Sink is a named publisher registered with a Fanout.
type Sink struct {
	Name      string
	Publisher Publisher
}

// Fanout publishes each event to all registered sinks. A failing sink does
// not stop delivery to the others.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	return &Fanout{
		sinks:  sinks,
		logger: logger,
	}
}

func (f *Fanout) Add(name string, p Publisher) {
	f.sinks = append(f.sinks, Sink{Name: name, Publisher: p})
}

// Names lists the registered sinks in registration order.
func (f *Fanout) Names() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name)
	}
	return names
}

func (f *Fanout) Publish(ctx context.Context, event string, payload any) error {
	var errs error
	for _, s := range f.sinks {
		if err := s.Publisher.Publish(ctx, event, payload); err != nil {
			metrics.IncPublishError(s.Name)
			f.logger.Warn("Failed to publish event",
				zap.String("sink", s.Name),
				zap.String("event", event),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errs
}

// Close closes every sink that holds resources.
func (f *Fanout) Close() error {
	var errs error
	for _, s := range f.sinks {
		if c, ok := s.Publisher.(io.Closer); ok {
			errs = multierr.Append(errs, c.Close())
		}
	}
	return errs
}
