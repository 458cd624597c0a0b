package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/apikit/component"
)

// Summary renders what an App started and how healthy it is.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration {
	return s.startupDuration
}

// Write prints the component tree and live health of registry to w.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	all := registry.All()
	if len(all) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
		return
	}

	fmt.Fprintf(w, "Components\n")
	for i, c := range all {
		prefix := "├──"
		if i == len(all)-1 {
			prefix = "└──"
		}
		d := component.Description{Name: c.Name(), Type: "component"}
		if desc, ok := c.(component.Describable); ok {
			d = desc.Describe()
			if d.Name == "" {
				d.Name = c.Name()
			}
		}
		h := c.Health(ctx)
		line := fmt.Sprintf("   %s [%s] %s", prefix, d.Type, d.Name)
		if d.Details != "" {
			line += ": " + d.Details
		}
		line += " (" + string(h.Status)
		if h.Message != "" {
			line += ": " + h.Message
		}
		fmt.Fprintln(w, line+")")
	}
}
