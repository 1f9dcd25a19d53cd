package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGELFHandler returns a JSON handler whose records are shipped to a
// Graylog input over UDP. Each record becomes one GELF message.
func NewGELFHandler(addr string, opts *slog.HandlerOptions) (slog.Handler, io.Closer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GELF writer: %w", err)
	}
	w.Facility = ServiceName
	return slog.NewJSONHandler(w, opts), w, nil
}
