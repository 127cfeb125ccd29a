package kv

import (
	"errors"

	"github.com/mesh-intelligence/docshelf/internal/metrics"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// instrumented counts traffic on an underlying Store.
type instrumented struct {
	Store
	m *metrics.Metrics
}

// Instrument wraps s so reads, writes and usage are recorded in m. It
// returns s unchanged when m is nil.
func Instrument(s Store, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	if used, err := s.Usage(); err == nil {
		m.StoreUsage(used)
	}
	return &instrumented{Store: s, m: m}
}

func (i *instrumented) Read(key string) ([]byte, error) {
	i.m.StoreRead(key)
	return i.Store.Read(key)
}

func (i *instrumented) Write(key string, value []byte) error {
	err := i.Store.Write(key, value)
	switch {
	case err == nil:
		i.m.StoreWrite(key, metrics.ResultOK)
		if used, uerr := i.Store.Usage(); uerr == nil {
			i.m.StoreUsage(used)
		}
	case errors.Is(err, types.ErrStoreFull):
		i.m.StoreWrite(key, metrics.ResultFull)
	default:
		i.m.StoreWrite(key, metrics.ResultError)
	}
	return err
}
