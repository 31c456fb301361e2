// Package detector implements the change gate that decides whether an
// incoming sample differs from the last accepted one. Devices report on a
// fixed interval whether anything moved or not; the gate keeps duplicate
// readings out of storage and alerting.
package detector

import (
	"sync"

	"tiltwatch/internal/models"
)

// baseline holds the four numeric fields of the last accepted sample.
// The alert email is deliberately not part of it: a sample whose readings
// match the baseline is a duplicate even if the recipient changed.
type baseline struct {
	angleX  *float64
	angleY  *float64
	uvIndex *float64
	smoke   *float64
}

// Detector gates samples on exact equality against the last accepted one.
// The zero value is not usable; call New. The baseline starts unset, so the
// first sample of a process lifetime is always accepted. It is not persisted
// across restarts.
type Detector struct {
	mu   sync.Mutex
	seen bool
	last baseline
}

func New() *Detector {
	return &Detector{}
}

// Accept runs the change gate for s. If the sample's four numeric fields
// match the baseline it returns false with no side effects. Otherwise save
// is invoked while the gate is held, and the baseline advances only when
// save returns nil. Holding the gate across the save keeps two concurrent
// requests from both observing "changed" against a stale baseline, and a
// failed save leaves the baseline untouched so an identical resend is
// re-attempted rather than silently dropped.
func (d *Detector) Accept(s models.Sample, save func() error) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen && !d.differs(s) {
		return false, nil
	}

	if save != nil {
		if err := save(); err != nil {
			return false, err
		}
	}

	d.last = baseline{
		angleX:  clone(s.AngleX),
		angleY:  clone(s.AngleY),
		uvIndex: clone(s.UVIndex),
		smoke:   clone(s.Smoke),
	}
	d.seen = true
	return true, nil
}

// differs reports whether any of the four numeric fields changed.
// Caller must hold d.mu.
func (d *Detector) differs(s models.Sample) bool {
	return !equal(d.last.angleX, s.AngleX) ||
		!equal(d.last.angleY, s.AngleY) ||
		!equal(d.last.uvIndex, s.UVIndex) ||
		!equal(d.last.smoke, s.Smoke)
}

// equal compares two nullable readings: nil equals nil, nil never equals a
// number, numbers compare exactly (not tolerance-based).
func equal(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
