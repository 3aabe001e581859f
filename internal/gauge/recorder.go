package gauge

// Recorder is a Gauge that remembers every level written to it. It backs the
// meter package tests, which assert on write suppression and step sequences.
type Recorder struct {
	Writes []uint8
}

func (r *Recorder) Set(level uint8) error {
	r.Writes = append(r.Writes, level)
	return nil
}

// Last returns the most recently written level, or 0 if nothing was written.
func (r *Recorder) Last() uint8 {
	if len(r.Writes) == 0 {
		return 0
	}

	return r.Writes[len(r.Writes)-1]
}

// Reset clears the recorded writes.
func (r *Recorder) Reset() {
	r.Writes = nil
}
