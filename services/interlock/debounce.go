package interlock

// Debounced filters a raw contact. Any active sample reloads a hold counter;
// the input reads pressed until the counter has run down through hold
// consecutive inactive samples. Bounce shorter than the hold window
// therefore never produces an extra transition.
type Debounced struct {
	hold  int
	count int
}

func NewDebounced(hold int) Debounced {
	if hold < 1 {
		hold = 1
	}
	return Debounced{hold: hold}
}

// Update feeds one sample (true = contact active) and returns Pressed.
func (d *Debounced) Update(active bool) bool {
	if active {
		d.count = d.hold
	} else if d.count > 0 {
		d.count--
	}
	return d.count > 0
}

func (d *Debounced) Pressed() bool { return d.count > 0 }
