package store

import "fyne.io/fyne/v2"

// Prefs adapts fyne application preferences to Store. Fyne preferences
// cannot distinguish an empty string from a missing key, so empty values
// read back as absent; no value the session writes is empty.
type Prefs struct {
	prefs fyne.Preferences
}

// NewPrefs wraps p.
func NewPrefs(p fyne.Preferences) *Prefs {
	return &Prefs{prefs: p}
}

// Get implements Store.
func (p *Prefs) Get(key string) (string, bool, error) {
	v := p.prefs.String(key)
	return v, v != "", nil
}

// Set implements Store.
func (p *Prefs) Set(key, value string) error {
	p.prefs.SetString(key, value)
	return nil
}

// Remove implements Store.
func (p *Prefs) Remove(key string) error {
	p.prefs.RemoveValue(key)
	return nil
}
