package theme

import (
	"fmt"
	"sync"
)

var (
	mu      sync.RWMutex
	current = NewCatppuccinMocha()

	registry = map[string]func() *Theme{
		"catppuccin-mocha": NewCatppuccinMocha,
		"catppuccin-latte": NewCatppuccinLatte,
	}
)

// Current returns the active theme.
func Current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetCurrent switches the active theme by name.
func SetCurrent(name string) error {
	ctor, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown theme: %s", name)
	}
	mu.Lock()
	defer mu.Unlock()
	current = ctor()
	return nil
}
