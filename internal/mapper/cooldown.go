package mapper

import "time"

// CooldownRegistry maps reaction names to expiry timestamps. Entries are
// advisory locks preventing a reaction from re-firing before its interval
// elapses; expired entries are simply overwritten, never collected.
// Cooldowns are wall-clock based so their semantics do not drift with the
// frame rate.
type CooldownRegistry struct {
	expiries map[string]time.Time
	now      func() time.Time
}

// NewCooldownRegistry creates an empty registry.
func NewCooldownRegistry() *CooldownRegistry {
	return &CooldownRegistry{
		expiries: make(map[string]time.Time),
		now:      time.Now,
	}
}

// TryAcquire attempts to start the named reaction. It returns false while a
// previous acquisition is still cooling down; otherwise it records a new
// expiry and returns true.
func (c *CooldownRegistry) TryAcquire(name string, interval time.Duration) bool {
	now := c.now()
	if expiry, ok := c.expiries[name]; ok && now.Before(expiry) {
		return false
	}
	c.expiries[name] = now.Add(interval)
	return true
}

// Active reports whether the named reaction is currently cooling down.
func (c *CooldownRegistry) Active(name string) bool {
	expiry, ok := c.expiries[name]
	return ok && c.now().Before(expiry)
}

// Clear drops all cooldowns.
func (c *CooldownRegistry) Clear() {
	c.expiries = make(map[string]time.Time)
}
