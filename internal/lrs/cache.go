package lrs

import "sync"

// ConfigCache holds the per-session service configuration, keyed for the
// lookups every component needs. Built once at service discovery and
// passed by reference; the layer configs themselves are read-only.
type ConfigCache struct {
	mu       sync.RWMutex
	networks map[int]*NetworkLayer
	events   map[int]*EventLayer
	config   ServiceConfig
}

// NewConfigCache indexes a service configuration.
func NewConfigCache(cfg ServiceConfig) *ConfigCache {
	c := &ConfigCache{
		networks: make(map[int]*NetworkLayer, len(cfg.NetworkLayers)),
		events:   make(map[int]*EventLayer, len(cfg.EventLayers)),
		config:   cfg,
	}
	for i := range cfg.NetworkLayers {
		c.networks[cfg.NetworkLayers[i].ID] = &cfg.NetworkLayers[i]
	}
	for i := range cfg.EventLayers {
		c.events[cfg.EventLayers[i].ID] = &cfg.EventLayers[i]
	}
	return c
}

// Network returns a network layer config by ID.
func (c *ConfigCache) Network(id int) (*NetworkLayer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.networks[id]
	return n, ok
}

// Event returns an event layer config by ID.
func (c *ConfigCache) Event(id int) (*EventLayer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	return e, ok
}

// Networks returns all network layers in service order.
func (c *ConfigCache) Networks() []*NetworkLayer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*NetworkLayer, 0, len(c.config.NetworkLayers))
	for i := range c.config.NetworkLayers {
		out = append(out, &c.config.NetworkLayers[i])
	}
	return out
}

// EventCount returns the number of event layers in the service.
func (c *ConfigCache) EventCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// EventsForNetwork returns the event layers registered to a network, in
// service order.
func (c *ConfigCache) EventsForNetwork(networkID int) []*EventLayer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*EventLayer
	for i := range c.config.EventLayers {
		if c.config.EventLayers[i].ParentNetwork.ID == networkID {
			out = append(out, &c.config.EventLayers[i])
		}
	}
	return out
}

// LinearEventsForNetwork returns the network's linear event layers only;
// these are the layers an attribute overlay can span measures over.
func (c *ConfigCache) LinearEventsForNetwork(networkID int) []*EventLayer {
	var out []*EventLayer
	for _, e := range c.EventsForNetwork(networkID) {
		if e.Type == LinearEventLayer {
			out = append(out, e)
		}
	}
	return out
}
