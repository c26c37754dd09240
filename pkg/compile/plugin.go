package compile

import (
	"github.com/Faultbox/kforge/pkg/spec"
)

// PluginInfo is the host's answer to a capability query.
type PluginInfo struct {
	Capability spec.PluginCapability
	// StateSize is the per-instance activation state size.
	StateSize int32
	// SensorDim returns the sensor output dimension for the given
	// attributes; only consulted for sensor-capable plugins.
	SensorDim func(attrs map[string]string) int32
}

// PluginHost answers plugin capability and state-size queries. The
// host itself is an external collaborator.
type PluginHost interface {
	Find(name string) (PluginInfo, bool)
}

// resolvePlugins queries the host for every plugin instance and
// records capabilities, state sizes and sensor dimensions.
func (c *Compiler) resolvePlugins() error {
	if len(c.spec.Plugins) == 0 {
		return nil
	}
	if c.host == nil {
		p := c.spec.Plugins[0]
		return objErrorf(PluginError, p.Name, p.ID, "model uses plugins but no plugin host is configured")
	}
	adr := int32(0)
	for _, p := range c.spec.Plugins {
		info, ok := c.host.Find(p.PluginName)
		if !ok {
			return objErrorf(PluginError, p.Name, p.ID, "unknown plugin '%s'", p.PluginName)
		}
		p.Capability = info.Capability
		p.StateSize = info.StateSize
		p.StateAdr = adr
		adr += info.StateSize
		if info.Capability&spec.CapSensor != 0 {
			if info.SensorDim == nil {
				return objErrorf(PluginError, p.Name, p.ID, "sensor plugin '%s' does not report a dimension", p.PluginName)
			}
			p.SensorDim = info.SensorDim(p.Attributes)
			if p.SensorDim < 1 {
				return objErrorf(PluginError, p.Name, p.ID, "sensor plugin '%s' reports dimension %d", p.PluginName, p.SensorDim)
			}
		}
	}
	return nil
}

// bindPlugin resolves a plugin reference on an entity and checks the
// required capability.
func (c *Compiler) bindPlugin(owner string, ownerID int32, name string, need spec.PluginCapability) (int32, error) {
	id, ok := c.findID(spec.ObjPlugin, name)
	if !ok {
		return -1, objErrorf(PluginError, owner, ownerID, "unknown plugin instance '%s'", name)
	}
	p := c.spec.Plugins[id]
	if p.Capability&need == 0 {
		return -1, objErrorf(PluginError, owner, ownerID, "plugin '%s' lacks the required capability", name)
	}
	return id, nil
}
