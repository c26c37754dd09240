package spec

// Numeric is a named array of user numbers stored in the packed model.
type Numeric struct {
	Element

	Data []float64
	Size int32 // final size; zero-padded when larger than len(Data)
}

// AddNumeric appends a numeric custom field.
func (s *Spec) AddNumeric() *Numeric {
	n := &Numeric{}
	s.Numerics = append(s.Numerics, n)
	return n
}

// Text is a named user string stored in the packed model.
type Text struct {
	Element

	Data string
}

// AddText appends a text custom field.
func (s *Spec) AddText() *Text {
	t := &Text{}
	s.Texts = append(s.Texts, t)
	return t
}

// TupleEntry is one element of a tuple: a typed object reference with a
// parameter.
type TupleEntry struct {
	ObjTyp  ObjType
	ObjName string
	Prm     float64

	ObjID int32
}

// Tuple is a named list of object references.
type Tuple struct {
	Element

	Entries []TupleEntry
}

// AddTuple appends a tuple custom field.
func (s *Spec) AddTuple() *Tuple {
	t := &Tuple{}
	s.Tuples = append(s.Tuples, t)
	return t
}

// Key is a keyframe: a named snapshot of state and controls. Missing
// vectors are padded with defaults during packing.
type Key struct {
	Element

	Time  float64
	Qpos  []float64
	Qvel  []float64
	Act   []float64
	Ctrl  []float64
	MPos  []float64
	MQuat []float64
}

// AddKey appends a keyframe.
func (s *Spec) AddKey() *Key {
	k := &Key{}
	s.Keys = append(s.Keys, k)
	return k
}

// PluginCapability flags what a plugin can serve as.
type PluginCapability uint32

const (
	CapActuator PluginCapability = 1 << iota
	CapSensor
	CapPassive
	CapSDF
)

// Plugin is an instance of an engine-loaded plugin capability with a
// flat attribute map.
type Plugin struct {
	Element

	PluginName string
	Attributes map[string]string

	// Derived during compile via the plugin host.
	Capability PluginCapability
	StateSize  int32
	SensorDim  int32
	StateAdr   int32
}

// AddPlugin appends a plugin instance.
func (s *Spec) AddPlugin() *Plugin {
	p := &Plugin{Attributes: map[string]string{}}
	s.Plugins = append(s.Plugins, p)
	return p
}
