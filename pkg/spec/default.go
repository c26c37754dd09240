package spec

// Default is a named bundle of per-kind entity templates. Classes form
// a tree rooted at the implicit main class; a child class starts as a
// full copy of its parent, so inheritance is flattened when the class
// is created.
type Default struct {
	Name     string
	Parent   *Default
	Children []*Default

	Joint    Joint
	Geom     Geom
	Site     Site
	Camera   Camera
	Light    Light
	Mesh     Mesh
	Material Material
	Pair     Pair
	Equality Equality
	Tendon   Tendon
	Actuator Actuator
}

func newMainDefault() *Default {
	return &Default{
		Name:     "main",
		Joint:    defaultJoint(),
		Geom:     defaultGeom(),
		Site:     defaultSite(),
		Camera:   defaultCamera(),
		Light:    defaultLight(),
		Mesh:     defaultMesh(),
		Material: defaultMaterial(),
		Pair:     defaultPair(),
		Equality: defaultEquality(),
		Tendon:   defaultTendon(),
		Actuator: defaultActuator(),
	}
}

// clone copies the templates into a new child class.
func (d *Default) clone(name string) *Default {
	c := *d
	c.Name = name
	c.Parent = d
	c.Children = nil
	return &c
}
