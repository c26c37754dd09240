package spec

// SensorType determines the measured quantity, the kind of object the
// sensor attaches to, the output dimension and the compute stage.
type SensorType int32

const (
	SensorTouch SensorType = iota
	SensorAccelerometer
	SensorVelocimeter
	SensorGyro
	SensorForce
	SensorTorque
	SensorMagnetometer
	SensorRangeFinder
	SensorJointPos
	SensorJointVel
	SensorTendonPos
	SensorTendonVel
	SensorActuatorPos
	SensorActuatorVel
	SensorActuatorFrc
	SensorBallQuat
	SensorBallAngVel
	SensorJointLimitPos
	SensorJointLimitVel
	SensorJointLimitFrc
	SensorFramePos
	SensorFrameQuat
	SensorFrameXAxis
	SensorFrameYAxis
	SensorFrameZAxis
	SensorFrameLinVel
	SensorFrameAngVel
	SensorFrameLinAcc
	SensorFrameAngAcc
	SensorSubtreeCom
	SensorSubtreeLinVel
	SensorSubtreeAngMom
	SensorClock
	SensorPlugin
	SensorUser
)

// SensorDatatype describes the numeric nature of sensor output.
type SensorDatatype int32

const (
	DatatypeReal SensorDatatype = iota
	DatatypePositive
	DatatypeAxis
	DatatypeQuaternion
)

// SensorStage is the computation stage after which the output is valid.
type SensorStage int32

const (
	StagePos SensorStage = iota
	StageVel
	StageAcc
)

// Sensor measures a scalar or vector quantity of an attached object.
type Sensor struct {
	Element

	Type SensorType

	ObjTyp  ObjType // kind of the attached object
	ObjName string
	RefTyp  ObjType // optional reference frame object
	RefName string

	Cutoff   float64
	Noise    float64
	Dim      int32 // output dimension; derived for non-user sensors
	UserData []float64
	Plugin   string

	// Derived during compile.
	ObjID    int32
	RefID    int32
	Datatype SensorDatatype
	Stage    SensorStage
	Adr      int32
	PluginID int32
}

// AddSensor appends a sensor.
func (s *Spec) AddSensor() *Sensor {
	x := &Sensor{ObjID: -1, RefID: -1, PluginID: -1}
	s.Sensors = append(s.Sensors, x)
	return x
}

// sensorMeta describes per-type requirements used during compile.
type sensorMeta struct {
	ObjType  ObjType // required attached-object kind; ObjUnknown if none
	Dim      int32   // 0: user-declared
	Datatype SensorDatatype
	Stage    SensorStage
}

// Meta returns the attachment, dimension, datatype and stage rules for
// the sensor type.
func (t SensorType) Meta() sensorMeta {
	switch t {
	case SensorTouch:
		return sensorMeta{ObjSite, 1, DatatypePositive, StageAcc}
	case SensorAccelerometer:
		return sensorMeta{ObjSite, 3, DatatypeReal, StageAcc}
	case SensorVelocimeter:
		return sensorMeta{ObjSite, 3, DatatypeReal, StageVel}
	case SensorGyro:
		return sensorMeta{ObjSite, 3, DatatypeReal, StageVel}
	case SensorForce:
		return sensorMeta{ObjSite, 3, DatatypeReal, StageAcc}
	case SensorTorque:
		return sensorMeta{ObjSite, 3, DatatypeReal, StageAcc}
	case SensorMagnetometer:
		return sensorMeta{ObjSite, 3, DatatypeReal, StagePos}
	case SensorRangeFinder:
		return sensorMeta{ObjSite, 1, DatatypeReal, StagePos}
	case SensorJointPos:
		return sensorMeta{ObjJoint, 1, DatatypeReal, StagePos}
	case SensorJointVel:
		return sensorMeta{ObjJoint, 1, DatatypeReal, StageVel}
	case SensorTendonPos:
		return sensorMeta{ObjTendon, 1, DatatypeReal, StagePos}
	case SensorTendonVel:
		return sensorMeta{ObjTendon, 1, DatatypeReal, StageVel}
	case SensorActuatorPos:
		return sensorMeta{ObjActuator, 1, DatatypeReal, StagePos}
	case SensorActuatorVel:
		return sensorMeta{ObjActuator, 1, DatatypeReal, StageVel}
	case SensorActuatorFrc:
		return sensorMeta{ObjActuator, 1, DatatypeReal, StageAcc}
	case SensorBallQuat:
		return sensorMeta{ObjJoint, 4, DatatypeQuaternion, StagePos}
	case SensorBallAngVel:
		return sensorMeta{ObjJoint, 3, DatatypeReal, StageVel}
	case SensorJointLimitPos:
		return sensorMeta{ObjJoint, 1, DatatypeReal, StagePos}
	case SensorJointLimitVel:
		return sensorMeta{ObjJoint, 1, DatatypeReal, StageVel}
	case SensorJointLimitFrc:
		return sensorMeta{ObjJoint, 1, DatatypeReal, StageAcc}
	case SensorFramePos, SensorFrameXAxis, SensorFrameYAxis, SensorFrameZAxis:
		meta := sensorMeta{ObjUnknown, 3, DatatypeReal, StagePos}
		if t != SensorFramePos {
			meta.Datatype = DatatypeAxis
		}
		return meta
	case SensorFrameQuat:
		return sensorMeta{ObjUnknown, 4, DatatypeQuaternion, StagePos}
	case SensorFrameLinVel, SensorFrameAngVel:
		return sensorMeta{ObjUnknown, 3, DatatypeReal, StageVel}
	case SensorFrameLinAcc, SensorFrameAngAcc:
		return sensorMeta{ObjUnknown, 3, DatatypeReal, StageAcc}
	case SensorSubtreeCom, SensorSubtreeLinVel, SensorSubtreeAngMom:
		m := sensorMeta{ObjBody, 3, DatatypeReal, StagePos}
		if t != SensorSubtreeCom {
			m.Stage = StageVel
		}
		return m
	case SensorClock:
		return sensorMeta{ObjUnknown, 1, DatatypeReal, StagePos}
	case SensorPlugin:
		return sensorMeta{ObjUnknown, 0, DatatypeReal, StageAcc}
	default: // SensorUser
		return sensorMeta{ObjUnknown, 0, DatatypeReal, StageAcc}
	}
}
