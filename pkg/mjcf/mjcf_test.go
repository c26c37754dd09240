package mjcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kforge/pkg/spec"
)

func TestLoadPendulum(t *testing.T) {
	body := `
model: pendulum
compiler:
  degrees: false
option:
  timestep: 0.001
  gravity: [0, 0, -10]
worldbody:
  bodies:
    - name: arm
      pos: [0, 0, 1]
      joints:
        - {name: swing, type: hinge, axis: [0, 0, 1], range: [-1, 1]}
      geoms:
        - {name: ball, type: sphere, size: [0.1]}
actuators:
  - {name: motor, trn: joint, target: swing, gear: 2}
`
	s, err := Load([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "pendulum", s.ModelName)
	assert.False(t, s.Compiler.Degrees)
	assert.Equal(t, 0.001, s.Option.Timestep)
	assert.Equal(t, -10.0, s.Option.Gravity.Z)

	require.Len(t, s.World.Bodies, 1)
	arm := s.World.Bodies[0]
	assert.Equal(t, "arm", arm.Name)
	assert.Equal(t, 1.0, arm.Pos.Z)

	require.Len(t, arm.Joints, 1)
	j := arm.Joints[0]
	assert.Equal(t, spec.JointHinge, j.Type)
	assert.True(t, j.Limited)
	assert.Equal(t, [2]float64{-1, 1}, j.Range)

	require.Len(t, arm.Geoms, 1)
	assert.Equal(t, spec.GeomSphere, arm.Geoms[0].Type)
	assert.Equal(t, 0.1, arm.Geoms[0].Size.X)

	require.Len(t, s.Actuators, 1)
	assert.Equal(t, spec.TrnJoint, s.Actuators[0].Trn)
	assert.Equal(t, 2.0, s.Actuators[0].Gear[0])
	assert.Equal(t, "swing", s.Actuators[0].Target)
}

func TestLoadUnknownGeomType(t *testing.T) {
	body := `
worldbody:
  geoms:
    - {name: g, type: torus}
`
	_, err := Load([]byte(body))
	assert.Error(t, err)
}

func TestLoadTendonAndKeyframe(t *testing.T) {
	body := `
worldbody:
  bodies:
    - name: b
      joints: [{name: j1, type: hinge}]
      geoms: [{type: sphere, size: [0.1]}]
tendons:
  - name: t1
    joints:
      - {joint: j1, coef: 0.5}
keyframes:
  - {name: start, time: 0, qpos: [0.3]}
`
	s, err := Load([]byte(body))
	require.NoError(t, err)

	require.Len(t, s.Tendons, 1)
	require.Len(t, s.Tendons[0].Wraps, 1)
	assert.Equal(t, spec.WrapJoint, s.Tendons[0].Wraps[0].Type)
	assert.Equal(t, 0.5, s.Tendons[0].Wraps[0].Prm)

	require.Len(t, s.Keys, 1)
	assert.Equal(t, []float64{0.3}, s.Keys[0].Qpos)
}
