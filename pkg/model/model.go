// Package model defines the packed runtime model produced by the
// compiler: fixed-layout flat arrays indexed by entity id, with
// offset/count pairs for every variable-length attribute, a
// null-separated names table and an open-addressed name hash map.
package model

// LoadMultiple scales the capacity of the per-kind name hash maps:
// capacity = LoadMultiple * entity count.
const LoadMultiple = 2

// Sizes holds every array dimension of a packed model.
type Sizes struct {
	Nq, Nv, Nu, Na int32

	Nbody, Nbvh, NbvhStatic, NbvhDynamic int32
	Njnt, Ngeom, Nsite, Ncam, Nlight     int32

	Nflex, NflexVert, NflexEdge, NflexElem       int32
	NflexElemData, NflexShellData, NflexEvPair   int32
	NflexTexcoord                                int32
	Nmesh, NmeshVert, NmeshNormal, NmeshTexcoord int32
	NmeshFace, NmeshGraph                        int32
	Nskin, NskinVert, NskinTexVert, NskinFace    int32
	NskinBone, NskinBoneVert                     int32
	Nhfield, NhfieldData                         int32
	Ntex, NtexData, Nmat                         int32

	Npair, Nexclude, Neq, Ntendon, Nwrap int32
	Nsensor, NsensorData                 int32
	Nnumeric, NnumericData               int32
	Ntext, NtextData                     int32
	Ntuple, NtupleData                   int32
	Nkey, Nmocap                         int32
	Nplugin, NpluginAttr                 int32

	NuserBody, NuserJnt, NuserGeom, NuserSite    int32
	NuserCam, NuserTendon, NuserActuator         int32
	NuserSensor                                  int32

	Nnames, NnamesMap, Npaths int32

	NM, ND, NB, Ntree int32

	Narena int64 // per-step arena reservation in bytes
}

// Option is the physics option block copied from the spec.
type Option struct {
	Timestep    float64
	Gravity     [3]float64
	Wind        [3]float64
	Magnetic    [3]float64
	Density     float64
	Viscosity   float64
	Integrator  int32
	Iterations  int32
	Tolerance   float64
	DisableFlag uint32
}

// Stat holds the model statistics written by the compiler.
type Stat struct {
	MeanInertia float64
	MeanMass    float64
	MeanSize    float64
	Extent      float64
	Center      [3]float64
}

// Model is the packed runtime model. Every slice is allocated once at
// pack time and never resized.
type Model struct {
	Sizes
	Opt  Option
	Stat Stat

	// bodies
	BodyParentID    []int32
	BodyRootID      []int32
	BodyWeldID      []int32
	BodyTreeID      []int32
	BodyMocapID     []int32
	BodyJntNum      []int32
	BodyJntAdr      []int32
	BodyDofNum      []int32
	BodyDofAdr      []int32
	BodyGeomNum     []int32
	BodyGeomAdr     []int32
	BodySimple      []int32
	BodySameFrame   []byte
	BodyPos         []float64 // 3*nbody
	BodyQuat        []float64 // 4*nbody
	BodyIPos        []float64 // 3*nbody
	BodyIQuat       []float64 // 4*nbody
	BodyMass        []float64
	BodySubtreeMass []float64
	BodyInertia     []float64 // 3*nbody
	BodyGravcomp    []float64
	BodyUser        []float64 // nuser_body*nbody
	BodyBVHAdr      []int32
	BodyBVHNum      []int32

	// bounding volume hierarchies
	BVHDepth  []int32
	BVHChild  []int32   // 2*nbvh
	BVHNodeID []int32   // -1 for internal nodes
	BVHAABB   []float64 // 6*nbvh: center, half sizes

	// joints
	JntType    []int32
	JntQposAdr []int32
	JntDofAdr  []int32
	JntBodyID  []int32
	JntGroup   []int32
	JntLimited []byte
	JntActFrcLimited []byte
	JntSolRef  []float64 // 2*njnt
	JntSolImp  []float64 // 5*njnt
	JntPos     []float64 // 3*njnt
	JntAxis    []float64 // 3*njnt
	JntStiffness []float64
	JntRange     []float64 // 2*njnt
	JntActFrcRange []float64 // 2*njnt
	JntMargin    []float64
	JntUser      []float64

	// dofs
	DofBodyID    []int32
	DofJntID     []int32
	DofParentID  []int32
	DofTreeID    []int32
	DofMadr      []int32
	DofSimpleNum []int32
	DofArmature  []float64
	DofDamping   []float64
	DofFrictionloss []float64

	// geoms
	GeomType        []int32
	GeomContype     []int32
	GeomConaffinity []int32
	GeomCondim      []int32
	GeomBodyID      []int32
	GeomDataID      []int32 // mesh or hfield id, -1 otherwise
	GeomMatID       []int32
	GeomGroup       []int32
	GeomPriority    []int32
	GeomSize        []float64 // 3*ngeom
	GeomAABB        []float64 // 6*ngeom
	GeomRBound      []float64
	GeomPos         []float64 // 3*ngeom
	GeomQuat        []float64 // 4*ngeom
	GeomFriction    []float64 // 3*ngeom
	GeomSolMix      []float64
	GeomSolRef      []float64 // 2*ngeom
	GeomSolImp      []float64 // 5*ngeom
	GeomMargin      []float64
	GeomGap         []float64
	GeomRGBA        []float32 // 4*ngeom
	GeomUser        []float64

	// sites
	SiteType   []int32
	SiteBodyID []int32
	SiteMatID  []int32
	SiteGroup  []int32
	SiteSize   []float64 // 3*nsite
	SitePos    []float64 // 3*nsite
	SiteQuat   []float64 // 4*nsite
	SiteRGBA   []float32 // 4*nsite
	SiteUser   []float64

	// cameras
	CamMode         []int32
	CamBodyID       []int32
	CamTargetBodyID []int32
	CamPos          []float64 // 3*ncam
	CamQuat         []float64 // 4*ncam
	CamFovy         []float64
	CamIPD          []float64
	CamResolution   []int32   // 2*ncam
	CamSensorSize   []float64 // 2*ncam
	CamIntrinsic    []float64 // 4*ncam
	CamUser         []float64

	// lights
	LightMode         []int32
	LightBodyID       []int32
	LightTargetBodyID []int32
	LightDirectional  []byte
	LightCastShadow   []byte
	LightActive       []byte
	LightPos          []float64 // 3*nlight
	LightDir          []float64 // 3*nlight
	LightAttenuation  []float64 // 3*nlight
	LightCutoff       []float64
	LightExponent     []float64
	LightAmbient      []float32 // 3*nlight
	LightDiffuse      []float32 // 3*nlight
	LightSpecular     []float32 // 3*nlight

	// flexes
	FlexContype     []int32
	FlexConaffinity []int32
	FlexCondim      []int32
	FlexPriority    []int32
	FlexSolMix      []float64
	FlexSolRef      []float64 // 2*nflex
	FlexSolImp      []float64 // 5*nflex
	FlexFriction    []float64 // 3*nflex
	FlexMargin      []float64
	FlexGap         []float64
	FlexDim         []int32
	FlexMatID       []int32
	FlexGroup       []int32
	FlexVertAdr     []int32
	FlexVertNum     []int32
	FlexEdgeAdr     []int32
	FlexEdgeNum     []int32
	FlexElemAdr     []int32
	FlexElemNum     []int32
	FlexElemDataAdr []int32
	FlexShellDataAdr []int32
	FlexShellNum    []int32
	FlexEvPairAdr   []int32
	FlexEvPairNum   []int32
	FlexTexcoordAdr []int32
	FlexVertBodyID  []int32
	FlexVert        []float64 // 3*nflexvert
	FlexEdge        []int32   // 2*nflexedge
	FlexElem        []int32
	FlexShell       []int32
	FlexEvPair      []int32
	FlexTexcoord    []float64
	FlexRadius      []float64
	FlexEdgeStiffness []float64
	FlexEdgeDamping   []float64
	FlexRGBA        []float32
	FlexBVHAdr      []int32
	FlexBVHNum      []int32
	FlexInternal    []byte
	FlexSelfColl    []int32

	// meshes
	MeshVertAdr     []int32
	MeshVertNum     []int32
	MeshNormalAdr   []int32
	MeshNormalNum   []int32
	MeshTexcoordAdr []int32
	MeshTexcoordNum []int32
	MeshFaceAdr     []int32
	MeshFaceNum     []int32
	MeshGraphAdr    []int32
	MeshBVHAdr      []int32
	MeshBVHNum      []int32
	MeshPos         []float64 // 3*nmesh
	MeshQuat        []float64 // 4*nmesh
	MeshVert        []float64 // 3*nmeshvert
	MeshNormal      []float64
	MeshTexcoord    []float64
	MeshFace        []int32
	MeshGraph       []int32
	MeshPathAdr     []int32

	// skins
	SkinMatID       []int32
	SkinGroup       []int32
	SkinRGBA        []float32
	SkinInflate     []float32
	SkinVertAdr     []int32
	SkinVertNum     []int32
	SkinTexcoordAdr []int32
	SkinFaceAdr     []int32
	SkinFaceNum     []int32
	SkinBoneAdr     []int32
	SkinBoneNum     []int32
	SkinVert        []float32
	SkinTexcoord    []float32
	SkinFace        []int32
	SkinBoneVertAdr []int32
	SkinBoneVertNum []int32
	SkinBoneBindPos  []float32 // 3*nskinbone
	SkinBoneBindQuat []float32 // 4*nskinbone
	SkinBoneBodyID  []int32
	SkinBoneVertID  []int32
	SkinBoneVertWeight []float32
	SkinPathAdr     []int32

	// heightfields
	HFieldSize    []float64 // 4*nhfield
	HFieldNRow    []int32
	HFieldNCol    []int32
	HFieldAdr     []int32
	HFieldData    []float32
	HFieldPathAdr []int32

	// textures
	TexType    []int32
	TexHeight  []int32
	TexWidth   []int32
	TexAdr     []int32
	TexData    []byte
	TexPathAdr []int32

	// materials
	MatTexID       []int32
	MatTexUniform  []byte
	MatTexRepeat   []float32 // 2*nmat
	MatEmission    []float32
	MatSpecular    []float32
	MatShininess   []float32
	MatReflectance []float32
	MatRGBA        []float32 // 4*nmat

	// collision pairs and excludes
	PairDim        []int32
	PairGeom1      []int32
	PairGeom2      []int32
	PairSignature  []uint32
	PairSolRef     []float64 // 2*npair
	PairSolRefFrict []float64 // 2*npair
	PairSolImp     []float64 // 5*npair
	PairMargin     []float64
	PairGap        []float64
	PairFriction   []float64 // 5*npair
	ExcludeSignature []uint32

	// equality constraints
	EqType   []int32
	EqObj1ID []int32
	EqObj2ID []int32
	EqActive []byte
	EqSolRef []float64 // 2*neq
	EqSolImp []float64 // 5*neq
	EqData   []float64 // 11*neq

	// tendons
	TendonAdr       []int32
	TendonNum       []int32
	TendonMatID     []int32
	TendonGroup     []int32
	TendonLimited   []byte
	TendonWidth     []float64
	TendonSolRefLim []float64 // 2*ntendon
	TendonSolImpLim []float64 // 5*ntendon
	TendonSolRefFri []float64 // 2*ntendon
	TendonSolImpFri []float64 // 5*ntendon
	TendonRange     []float64 // 2*ntendon
	TendonMargin    []float64
	TendonStiffness []float64
	TendonDamping   []float64
	TendonFrictionloss []float64
	TendonLengthSpring []float64 // 2*ntendon
	TendonLength0   []float64
	TendonUser      []float64
	WrapType        []int32
	WrapObjID       []int32
	WrapPrm         []float64

	// actuators
	ActuatorTrnType  []int32
	ActuatorDynType  []int32
	ActuatorGainType []int32
	ActuatorBiasType []int32
	ActuatorTrnID    []int32 // 2*nu
	ActuatorActAdr   []int32
	ActuatorActNum   []int32
	ActuatorGroup    []int32
	ActuatorCtrlLimited  []byte
	ActuatorForceLimited []byte
	ActuatorActLimited   []byte
	ActuatorDynPrm   []float64 // 10*nu
	ActuatorGainPrm  []float64 // 10*nu
	ActuatorBiasPrm  []float64 // 10*nu
	ActuatorActEarly []byte
	ActuatorCtrlRange  []float64 // 2*nu
	ActuatorForceRange []float64 // 2*nu
	ActuatorActRange   []float64 // 2*nu
	ActuatorGear       []float64 // 6*nu
	ActuatorCrankLength []float64
	ActuatorLength0    []float64
	ActuatorLengthRange []float64 // 2*nu
	ActuatorPluginID   []int32
	ActuatorUser       []float64

	// sensors
	SensorType     []int32
	SensorDatatype []int32
	SensorNeedStage []int32
	SensorObjType  []int32
	SensorObjID    []int32
	SensorRefType  []int32
	SensorRefID    []int32
	SensorDim      []int32
	SensorAdr      []int32
	SensorCutoff   []float64
	SensorNoise    []float64
	SensorPluginID []int32
	SensorUser     []float64

	// plugins
	PluginStateAdr []int32
	PluginStateNum []int32
	PluginAttrAdr  []int32
	PluginAttr     []byte

	// custom data
	NumericAdr  []int32
	NumericSize []int32
	NumericData []float64
	TextAdr     []int32
	TextSize    []int32
	TextData    []byte
	TupleAdr    []int32
	TupleSize   []int32
	TupleObjType []int32
	TupleObjID  []int32
	TupleObjPrm []float64

	// keyframes
	KeyTime  []float64
	KeyQpos  []float64 // nq*nkey
	KeyQvel  []float64 // nv*nkey
	KeyAct   []float64 // na*nkey
	KeyMPos  []float64 // 3*nmocap*nkey
	KeyMQuat []float64 // 4*nmocap*nkey
	KeyCtrl  []float64 // nu*nkey

	// reference configuration
	Qpos0      []float64
	QposSpring []float64

	// names and paths
	Names       []byte
	NamesMap    []int32
	NameBodyAdr []int32
	NameJntAdr  []int32
	NameGeomAdr []int32
	NameSiteAdr []int32
	NameCamAdr  []int32
	NameLightAdr []int32
	NameFlexAdr []int32
	NameMeshAdr []int32
	NameSkinAdr []int32
	NameHFieldAdr []int32
	NameTexAdr  []int32
	NameMatAdr  []int32
	NamePairAdr []int32
	NameExcludeAdr []int32
	NameEqAdr   []int32
	NameTendonAdr []int32
	NameActuatorAdr []int32
	NameSensorAdr []int32
	NameNumericAdr []int32
	NameTextAdr []int32
	NameTupleAdr []int32
	NameKeyAdr  []int32
	NamePluginAdr []int32
	Paths       []byte
}

// New allocates a model with every array sized per sz. Offset/count
// arrays are allocated even for empty kinds so indexing is uniform.
func New(sz Sizes) *Model {
	m := &Model{Sizes: sz}

	f64 := func(n int32) []float64 { return make([]float64, n) }
	f32 := func(n int32) []float32 { return make([]float32, n) }
	i32 := func(n int32) []int32 { return make([]int32, n) }
	u32 := func(n int32) []uint32 { return make([]uint32, n) }
	b8 := func(n int32) []byte { return make([]byte, n) }

	m.BodyParentID = i32(sz.Nbody)
	m.BodyRootID = i32(sz.Nbody)
	m.BodyWeldID = i32(sz.Nbody)
	m.BodyTreeID = i32(sz.Nbody)
	m.BodyMocapID = i32(sz.Nbody)
	m.BodyJntNum = i32(sz.Nbody)
	m.BodyJntAdr = i32(sz.Nbody)
	m.BodyDofNum = i32(sz.Nbody)
	m.BodyDofAdr = i32(sz.Nbody)
	m.BodyGeomNum = i32(sz.Nbody)
	m.BodyGeomAdr = i32(sz.Nbody)
	m.BodySimple = i32(sz.Nbody)
	m.BodySameFrame = b8(sz.Nbody)
	m.BodyPos = f64(3 * sz.Nbody)
	m.BodyQuat = f64(4 * sz.Nbody)
	m.BodyIPos = f64(3 * sz.Nbody)
	m.BodyIQuat = f64(4 * sz.Nbody)
	m.BodyMass = f64(sz.Nbody)
	m.BodySubtreeMass = f64(sz.Nbody)
	m.BodyInertia = f64(3 * sz.Nbody)
	m.BodyGravcomp = f64(sz.Nbody)
	m.BodyUser = f64(sz.NuserBody * sz.Nbody)
	m.BodyBVHAdr = i32(sz.Nbody)
	m.BodyBVHNum = i32(sz.Nbody)

	m.BVHDepth = i32(sz.Nbvh)
	m.BVHChild = i32(2 * sz.Nbvh)
	m.BVHNodeID = i32(sz.Nbvh)
	m.BVHAABB = f64(6 * sz.Nbvh)

	m.JntType = i32(sz.Njnt)
	m.JntQposAdr = i32(sz.Njnt)
	m.JntDofAdr = i32(sz.Njnt)
	m.JntBodyID = i32(sz.Njnt)
	m.JntGroup = i32(sz.Njnt)
	m.JntLimited = b8(sz.Njnt)
	m.JntActFrcLimited = b8(sz.Njnt)
	m.JntSolRef = f64(2 * sz.Njnt)
	m.JntSolImp = f64(5 * sz.Njnt)
	m.JntPos = f64(3 * sz.Njnt)
	m.JntAxis = f64(3 * sz.Njnt)
	m.JntStiffness = f64(sz.Njnt)
	m.JntRange = f64(2 * sz.Njnt)
	m.JntActFrcRange = f64(2 * sz.Njnt)
	m.JntMargin = f64(sz.Njnt)
	m.JntUser = f64(sz.NuserJnt * sz.Njnt)

	m.DofBodyID = i32(sz.Nv)
	m.DofJntID = i32(sz.Nv)
	m.DofParentID = i32(sz.Nv)
	m.DofTreeID = i32(sz.Nv)
	m.DofMadr = i32(sz.Nv)
	m.DofSimpleNum = i32(sz.Nv)
	m.DofArmature = f64(sz.Nv)
	m.DofDamping = f64(sz.Nv)
	m.DofFrictionloss = f64(sz.Nv)

	m.GeomType = i32(sz.Ngeom)
	m.GeomContype = i32(sz.Ngeom)
	m.GeomConaffinity = i32(sz.Ngeom)
	m.GeomCondim = i32(sz.Ngeom)
	m.GeomBodyID = i32(sz.Ngeom)
	m.GeomDataID = i32(sz.Ngeom)
	m.GeomMatID = i32(sz.Ngeom)
	m.GeomGroup = i32(sz.Ngeom)
	m.GeomPriority = i32(sz.Ngeom)
	m.GeomSize = f64(3 * sz.Ngeom)
	m.GeomAABB = f64(6 * sz.Ngeom)
	m.GeomRBound = f64(sz.Ngeom)
	m.GeomPos = f64(3 * sz.Ngeom)
	m.GeomQuat = f64(4 * sz.Ngeom)
	m.GeomFriction = f64(3 * sz.Ngeom)
	m.GeomSolMix = f64(sz.Ngeom)
	m.GeomSolRef = f64(2 * sz.Ngeom)
	m.GeomSolImp = f64(5 * sz.Ngeom)
	m.GeomMargin = f64(sz.Ngeom)
	m.GeomGap = f64(sz.Ngeom)
	m.GeomRGBA = f32(4 * sz.Ngeom)
	m.GeomUser = f64(sz.NuserGeom * sz.Ngeom)

	m.SiteType = i32(sz.Nsite)
	m.SiteBodyID = i32(sz.Nsite)
	m.SiteMatID = i32(sz.Nsite)
	m.SiteGroup = i32(sz.Nsite)
	m.SiteSize = f64(3 * sz.Nsite)
	m.SitePos = f64(3 * sz.Nsite)
	m.SiteQuat = f64(4 * sz.Nsite)
	m.SiteRGBA = f32(4 * sz.Nsite)
	m.SiteUser = f64(sz.NuserSite * sz.Nsite)

	m.CamMode = i32(sz.Ncam)
	m.CamBodyID = i32(sz.Ncam)
	m.CamTargetBodyID = i32(sz.Ncam)
	m.CamPos = f64(3 * sz.Ncam)
	m.CamQuat = f64(4 * sz.Ncam)
	m.CamFovy = f64(sz.Ncam)
	m.CamIPD = f64(sz.Ncam)
	m.CamResolution = i32(2 * sz.Ncam)
	m.CamSensorSize = f64(2 * sz.Ncam)
	m.CamIntrinsic = f64(4 * sz.Ncam)
	m.CamUser = f64(sz.NuserCam * sz.Ncam)

	m.LightMode = i32(sz.Nlight)
	m.LightBodyID = i32(sz.Nlight)
	m.LightTargetBodyID = i32(sz.Nlight)
	m.LightDirectional = b8(sz.Nlight)
	m.LightCastShadow = b8(sz.Nlight)
	m.LightActive = b8(sz.Nlight)
	m.LightPos = f64(3 * sz.Nlight)
	m.LightDir = f64(3 * sz.Nlight)
	m.LightAttenuation = f64(3 * sz.Nlight)
	m.LightCutoff = f64(sz.Nlight)
	m.LightExponent = f64(sz.Nlight)
	m.LightAmbient = f32(3 * sz.Nlight)
	m.LightDiffuse = f32(3 * sz.Nlight)
	m.LightSpecular = f32(3 * sz.Nlight)

	m.FlexContype = i32(sz.Nflex)
	m.FlexConaffinity = i32(sz.Nflex)
	m.FlexCondim = i32(sz.Nflex)
	m.FlexPriority = i32(sz.Nflex)
	m.FlexSolMix = f64(sz.Nflex)
	m.FlexSolRef = f64(2 * sz.Nflex)
	m.FlexSolImp = f64(5 * sz.Nflex)
	m.FlexFriction = f64(3 * sz.Nflex)
	m.FlexMargin = f64(sz.Nflex)
	m.FlexGap = f64(sz.Nflex)
	m.FlexDim = i32(sz.Nflex)
	m.FlexMatID = i32(sz.Nflex)
	m.FlexGroup = i32(sz.Nflex)
	m.FlexVertAdr = i32(sz.Nflex)
	m.FlexVertNum = i32(sz.Nflex)
	m.FlexEdgeAdr = i32(sz.Nflex)
	m.FlexEdgeNum = i32(sz.Nflex)
	m.FlexElemAdr = i32(sz.Nflex)
	m.FlexElemNum = i32(sz.Nflex)
	m.FlexElemDataAdr = i32(sz.Nflex)
	m.FlexShellDataAdr = i32(sz.Nflex)
	m.FlexShellNum = i32(sz.Nflex)
	m.FlexEvPairAdr = i32(sz.Nflex)
	m.FlexEvPairNum = i32(sz.Nflex)
	m.FlexTexcoordAdr = i32(sz.Nflex)
	m.FlexVertBodyID = i32(sz.NflexVert)
	m.FlexVert = f64(3 * sz.NflexVert)
	m.FlexEdge = i32(2 * sz.NflexEdge)
	m.FlexElem = i32(sz.NflexElemData)
	m.FlexShell = i32(sz.NflexShellData)
	m.FlexEvPair = i32(2 * sz.NflexEvPair)
	m.FlexTexcoord = f64(2 * sz.NflexTexcoord)
	m.FlexRadius = f64(sz.Nflex)
	m.FlexEdgeStiffness = f64(sz.Nflex)
	m.FlexEdgeDamping = f64(sz.Nflex)
	m.FlexRGBA = f32(4 * sz.Nflex)
	m.FlexBVHAdr = i32(sz.Nflex)
	m.FlexBVHNum = i32(sz.Nflex)
	m.FlexInternal = b8(sz.Nflex)
	m.FlexSelfColl = i32(sz.Nflex)

	m.MeshVertAdr = i32(sz.Nmesh)
	m.MeshVertNum = i32(sz.Nmesh)
	m.MeshNormalAdr = i32(sz.Nmesh)
	m.MeshNormalNum = i32(sz.Nmesh)
	m.MeshTexcoordAdr = i32(sz.Nmesh)
	m.MeshTexcoordNum = i32(sz.Nmesh)
	m.MeshFaceAdr = i32(sz.Nmesh)
	m.MeshFaceNum = i32(sz.Nmesh)
	m.MeshGraphAdr = i32(sz.Nmesh)
	m.MeshBVHAdr = i32(sz.Nmesh)
	m.MeshBVHNum = i32(sz.Nmesh)
	m.MeshPos = f64(3 * sz.Nmesh)
	m.MeshQuat = f64(4 * sz.Nmesh)
	m.MeshVert = f64(3 * sz.NmeshVert)
	m.MeshNormal = f64(3 * sz.NmeshNormal)
	m.MeshTexcoord = f64(2 * sz.NmeshTexcoord)
	m.MeshFace = i32(3 * sz.NmeshFace)
	m.MeshGraph = i32(sz.NmeshGraph)
	m.MeshPathAdr = i32(sz.Nmesh)

	m.SkinMatID = i32(sz.Nskin)
	m.SkinGroup = i32(sz.Nskin)
	m.SkinRGBA = f32(4 * sz.Nskin)
	m.SkinInflate = f32(sz.Nskin)
	m.SkinVertAdr = i32(sz.Nskin)
	m.SkinVertNum = i32(sz.Nskin)
	m.SkinTexcoordAdr = i32(sz.Nskin)
	m.SkinFaceAdr = i32(sz.Nskin)
	m.SkinFaceNum = i32(sz.Nskin)
	m.SkinBoneAdr = i32(sz.Nskin)
	m.SkinBoneNum = i32(sz.Nskin)
	m.SkinVert = f32(3 * sz.NskinVert)
	m.SkinTexcoord = f32(2 * sz.NskinTexVert)
	m.SkinFace = i32(3 * sz.NskinFace)
	m.SkinBoneVertAdr = i32(sz.NskinBone)
	m.SkinBoneVertNum = i32(sz.NskinBone)
	m.SkinBoneBindPos = f32(3 * sz.NskinBone)
	m.SkinBoneBindQuat = f32(4 * sz.NskinBone)
	m.SkinBoneBodyID = i32(sz.NskinBone)
	m.SkinBoneVertID = i32(sz.NskinBoneVert)
	m.SkinBoneVertWeight = f32(sz.NskinBoneVert)
	m.SkinPathAdr = i32(sz.Nskin)

	m.HFieldSize = f64(4 * sz.Nhfield)
	m.HFieldNRow = i32(sz.Nhfield)
	m.HFieldNCol = i32(sz.Nhfield)
	m.HFieldAdr = i32(sz.Nhfield)
	m.HFieldData = f32(sz.NhfieldData)
	m.HFieldPathAdr = i32(sz.Nhfield)

	m.TexType = i32(sz.Ntex)
	m.TexHeight = i32(sz.Ntex)
	m.TexWidth = i32(sz.Ntex)
	m.TexAdr = i32(sz.Ntex)
	m.TexData = b8(sz.NtexData)
	m.TexPathAdr = i32(sz.Ntex)

	m.MatTexID = i32(sz.Nmat)
	m.MatTexUniform = b8(sz.Nmat)
	m.MatTexRepeat = f32(2 * sz.Nmat)
	m.MatEmission = f32(sz.Nmat)
	m.MatSpecular = f32(sz.Nmat)
	m.MatShininess = f32(sz.Nmat)
	m.MatReflectance = f32(sz.Nmat)
	m.MatRGBA = f32(4 * sz.Nmat)

	m.PairDim = i32(sz.Npair)
	m.PairGeom1 = i32(sz.Npair)
	m.PairGeom2 = i32(sz.Npair)
	m.PairSignature = u32(sz.Npair)
	m.PairSolRef = f64(2 * sz.Npair)
	m.PairSolRefFrict = f64(2 * sz.Npair)
	m.PairSolImp = f64(5 * sz.Npair)
	m.PairMargin = f64(sz.Npair)
	m.PairGap = f64(sz.Npair)
	m.PairFriction = f64(5 * sz.Npair)
	m.ExcludeSignature = u32(sz.Nexclude)

	m.EqType = i32(sz.Neq)
	m.EqObj1ID = i32(sz.Neq)
	m.EqObj2ID = i32(sz.Neq)
	m.EqActive = b8(sz.Neq)
	m.EqSolRef = f64(2 * sz.Neq)
	m.EqSolImp = f64(5 * sz.Neq)
	m.EqData = f64(11 * sz.Neq)

	m.TendonAdr = i32(sz.Ntendon)
	m.TendonNum = i32(sz.Ntendon)
	m.TendonMatID = i32(sz.Ntendon)
	m.TendonGroup = i32(sz.Ntendon)
	m.TendonLimited = b8(sz.Ntendon)
	m.TendonWidth = f64(sz.Ntendon)
	m.TendonSolRefLim = f64(2 * sz.Ntendon)
	m.TendonSolImpLim = f64(5 * sz.Ntendon)
	m.TendonSolRefFri = f64(2 * sz.Ntendon)
	m.TendonSolImpFri = f64(5 * sz.Ntendon)
	m.TendonRange = f64(2 * sz.Ntendon)
	m.TendonMargin = f64(sz.Ntendon)
	m.TendonStiffness = f64(sz.Ntendon)
	m.TendonDamping = f64(sz.Ntendon)
	m.TendonFrictionloss = f64(sz.Ntendon)
	m.TendonLengthSpring = f64(2 * sz.Ntendon)
	m.TendonLength0 = f64(sz.Ntendon)
	m.TendonUser = f64(sz.NuserTendon * sz.Ntendon)
	m.WrapType = i32(sz.Nwrap)
	m.WrapObjID = i32(sz.Nwrap)
	m.WrapPrm = f64(sz.Nwrap)

	m.ActuatorTrnType = i32(sz.Nu)
	m.ActuatorDynType = i32(sz.Nu)
	m.ActuatorGainType = i32(sz.Nu)
	m.ActuatorBiasType = i32(sz.Nu)
	m.ActuatorTrnID = i32(2 * sz.Nu)
	m.ActuatorActAdr = i32(sz.Nu)
	m.ActuatorActNum = i32(sz.Nu)
	m.ActuatorGroup = i32(sz.Nu)
	m.ActuatorCtrlLimited = b8(sz.Nu)
	m.ActuatorForceLimited = b8(sz.Nu)
	m.ActuatorActLimited = b8(sz.Nu)
	m.ActuatorDynPrm = f64(10 * sz.Nu)
	m.ActuatorGainPrm = f64(10 * sz.Nu)
	m.ActuatorBiasPrm = f64(10 * sz.Nu)
	m.ActuatorActEarly = b8(sz.Nu)
	m.ActuatorCtrlRange = f64(2 * sz.Nu)
	m.ActuatorForceRange = f64(2 * sz.Nu)
	m.ActuatorActRange = f64(2 * sz.Nu)
	m.ActuatorGear = f64(6 * sz.Nu)
	m.ActuatorCrankLength = f64(sz.Nu)
	m.ActuatorLength0 = f64(sz.Nu)
	m.ActuatorLengthRange = f64(2 * sz.Nu)
	m.ActuatorPluginID = i32(sz.Nu)
	m.ActuatorUser = f64(sz.NuserActuator * sz.Nu)

	m.SensorType = i32(sz.Nsensor)
	m.SensorDatatype = i32(sz.Nsensor)
	m.SensorNeedStage = i32(sz.Nsensor)
	m.SensorObjType = i32(sz.Nsensor)
	m.SensorObjID = i32(sz.Nsensor)
	m.SensorRefType = i32(sz.Nsensor)
	m.SensorRefID = i32(sz.Nsensor)
	m.SensorDim = i32(sz.Nsensor)
	m.SensorAdr = i32(sz.Nsensor)
	m.SensorCutoff = f64(sz.Nsensor)
	m.SensorNoise = f64(sz.Nsensor)
	m.SensorPluginID = i32(sz.Nsensor)
	m.SensorUser = f64(sz.NuserSensor * sz.Nsensor)

	m.PluginStateAdr = i32(sz.Nplugin)
	m.PluginStateNum = i32(sz.Nplugin)
	m.PluginAttrAdr = i32(sz.Nplugin)
	m.PluginAttr = b8(sz.NpluginAttr)

	m.NumericAdr = i32(sz.Nnumeric)
	m.NumericSize = i32(sz.Nnumeric)
	m.NumericData = f64(sz.NnumericData)
	m.TextAdr = i32(sz.Ntext)
	m.TextSize = i32(sz.Ntext)
	m.TextData = b8(sz.NtextData)
	m.TupleAdr = i32(sz.Ntuple)
	m.TupleSize = i32(sz.Ntuple)
	m.TupleObjType = i32(sz.NtupleData)
	m.TupleObjID = i32(sz.NtupleData)
	m.TupleObjPrm = f64(sz.NtupleData)

	m.KeyTime = f64(sz.Nkey)
	m.KeyQpos = f64(sz.Nq * sz.Nkey)
	m.KeyQvel = f64(sz.Nv * sz.Nkey)
	m.KeyAct = f64(sz.Na * sz.Nkey)
	m.KeyMPos = f64(3 * sz.Nmocap * sz.Nkey)
	m.KeyMQuat = f64(4 * sz.Nmocap * sz.Nkey)
	m.KeyCtrl = f64(sz.Nu * sz.Nkey)

	m.Qpos0 = f64(sz.Nq)
	m.QposSpring = f64(sz.Nq)

	m.Names = b8(sz.Nnames)
	m.NamesMap = i32(sz.NnamesMap)
	m.NameBodyAdr = i32(sz.Nbody)
	m.NameJntAdr = i32(sz.Njnt)
	m.NameGeomAdr = i32(sz.Ngeom)
	m.NameSiteAdr = i32(sz.Nsite)
	m.NameCamAdr = i32(sz.Ncam)
	m.NameLightAdr = i32(sz.Nlight)
	m.NameFlexAdr = i32(sz.Nflex)
	m.NameMeshAdr = i32(sz.Nmesh)
	m.NameSkinAdr = i32(sz.Nskin)
	m.NameHFieldAdr = i32(sz.Nhfield)
	m.NameTexAdr = i32(sz.Ntex)
	m.NameMatAdr = i32(sz.Nmat)
	m.NamePairAdr = i32(sz.Npair)
	m.NameExcludeAdr = i32(sz.Nexclude)
	m.NameEqAdr = i32(sz.Neq)
	m.NameTendonAdr = i32(sz.Ntendon)
	m.NameActuatorAdr = i32(sz.Nu)
	m.NameSensorAdr = i32(sz.Nsensor)
	m.NameNumericAdr = i32(sz.Nnumeric)
	m.NameTextAdr = i32(sz.Ntext)
	m.NameTupleAdr = i32(sz.Ntuple)
	m.NameKeyAdr = i32(sz.Nkey)
	m.NamePluginAdr = i32(sz.Nplugin)
	m.Paths = b8(sz.Npaths)

	return m
}
