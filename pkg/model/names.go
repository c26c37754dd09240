package model

import (
	"github.com/Faultbox/kforge/pkg/spec"
)

// HashName is the djb2 hash over the name bytes, modulo n.
func HashName(name string, n int32) int32 {
	h := uint64(5381)
	for i := 0; i < len(name); i++ {
		h = ((h << 5) + h) + uint64(name[i])
	}
	return int32(h % uint64(n))
}

// segment describes one kind's slice of the names table and map.
type segment struct {
	typ     spec.ObjType
	count   int32
	nameAdr []int32
}

// NameSegments returns the per-kind name segments in packing order.
// The hash map is laid out as consecutive per-kind regions of capacity
// LoadMultiple*count in this same order.
func (m *Model) NameSegments() []struct {
	Typ     spec.ObjType
	Count   int32
	NameAdr []int32
} {
	segs := []segment{
		{spec.ObjBody, m.Nbody, m.NameBodyAdr},
		{spec.ObjJoint, m.Njnt, m.NameJntAdr},
		{spec.ObjGeom, m.Ngeom, m.NameGeomAdr},
		{spec.ObjSite, m.Nsite, m.NameSiteAdr},
		{spec.ObjCamera, m.Ncam, m.NameCamAdr},
		{spec.ObjLight, m.Nlight, m.NameLightAdr},
		{spec.ObjFlex, m.Nflex, m.NameFlexAdr},
		{spec.ObjMesh, m.Nmesh, m.NameMeshAdr},
		{spec.ObjSkin, m.Nskin, m.NameSkinAdr},
		{spec.ObjHField, m.Nhfield, m.NameHFieldAdr},
		{spec.ObjTexture, m.Ntex, m.NameTexAdr},
		{spec.ObjMaterial, m.Nmat, m.NameMatAdr},
		{spec.ObjPair, m.Npair, m.NamePairAdr},
		{spec.ObjExclude, m.Nexclude, m.NameExcludeAdr},
		{spec.ObjEquality, m.Neq, m.NameEqAdr},
		{spec.ObjTendon, m.Ntendon, m.NameTendonAdr},
		{spec.ObjActuator, m.Nu, m.NameActuatorAdr},
		{spec.ObjSensor, m.Nsensor, m.NameSensorAdr},
		{spec.ObjNumeric, m.Nnumeric, m.NameNumericAdr},
		{spec.ObjText, m.Ntext, m.NameTextAdr},
		{spec.ObjTuple, m.Ntuple, m.NameTupleAdr},
		{spec.ObjKey, m.Nkey, m.NameKeyAdr},
		{spec.ObjPlugin, m.Nplugin, m.NamePluginAdr},
	}
	out := make([]struct {
		Typ     spec.ObjType
		Count   int32
		NameAdr []int32
	}, len(segs))
	for i, s := range segs {
		out[i].Typ = s.typ
		out[i].Count = s.count
		out[i].NameAdr = s.nameAdr
	}
	return out
}

// NameAt returns the name stored at the given address in the names
// table.
func (m *Model) NameAt(adr int32) string {
	if adr < 0 || int(adr) >= len(m.Names) {
		return ""
	}
	end := adr
	for int(end) < len(m.Names) && m.Names[end] != 0 {
		end++
	}
	return string(m.Names[adr:end])
}

// FindName resolves a name to an entity id via the packed hash map.
// Returns -1 when the name is absent. Empty names never resolve.
func (m *Model) FindName(typ spec.ObjType, name string) int32 {
	if name == "" {
		return -1
	}

	mapAdr := int32(0)
	for _, seg := range m.NameSegments() {
		capacity := LoadMultiple * seg.Count
		if seg.Typ != typ {
			mapAdr += capacity
			continue
		}
		if capacity == 0 {
			return -1
		}
		j := HashName(name, capacity)
		for probe := int32(0); probe < capacity; probe++ {
			id := m.NamesMap[mapAdr+j]
			if id == -1 {
				return -1
			}
			if m.NameAt(seg.NameAdr[id]) == name {
				return id
			}
			j = (j + 1) % capacity
		}
		return -1
	}
	return -1
}
