package fds

import "sort"

// Material holds the physical properties shared by every point of a FieldModel.
type Material struct {
	Name string
	// YoungsModulus in Pa (N/m^2).
	YoungsModulus float64
	// Density in kg/m^3.
	Density float64
}

// Steel returns a steel-like material.
func Steel() Material {
	return Material{Name: "steel", YoungsModulus: 200e6, Density: 8000}
}

// Air returns air at sea level. Young's modulus is unused by air columns and
// kept equal to steel's.
func Air() Material {
	return Material{Name: "air", YoungsModulus: 200e6, Density: 1.225}
}

// Nylon returns a nylon-like material for plucked string patches.
func Nylon() Material {
	return Material{Name: "nylon", YoungsModulus: 4e9, Density: 1140}
}

// Brass returns a brass-like material.
func Brass() Material {
	return Material{Name: "brass", YoungsModulus: 100e9, Density: 8500}
}

var materials = map[string]func() Material{
	"steel": Steel,
	"air":   Air,
	"nylon": Nylon,
	"brass": Brass,
}

// GetMaterial returns the named material preset.
func GetMaterial(name string) (Material, bool) {
	fn, ok := materials[name]
	if !ok {
		return Material{}, false
	}
	return fn(), true
}

// ListMaterials returns the preset names in sorted order.
func ListMaterials() []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
