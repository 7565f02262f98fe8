package rig

import "sort"

// Model IDs follow hamlib numbering so existing rigctl habits carry over.
const (
	ModelDummy  = 1
	ModelNetRig = 2
	ModelIC7100 = 3070
	ModelIC7300 = 3073
	ModelIC7610 = 3078
	ModelIC9700 = 3081
	ModelIC705  = 3085
)

const icomDefaultBaud = 19200

var models = map[int]Model{
	ModelDummy:  {ID: ModelDummy, Manufacturer: "Hamlib", Name: "Dummy", Backend: BackendDummy},
	ModelNetRig: {ID: ModelNetRig, Manufacturer: "Hamlib", Name: "NET rigctl", Backend: BackendRigctld},
	ModelIC7100: {ID: ModelIC7100, Manufacturer: "Icom", Name: "IC-7100", Backend: BackendCIV, CIVAddress: 0x88, DefaultBaud: icomDefaultBaud},
	ModelIC7300: {ID: ModelIC7300, Manufacturer: "Icom", Name: "IC-7300", Backend: BackendCIV, CIVAddress: 0x94, DefaultBaud: icomDefaultBaud},
	ModelIC7610: {ID: ModelIC7610, Manufacturer: "Icom", Name: "IC-7610", Backend: BackendCIV, CIVAddress: 0x98, DefaultBaud: icomDefaultBaud},
	ModelIC9700: {ID: ModelIC9700, Manufacturer: "Icom", Name: "IC-9700", Backend: BackendCIV, CIVAddress: 0xA2, DefaultBaud: icomDefaultBaud},
	ModelIC705:  {ID: ModelIC705, Manufacturer: "Icom", Name: "IC-705", Backend: BackendCIV, CIVAddress: 0xA4, DefaultBaud: icomDefaultBaud},
}

// Models returns the known models sorted by ID.
func Models() []Model {
	list := make([]Model, 0, len(models))
	for _, m := range models {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list
}

// Lookup returns the model registered under id.
func Lookup(id int) (Model, bool) {
	m, ok := models[id]
	return m, ok
}
