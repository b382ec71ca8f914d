package facility

import "fmt"

// VehicleKind identifies the class of vehicle a spot can hold. The set is
// closed; a spot's kind is fixed at creation and a vehicle's kind is
// supplied by the caller per park request.
type VehicleKind string

const (
	KindCar   VehicleKind = "car"
	KindBike  VehicleKind = "bike"
	KindTruck VehicleKind = "truck"
)

func (k VehicleKind) Valid() bool {
	switch k {
	case KindCar, KindBike, KindTruck:
		return true
	}
	return false
}

func (k VehicleKind) String() string {
	return string(k)
}

// ParseVehicleKind maps a caller-supplied string to a VehicleKind.
func ParseVehicleKind(s string) (VehicleKind, error) {
	k := VehicleKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown vehicle kind %q", s)
	}
	return k, nil
}
