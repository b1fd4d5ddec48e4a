package fleet

import (
	"errors"
	"strings"
	"time"
)

// DriverAvailability tracks what a driver is currently doing.
type DriverAvailability string

const (
	DriverAvailable DriverAvailability = "AVAILABLE"
	DriverOnTrip    DriverAvailability = "ON_TRIP"
	DriverOnLeave   DriverAvailability = "ON_LEAVE"
)

// Driver is an employed driver whose calendar is tracked through Schedule
// rows.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	Availability DriverAvailability
	VehicleID    *string
	CreatedAt    time.Time
}

// VehicleAvailability is the operational state of an owned vehicle.
type VehicleAvailability string

const (
	VehicleAvailable    VehicleAvailability = "AVAILABLE"
	VehicleUnavailable  VehicleAvailability = "UNAVAILABLE"
	VehicleOutOfService VehicleAvailability = "OUT_OF_SERVICE"
)

// Vehicle is an owned vehicle with a permanently assigned driver.
type Vehicle struct {
	ID           string
	PlateNumber  string
	Model        string
	Capacity     int
	Availability VehicleAvailability
	DriverID     *string
	CreatedAt    time.Time
}

// Assignable reports whether the vehicle can take a trip with the given
// passenger count at all (capacity and operational state; calendar checks
// are the caller's job).
func (v *Vehicle) Assignable(passengers int) bool {
	if v.Availability == VehicleUnavailable || v.Availability == VehicleOutOfService {
		return false
	}
	return v.Capacity >= passengers && v.DriverID != nil
}

// OutsourcedVehicle is a rented vehicle/driver pair used as a fallback
// resource. Outsourced drivers are not calendar-tracked.
type OutsourcedVehicle struct {
	ID          string
	DriverName  string
	DriverPhone string
	PlateNumber string
	Model       string
	Capacity    int
	Cost        float64
	VendorName  string
	CreatedAt   time.Time
}

var (
	ErrDriverNameRequired = errors.New("outsourced driver name is required")
	ErrPlateRequired      = errors.New("plate number is required")
	ErrCapacityTooSmall   = errors.New("vehicle capacity must be at least 1")
)

// NewOutsourcedVehicle validates and builds an outsourced vehicle row.
func NewOutsourcedVehicle(id, driverName, driverPhone, plateNumber, model string, capacity int, cost float64, vendorName string) (*OutsourcedVehicle, error) {
	if driverName = strings.TrimSpace(driverName); driverName == "" {
		return nil, ErrDriverNameRequired
	}
	if plateNumber = strings.TrimSpace(plateNumber); plateNumber == "" {
		return nil, ErrPlateRequired
	}
	if capacity < 1 {
		return nil, ErrCapacityTooSmall
	}
	return &OutsourcedVehicle{
		ID:          id,
		DriverName:  driverName,
		DriverPhone: strings.TrimSpace(driverPhone),
		PlateNumber: plateNumber,
		Model:       strings.TrimSpace(model),
		Capacity:    capacity,
		Cost:        cost,
		VendorName:  strings.TrimSpace(vendorName),
		CreatedAt:   time.Now().UTC(),
	}, nil
}
