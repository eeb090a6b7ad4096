package models

import "time"

// AircraftStatus is the operational state of an aircraft relative to an airport
type AircraftStatus string

const (
	StatusParked      AircraftStatus = "Parked"
	StatusArriving    AircraftStatus = "Arriving"
	StatusDeparting   AircraftStatus = "Departing"
	StatusMaintenance AircraftStatus = "Maintenance"
)

// Flight plan status values as stored by the flight-operations data store
const (
	PlanScheduled   = "SCHEDULED"
	PlanFlying      = "FLYING"
	PlanArrived     = "ARRIVED"
	PlanMaintenance = "MAINTENANCE"
	PlanCanceled    = "CANCELED"
)

// Size classes used for fleet planning
const (
	SizeLight          = "Light"
	SizeMid            = "Mid-Size"
	SizeSuperMid       = "Super Mid-Size"
	SizeLarge          = "Large"
	SizeLongRangeLarge = "Long Range Large"
	SizeUnknown        = "Unknown"
)

var sizeClasses = map[string]string{
	"E55P": SizeLight,
	"C56X": SizeMid,
	"C680": SizeMid,
	"C68A": SizeMid,
	"C700": SizeSuperMid,
	"CL35": SizeSuperMid,
	"CL60": SizeLarge,
	"GL5T": SizeLongRangeLarge,
	"GLEX": SizeLongRangeLarge,
	"GL7T": SizeLongRangeLarge,
}

// SizeClass returns the fleet size class for an ICAO type code
func SizeClass(typeCode string) string {
	if s, ok := sizeClasses[typeCode]; ok {
		return s
	}
	return SizeUnknown
}

// Aircraft is a fleet member as seen from one airport's ramp roster.
// EventTime depends on Status: arrival for Arriving, departure for
// Departing, next scheduled departure for Parked and maintenance start
// for Maintenance.
type Aircraft struct {
	TailNumber string         `json:"tail_number"` // Aircraft identifier (ACID)
	TypeCode   string         `json:"type_code"`   // ICAO type designator, e.g. CL35
	Size       string         `json:"size,omitempty"`
	Area       float64        `json:"area"` // Parking footprint in ft², unpadded
	Status     AircraftStatus `json:"status,omitempty"`
	FBOName    string         `json:"fbo_name,omitempty"`
	EventTime  *time.Time     `json:"event_time,omitempty"`
}

// AircraftType is reference data describing the parking footprint of a type
type AircraftType struct {
	TypeCode    string  `json:"type_code"`
	Size        string  `json:"size"`
	ParkingArea float64 `json:"parking_area"` // ft²
}

// Footprint is the resolved parking requirement of a single aircraft
type Footprint struct {
	TailNumber string  `json:"tail_number"`
	TypeCode   string  `json:"type_code"`
	Size       string  `json:"size"`
	Area       float64 `json:"area"` // ft², unpadded
}

// ParkedAircraft is an aircraft currently on the ramp at an airport
type ParkedAircraft struct {
	TailNumber    string     `json:"tail_number"`
	TypeCode      string     `json:"type_code"`
	Area          float64    `json:"area"`                     // ft², unpadded
	FBOID         *int64     `json:"fbo_id,omitempty"`         // Current lot, if known
	NextDeparture *time.Time `json:"next_departure,omitempty"` // Earliest scheduled departure from this airport
}

// FlightPlan is a single leg record from the flight-operations data store
type FlightPlan struct {
	FlightRef        string     `json:"flight_ref"`
	TailNumber       string     `json:"tail_number"`
	DepartingAirport string     `json:"departing_airport"`
	ArrivalAirport   string     `json:"arrival_airport"`
	Status           string     `json:"status"`
	ETD              *time.Time `json:"etd,omitempty"`
	ETA              *time.Time `json:"eta,omitempty"`
	FBOID            *int64     `json:"fbo_id,omitempty"`
}
