package simconnect

// FlightLoadSimVars is the ordered data definition for flight load samples.
// The order fixes the byte layout of SimObjectData responses.
var FlightLoadSimVars = []SimVarDef{
	AirspeedTrue, AirspeedIndicated, GForce, PlaneAltitude,
}

const (
	DefIDFlightLoad uint32 = 1
	ReqIDFlightLoad uint32 = 1
	ObjectIDUser    uint32 = 0 // SIMCONNECT_OBJECT_ID_USER
)
