package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/eytandecker/vn-diagram/internal/envelope"
	"github.com/eytandecker/vn-diagram/internal/render"
	"github.com/eytandecker/vn-diagram/internal/simconnect"
	"github.com/eytandecker/vn-diagram/internal/state"
	"github.com/eytandecker/vn-diagram/pkg/types"
)

// FlightLoadSource is the subset of state.Manager used by the MCP server.
type FlightLoadSource interface {
	FlightLoad() (types.FlightLoad, error)
	Peaks() state.Peaks
	TakePeaks() state.Peaks
}

// Server wraps the MCP SDK server and exposes V-n diagram tools.
type Server struct {
	sdk     *mcpsdk.Server
	live    FlightLoadSource
	diagram *envelope.Diagram
	log     *zap.Logger
}

// NewServer computes the diagram for the configured aircraft and registers
// the compute, render and live-check tools.
func NewServer(aircraft types.Aircraft, sweep envelope.Sweep, live FlightLoadSource, log *zap.Logger) (*Server, error) {
	d, err := envelope.Compute(aircraft, sweep)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		sdk: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    "vn-diagram",
			Version: "1.0.0",
		}, nil),
		live:    live,
		diagram: d,
		log:     log,
	}

	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "compute_vn_diagram",
		Description: "Computes limit load factors, corner speed and gust envelope endpoints of a V-n diagram. Omitted aircraft fields use the configured aircraft.",
	}, s.handleCompute)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "render_vn_diagram",
		Description: "Renders the V-n diagram (maneuver and gust envelope) as a PNG image or SVG document.",
	}, s.handleRender)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "check_flight_envelope",
		Description: "Checks the live airspeed and G load from the simulator against the configured aircraft's V-n envelope.",
	}, s.handleCheckEnvelope)
	return s, nil
}

// Run starts the MCP server over stdio and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.sdk.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect connects the server to an existing transport (used in tests).
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

// aircraftInput overrides fields of the configured aircraft. Zero values are ignored.
type aircraftInput struct {
	Name               string  `json:"name,omitempty" jsonschema:"display name of the aircraft"`
	StallSpeed         float64 `json:"stall_speed_kts,omitempty" jsonschema:"stall true airspeed at 1g in knots"`
	CruiseSpeed        float64 `json:"cruise_speed_kts,omitempty" jsonschema:"cruise true airspeed in knots"`
	DiveSpeed          float64 `json:"dive_speed_kts,omitempty" jsonschema:"maximum dive true airspeed in knots"`
	MaxTakeoffWeight   float64 `json:"max_takeoff_weight_lb,omitempty" jsonschema:"maximum takeoff weight in pounds"`
	WingArea           float64 `json:"wing_area_ft2,omitempty" jsonschema:"wing area in square feet"`
	LiftCurveSlope     float64 `json:"lift_curve_slope,omitempty" jsonschema:"lift curve slope"`
	CruiseGustVelocity float64 `json:"cruise_gust_fps,omitempty" jsonschema:"gust velocity at cruise speed in ft/s"`
	DiveGustVelocity   float64 `json:"dive_gust_fps,omitempty" jsonschema:"gust velocity at dive speed in ft/s"`
	AirDensity         float64 `json:"air_density,omitempty" jsonschema:"air density in lb/ft^3"`
}

func (in aircraftInput) apply(a types.Aircraft) types.Aircraft {
	if in.Name != "" {
		a.Name = in.Name
	}
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&a.StallSpeed, in.StallSpeed)
	set(&a.CruiseSpeed, in.CruiseSpeed)
	set(&a.DiveSpeed, in.DiveSpeed)
	set(&a.MaxTakeoffWeight, in.MaxTakeoffWeight)
	set(&a.WingArea, in.WingArea)
	set(&a.LiftCurveSlope, in.LiftCurveSlope)
	set(&a.CruiseGustVelocity, in.CruiseGustVelocity)
	set(&a.DiveGustVelocity, in.DiveGustVelocity)
	set(&a.AirDensity, in.AirDensity)
	return a
}

type computeInput struct {
	Aircraft aircraftInput `json:"aircraft,omitempty" jsonschema:"aircraft constant overrides"`
	SweepMax float64       `json:"sweep_max_kts,omitempty" jsonschema:"upper bound of the airspeed sweep in knots"`
	Samples  int           `json:"samples,omitempty" jsonschema:"number of airspeed samples"`
}

type renderInput struct {
	Aircraft aircraftInput `json:"aircraft,omitempty" jsonschema:"aircraft constant overrides"`
	SweepMax float64       `json:"sweep_max_kts,omitempty" jsonschema:"upper bound of the airspeed sweep in knots"`
	Samples  int           `json:"samples,omitempty" jsonschema:"number of airspeed samples"`
	Format   string        `json:"format,omitempty" jsonschema:"png or svg, default png"`
}

func (in renderInput) diagramInput() computeInput {
	return computeInput{Aircraft: in.Aircraft, SweepMax: in.SweepMax, Samples: in.Samples}
}

type checkInput struct {
	ResetPeaks bool `json:"reset_peaks,omitempty" jsonschema:"clear recorded peak loads after reporting them"`
}

// diagramFor returns the configured diagram, or a new one when the input overrides anything.
func (s *Server) diagramFor(in computeInput) (*envelope.Diagram, error) {
	if in == (computeInput{}) {
		return s.diagram, nil
	}
	sweep := s.diagram.Sweep
	if in.SweepMax != 0 {
		sweep.Max = in.SweepMax
	}
	if in.Samples != 0 {
		sweep.Samples = in.Samples
	}
	return envelope.Compute(in.Aircraft.apply(s.diagram.Aircraft), sweep)
}

func (s *Server) handleCompute(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	input computeInput,
) (*mcpsdk.CallToolResult, any, error) {
	d, err := s.diagramFor(input)
	if err != nil {
		return s.errorResult(err), nil, nil
	}
	data, err := json.Marshal(d.Summary())
	if err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) handleRender(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	input renderInput,
) (*mcpsdk.CallToolResult, any, error) {
	format := render.FormatPNG
	if input.Format != "" {
		f, err := render.ParseFormat(input.Format)
		if err == nil && f == render.FormatPDF {
			err = fmt.Errorf("%w: %s is file-only", render.ErrUnsupportedFormat, f)
		}
		if err != nil {
			return s.errorResult(err), nil, nil
		}
		format = f
	}

	d, err := s.diagramFor(input.diagramInput())
	if err != nil {
		return s.errorResult(err), nil, nil
	}
	img, err := render.Encode(d, format, render.DefaultOptions())
	if err != nil {
		return nil, nil, err
	}
	summary, err := json.Marshal(d.Summary())
	if err != nil {
		return nil, nil, err
	}
	s.log.Debug("rendered diagram", zap.String("aircraft", d.Aircraft.Name), zap.String("format", string(format)), zap.Int("bytes", len(img)))

	content := []mcpsdk.Content{&mcpsdk.TextContent{Text: string(summary)}}
	if format == render.FormatSVG {
		content = append(content, &mcpsdk.TextContent{Text: string(img)})
	} else {
		content = append(content, &mcpsdk.ImageContent{Data: img, MIMEType: format.MIMEType()})
	}
	return &mcpsdk.CallToolResult{Content: content}, nil, nil
}

// EnvelopeCheckResponse is the JSON payload returned by check_flight_envelope.
type EnvelopeCheckResponse struct {
	Aircraft       string              `json:"aircraft"`
	Assessment     envelope.Assessment `json:"assessment"`
	IndicatedSpeed float64             `json:"indicated_speed_kts"`
	Altitude       float64             `json:"altitude_ft"`
	NMax           float64             `json:"n_max"`
	NMin           float64             `json:"n_min"`
	Peaks          PeaksResponse       `json:"peaks"`
	Timestamp      string              `json:"timestamp"`
}

// PeaksResponse reports the extreme loads seen since the last reset.
type PeaksResponse struct {
	MaxLoadFactor float64 `json:"max_load_factor"`
	MinLoadFactor float64 `json:"min_load_factor"`
	MaxTrueSpeed  float64 `json:"max_true_speed_kts"`
	Samples       int     `json:"samples"`
	ExceededNMax  bool    `json:"exceeded_n_max"`
	ExceededNMin  bool    `json:"exceeded_n_min"`
	ExceededVDive bool    `json:"exceeded_v_dive"`
}

func (s *Server) handleCheckEnvelope(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	input checkInput,
) (*mcpsdk.CallToolResult, any, error) {
	load, err := s.live.FlightLoad()
	if err != nil {
		return s.errorResult(err), nil, nil
	}

	d := s.diagram
	assessment := d.Assess(load.TrueSpeed, load.LoadFactor)
	if assessment.Status == envelope.StatusInvalidSample {
		return s.errorResult(fmt.Errorf("%w: tas %v kts, load factor %v", envelope.ErrInvalidSample, load.TrueSpeed, load.LoadFactor)), nil, nil
	}

	var peaks state.Peaks
	if input.ResetPeaks {
		peaks = s.live.TakePeaks()
	} else {
		peaks = s.live.Peaks()
	}

	resp := EnvelopeCheckResponse{
		Aircraft:       d.Aircraft.Name,
		Assessment:     assessment,
		IndicatedSpeed: load.IndicatedSpeed,
		Altitude:       load.Altitude,
		NMax:           d.NMax,
		NMin:           d.NMin,
		Peaks: PeaksResponse{
			MaxLoadFactor: peaks.MaxLoadFactor,
			MinLoadFactor: peaks.MinLoadFactor,
			MaxTrueSpeed:  peaks.MaxTrueSpeed,
			Samples:       peaks.Samples,
			ExceededNMax:  peaks.MaxLoadFactor > d.NMax,
			ExceededNMin:  peaks.MinLoadFactor < d.NMin,
			ExceededVDive: peaks.MaxTrueSpeed > d.Aircraft.DiveSpeed,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if resp.Assessment.Status != envelope.StatusWithin {
		s.log.Info("flight load outside envelope",
			zap.String("status", string(resp.Assessment.Status)),
			zap.Float64("tas_kts", load.TrueSpeed),
			zap.Float64("load_factor", load.LoadFactor))
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

// ToolErrorResponse is returned when a tool cannot produce its result.
type ToolErrorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
	Suggestion  string `json:"suggestion"`
	Timestamp   string `json:"timestamp"`
}

func (s *Server) errorResult(err error) *mcpsdk.CallToolResult {
	resp := ToolErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	switch {
	case errors.Is(err, types.ErrInvalidAircraft):
		resp.Code = "INVALID_AIRCRAFT"
		resp.Recoverable = true
		resp.Suggestion = "Use positive constants with stall < cruise < dive speed."
	case errors.Is(err, envelope.ErrInvalidSweep):
		resp.Code = "INVALID_SWEEP"
		resp.Recoverable = true
		resp.Suggestion = "Use between 2 and 100000 samples and a positive sweep maximum."
	case errors.Is(err, render.ErrUnsupportedFormat):
		resp.Code = "UNSUPPORTED_FORMAT"
		resp.Recoverable = true
		resp.Suggestion = "Request png or svg."
	case errors.Is(err, envelope.ErrInvalidSample):
		resp.Code = "INVALID_SAMPLE"
		resp.Recoverable = true
		resp.Suggestion = "The simulator sent a non-finite airspeed or load factor; retry on the next sample."
	case errors.Is(err, state.ErrStale):
		resp.Code = "DATA_STALE"
		resp.Recoverable = true
		resp.Suggestion = "Wait for the simulator to send fresh data."
	case errors.Is(err, simconnect.ErrNotConnected), types.IsRecoverable(err):
		resp.Code = "SIMULATOR_NOT_CONNECTED"
		resp.Recoverable = true
		resp.Suggestion = "Ensure the flight simulator is running with SimConnect enabled."
	default:
		resp.Code = "UNKNOWN_ERROR"
		resp.Suggestion = "Check application logs for details."
	}
	s.log.Debug("tool error", zap.String("code", resp.Code), zap.Error(err))

	data, _ := json.Marshal(resp)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
		IsError: true,
	}
}
