package simulation

// Series is one reactor's trajectory. X holds mole fractions per species.
type Series struct {
	T []float64            `json:"T"`
	P []float64            `json:"P"`
	X map[string][]float64 `json:"X"`
}

// Last returns the final index of the series, or -1 when it is empty.
func (s Series) Last() int {
	return len(s.T) - 1
}

// ReactorReport is the engine's textual description of a reactor state.
type ReactorReport struct {
	ReactorReport string `json:"reactor_report"`
	ThermoReport  string `json:"thermo_report"`
}

// FlowReport carries computed rates for a flow device. Volumetric rates
// are optional; zero means the engine did not compute them.
type FlowReport struct {
	MassFlowRate     float64 `json:"mass_flow_rate"`
	VolumetricReal   float64 `json:"volumetric_flow_real,omitempty"`
	VolumetricNormal float64 `json:"volumetric_flow_normal,omitempty"`
}

// Progress is a partial result pushed while a run is still going. Every
// snapshot is cumulative, so applying the latest one is enough.
type Progress struct {
	IsRunning         bool                     `json:"is_running"`
	IsComplete        bool                     `json:"is_complete"`
	ErrorMessage      string                   `json:"error_message,omitempty"`
	CurrentTime       float64                  `json:"current_time,omitempty"`
	TotalTime         float64                  `json:"total_time,omitempty"`
	Times             []float64                `json:"times"`
	ReactorsSeries    map[string]Series        `json:"reactors_series"`
	ReactorReports    map[string]ReactorReport `json:"reactor_reports,omitempty"`
	ConnectionReports map[string]FlowReport    `json:"connection_reports,omitempty"`
}

// SummaryRow is one line of the tabular summary.
type SummaryRow struct {
	Reactor  string  `json:"reactor"`
	Quantity string  `json:"quantity"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// SankeyLinks is columnar: the i-th link is Source[i] -> Target[i].
type SankeyLinks struct {
	Source []int     `json:"source"`
	Target []int     `json:"target"`
	Value  []float64 `json:"value"`
	Color  []string  `json:"color,omitempty"`
	Label  []string  `json:"label,omitempty"`
}

// Len is the number of links.
func (l SankeyLinks) Len() int {
	n := len(l.Source)
	if len(l.Target) < n {
		n = len(l.Target)
	}
	if len(l.Value) < n {
		n = len(l.Value)
	}
	return n
}

// Results is the terminal payload: the final progress plus everything
// that only exists once the run is done.
type Results struct {
	Progress
	Status      string       `json:"status,omitempty"`
	CodeStr     string       `json:"code_str"`
	Summary     []SummaryRow `json:"summary"`
	SankeyLinks *SankeyLinks `json:"sankey_links,omitempty"`
	SankeyNodes []string     `json:"sankey_nodes,omitempty"`
	ElapsedTime float64      `json:"elapsed_time"`
}

// Status values of the results endpoint.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusError    = "error"
)

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
