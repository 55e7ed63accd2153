package ssllabs

// Wire types for the grading API analyze endpoint. Only the fields the engine
// consumes are declared; the API returns far more.

type hostReport struct {
	Host      string     `json:"host"`
	Status    string     `json:"status"`
	Endpoints []endpoint `json:"endpoints"`
}

type endpoint struct {
	IPAddress string           `json:"ipAddress"`
	Grade     string           `json:"grade"`
	Details   *endpointDetails `json:"details"`
}

type endpointDetails struct {
	Protocols []protocol `json:"protocols"`
	Cert      *cert      `json:"cert"`
	Key       *key       `json:"key"`
	// Bitmask: 0 means no forward secrecy, >=2 means the modern browsers
	// the API simulates negotiated it.
	ForwardSecrecy int `json:"forwardSecrecy"`
}

type protocol struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type cert struct {
	Subject string `json:"subject"`
}

type key struct {
	Alg  string `json:"alg"`
	Size int    `json:"size"`
}

// Assessment status values reported by the API.
const (
	statusReady = "READY"
	statusError = "ERROR"
)
