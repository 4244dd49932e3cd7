package browser

type StartOptions struct {
	Browser  string
	Channel  string
	Headless bool
	// NavTimeoutMs overrides the driver's default navigation timeout when > 0.
	NavTimeoutMs int
}

type Engine interface {
	Start(opts StartOptions) (Session, error)
}

type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single tab. Observers registered with OnRequest and OnResponse
// are called in network-event order, one at a time.
type Page interface {
	OnRequest(fn func(Request))
	OnResponse(fn func(Response))
	// InterceptAll routes every outbound request through the page and
	// continues it unmodified.
	InterceptAll() error
	Goto(url string) (Navigation, error)
	Close() error
}

type Request interface {
	URL() string
	Method() string
}

type Response interface {
	URL() string
	Status() int
	Body() ([]byte, error)
}

type Navigation struct {
	URL        string `json:"url"`
	Status     int    `json:"status"`
	StatusText string `json:"status_text,omitempty"`
}

// OK matches the driver's notion of success: any 2xx, or 0 for loads that
// carry no HTTP status (file://, data:).
func (n Navigation) OK() bool {
	return n.Status == 0 || (n.Status >= 200 && n.Status <= 299)
}
