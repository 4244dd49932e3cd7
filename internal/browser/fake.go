package browser

import "errors"

type FakeEngine struct {
	Session  *FakeSession
	StartErr error
	Starts   int
}

func (f *FakeEngine) Start(opts StartOptions) (Session, error) {
	f.Starts++
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	if f.Session == nil {
		f.Session = &FakeSession{}
	}
	f.Session.Opts = opts
	return f.Session, nil
}

type FakeSession struct {
	// Page, when set, is handed out by the next NewPage call.
	Page       *FakePage
	Pages      []*FakePage
	Opts       StartOptions
	NewPageErr error
	Closed     bool
	CloseCount int
}

func (s *FakeSession) NewPage() (Page, error) {
	if s.NewPageErr != nil {
		return nil, s.NewPageErr
	}
	page := s.Page
	s.Page = nil
	if page == nil {
		page = &FakePage{}
	}
	s.Pages = append(s.Pages, page)
	return page, nil
}

func (s *FakeSession) Close() error {
	s.Closed = true
	s.CloseCount++
	return nil
}

// FakeExchange is one scripted request/response pair.
type FakeExchange struct {
	URL     string
	Method  string
	Status  int
	Body    string
	BodyErr error
}

func (e FakeExchange) request() fakeRequest {
	method := e.Method
	if method == "" {
		method = "GET"
	}
	return fakeRequest{url: e.URL, method: method}
}

func (e FakeExchange) response() fakeResponse {
	status := e.Status
	if status == 0 {
		status = 200
	}
	return fakeResponse{url: e.URL, status: status, body: e.Body, err: e.BodyErr}
}

// FakePage replays Exchanges during Goto, then reports NavStatus.
type FakePage struct {
	Exchanges    []FakeExchange
	NavStatus    int
	GotoErr      error
	InterceptErr error

	Intercepted bool
	Continued   []string
	Visited     []string
	Closed      bool

	onRequest  []func(Request)
	onResponse []func(Response)
}

func (p *FakePage) OnRequest(fn func(Request)) {
	p.onRequest = append(p.onRequest, fn)
}

func (p *FakePage) OnResponse(fn func(Response)) {
	p.onResponse = append(p.onResponse, fn)
}

func (p *FakePage) InterceptAll() error {
	if p.InterceptErr != nil {
		return p.InterceptErr
	}
	p.Intercepted = true
	return nil
}

func (p *FakePage) Goto(url string) (Navigation, error) {
	p.Visited = append(p.Visited, url)
	if p.GotoErr != nil {
		return Navigation{}, p.GotoErr
	}
	for _, ex := range p.Exchanges {
		p.Emit(ex)
	}
	status := p.NavStatus
	if status == 0 {
		status = 200
	}
	return Navigation{URL: url, Status: status}, nil
}

// Emit fires the request observers, continues the request when interception
// is on, then fires the response observers.
func (p *FakePage) Emit(ex FakeExchange) {
	req := ex.request()
	for _, fn := range p.onRequest {
		fn(req)
	}
	if p.Intercepted {
		p.Continued = append(p.Continued, ex.URL)
	}
	resp := ex.response()
	for _, fn := range p.onResponse {
		fn(resp)
	}
}

func (p *FakePage) Close() error {
	p.Closed = true
	return nil
}

type fakeRequest struct {
	url    string
	method string
}

func (r fakeRequest) URL() string    { return r.url }
func (r fakeRequest) Method() string { return r.method }

type fakeResponse struct {
	url    string
	status int
	body   string
	err    error
}

func (r fakeResponse) URL() string { return r.url }
func (r fakeResponse) Status() int { return r.status }

func (r fakeResponse) Body() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

var ErrFakeBody = errors.New("fake: body unavailable")
