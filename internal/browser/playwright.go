package browser

import (
	"errors"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// ErrNoResponse is returned by Goto when the driver resolves navigation
// without a main resource response.
var ErrNoResponse = errors.New("navigation returned no response")

type PlaywrightEngine struct{}

func (p PlaywrightEngine) Start(opts StartOptions) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	bt, err := browserType(pw, opts.Browser)
	if err != nil {
		pw.Stop()
		return nil, err
	}
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	browser, err := bt.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, err
	}
	ctx, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, err
	}
	if opts.NavTimeoutMs > 0 {
		ctx.SetDefaultNavigationTimeout(float64(opts.NavTimeoutMs))
	}
	return &playwrightSession{pw: pw, browser: browser, ctx: ctx}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	pages   []*playwrightPage
}

func (s *playwrightSession) NewPage() (Page, error) {
	page, err := s.ctx.NewPage()
	if err != nil {
		return nil, err
	}
	p := newPlaywrightPage(page)
	s.pages = append(s.pages, p)
	return p, nil
}

func (s *playwrightSession) Close() error {
	for _, p := range s.pages {
		p.stopEvents()
	}
	if s.ctx != nil {
		_ = s.ctx.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
	return nil
}

// playwrightPage hands driver events to a single worker goroutine so that
// observers see them in order and can call back into the driver (Body)
// without blocking its dispatch loop. The queue is unbounded so the driver
// never waits on a slow observer.
type playwrightPage struct {
	page     playwright.Page
	mu       sync.Mutex
	pending  []func()
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newPlaywrightPage(page playwright.Page) *playwrightPage {
	p := &playwrightPage{
		page: page,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go p.drain()
	return p
}

func (p *playwrightPage) drain() {
	for {
		select {
		case <-p.wake:
		case <-p.done:
			return
		}
		for job := p.next(); job != nil; job = p.next() {
			job()
		}
	}
}

func (p *playwrightPage) next() func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return nil
	}
	job := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	return job
}

func (p *playwrightPage) enqueue(job func()) {
	select {
	case <-p.done:
		return
	default:
	}
	p.mu.Lock()
	p.pending = append(p.pending, job)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *playwrightPage) stopEvents() {
	p.stopOnce.Do(func() { close(p.done) })
}

func (p *playwrightPage) OnRequest(fn func(Request)) {
	p.page.OnRequest(func(r playwright.Request) {
		p.enqueue(func() { fn(r) })
	})
}

func (p *playwrightPage) OnResponse(fn func(Response)) {
	p.page.OnResponse(func(r playwright.Response) {
		p.enqueue(func() { fn(playwrightResponse{r}) })
	})
}

func (p *playwrightPage) InterceptAll() error {
	return p.page.Route("**/*", func(route playwright.Route) {
		_ = route.Continue()
	})
}

func (p *playwrightPage) Goto(url string) (Navigation, error) {
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return Navigation{URL: url}, err
	}
	if resp == nil {
		return Navigation{URL: url}, ErrNoResponse
	}
	return Navigation{URL: resp.URL(), Status: resp.Status(), StatusText: resp.StatusText()}, nil
}

func (p *playwrightPage) Close() error {
	p.stopEvents()
	return p.page.Close()
}

type playwrightResponse struct {
	resp playwright.Response
}

func (r playwrightResponse) URL() string { return r.resp.URL() }
func (r playwrightResponse) Status() int { return r.resp.Status() }

func (r playwrightResponse) Body() ([]byte, error) {
	return r.resp.Body()
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium", "":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, errors.New("unknown browser: " + name)
	}
}
