package browser

import (
	"errors"
	"testing"
	"time"
)

func TestNavigationOK(t *testing.T) {
	cases := map[int]bool{0: true, 200: true, 204: true, 299: true, 301: false, 404: false, 500: false}
	for status, want := range cases {
		if got := (Navigation{Status: status}).OK(); got != want {
			t.Fatalf("status %d: expected ok=%t, got %t", status, want, got)
		}
	}
}

func TestFakePageReplaysExchanges(t *testing.T) {
	page := &FakePage{Exchanges: []FakeExchange{
		{URL: "https://a.test/1"},
		{URL: "https://a.test/2", Method: "POST", Status: 201, Body: "{}"},
	}}
	var requests, responses []string
	page.OnRequest(func(r Request) { requests = append(requests, r.Method()+" "+r.URL()) })
	page.OnResponse(func(r Response) { responses = append(responses, r.URL()) })
	if err := page.InterceptAll(); err != nil {
		t.Fatalf("intercept: %v", err)
	}
	nav, err := page.Goto("https://a.test/")
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if nav.Status != 200 || !nav.OK() {
		t.Fatalf("expected default 200, got %d", nav.Status)
	}
	if len(requests) != 2 || requests[1] != "POST https://a.test/2" || requests[0] != "GET https://a.test/1" {
		t.Fatalf("unexpected requests: %v", requests)
	}
	if len(responses) != 2 || len(page.Continued) != 2 {
		t.Fatalf("expected 2 responses and continues, got %v %v", responses, page.Continued)
	}
}

func TestFakeEngineStartError(t *testing.T) {
	engine := &FakeEngine{StartErr: errors.New("no browser")}
	if _, err := engine.Start(StartOptions{}); err == nil {
		t.Fatalf("expected start error")
	}
	if engine.Starts != 1 {
		t.Fatalf("expected one start attempt")
	}
}

func TestFakeResponseBodyError(t *testing.T) {
	resp := FakeExchange{URL: "https://a.test", BodyErr: ErrFakeBody}.response()
	if _, err := resp.Body(); !errors.Is(err, ErrFakeBody) {
		t.Fatalf("expected body error, got %v", err)
	}
	if resp.Status() != 200 {
		t.Fatalf("expected default status 200")
	}
}

func TestBrowserTypeUnknown(t *testing.T) {
	if _, err := browserType(nil, "netscape"); err == nil {
		t.Fatalf("expected unknown browser error")
	}
}

func TestPlaywrightPageQueuePreservesOrder(t *testing.T) {
	p := newPlaywrightPage(nil)
	defer p.stopEvents()
	got := make(chan int, 100)
	for i := 0; i < 100; i++ {
		p.enqueue(func() { got <- i })
	}
	for want := 0; want < 100; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("expected %d, got %d", want, v)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("queue stalled at %d", want)
		}
	}
	p.stopEvents()
	p.enqueue(func() { t.Errorf("job ran after stop") })
}
