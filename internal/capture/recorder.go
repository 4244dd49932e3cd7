package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/patrickjm/apicap/internal/browser"
)

const modelListField = "modelList"

// Recorder holds the accumulators of one capture session. Its Handle
// methods are the page observers.
type Recorder struct {
	filter string
	expect string
	log    zerolog.Logger

	mu         sync.Mutex
	frozen     bool
	responses  []json.RawMessage
	modelLists []json.RawMessage
	dropped    int
}

func NewRecorder(filter, expect string, log zerolog.Logger) *Recorder {
	return &Recorder{filter: filter, expect: expect, log: log}
}

func (r *Recorder) Matches(url string) bool {
	return strings.Contains(url, r.filter)
}

func (r *Recorder) HandleRequest(req browser.Request) {
	if !r.Matches(req.URL()) {
		return
	}
	r.log.Info().Str("method", req.Method()).Str("url", req.URL()).Msg("api call detected")
}

func (r *Recorder) HandleResponse(resp browser.Response) {
	url := resp.URL()
	if !r.Matches(url) {
		return
	}
	if r.isFrozen() {
		r.log.Debug().Str("url", url).Msg("response after capture window ignored")
		return
	}
	body, err := resp.Body()
	if err != nil {
		r.drop(url, fmt.Errorf("read body: %w", err))
		return
	}
	r.log.Info().Str("url", url).Int("status", resp.Status()).Msg("api response captured")

	var value json.RawMessage
	if err := json.Unmarshal(body, &value); err != nil {
		r.drop(url, fmt.Errorf("parse body: %w", err))
		return
	}

	if bytes.Contains(body, []byte(r.expect)) {
		r.log.Info().Str("expect", r.expect).Msg("expected content found in response")
	} else {
		r.log.Info().Str("expect", r.expect).Msg("expected content not found in response")
	}

	var modelList json.RawMessage
	if parsed := gjson.ParseBytes(value); parsed.IsObject() {
		if field := parsed.Get(modelListField); field.Exists() {
			modelList = json.RawMessage(field.Raw)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return
	}
	r.responses = append(r.responses, value)
	if modelList != nil {
		r.modelLists = append(r.modelLists, modelList)
	}
}

// Freeze stops accumulation and returns copies of both sequences.
func (r *Recorder) Freeze() (responses, modelLists []json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	return append([]json.RawMessage(nil), r.responses...), append([]json.RawMessage(nil), r.modelLists...)
}

// Counts reports the current accumulator sizes and dropped responses.
func (r *Recorder) Counts() (responses, modelLists, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.responses), len(r.modelLists), r.dropped
}

func (r *Recorder) isFrozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

func (r *Recorder) drop(url string, err error) {
	r.mu.Lock()
	r.dropped++
	r.mu.Unlock()
	r.log.Error().Err(err).Str("url", url).Msg("error processing response")
}
