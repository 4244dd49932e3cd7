package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patrickjm/apicap/internal/artifact"
	"github.com/patrickjm/apicap/internal/browser"
)

const DefaultWait = 5 * time.Second

type Options struct {
	PageURL   string
	APIFilter string
	// Expect is checked against raw bodies for logging only.
	Expect  string
	Wait    time.Duration
	Browser browser.StartOptions
}

type Runner struct {
	Engine browser.Engine
	Store  artifact.Store
	Log    zerolog.Logger
	// Sleep replaces the capture wait; nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// NewID names sessions; nil uses a random UUID.
	NewID func() string
}

// Capture runs one session with the default wait and a headless browser.
func (r Runner) Capture(ctx context.Context, pageURL, apiURLFilter, expected string) Result {
	return r.Run(ctx, Options{
		PageURL:   pageURL,
		APIFilter: apiURLFilter,
		Expect:    expected,
		Wait:      DefaultWait,
		Browser:   browser.StartOptions{Headless: true},
	})
}

// Run loads opts.PageURL, records matching responses for opts.Wait and
// writes the artifacts. Failures are logged and reported in the Result;
// the browser session is closed exactly once on every path.
func (r Runner) Run(ctx context.Context, opts Options) (res Result) {
	res.ID = r.newID()
	res.enter(StateNotStarted)
	log := r.Log.With().Str("session", res.ID).Logger()

	var (
		session browser.Session
		rec     *Recorder
	)
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: %v", ErrPanic, p)
			log.Error().Err(err).Msg("capture aborted")
			res.fail(err)
		}
		if res.State != StateFinalizing {
			res.enter(StateFinalizing)
		}
		if rec != nil {
			res.Responses, res.ModelLists, res.Dropped = rec.Counts()
		}
		if session != nil {
			if err := session.Close(); err != nil {
				log.Warn().Err(err).Msg("close browser")
			}
		}
		res.enter(StateClosed)
	}()

	if r.Engine == nil {
		res.fail(fmt.Errorf("%w: no browser engine", ErrLaunch))
		log.Error().Err(res.Err).Msg("an error occurred")
		return res
	}
	var err error
	session, err = r.Engine.Start(opts.Browser)
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrLaunch, err))
		log.Error().Err(res.Err).Msg("an error occurred")
		return res
	}
	page, err := session.NewPage()
	if err != nil {
		res.fail(fmt.Errorf("%w: new page: %w", ErrSetup, err))
		log.Error().Err(res.Err).Msg("an error occurred")
		return res
	}

	rec = NewRecorder(opts.APIFilter, opts.Expect, log)
	if err := page.InterceptAll(); err != nil {
		res.fail(fmt.Errorf("%w: enable interception: %w", ErrSetup, err))
		log.Error().Err(res.Err).Msg("an error occurred")
		return res
	}
	page.OnRequest(rec.HandleRequest)
	page.OnResponse(rec.HandleResponse)

	res.enter(StateNavigating)
	log.Info().Str("url", opts.PageURL).Msg("navigating")
	nav, err := page.Goto(opts.PageURL)
	res.Navigation = nav
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrNavigate, err))
		log.Error().Err(res.Err).Str("url", opts.PageURL).Msg("an error occurred")
		return res
	}
	if !nav.OK() {
		res.Outcome = OutcomeNotOK
		log.Warn().Int("status", nav.Status).Str("url", opts.PageURL).Msg("page is not accessible")
		return res
	}
	log.Info().Int("status", nav.Status).Msg("page is online")

	res.enter(StateCapturing)
	log.Info().Dur("wait", opts.Wait).Msg("waiting to capture api calls")
	if err := r.sleep(ctx, opts.Wait); err != nil {
		rec.Freeze()
		res.fail(fmt.Errorf("%w: %w", ErrInterrupted, err))
		log.Error().Err(res.Err).Msg("an error occurred")
		return res
	}

	res.enter(StateFinalizing)
	responses, modelLists := rec.Freeze()
	res.Outcome = OutcomeCaptured
	if len(responses) > 0 {
		r.write(&res, log, artifact.ResponsesFile, responses, "api responses saved")
	} else {
		log.Info().Msg("no api responses were captured during the wait period")
	}
	if len(modelLists) > 0 {
		r.write(&res, log, artifact.ModelListsFile, modelLists, "model lists saved")
	} else {
		log.Info().Msg("no model lists were found in the api responses")
	}
	return res
}

func (r Runner) write(res *Result, log zerolog.Logger, name string, values []json.RawMessage, msg string) {
	path, err := r.Store.WriteJSON(name, values)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrWrite, name, err)
		res.Outcome = OutcomeFailed
		res.setErr(err)
		log.Error().Err(err).Msg("an error occurred")
		return
	}
	res.Files = append(res.Files, path)
	log.Info().Str("path", path).Int("count", len(values)).Msg(msg)
}

func (r Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return Wait(ctx, d)
}

func (r Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

// Wait blocks for d unless ctx ends first.
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
