// Package ui contains the Datastar SSE handlers that drive the map widget.
// Every endpoint reads the session ID and input from Datastar signals,
// applies a widget transition under the session lock and streams back the
// fragments and signals that changed.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/joeblew999/plat-stay/internal/backend"
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/logging"
	"github.com/joeblew999/plat-stay/internal/service"
	"github.com/joeblew999/plat-stay/internal/view"
	"github.com/joeblew999/plat-stay/internal/widget"
)

// Backend is the remote data service: the listing feed and the submit
// endpoint.
type Backend interface {
	Download(ctx context.Context) ([]listing.Listing, error)
	Upload(ctx context.Context, fields map[string][]string) (string, error)
}

// SuccessMessage is shown after a listing was accepted.
const SuccessMessage = "Your listing has been published"

// Handler serves the widget page and its SSE endpoints.
type Handler struct {
	humastar.Handler
	sessions *service.SessionService
	backend  Backend
	bus      *service.EventBus
	cards    *view.CardRenderer
	adForm   *huma.Schema
}

// Config wires a Handler.
type Config struct {
	Sessions *service.SessionService
	Backend  Backend
	Bus      *service.EventBus
	Renderer *humastar.Renderer
	Language language.Tag
	Logger   *slog.Logger
}

// NewHandler creates the widget handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = service.DefaultBus
	}
	return &Handler{
		Handler:  humastar.Handler{Renderer: cfg.Renderer, Logger: logger.With("component", "widget")},
		sessions: cfg.Sessions,
		backend:  cfg.Backend,
		bus:      bus,
		cards:    view.NewCardRenderer(cfg.Language),
	}
}

// RegisterRoutes registers the widget SSE routes with Huma and publishes
// the ad form schema the page renders from.
func (h *Handler) RegisterRoutes(api huma.API) {
	h.adForm = humastar.FormSchema(api, reflect.TypeFor[form.Ad]())

	tags := huma.OperationTags("widget")
	huma.Get(api, "/api/v1/widget/events", h.Events, tags)
	huma.Post(api, "/api/v1/widget/activate", h.Activate, tags)
	huma.Post(api, "/api/v1/widget/pin", h.MovePin, tags)
	huma.Post(api, "/api/v1/widget/filter", h.Filter, tags)
	huma.Post(api, "/api/v1/widget/filter/reset", h.ResetFilter, tags)
	huma.Post(api, "/api/v1/widget/cards/{index}", h.OpenCard, tags)
	huma.Delete(api, "/api/v1/widget/cards", h.CloseCard, tags)
	huma.Post(api, "/api/v1/widget/form/change", h.ChangeForm, tags)
	huma.Post(api, "/api/v1/widget/form/submit", h.Submit, tags)
	huma.Post(api, "/api/v1/widget/reset", h.Reset, tags)
}

// session resolves the session named by the sid signal.
func (h *Handler) session(signals humastar.Signals) (*service.Session, error) {
	sess, ok := h.sessions.Get(signals.String(SigSession))
	if !ok {
		return nil, huma.Error404NotFound("session not found, reload the page")
	}
	return sess, nil
}

// log is the request logger for work on sess.
func (h *Handler) log(ctx context.Context, sess *service.Session) *slog.Logger {
	return logging.FromContext(ctx).With("component", "widget", "session", sess.ID)
}

func (h *Handler) parse(input *humastar.SignalsInput) (humastar.Signals, *service.Session, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, nil, err
	}
	sess, err := h.session(signals)
	if err != nil {
		return nil, nil, err
	}
	return signals, sess, nil
}

// Events streams re-renders produced outside a request, such as the
// debounced filter run, until the client disconnects.
func (h *Handler) Events(ctx context.Context, input *humastar.QueryInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	sess, err := h.session(signals)
	if err != nil {
		return nil, err
	}

	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe(sess.ID)
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				switch ev.Kind {
				case service.EventRender:
					h.renderMap(sse, sess.State())
				case service.EventOfferAdded:
					sse.DispatchCustomEvent("offer-added", map[string]any{"id": ev.ID})
				}
			}
		}
	}), nil
}

// Activate handles the first interaction with the main pin: it loads the
// listings, shows the map and enables the form. Later calls re-render.
func (h *Handler) Activate(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	_, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}

	return h.Stream(func(sse humastar.SSE) {
		if st := sess.State(); st.Active {
			h.renderAll(sse, st)
			return
		}

		ads, loadErr := h.backend.Download(ctx)
		st := sess.Update(func(s widget.State) widget.State {
			if s.Active {
				return s
			}
			s = widget.Activate(s, ads)
			if loadErr != nil {
				s = widget.WithMessage(s, loadErr.Error())
			}
			return s
		})
		log := h.log(ctx, sess)
		if loadErr != nil {
			// The feed answered badly: warn. It could not be reached: error.
			kind := backend.KindOf(loadErr)
			level := slog.LevelWarn
			if kind == backend.KindConnection || kind == backend.KindTimeout {
				level = slog.LevelError
			}
			log.Log(ctx, level, "listing download failed", "kind", kind, "error", loadErr)
		} else {
			log.Info("listings loaded", "count", len(ads))
		}
		h.renderAll(sse, st)
	}), nil
}

// MovePin drags the main pin by the pin_dx/pin_dy signals.
func (h *Handler) MovePin(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}
	dx, dy := signals.Int(SigPinDX), signals.Int(SigPinDY)

	return h.Stream(func(sse humastar.SSE) {
		st := sess.Update(func(s widget.State) widget.State {
			return widget.MovePin(s, dx, dy)
		})
		sse.Signals(map[string]any{
			SigPinLeft:                   st.MainPin.Left,
			SigPinTop:                    st.MainPin.Top,
			adPrefix + form.FieldAddress: st.Form.Address,
			SigPinDX:                     0,
			SigPinDY:                     0,
		})
	}), nil
}

// Filter schedules a debounced filter run. The result arrives on the
// events stream.
func (h *Handler) Filter(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}
	c := criteriaFromSignals(signals)

	return h.Stream(func(sse humastar.SSE) {
		sess.Debounce(func(s widget.State) widget.State {
			return widget.ApplyCriteria(s, c)
		})
	}), nil
}

// ResetFilter clears the filter panel immediately, dropping a pending run.
func (h *Handler) ResetFilter(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	_, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}

	return h.Stream(func(sse humastar.SSE) {
		if sess.Cancel() {
			h.log(ctx, sess).Debug("pending filter run dropped")
		}
		st := sess.Update(widget.ResetFilter)
		sse.Signals(criteriaSignals(st.Criteria))
		h.renderMap(sse, st)
	}), nil
}

// CardInput selects a visible listing.
type CardInput struct {
	Index   int `path:"index" minimum:"0" doc:"Listing index carried by the pin"`
	RawBody []byte
}

// OpenCard opens the popup of one pin, closing any other. A pin whose
// listing has been filtered out since it was drawn answers 404.
func (h *Handler) OpenCard(ctx context.Context, input *CardInput) (*huma.StreamResponse, error) {
	_, sess, err := h.parse(&humastar.SignalsInput{RawBody: input.RawBody})
	if err != nil {
		return nil, err
	}

	var opened bool
	st := sess.Update(func(s widget.State) widget.State {
		next, ok := widget.OpenCard(s, input.Index)
		opened = ok
		return next
	})
	if !opened {
		return nil, huma.Error404NotFound("listing is not on the map")
	}

	return h.Stream(func(sse humastar.SSE) {
		h.renderMap(sse, st)
	}), nil
}

// CloseCard closes the open popup, if any.
func (h *Handler) CloseCard(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	_, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}

	return h.Stream(func(sse humastar.SSE) {
		h.renderMap(sse, sess.Update(widget.CloseCard))
	}), nil
}

// ChangeForm applies the dependent field rules after an edit.
func (h *Handler) ChangeForm(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}
	ad := adFromSignals(signals)
	changed := signals.String(SigChanged)

	return h.Stream(func(sse humastar.SSE) {
		st := sess.Update(func(s widget.State) widget.State {
			return widget.ChangeForm(s, ad, changed)
		})
		h.renderForm(sse, st)
	}), nil
}

// Submit validates the form and uploads it. Invalid fields are flagged
// without contacting the server.
func (h *Handler) Submit(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}
	ad := adFromSignals(signals)

	token := uuid.NewString()

	return h.Stream(func(sse humastar.SSE) {
		var submitErr error
		st := sess.Update(func(s widget.State) widget.State {
			s = widget.ChangeForm(s, ad, "")
			next, err := widget.BeginSubmit(s, token)
			submitErr = err
			return next
		})

		var fieldErrs form.FieldErrors
		switch {
		case errors.As(submitErr, &fieldErrs):
			h.renderForm(sse, st)
			return
		case submitErr != nil:
			sse.Error(submitErr.Error())
			return
		}

		h.renderForm(sse, st)
		_, uploadErr := h.backend.Upload(ctx, st.Form.Values())
		log := h.log(ctx, sess)

		var applied bool
		st = sess.Update(func(s widget.State) widget.State {
			next, ok := widget.FinishSubmit(s, token, uploadErr)
			applied = ok
			if ok && uploadErr == nil {
				sess.Cancel()
			}
			return next
		})
		if !applied {
			log.Info("submit result dropped, widget changed meanwhile", "error", uploadErr)
			return
		}

		if uploadErr != nil {
			log.Warn("submit failed", "kind", backend.KindOf(uploadErr), "error", uploadErr)
			h.renderForm(sse, st)
			sse.Error(st.Message)
			return
		}
		log.Info("listing submitted")
		h.renderAll(sse, st)
		sse.Success(SuccessMessage)
	}), nil
}

// Reset returns the widget to its pre-activation state.
func (h *Handler) Reset(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	_, sess, err := h.parse(input)
	if err != nil {
		return nil, err
	}

	return h.Stream(func(sse humastar.SSE) {
		if sess.Cancel() {
			h.log(ctx, sess).Debug("pending filter run dropped")
		}
		st := sess.Update(func(widget.State) widget.State { return widget.Reset() })
		h.renderAll(sse, st)
	}), nil
}
