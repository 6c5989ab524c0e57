// Package avatarhttp serves rendered avatars over HTTP.
//
// /svg and /random-svg sit behind the referer guard. /api/options only
// exposes the public option catalogs and is left open.
package avatarhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/avatars-web/internal/avataaars"
	"github.com/keithlinneman/avatars-web/internal/avatarparams"
	"github.com/keithlinneman/avatars-web/internal/cfg"
	"github.com/keithlinneman/avatars-web/internal/httpmw"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/referer"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Route patterns, also used as metric labels.
const (
	RouteSVG     = "/svg"
	RouteRandom  = "/random-svg"
	RouteOptions = "/api/options"
)

const (
	// CacheImmutable is sent for /svg requests that carry a hash.
	CacheImmutable = "public, max-age=31536000, immutable"
	cacheOptions   = "public, max-age=3600"

	contentTypeSVG = "image/svg+xml"

	// cspSVG lets a directly opened avatar apply its inline styles and nothing else.
	cspSVG = "default-src 'none'; style-src 'unsafe-inline'; sandbox"
)

// Recorder receives avatar metrics. *metrics.ServerMetrics satisfies it.
type Recorder interface {
	IncAvatarRender(route string)
	ObserveAvatarRender(d time.Duration)
	IncParamRejected(param string)
	IncRefererRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) IncAvatarRender(string)            {}
func (nopRecorder) ObserveAvatarRender(time.Duration) {}
func (nopRecorder) IncParamRejected(string)           {}
func (nopRecorder) IncRefererRejected(string)         {}

type Options struct {
	Runtime cfg.Runtime
	Logger  log.Logger
	Metrics Recorder
	// Rand picks random avatars; it must be safe for concurrent use.
	// Defaults to avataaars.DefaultRand.
	Rand avataaars.Rand
}

// API implements the avatar endpoints
type API struct {
	guard      *referer.Guard
	policy     avatarparams.Policy
	selfDomain string
	logger     log.Logger
	metrics    Recorder
	rand       avataaars.Rand
	tracer     trace.Tracer
	options    []byte
}

// NewAPI creates the avatar API. The option catalog response is encoded once
// here since the catalogs never change.
func NewAPI(opts Options) (*API, error) {
	api := &API{
		policy:     opts.Runtime.Params,
		selfDomain: opts.Runtime.SelfDomain,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		rand:       opts.Rand,
		tracer:     otel.Tracer("avatars-web/avatarhttp"),
	}
	if api.logger == nil {
		api.logger = log.Nop()
	}
	if api.metrics == nil {
		api.metrics = nopRecorder{}
	}
	if api.rand == nil {
		api.rand = avataaars.DefaultRand
	}

	api.guard = referer.New(opts.Runtime.AllowList,
		referer.WithOnRejected(func(r *http.Request, d referer.Decision) {
			api.metrics.IncRefererRejected(string(d.Reason))
			ctx := r.Context()
			log.FromContext(ctx).Debug(ctx, "referer rejected",
				"reason", d.Reason,
				"referer_host", d.Host,
			)
		}),
	)

	b, err := json.Marshal(NewOptionsResponse())
	if err != nil {
		return nil, xerrors.Wrap(err, "encode option catalog")
	}
	api.options = b
	return api, nil
}

// RegisterRoutes attaches the avatar endpoints to the router
func (api *API) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(api.guard.Middleware)
		r.With(httpmw.Scope("avatar.svg")).Get(RouteSVG, api.HandleSVG)
		r.With(httpmw.Scope("avatar.random")).Get(RouteRandom, api.HandleRandom)
	})
	r.With(httpmw.Scope("avatar.options")).Get(RouteOptions, api.HandleOptions)
}

// HandleSVG renders the avatar described by the query string.
func (api *API) HandleSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	req := avatarparams.Parse(q, api.policy)
	if rejected := req.Rejected(); len(rejected) > 0 {
		for _, p := range rejected {
			api.metrics.IncParamRejected(p)
		}
		log.FromContext(ctx).Debug(ctx, "ignoring invalid avatar params", "params", rejected)
	}

	markup, err := api.render(ctx, req.Props())
	if err != nil {
		log.FromContext(ctx).Error(ctx, err, "avatar render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	api.metrics.IncAvatarRender(RouteSVG)

	if hasHash(q[avataaars.ParamHash]) {
		w.Header().Set("Cache-Control", CacheImmutable)
	}
	w.Header().Set("Content-Type", contentTypeSVG)
	w.Header().Set("Content-Security-Policy", cspSVG)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(markup); err != nil {
		log.FromContext(ctx).Debug(ctx, "svg write failed", "error", err)
	}
}

// hasHash reports whether any hash value is non-empty. The value is not checked.
func hasHash(vals []string) bool {
	for _, v := range vals {
		if v != "" {
			return true
		}
	}
	return false
}

func (api *API) render(ctx context.Context, p avataaars.Props) ([]byte, error) {
	ctx, span := api.tracer.Start(ctx, "avatar.render")
	defer span.End()

	start := time.Now()
	a := avataaars.Factory(avataaars.Clean(p))
	c, err := avataaars.NewComponent(a)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid avatar")
		return nil, xerrors.Wrap(err, "build avatar component")
	}
	out, err := c.Markup(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, xerrors.Wrap(err, "render avatar markup")
	}
	api.metrics.ObserveAvatarRender(time.Since(start))

	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("avatar.top", a.Top),
			attribute.String("avatar.clothes", a.Clothes),
			attribute.Bool("avatar.circle", a.IsCircle),
			attribute.Int("avatar.bytes", len(out)),
		)
	}
	return out, nil
}

// HandleRandom redirects to the /svg URL of a random avatar.
func (api *API) HandleRandom(w http.ResponseWriter, r *http.Request) {
	props := avataaars.Clean(avataaars.Random(api.rand))
	target := avataaars.FactoryURL(props, api.selfDomain)
	api.metrics.IncAvatarRender(RouteRandom)

	ctx := r.Context()
	log.FromContext(ctx).Debug(ctx, "random avatar", "location", target)
	http.Redirect(w, r, target, http.StatusFound)
}

// OptionsResponse lists everything a client can put in a /svg query.
type OptionsResponse struct {
	Options  map[string][]string           `json:"options"`
	Defaults map[string]string             `json:"defaults"`
	Palettes map[string][]avataaars.Swatch `json:"palettes"`
}

// NewOptionsResponse builds the catalog listing.
func NewOptionsResponse() OptionsResponse {
	resp := OptionsResponse{
		Options: make(map[string][]string),
		Defaults: map[string]string{
			avataaars.ParamCircleColor:     avataaars.DefaultCircleColor,
			avataaars.ParamSkinColor:       avataaars.DefaultSkinColor,
			avataaars.ParamClothesColor:    avataaars.DefaultClothesColor,
			avataaars.ParamHairColor:       avataaars.DefaultHairColor,
			avataaars.ParamTopColor:        avataaars.DefaultTopColor,
			avataaars.ParamFacialHairColor: avataaars.DefaultFacialHairColor,
		},
		Palettes: avataaars.Palettes(),
	}
	for _, c := range avataaars.Catalogs() {
		resp.Options[c.Name()] = c.Values()
		resp.Defaults[c.Name()] = c.Default()
	}
	return resp
}

// HandleOptions serves the option catalogs as JSON.
func (api *API) HandleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", cacheOptions)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(api.options); err != nil {
		ctx := r.Context()
		log.FromContext(ctx).Debug(ctx, "options write failed", "error", err)
	}
}
