// Package testserver serves in-memory versions of the BDO, Dolores and
// Sanora services. Every authenticated route runs behind a
// sessionlesshttp.Verifier, so the server checks requests the way the
// real services do.
package testserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/lestrrat-go/option"
	"github.com/rs/zerolog"
)

type Option = option.Interface

type identMaxAge struct{}

func (identMaxAge) String() string { return "WithMaxAge" }

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

// WithMaxAge sets the freshness window of every route.
func WithMaxAge(d time.Duration) Option {
	return option.New(identMaxAge{}, d)
}

// WithClock sets the clock used for the freshness check.
func WithClock(c sessionless.Clock) Option {
	return option.New(identClock{}, c)
}

// WithLogger sets the logger for request logging.
func WithLogger(l zerolog.Logger) Option {
	return option.New(identLogger{}, l)
}

// Server holds the state of all three services.
type Server struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	verifier []sessionlesshttp.VerifierOption

	bdo     *bdoService
	dolores *doloresService
	sanora  *sanoraService
}

// New creates an empty Server.
func New(options ...Option) *Server {
	s := &Server{
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		switch opt.Ident() {
		case identMaxAge{}:
			s.verifier = append(s.verifier, sessionlesshttp.WithMaxAge(opt.Value().(time.Duration)))
		case identClock{}:
			s.verifier = append(s.verifier, sessionlesshttp.WithClock(opt.Value().(sessionless.Clock)))
		case identLogger{}:
			s.logger = opt.Value().(zerolog.Logger)
		}
	}

	s.bdo = newBDOService(s)
	s.dolores = newDoloresService(s)
	s.sanora = newSanoraService(s)
	return s
}

// Handler returns the routes of all services, mounted under /bdo/,
// /dolores/ and /sanora/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.bdo.routes(mux, "/bdo/")
	s.dolores.routes(mux, "/dolores/")
	s.sanora.routes(mux, "/sanora/")
	return s.logRequests(mux)
}

// signed registers h behind a Verifier for shape.
func (s *Server) signed(mux *http.ServeMux, pattern string, shape *sigbase.Shape, keys sessionlesshttp.KeyResolver, h http.HandlerFunc) {
	v := sessionlesshttp.NewVerifier(shape, keys, s.verifier...)
	mux.Handle(pattern, sessionlesshttp.Wrap(h, sessionlesshttp.WithVerifier(v)))
}

// deletion registers a delete route. Unknown users get {"success":
// false} before any verification takes place.
func (s *Server) deletion(mux *http.ServeMux, pattern string, keys *sessionlesshttp.MapKeyResolver, h http.HandlerFunc) {
	v := sessionlesshttp.NewVerifier(sigbase.Delete, keys, s.verifier...)
	verified := sessionlesshttp.Wrap(h, sessionlesshttp.WithVerifier(v))
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := keys.ResolveKey(r.PathValue("uuid")); err != nil {
			sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": false})
			return
		}
		verified.ServeHTTP(w, r)
	}))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("served")
	})
}

func notFound(w http.ResponseWriter) {
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "not found"})
}

func verified(r *http.Request) *sessionlesshttp.VerifiedRequest {
	vr, _ := sessionlesshttp.VerifiedRequestFromContext(r.Context())
	return vr
}
