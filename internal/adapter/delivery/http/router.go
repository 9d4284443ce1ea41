package http

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/lzy/pkg/middleware/recoverer"
)

const shortCodePattern = "/{shortCode:[0-9A-Za-z]+}"

// Options holds router settings that come from configuration.
type Options struct {
	// BaseURL is the public scheme and host short URLs are built on.
	BaseURL string
	// HelpText is shown under the form on the index page.
	HelpText string
	// SwaggerSpec is the OpenAPI document of the JSON API. Swagger UI is not served when empty.
	SwaggerSpec []byte
	// BehindProxy trusts X-Real-IP and X-Forwarded-For for the client address.
	// Otherwise the peer address is used and those headers are ignored.
	BehindProxy bool
}

// NewRouter initializes and returns a new Chi router serving the HTML pages and the JSON API.
func NewRouter(
	logger *httplog.Logger,
	urlUseCase urlUseCase,
	receipts receiptSigner,
	pages pageRenderer,
	opts Options,
) *chi.Mux {
	validate := newValidator()
	l := newLinks(opts.BaseURL)

	ph := newPageHandler(urlUseCase, receipts, pages, validate, l, opts.HelpText)
	ah := newAPIHandler(urlUseCase, validate, l)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.BehindProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(hideSecrets)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger, http.HandlerFunc(ph.panicked)))
	r.Use(restoreSecrets)

	r.NotFound(ph.notFound)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Accept", passwordHeader},
			AllowCredentials: false,
			MaxAge:           84600,
		}))

		r.Get("/ping", handlePing)
		r.Post("/shorten", ah.shortenURL)

		r.Route("/urls"+shortCodePattern, func(r chi.Router) {
			r.Get("/", ah.getURLInfo)
			r.Delete("/", ah.deactivateURL)
		})

		if len(opts.SwaggerSpec) > 0 {
			r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/yaml")
				w.Write(opts.SwaggerSpec)
			})

			r.Get("/swagger/*", httpSwagger.Handler(
				httpSwagger.URL("/api/v1/docs/swagger.yml"),
			))
		}
	})

	r.Get("/favicon.ico", http.NotFound)
	r.Get("/robots.txt", http.NotFound)

	r.Get("/", ph.index)
	r.Post("/", ph.createByForm)
	r.Get("/s/{receipt}", ph.success)

	r.Get(shortCodePattern, ph.redirect)
	r.Get(shortCodePattern+"/i/{password}", ph.info)
	r.Get(shortCodePattern+"/d/{password}", ph.delete)
	r.Get(shortCodePattern+"/qr", ph.qr)

	r.Get("/*", ph.createLazy)

	return r
}

// newValidator reports json field names, or form field names for structs without json tags.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}

		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}
