package api

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type serverOptions struct {
	host string
}

type Option func(*serverOptions)

// WithLocalTest binds the server to the loopback interface only
func WithLocalTest(localTest bool) Option {
	return func(o *serverOptions) {
		if localTest {
			o.host = "localhost"
		}
	}
}

// NewServer mounts the routes on the router and wraps it in an http server that also accepts
// cleartext HTTP/2, which is what Cloud Run speaks to the container.
func NewServer(router *gin.Engine, conf Configuration, uc usecases.Usecases,
	auth utils.Authentication, opts ...Option,
) *http.Server {
	o := serverOptions{host: "0.0.0.0"}
	for _, opt := range opts {
		opt(&o)
	}

	InitValidators()
	addRoutes(router, conf, uc, auth)

	timeout := conf.DefaultTimeout + serverTimeoutMargin
	return &http.Server{
		Addr:              net.JoinHostPort(o.host, conf.Port),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       timeout,
	}
}
