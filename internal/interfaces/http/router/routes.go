package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers Mount wires. A nil handler leaves its
// routes unregistered, which lets tests mount a subset.
type Handlers struct {
	Callbacks     *handler.PaymentCallbackHandler
	System        *handler.SystemHandler
	Auth          *handler.AuthHandler
	Payments      *handler.PaymentHandler
	Notifications *handler.NotificationHandler
	Docs          *handler.DocsHandler
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
	// root routes skip the API prefix and middleware
	root bool
}

// routeTable lists the service's routes. Gateway return and IPN URLs are
// registered at the gateways and authenticated by signature, not by JWT.
func routeTable(h Handlers) []route {
	var routes []route
	if h.Callbacks != nil {
		routes = append(routes,
			route{http.MethodGet, "/payment/vnpay/return", h.Callbacks.VNPayReturn, true},
			route{http.MethodGet, "/payment/vnpay/ipn", h.Callbacks.VNPayIPN, true},
			route{http.MethodGet, "/payment/momo/return", h.Callbacks.MoMoReturn, true},
			route{http.MethodPost, "/payment/momo/ipn", h.Callbacks.MoMoIPN, true},
		)
	}
	if h.System != nil {
		routes = append(routes, route{http.MethodGet, "/health", h.System.Health, true})
	}
	if h.Docs != nil {
		routes = append(routes, route{http.MethodGet, "/swagger/*any", h.Docs.Serve, true})
	}
	if h.Auth != nil {
		routes = append(routes,
			route{http.MethodPost, "/auth/login", h.Auth.Login, false},
			route{http.MethodPost, "/auth/logout", h.Auth.Logout, false},
			route{http.MethodGet, "/accounts/me", h.Auth.Me, false},
		)
	}
	if h.Payments != nil {
		routes = append(routes,
			route{http.MethodPost, "/payments", h.Payments.Create, false},
			route{http.MethodGet, "/payments", h.Payments.List, false},
			route{http.MethodGet, "/payments/:order_code", h.Payments.Get, false},
			route{http.MethodGet, "/promotions", h.Payments.ListPromotions, false},
		)
	}
	if h.Notifications != nil {
		routes = append(routes, route{http.MethodGet, "/notifications", h.Notifications.List, false})
	}
	return routes
}
