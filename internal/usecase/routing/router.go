package routing

import (
	"sort"
	"strings"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
)

const countryCode = "241"

type Route struct {
	Name     string
	Prefix   string
	Operator string
	Account  string
}

// Router resolves the operator and merchant account of a payer's phone
// number. Longer prefixes are tried first; among equal lengths the
// configured order wins.
type Router struct {
	sandbox bool
	test    Route
	routes  []Route
}

func NewRouter(sandbox bool, test Route, routes []Route) *Router {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Router{sandbox: sandbox, test: test, routes: sorted}
}

func NewRouterFromConfig(cfg *config.Config) *Router {
	routes := make([]Route, 0, len(cfg.Routing.Routes))
	for _, r := range cfg.Routing.Routes {
		routes = append(routes, fromConfig(r))
	}
	return NewRouter(cfg.Sandbox(), fromConfig(cfg.Routing.TestRoute), routes)
}

func fromConfig(r config.Route) Route {
	return Route{Name: r.Name, Prefix: r.Prefix, Operator: r.Operator, Account: r.Account}
}

// Resolve returns the route for phone. Sandbox mode and unmatched numbers
// use the test route.
func (r *Router) Resolve(phone string) Route {
	if r.sandbox {
		return r.test
	}
	number := NormalizePhone(phone)
	for _, route := range r.routes {
		if strings.HasPrefix(number, route.Prefix) {
			return route
		}
	}
	return r.test
}

// NormalizePhone keeps the digits of phone in national format: the country
// code is dropped and the trunk zero restored.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	number := b.String()
	if len(number) > 9 && strings.HasPrefix(number, countryCode) {
		number = number[len(countryCode):]
	}
	if len(number) == 8 && !strings.HasPrefix(number, "0") {
		number = "0" + number
	}
	return number
}
