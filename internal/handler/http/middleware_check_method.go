// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler.
// A known path requested with an unsupported method gets 404 instead of
// chi's 405, so the control API does not advertise which methods exist.
//
// Only exact route patterns are compared; nested routers are walked so that
// "/api/sync" is found under the "/api/*" mount.
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		route, ok := findRoute(router.Routes(), "", r.URL.Path)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if _, registered := route.Handlers[r.Method]; !registered {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		router.ServeHTTP(w, r)
	}
}

func findRoute(routes []chi.Route, prefix, path string) (chi.Route, bool) {
	for _, route := range routes {
		if route.SubRoutes != nil {
			mount := prefix + strings.TrimSuffix(route.Pattern, "/*")
			if found, ok := findRoute(route.SubRoutes.Routes(), mount, path); ok {
				return found, true
			}
			continue
		}
		if prefix+route.Pattern == path {
			return route, true
		}
	}
	return chi.Route{}, false
}
