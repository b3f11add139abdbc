// Package dispatch routes requests to sub-applications by URL prefix.
package dispatch

import (
	"net/http"
	"sort"
	"strings"
)

type mount struct {
	prefix  string
	handler http.Handler
}

// Dispatcher holds a static prefix table. Build it with Mount before serving;
// it is not safe to mount while requests are in flight.
type Dispatcher struct {
	mounts   []mount
	fallback http.Handler
}

// New returns a Dispatcher that sends unmatched requests to fallback, or to
// a static not-found page when fallback is nil.
func New(fallback http.Handler) *Dispatcher {
	if fallback == nil {
		fallback = http.HandlerFunc(notFoundPage)
	}
	return &Dispatcher{fallback: fallback}
}

// Mount routes prefix and everything beneath it to h. With strip set the
// prefix is removed from the path h sees.
func (d *Dispatcher) Mount(prefix string, h http.Handler, strip bool) {
	prefix = "/" + strings.Trim(prefix, "/")
	if strip {
		h = stripPrefix(prefix, h)
	}
	d.mounts = append(d.mounts, mount{prefix: prefix, handler: h})
	sort.SliceStable(d.mounts, func(i, j int) bool {
		return len(d.mounts[i].prefix) > len(d.mounts[j].prefix)
	})
}

// Match returns the mount prefix serving path, or "" for the fallback.
func (d *Dispatcher) Match(path string) string {
	if m := d.lookup(path); m != nil {
		return m.prefix
	}
	return ""
}

func (d *Dispatcher) lookup(path string) *mount {
	for i := range d.mounts {
		m := &d.mounts[i]
		if path == m.prefix || strings.HasPrefix(path, m.prefix+"/") {
			return m
		}
	}
	return nil
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m := d.lookup(r.URL.Path); m != nil {
		m.handler.ServeHTTP(w, r)
		return
	}
	d.fallback.ServeHTTP(w, r)
}

// stripPrefix is http.StripPrefix that maps the bare prefix to "/".
func stripPrefix(prefix string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := new(http.Request)
		*r2 = *r
		u := *r.URL
		r2.URL = &u
		r2.URL.Path = "/" + strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")
		if r.URL.RawPath != "" {
			r2.URL.RawPath = "/" + strings.TrimPrefix(strings.TrimPrefix(r.URL.RawPath, prefix), "/")
		}
		h.ServeHTTP(w, r2)
	})
}

func notFoundPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h1>Not Found</h1><p><a href=\"/\">home</a></p></body></html>"))
}
