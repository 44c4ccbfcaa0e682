// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides an in memory Zoho CRM API and accounts server for tests.
package fake

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	ClientID     = "fake-client-id"
	ClientSecret = "fake-client-secret"
	RefreshToken = "fake-refresh-token"
	GrantCode    = "fake-grant-code"

	tokenPath = "/oauth/v2/token"
	apiPrefix = "/crm/v2/"

	authorizationPrefix = "Zoho-oauthtoken "
)

// Response is a scripted answer returned before the registered data.
type Response struct {
	StatusCode int
	Body       string
}

// Request is a received API request.
type Request struct {
	Resource      string
	Query         url.Values
	Authorization string
	ModifiedSince string
	UserAgent     string
}

// Server is a fake Zoho server. Register data before running the code under test.
type Server struct {
	*httptest.Server

	tb testing.TB
	mu sync.Mutex

	modules     []map[string]any
	fields      map[string][]string
	pages       map[string][][]map[string]any
	objects     map[string]map[string]any
	scripted    map[string][]Response
	notModified map[string]bool

	tokenFailure  bool
	accessToken   string
	tokenRequests int
	requests      []Request
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(tb testing.TB) *Server {
	tb.Helper()

	server := &Server{
		tb:          tb,
		fields:      make(map[string][]string),
		pages:       make(map[string][][]map[string]any),
		objects:     make(map[string]map[string]any),
		scripted:    make(map[string][]Response),
		notModified: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+tokenPath, server.handleToken)
	mux.HandleFunc("GET "+apiPrefix, server.handleAPI)
	server.Server = httptest.NewServer(mux)
	tb.Cleanup(server.Close)
	return server
}

// TokenURL returns the accounts token endpoint of the server.
func (s *Server) TokenURL() string {
	return s.URL + tokenPath
}

// AddModule registers a module in the modules metadata. Accessible modules get one profile.
func (s *Server) AddModule(apiName string, accessible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make([]map[string]any, 0)
	if accessible {
		profiles = append(profiles, map[string]any{"id": "1", "name": "Administrator"})
	}
	s.modules = append(s.modules, map[string]any{
		"api_name":      apiName,
		"module_name":   apiName,
		"api_supported": true,
		"profiles":      profiles,
	})
}

// SetFields registers the field api names of module.
func (s *Server) SetFields(module string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[module] = fields
}

// AddPage appends a page of records to resource.
func (s *Server) AddPage(resource string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[resource] = append(s.pages[resource], records)
}

// SetObject registers the whole response body of a non paginated resource.
func (s *Server) SetObject(resource string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[resource] = body
}

// Enqueue adds responses returned, in order, by the next requests to resource.
func (s *Server) Enqueue(resource string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted[resource] = append(s.scripted[resource], responses...)
}

// SetNotModified makes conditional requests to resource answer 304.
func (s *Server) SetNotModified(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notModified[resource] = true
}

// FailTokenRequests makes the token endpoint reject every request.
func (s *Server) FailTokenRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenFailure = true
}

// ExpireAccessToken invalidates the access token issued last.
func (s *Server) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = "expired"
}

// TokenRequests returns the number of requests received by the token endpoint.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// Requests returns the API requests received for resource, or every request when
// resource is empty.
func (s *Server) Requests(resource string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]Request, 0, len(s.requests))
	for _, request := range s.requests {
		if resource == "" || request.Resource == resource {
			requests = append(requests, request)
		}
	}
	return requests
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenRequests++

	if err := r.ParseForm(); err != nil || s.tokenFailure {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_client"})
		return
	}

	if r.Form.Get("client_id") != ClientID || r.Form.Get("client_secret") != ClientSecret {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_client"})
		return
	}

	s.accessToken = "fake-access-token-" + strconv.Itoa(s.tokenRequests)
	token := map[string]any{
		"access_token": s.accessToken,
		"api_domain":   s.URL,
		"token_type":   "Bearer",
		"expires_in":   3600,
	}

	switch r.Form.Get("grant_type") {
	case "refresh_token":
		if r.Form.Get("refresh_token") != RefreshToken {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_code"})
			return
		}
	case "authorization_code":
		if r.Form.Get("code") != GrantCode {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_code"})
			return
		}
		token["refresh_token"] = RefreshToken
	default:
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}

	s.writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource := strings.TrimPrefix(r.URL.Path, apiPrefix)
	request := Request{
		Resource:      resource,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		ModifiedSince: r.Header.Get("If-Modified-Since"),
		UserAgent:     r.Header.Get("User-Agent"),
	}
	s.requests = append(s.requests, request)

	if s.accessToken == "" || request.Authorization != authorizationPrefix+s.accessToken {
		s.writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "INVALID_TOKEN", "message": "invalid oauth token"})
		return
	}

	if scripted := s.scripted[resource]; len(scripted) > 0 {
		s.scripted[resource] = scripted[1:]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(scripted[0].StatusCode)
		fmt.Fprint(w, scripted[0].Body)
		return
	}

	if request.ModifiedSince != "" && s.notModified[resource] {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	switch resource {
	case "settings/modules":
		s.writeJSON(w, http.StatusOK, map[string]any{"modules": s.modules})
		return
	case "settings/fields":
		fields := make([]map[string]any, 0)
		for _, name := range s.fields[request.Query.Get("module")] {
			fields = append(fields, map[string]any{"api_name": name})
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
		return
	}

	if object, ok := s.objects[resource]; ok {
		s.writeJSON(w, http.StatusOK, maps.Clone(object))
		return
	}

	pages := s.pages[resource]
	page, err := strconv.Atoi(request.Query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > len(pages) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	perPage, err := strconv.Atoi(request.Query.Get("per_page"))
	if err != nil {
		perPage = len(pages[page-1])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": pages[page-1],
		"info": map[string]any{
			"page":         page,
			"per_page":     perPage,
			"count":        len(pages[page-1]),
			"more_records": page < len(pages),
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.tb.Errorf("fake zoho: encoding response: %v", err)
	}
}
