package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route classification lists. Prefix match, fixed order.
var (
	protectedPrefixes = []string{"/dashboard", "/admin/dashboard"}
	authOnlyPrefixes  = []string{"/sign-in", "/sign-up", "/login"}
)

// The two credential schemes are not unified, so the gate has to accept
// any of the known cookie names. Presence only; cryptographic checks
// happen downstream.
var sessionCookieNames = []string{
	"auth_token",
	"session_token",
	"__Secure-session_token",
}

// Cookies set while an authentication redirect is in flight
var authFlowCookieNames = []string{
	"auth_callback_url",
	"auth_csrf",
}

// Decision kinds
const (
	DecisionAllow             = "allow"
	DecisionRedirectSignIn    = "redirect-sign-in"
	DecisionRedirectDashboard = "redirect-dashboard"
)

// Decision is the Auth Gate outcome for one request
type Decision struct {
	Kind     string
	Location string
}

// GateRequest is the request surface the gate inspects
type GateRequest struct {
	Path    string
	Referer string
	Query   url.Values
	Cookies map[string]string
}

// Evaluate classifies the request and decides pass or redirect.
//
// The bypass comes first: a request that looks mid-authentication-flow is
// allowed through unconditionally, otherwise the sign-in redirect and the
// sign-in page would chase each other forever. During that window an
// unauthenticated request can reach a protected route; accepted tradeoff.
func Evaluate(r GateRequest) Decision {
	if isAuthFlow(r) {
		return Decision{Kind: DecisionAllow}
	}

	hasSession := false
	for _, name := range sessionCookieNames {
		if r.Cookies[name] != "" {
			hasSession = true
			break
		}
	}

	if hasPrefix(r.Path, protectedPrefixes) && !hasSession {
		return Decision{
			Kind:     DecisionRedirectSignIn,
			Location: "/sign-in?callbackUrl=" + url.QueryEscape(r.Path),
		}
	}

	if hasPrefix(r.Path, authOnlyPrefixes) && hasSession {
		return Decision{Kind: DecisionRedirectDashboard, Location: "/dashboard"}
	}

	return Decision{Kind: DecisionAllow}
}

func isAuthFlow(r GateRequest) bool {
	if strings.HasPrefix(r.Path, "/api") || strings.Contains(r.Path, "auth") {
		return true
	}
	if strings.Contains(r.Referer, "/sign-in") || strings.Contains(r.Referer, "/callback") {
		return true
	}
	if r.Query.Get("callbackUrl") != "" || r.Query.Get("error") != "" {
		return true
	}
	for _, name := range authFlowCookieNames {
		if r.Cookies[name] != "" {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthGate returns the middleware guarding page routes. API routes pass
// through untouched (they carry their own credential checks).
func AuthGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies := make(map[string]string)
		for _, cookie := range c.Request.Cookies() {
			cookies[cookie.Name] = cookie.Value
		}

		decision := Evaluate(GateRequest{
			Path:    c.Request.URL.Path,
			Referer: c.GetHeader("Referer"),
			Query:   c.Request.URL.Query(),
			Cookies: cookies,
		})

		if decision.Kind == DecisionAllow {
			c.Next()
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, decision.Location)
		c.Abort()
	}
}
