package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"unique/internal/auth"
	"unique/internal/auth/handler"
	"unique/internal/auth/metrics"
	"unique/internal/auth/models"
	"unique/internal/auth/service"
	"unique/internal/auth/store"
	"unique/internal/auth/token"
	id "unique/pkg/domain"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/audit/publisher"
	auditmemory "unique/pkg/platform/audit/store/memory"
	"unique/pkg/platform/middleware/metadata"
	"unique/pkg/platform/middleware/requesttime"
	"unique/pkg/testutil"
)

const (
	clientSecret = "dev-secret"
	verifier     = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge    = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	frontend     = "http://localhost:3000"
)

// FlowSuite drives the whole authorization code flow over HTTP against the
// in-memory backend.
type FlowSuite struct {
	suite.Suite
	newBackend func() *auth.Backend
	backend    *auth.Backend
	hasher     *token.Hasher
	audit      *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	router     chi.Router

	mu  sync.Mutex
	now time.Time

	app       *models.App
	user      *models.User
	sessionID id.SessionID
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, &FlowSuite{newBackend: func() *auth.Backend { return auth.NewMemoryBackend(nil) }})
}

type tokenFinder interface {
	FindByHash(ctx context.Context, hash string) (*models.TokenRecord, error)
}

func (s *FlowSuite) SetupTest() {
	ctx := context.Background()
	s.now = time.Now().UTC().Truncate(time.Second)
	s.backend = s.newBackend()

	var err error
	s.hasher, err = token.NewHasher(token.Config{Algorithm: "HS256", SecretKey: "flow-test-signing-key-0123456789abcdef"})
	s.Require().NoError(err)

	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	svc, err := auth.NewService(s.backend, s.hasher, service.Config{
		Issuer:            "http://localhost:8080",
		AccessTTL:         time.Hour,
		RefreshTTL:        30 * 24 * time.Hour,
		IDTokenTTL:        time.Hour,
		RequireClientAuth: true,
	}, service.WithAuditPublisher(publisher.NewPublisher(s.audit)), service.WithMetrics(s.metrics))
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	s.router.Use(metadata.ClientMetadata)
	s.router.Use(requesttime.WithClock(s.clock))
	auth.NewHandler(svc, s.hasher, handler.Config{
		Issuer:      "http://localhost:8080",
		FrontendURL: frontend,
		RequireTLS:  true,
	}, nil).Register(s.router)

	s.app, s.user, err = store.SeedDevClient(ctx, s.backend.Users, s.backend.Apps, clientSecret, s.now)
	s.Require().NoError(err)

	s.sessionID = id.NewSessionID()
	s.Require().NoError(s.backend.Sessions.Create(ctx, &models.Session{
		ID:        s.sessionID,
		UserID:    s.user.ID,
		CreatedAt: s.now,
		ExpiresAt: s.now.Add(24 * time.Hour),
		IsEnable:  true,
	}))
}

func (s *FlowSuite) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *FlowSuite) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *FlowSuite) authorizeQuery() url.Values {
	return url.Values{
		"response_type":         {"code"},
		"client_id":             {store.DevClientID},
		"redirect_uri":          {store.DevRedirectURI},
		"scope":                 {"openid profile"},
		"state":                 {"xyz"},
		"nonce":                 {"n-0S6_WzA2Mj"},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}
}

func (s *FlowSuite) authorize(q url.Values) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/auth?"+q.Encode())
	return testutil.DoRequest(s.router, testutil.WithSessionCookie(req, s.sessionID))
}

func (s *FlowSuite) consent(action string) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest(s.T(), http.MethodPost, "/auth", url.Values{
		"client_id":    {store.DevClientID},
		"redirect_uri": {store.DevRedirectURI},
		"scope":        {"openid profile"},
		"state":        {"xyz"},
		"action":       {action},
	})
	return testutil.DoRequest(s.router, testutil.WithSessionCookie(req, s.sessionID))
}

func (s *FlowSuite) exchange(code, codeVerifier string) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest(s.T(), http.MethodPost, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {store.DevRedirectURI},
		"code_verifier": {codeVerifier},
	})
	req.Header.Set("X-Forwarded-Proto", "https")
	return testutil.DoRequest(s.router, testutil.WithBasicAuth(req, store.DevClientID, clientSecret))
}

func (s *FlowSuite) login(username, password string) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest(s.T(), http.MethodPost, "/authentication", url.Values{
		"username": {username},
		"password": {password},
	})
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0")
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	return testutil.DoRequest(s.router, req)
}

func (s *FlowSuite) userInfo(method, accessToken string) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), method, "/userinfo")
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return testutil.DoRequest(s.router, req)
}

// grantCode runs authorize, and consent when no grant exists yet, and returns
// the issued code.
func (s *FlowSuite) grantCode() string {
	loc := testutil.RedirectLocation(s.T(), s.authorize(s.authorizeQuery()))
	if loc.Path == "/consent" {
		loc = testutil.RedirectLocation(s.T(), s.consent(models.ActionAllow))
	}
	s.Require().Equal("/callback", loc.Path)
	s.Require().Equal("xyz", loc.Query().Get("state"))
	code := loc.Query().Get("code")
	s.Require().NotEmpty(code)
	return code
}

func (s *FlowSuite) TestAuthorizationCodeFlow() {
	rr := s.authorize(s.authorizeQuery())
	loc := testutil.RedirectLocation(s.T(), rr)
	s.Equal("localhost:3000", loc.Host)
	s.Equal("/consent", loc.Path)
	s.Equal(store.DevClientID, loc.Query().Get("client_id"))
	s.Equal("openid profile", loc.Query().Get("scope"))
	s.Equal("xyz", loc.Query().Get("state"))

	loc = testutil.RedirectLocation(s.T(), s.consent(models.ActionAllow))
	code := loc.Query().Get("code")
	s.Require().NotEmpty(code)

	rr = s.exchange(code, verifier)
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("no-store", rr.Header().Get("Cache-Control"))
	body := testutil.UnmarshalResponse[handler.TokenResponse](s.T(), rr)
	s.Equal("Bearer", body.TokenType)
	s.Equal(int64(3600), body.ExpiresIn)
	s.Equal("openid profile", body.Scope)
	s.NotEmpty(body.RefreshToken)

	idClaims, err := s.hasher.Verify(body.IDToken, store.DevClientID)
	s.Require().NoError(err)
	s.Equal("http://localhost:8080", idClaims["iss"])
	s.Equal(s.user.ID.String(), idClaims["sub"])
	s.Equal("n-0S6_WzA2Mj", idClaims["nonce"])
	s.Equal(token.AtHash(body.AccessToken, "HS256"), idClaims["at_hash"])

	accessClaims, err := s.hasher.Verify(body.AccessToken, store.DevClientID)
	s.Require().NoError(err)
	s.Equal("openid profile", accessClaims["scope"])
	s.Equal(store.DevClientID, accessClaims["client_id"])

	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.CodesIssued))
}

func (s *FlowSuite) TestExistingGrantSkipsConsent() {
	code := s.grantCode()
	testutil.AssertStatusOK(s.T(), s.exchange(code, verifier))

	loc := testutil.RedirectLocation(s.T(), s.authorize(s.authorizeQuery()))
	s.Equal("/callback", loc.Path)
	s.NotEmpty(loc.Query().Get("code"))
	s.Equal("xyz", loc.Query().Get("state"))

	ctx := context.Background()
	existing, err := s.backend.Stores.Auths.GetOrCreate(ctx, s.user.ID, s.app.ID, s.now)
	s.Require().NoError(err)
	links, err := s.backend.Stores.Authorizations.ListByAuth(ctx, existing.ID)
	s.Require().NoError(err)
	s.Len(links, 2, "both codes hang off the same Auth")

	s.Run("prompt=consent still asks", func() {
		q := s.authorizeQuery()
		q.Set("prompt", "consent")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("/consent", loc.Path)
	})

	s.Run("prompt=login sends the user back to login", func() {
		q := s.authorizeQuery()
		q.Set("prompt", "login")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("localhost:3000", loc.Host)
		s.Equal("/login", loc.Path)
		s.Empty(loc.Query().Get("prompt"))
		s.Equal(store.DevClientID, loc.Query().Get("client_id"))
		s.Equal("xyz", loc.Query().Get("state"))
	})

	s.Run("a wider scope still asks", func() {
		q := s.authorizeQuery()
		q.Set("scope", "openid profile email")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("/consent", loc.Path)
	})
}

func (s *FlowSuite) TestAuthorizeRejections() {
	s.Run("no session goes to login", func() {
		q := s.authorizeQuery()
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth?"+q.Encode()))
		loc := testutil.RedirectLocation(s.T(), rr)
		s.Equal("/login", loc.Path)
		s.Equal(q.Encode(), loc.Query().Encode())
	})

	s.Run("prompt=none without a grant", func() {
		q := s.authorizeQuery()
		q.Set("prompt", "none")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("/callback", loc.Path)
		s.Equal("consent_required", loc.Query().Get("error"))
		s.Equal("xyz", loc.Query().Get("state"))
	})

	s.Run("prompt=none with display", func() {
		q := s.authorizeQuery()
		q.Set("prompt", "none")
		q.Set("display", "popup")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("invalid_request", loc.Query().Get("error"))
	})

	s.Run("scope without openid", func() {
		q := s.authorizeQuery()
		q.Set("scope", "profile")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("invalid_scope", loc.Query().Get("error"))
	})

	s.Run("disallowed scope keeps a fixed description", func() {
		q := s.authorizeQuery()
		q.Set("scope", "openid café<script>")
		rr := s.authorize(q)
		loc := testutil.RedirectLocation(s.T(), rr)
		s.Equal("/callback", loc.Path)
		s.Equal("invalid_scope", loc.Query().Get("error"))
		s.Equal("requested scope is not allowed for this client", loc.Query().Get("error_description"))
		s.NotContains(rr.Header().Get("Location"), "script")
		s.NotContains(rr.Header().Get("Location"), "caf")
	})

	s.Run("unsupported response type", func() {
		q := s.authorizeQuery()
		q.Set("response_type", "token")
		loc := testutil.RedirectLocation(s.T(), s.authorize(q))
		s.Equal("unsupported_response_type", loc.Query().Get("error"))
	})

	s.Run("unknown client is JSON 404", func() {
		q := s.authorizeQuery()
		q.Set("client_id", "nope")
		testutil.AssertStatusAndError(s.T(), s.authorize(q), http.StatusNotFound, "invalid_client")
	})

	s.Run("unregistered redirect is never followed", func() {
		q := s.authorizeQuery()
		q.Set("redirect_uri", store.DevRedirectURI+"/")
		rr := s.authorize(q)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_redirect_uri")
		s.Empty(rr.Header().Get("Location"))
	})
}

func (s *FlowSuite) TestConsentDenied() {
	testutil.RedirectLocation(s.T(), s.authorize(s.authorizeQuery()))

	loc := testutil.RedirectLocation(s.T(), s.consent(models.ActionDeny))
	s.Equal("/callback", loc.Path)
	s.Equal("access_denied", loc.Query().Get("error"))
	s.Equal("xyz", loc.Query().Get("state"))

	// The stash is consumed; a second decision has nothing to act on.
	testutil.AssertStatusAndError(s.T(), s.consent(models.ActionAllow), http.StatusBadRequest, "invalid_request")

	events, err := s.audit.ListByUser(context.Background(), s.user.ID.String())
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	s.Equal(string(audit.EventConsentDenied), events[len(events)-1].Action)
}

func (s *FlowSuite) TestTokenRejections() {
	s.Run("password grant", func() {
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/token", url.Values{
			"grant_type": {"password"},
			"username":   {"alice"},
			"password":   {"pw"},
		})
		req.Header.Set("X-Forwarded-Proto", "https")
		rr := testutil.DoRequest(s.router, testutil.WithBasicAuth(req, store.DevClientID, clientSecret))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "unsupported_grant_type")
	})

	s.Run("plain http", func() {
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/token", url.Values{"grant_type": {"authorization_code"}})
		rr := testutil.DoRequest(s.router, testutil.WithBasicAuth(req, store.DevClientID, clientSecret))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_request")
	})

	s.Run("wrong secret", func() {
		code := s.grantCode()
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/token", url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {code},
			"redirect_uri":  {store.DevRedirectURI},
			"code_verifier": {verifier},
		})
		req.Header.Set("X-Forwarded-Proto", "https")
		rr := testutil.DoRequest(s.router, testutil.WithBasicAuth(req, store.DevClientID, "wrong"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "invalid_client")
		s.Contains(rr.Header().Get("WWW-Authenticate"), "Basic")
	})

	s.Run("altered verifier", func() {
		code := s.grantCode()
		altered := verifier[:len(verifier)-1] + "A"
		testutil.AssertStatusAndError(s.T(), s.exchange(code, altered), http.StatusBadRequest, "invalid_grant")
	})

	s.Run("missing verifier", func() {
		code := s.grantCode()
		testutil.AssertStatusAndError(s.T(), s.exchange(code, ""), http.StatusBadRequest, "invalid_grant")
	})

	s.Run("unknown code", func() {
		testutil.AssertStatusAndError(s.T(), s.exchange("not-a-code", verifier), http.StatusBadRequest, "invalid_grant")
	})
}

func (s *FlowSuite) TestCodeReplayRevokesTokens() {
	code := s.grantCode()
	rr := s.exchange(code, verifier)
	testutil.AssertStatusOK(s.T(), rr)
	first := testutil.UnmarshalResponse[handler.TokenResponse](s.T(), rr)

	testutil.AssertStatusAndError(s.T(), s.exchange(code, verifier), http.StatusBadRequest, "invalid_grant")

	tokens, ok := s.backend.Stores.Tokens.(tokenFinder)
	s.Require().True(ok)
	for _, raw := range []string{first.AccessToken, first.RefreshToken, first.IDToken} {
		record, err := tokens.FindByHash(context.Background(), token.HashToken(raw))
		s.Require().NoError(err)
		s.True(record.Revoked, "%s token survived a replay", record.Kind)
	}

	events, err := s.audit.ListByUser(context.Background(), s.user.ID.String())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventCodeIssued))
	s.Contains(actions, string(audit.EventAuthorizationGranted))
	s.Contains(actions, string(audit.EventTokenIssued))
	s.Contains(actions, string(audit.EventCodeReplayed))
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.CodeReplays))
}

func (s *FlowSuite) TestCodeExpiryBoundary() {
	s.Run("redeemable at exactly the expiry instant", func() {
		code := s.grantCode()
		s.advance(models.CodeTTL)
		testutil.AssertStatusOK(s.T(), s.exchange(code, verifier))
	})

	s.Run("rejected one second later", func() {
		code := s.grantCode()
		s.advance(models.CodeTTL + time.Second)
		testutil.AssertStatusAndError(s.T(), s.exchange(code, verifier), http.StatusBadRequest, "invalid_grant")
	})
}

func (s *FlowSuite) TestConcurrentExchangeHasOneWinner() {
	code := s.grantCode()

	const callers = 8
	statuses := make(chan int, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses <- s.exchange(code, verifier).Code
		}()
	}
	wg.Wait()
	close(statuses)

	won := 0
	for status := range statuses {
		if status == http.StatusOK {
			won++
			continue
		}
		s.Equal(http.StatusBadRequest, status)
	}
	s.Equal(1, won)
}

func (s *FlowSuite) TestLoginOpensSession() {
	rr := s.login(store.DevUserLogin, clientSecret)
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("no-store", rr.Header().Get("Cache-Control"))
	body := testutil.UnmarshalResponse[handler.LoginResponse](s.T(), rr)
	s.True(s.now.Add(models.DefaultSessionTTL).Equal(body.ExpiresAt))

	cookies := rr.Result().Cookies()
	s.Require().Len(cookies, 1)
	cookie := cookies[0]
	s.Equal("unique-sid", cookie.Name)
	s.True(cookie.HttpOnly)
	s.True(cookie.Secure)
	s.Equal(http.SameSiteLaxMode, cookie.SameSite)

	sessionID, err := id.ParseSessionID(cookie.Value)
	s.Require().NoError(err)
	stored, err := s.backend.Stores.Sessions.FindByID(context.Background(), sessionID)
	s.Require().NoError(err)
	s.Equal(s.user.ID, stored.UserID)
	s.Equal("198.51.100.7", stored.IP)
	s.Contains(stored.UserAgent, "Firefox")

	s.Run("the new session authorizes", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/auth?"+s.authorizeQuery().Encode())
		loc := testutil.RedirectLocation(s.T(), testutil.DoRequest(s.router, testutil.WithSessionCookie(req, sessionID)))
		s.Equal("/consent", loc.Path)
	})

	s.Run("wrong password", func() {
		rr := s.login(store.DevUserLogin, "not-the-password")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "invalid_credentials")
		s.Empty(rr.Result().Cookies())
	})

	s.Run("unknown user", func() {
		testutil.AssertStatusAndError(s.T(), s.login("mallory", clientSecret), http.StatusUnauthorized, "invalid_credentials")
	})

	events, err := s.audit.ListByUser(context.Background(), s.user.ID.String())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventLoginSucceeded))
	s.Contains(actions, string(audit.EventLoginFailed))
}

func (s *FlowSuite) TestUserInfo() {
	rr := s.exchange(s.grantCode(), verifier)
	testutil.AssertStatusOK(s.T(), rr)
	tokens := testutil.UnmarshalResponse[handler.TokenResponse](s.T(), rr)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		s.Run(method, func() {
			rr := s.userInfo(method, tokens.AccessToken)
			testutil.AssertStatusOK(s.T(), rr)
			s.Equal("no-store", rr.Header().Get("Cache-Control"))
			claims := *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
			s.Equal(s.user.ID.String(), claims["sub"])
			s.Equal("Alice Example", claims["name"])
			s.Equal(store.DevUserLogin, claims["preferred_username"])
			s.NotContains(claims, "email", "email scope was not granted")
		})
	}

	s.Run("refresh token is not accepted", func() {
		rr := s.userInfo(http.MethodGet, tokens.RefreshToken)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "invalid_token")
		s.Equal(`Bearer error="invalid_token"`, rr.Header().Get("WWW-Authenticate"))
	})

	s.Run("missing bearer", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/userinfo")
		req.Header.Set("X-Forwarded-Proto", "https")
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusUnauthorized, rr.Code)
		s.Equal(`Bearer realm="unique"`, rr.Header().Get("WWW-Authenticate"))
	})

	s.Run("discovery advertises the endpoint", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/.well-known/openid-configuration"))
		testutil.AssertStatusOK(s.T(), rr)
		doc := *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal("http://localhost:8080/userinfo", doc["userinfo_endpoint"])
	})
}

func (s *FlowSuite) TestUserInfoRejectsTokensOfReplayedCode() {
	code := s.grantCode()
	rr := s.exchange(code, verifier)
	testutil.AssertStatusOK(s.T(), rr)
	first := testutil.UnmarshalResponse[handler.TokenResponse](s.T(), rr)
	testutil.AssertStatusOK(s.T(), s.userInfo(http.MethodGet, first.AccessToken))

	testutil.AssertStatusAndError(s.T(), s.exchange(code, verifier), http.StatusBadRequest, "invalid_grant")
	testutil.AssertStatusAndError(s.T(), s.userInfo(http.MethodGet, first.AccessToken), http.StatusUnauthorized, "invalid_token")
}

func (s *FlowSuite) TestReplayMarkedBeforeIssueRevokesNewSet() {
	ctx := context.Background()
	code := s.grantCode()

	existing, err := s.backend.Stores.Auths.GetOrCreate(ctx, s.user.ID, s.app.ID, s.now)
	s.Require().NoError(err)
	links, err := s.backend.Stores.Authorizations.ListByAuth(ctx, existing.ID)
	s.Require().NoError(err)
	s.Require().Len(links, 1)
	s.Require().NoError(s.backend.Stores.Authorizations.MarkReplayed(ctx, links[0].ID, s.now))

	testutil.AssertStatusAndError(s.T(), s.exchange(code, verifier), http.StatusBadRequest, "invalid_grant")

	set, err := s.backend.Stores.Tokens.FindSetByAuthorization(ctx, links[0].ID)
	s.Require().NoError(err)
	changed, err := s.backend.Stores.Tokens.Revoke(ctx, set.TokenIDs())
	s.Require().NoError(err)
	s.Zero(changed, "every token of the set was already revoked")
}
