package echo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/internal/auth"
	"github.com/socialkit-dev/identity/internal/linkflow"
	"github.com/socialkit-dev/identity/internal/provider"
	"github.com/socialkit-dev/identity/internal/realtime"
	"github.com/socialkit-dev/identity/payment"
	"github.com/socialkit-dev/identity/services"
)

// In-memory repository fakes. Handler tests run the real service stack on
// top of these.

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) || u.UserName == user.UserName {
			return domain.ErrDuplicateEntity
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByUserName(_ context.Context, userName string) (*domain.User, error) {
	for _, u := range r.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.UserName != nil {
		u.UserName = *patch.UserName
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	u.Version++
	return u, nil
}

func (r *fakeUserRepo) List(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	r.nextID++
	profile.ID = fmt.Sprintf("profile-%d", r.nextID)
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProfileRepo) Update(_ context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Website != nil {
		p.Website = *patch.Website
	}
	if patch.PictureURL != nil {
		p.PictureURL = *patch.PictureURL
	}
	if patch.DateOfBirth != nil {
		p.DateOfBirth = patch.DateOfBirth
	}
	return p, nil
}

type fakeRefreshRepo struct {
	// keyed by session id, mirroring the unique index.
	records map[string]*domain.RefreshTokenRecord
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{records: make(map[string]*domain.RefreshTokenRecord)}
}

func (r *fakeRefreshRepo) Create(_ context.Context, rec *domain.RefreshTokenRecord) error {
	r.records[rec.SessionID] = rec
	return nil
}

func (r *fakeRefreshRepo) GetByTokenAndSession(_ context.Context, token, sessionID string) (*domain.RefreshTokenRecord, error) {
	rec, ok := r.records[sessionID]
	if !ok || rec.Token != token {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (r *fakeRefreshRepo) Replace(_ context.Context, rec *domain.RefreshTokenRecord) error {
	r.records[rec.SessionID] = rec
	return nil
}

func (r *fakeRefreshRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	var n int64
	for sid, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, sid)
			n++
		}
	}
	return n, nil
}

type fakeLinkRepo struct {
	links  map[string]*domain.SocialLink
	nextID int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*domain.SocialLink)}
}

func (r *fakeLinkRepo) Create(_ context.Context, link *domain.SocialLink) error {
	for _, l := range r.links {
		if l.UserID == link.UserID && l.Provider == link.Provider {
			return domain.ErrDuplicateEntity
		}
	}
	r.nextID++
	link.ID = fmt.Sprintf("link-%d", r.nextID)
	r.links[link.ID] = link
	return nil
}

func (r *fakeLinkRepo) GetByUserAndProvider(_ context.Context, userID string, p domain.Provider) (*domain.SocialLink, error) {
	for _, l := range r.links {
		if l.UserID == userID && l.Provider == p {
			return l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeLinkRepo) ListByUser(_ context.Context, userID string) ([]*domain.SocialLink, error) {
	var out []*domain.SocialLink
	for _, l := range r.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.links[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.links, id)
	return nil
}

type fakeOrderRepo struct {
	orders map[string]*domain.PaymentOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.PaymentOrder)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.PaymentOrder) error {
	order.ID = "order-" + order.GatewayOrderID
	r.orders[order.GatewayOrderID] = order
	return nil
}

func (r *fakeOrderRepo) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	if o, ok := r.orders[gatewayOrderID]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, gatewayOrderID string, status domain.OrderStatus) error {
	o, ok := r.orders[gatewayOrderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

type stubProvider struct {
	name domain.Provider
}

func (p *stubProvider) Name() domain.Provider { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (p *stubProvider) Exchange(context.Context, string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "provider-access-token"}, nil
}

func (p *stubProvider) FetchUserInfo(context.Context, *oauth2.Token) (*provider.UserInfo, error) {
	return &provider.UserInfo{ProviderUserID: "ext-1", UserName: "extuser"}, nil
}

type testEnv struct {
	e         *echo.Echo
	userRepo  *fakeUserRepo
	orderRepo *fakeOrderRepo
	flows     *linkflow.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	refreshRepo := newFakeRefreshRepo()
	linkRepo := newFakeLinkRepo()
	orderRepo := newFakeOrderRepo()
	flows := linkflow.NewMemoryStore(0)
	t.Cleanup(flows.Stop)

	tokens := services.NewTokenService("test-access-secret", "test-refresh-secret")
	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)

	authSvc := services.NewAuthService(userRepo, profileRepo, refreshRepo, hasher, tokens, nil)
	userSvc := services.NewUserService(userRepo, profileRepo, linkRepo)
	linkSvc := services.NewLinkService(userRepo, linkRepo, flows, "https://app.example.com")
	linkSvc.RegisterOAuth2Provider(&stubProvider{name: domain.ProviderLinkedIn})

	paySvc := payment.NewService(orderRepo, userRepo, []payment.Product{
		{ID: "pro-monthly", Name: "Pro Monthly", Amount: 49900, Currency: "INR"},
	})

	api := NewIdentityAPI(authSvc, userSvc, linkSvc, paySvc, realtime.NewHub(), WebhookSecrets{
		Razorpay: "rzp-webhook-secret",
		Cashfree: "cf-webhook-secret",
	})

	e := echo.New()
	api.RegisterRoutes(e)
	return &testEnv{e: e, userRepo: userRepo, orderRepo: orderRepo, flows: flows}
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(t *testing.T, userName, email string) authResponse {
	t.Helper()
	rec := env.do(http.MethodPost, "/auth/register", "", registerRequest{
		UserName: userName,
		Email:    email,
		Password: "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", registerRequest{
		UserName: "jane", Email: "jane@example.com", Password: "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "jane", resp.User.UserName)
	// Clients still read this field, so the body must carry it explicitly.
	assert.Contains(t, rec.Body.String(), `"isInWaitingList":false`)

	rec = env.do(http.MethodPost, "/auth/login", "", loginRequest{
		Email:    "jane@example.com",
		Password: "long-enough-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", loginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", registerRequest{
		UserName: "jane", Email: "not-an-email", Password: "long-enough-password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", "", registerRequest{
		UserName: "jane", Email: "jane@example.com", Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane", "jane@example.com")

	rec := env.do(http.MethodPost, "/auth/register", "", registerRequest{
		UserName: "other", Email: "jane@example.com", Password: "long-enough-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "jane", "jane@example.com")

	rec := env.do(http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: resp.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rotated authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The replaced token is rejected on replay.
	rec = env.do(http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: resp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rotated token still works.
	rec = env.do(http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyAndLogout(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "jane", "jane@example.com")

	rec := env.do(http.MethodGet, "/auth/verify", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/logout", resp.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The refresh token died with the session.
	rec = env.do(http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: resp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "jane", "jane@example.com")

	rec := env.do(http.MethodGet, "/users", resp.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Promote and retry.
	env.userRepo.users[resp.User.ID].Role = domain.RoleAdmin
	rec = env.do(http.MethodGet, "/users", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserUpdateAndAccess(t *testing.T) {
	env := newTestEnv(t)
	jane := env.register(t, "jane", "jane@example.com")
	mallory := env.register(t, "mallory", "mallory@example.com")

	// A user cannot patch someone else's record.
	loc := "Berlin"
	rec := env.do(http.MethodPatch, "/users/"+jane.User.ID, mallory.AccessToken, updateUserRequest{Location: &loc})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPatch, "/users/"+jane.User.ID, jane.AccessToken, updateUserRequest{Location: &loc})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated userWithProfileView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "Berlin", updated.Profile.Location)
	// Untouched fields survive the patch.
	assert.Equal(t, "jane", updated.UserName)
}

func TestLinkInitiateAndCallback(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "jane", "jane@example.com")

	rec := env.do(http.MethodGet, "/connect/linkedin", resp.AccessToken, nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Contains(t, location, "https://provider.example.com/authorize?state=")
	state := strings.TrimPrefix(location, "https://provider.example.com/authorize?state=")

	// The provider calls back without a bearer token.
	rec = env.do(http.MethodGet, "/connect/linkedin/callback?state="+state+"&code=abc", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.example.com/dashboard/account", rec.Header().Get(echo.HeaderLocation))

	// The account now shows up, and re-linking conflicts.
	rec = env.do(http.MethodGet, "/users/"+resp.User.ID+"/accounts", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "linkedin")
	assert.NotContains(t, rec.Body.String(), "provider-access-token")

	rec = env.do(http.MethodGet, "/connect/linkedin", resp.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodDelete, "/connect/linkedin", resp.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLinkCallbackFailureRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/connect/linkedin/callback?state=bogus&code=abc", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.example.com/dashboard/account?error=401", rec.Header().Get(echo.HeaderLocation))
}

func TestRazorpayWebhook(t *testing.T) {
	env := newTestEnv(t)
	env.orderRepo.orders["order_1"] = &domain.PaymentOrder{
		GatewayOrderID: "order_1",
		Status:         domain.OrderStatusCreated,
	}

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_1"}}}}`
	mac := hmac.New(sha256.New, []byte("rzp-webhook-secret"))
	mac.Write([]byte(body))
	signature := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signature)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.OrderStatusPaid, env.orderRepo.orders["order_1"].Status)
}

func TestRazorpayWebhookBadSignature(t *testing.T) {
	env := newTestEnv(t)

	body := `{"event":"payment.captured","payload":{}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "bogus")
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
