package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-shopfront-client/credentials"
	"github.com/jrsteele09/go-shopfront-client/rest"
	"github.com/jrsteele09/go-shopfront-client/rest/fakeclient"
	"github.com/jrsteele09/go-shopfront-client/session"
)

const (
	testEmail     = "a@b.com"
	testPassword  = "secret"
	testUserID    = "user-1"
	accessToken1  = "t1"
	accessToken2  = "t2"
	refreshToken1 = "r1"
)

type testFixture struct {
	api     *fakeclient.FakeClient
	store   *credentials.MemoryStore
	manager *session.Manager
}

func setupTestFixture(t *testing.T, options ...session.Option) *testFixture {
	t.Helper()

	api := fakeclient.New()
	api.Passwords[testEmail] = testPassword
	api.Issue = rest.TokenResponse{
		Token:        accessToken1,
		RefreshToken: refreshToken1,
		Message:      "Welcome",
	}
	api.Users[accessToken1] = &rest.User{
		ID:        testUserID,
		Email:     testEmail,
		FirstName: "John",
		LastName:  "Doe",
	}

	store := credentials.NewMemoryStore()

	manager, err := session.New(session.Deps{API: api, Store: store}, options...)
	require.NoError(t, err)

	return &testFixture{api: api, store: store, manager: manager}
}

// login logs the fixture user in and asserts it worked.
func (f *testFixture) login(t *testing.T) {
	t.Helper()
	res := f.manager.Login(context.Background(), testEmail, testPassword)
	require.True(t, res.Success)
	require.NotNil(t, f.manager.CurrentUser())
}

// expireAccessToken makes the current access token invalid server-side and
// arranges a refresh grant to accessToken2.
func (f *testFixture) expireAccessToken() {
	user := f.api.Users[accessToken1]
	delete(f.api.Users, accessToken1)
	f.api.Refreshes[refreshToken1] = accessToken2
	f.api.Users[accessToken2] = user
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := session.New(session.Deps{})
	require.Error(t, err)

	_, err = session.New(session.Deps{API: fakeclient.New()})
	require.Error(t, err)
}

func TestLoginSuccessPopulatesSessionAndUserTogether(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.Login(context.Background(), testEmail, testPassword)

	require.True(t, res.Success)
	require.Equal(t, "Welcome", res.Message)
	require.Equal(t, session.StateLoggedIn, f.manager.State())

	user := f.manager.CurrentUser()
	require.NotNil(t, user)
	require.Equal(t, testUserID, user.ID)

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, accessToken1, pair.AccessToken)
	require.Equal(t, refreshToken1, pair.RefreshToken)
}

func TestLoginRejectedCredentials(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.Login(context.Background(), testEmail, "wrong")

	require.False(t, res.Success)
	require.Equal(t, "Session expired. Please log in again.", res.Message)
	require.Nil(t, f.manager.CurrentUser())
	require.Equal(t, session.StateLoggedOut, f.manager.State())
}

func TestLoginBackendMessagePassesThroughVerbatim(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Errs["Login"] = &rest.StatusError{StatusCode: 423, Message: "Account locked"}

	res := f.manager.Login(context.Background(), testEmail, testPassword)

	require.False(t, res.Success)
	require.Equal(t, "Account locked", res.Message)
	require.False(t, res.RedirectToLogin)
}

func TestLoginNetworkFailureGenericMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Errs["Login"] = rest.ErrUnavailable

	res := f.manager.Login(context.Background(), testEmail, testPassword)

	require.False(t, res.Success)
	require.Equal(t, "Unable to reach the server. Please try again.", res.Message)
	require.Equal(t, 1, f.api.Calls("Login"), "network failures must not be retried")
}

func TestUserFetchFailureNeverLeavesHalfSession(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Errs["Me"] = rest.ErrUnavailable

	res := f.manager.Login(context.Background(), testEmail, testPassword)

	require.False(t, res.Success)
	require.Nil(t, f.manager.CurrentUser())
	_, err := f.store.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound, "tokens must not be stored without a user")
}

func TestBootstrapWithNoStoredSession(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success)
	require.Equal(t, session.StateLoggedOut, f.manager.State())
	require.Zero(t, f.api.TotalCalls())
}

func TestBootstrapRestoresSession(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  accessToken1,
		RefreshToken: refreshToken1,
	}))

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success)
	require.Equal(t, session.StateLoggedIn, f.manager.State())
	require.Equal(t, testUserID, f.manager.CurrentUser().ID)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  accessToken1,
		RefreshToken: refreshToken1,
	}))

	first := f.manager.Bootstrap(context.Background())
	second := f.manager.Bootstrap(context.Background())

	require.True(t, first.Success)
	require.True(t, second.Success)
	require.Equal(t, testUserID, f.manager.CurrentUser().ID)
	require.Equal(t, session.StateLoggedIn, f.manager.State())
}

func TestBootstrapRefreshesExpiredTokenExactlyOnce(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  accessToken1,
		RefreshToken: refreshToken1,
	}))
	f.expireAccessToken()

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success)
	require.Equal(t, testUserID, f.manager.CurrentUser().ID)
	require.Equal(t, 2, f.api.Calls("Me"), "original call must be retried exactly once")
	require.Equal(t, 1, f.api.Calls("RefreshToken"))

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, accessToken2, pair.AccessToken)
	require.Equal(t, refreshToken1, pair.RefreshToken, "refresh token is kept when the backend does not rotate it")
}

func TestBootstrapFailedRefreshClearsEverything(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  "stale",
		RefreshToken: "revoked",
	}))

	res := f.manager.Bootstrap(context.Background())

	require.False(t, res.Success)
	require.True(t, res.RedirectToLogin)
	require.Equal(t, "Session expired. Please log in again.", res.Message)
	require.Nil(t, f.manager.CurrentUser())
	require.Equal(t, session.StateLoggedOut, f.manager.State())

	_, err := f.store.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)

	require.Equal(t, 1, f.api.Calls("Me"))
	require.Equal(t, 1, f.api.Calls("RefreshToken"))
	require.Equal(t, 2, f.api.TotalCalls(), "no further automatic retries after a failed refresh")
}

func TestSecond401AfterRefreshIsFatal(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  "stale",
		RefreshToken: refreshToken1,
	}))
	// refresh succeeds but the minted token is rejected too
	f.api.Refreshes[refreshToken1] = "still-bad"

	res := f.manager.Bootstrap(context.Background())

	require.False(t, res.Success)
	require.True(t, res.RedirectToLogin)
	require.Nil(t, f.manager.CurrentUser())
	require.Equal(t, 2, f.api.Calls("Me"))
	require.Equal(t, 1, f.api.Calls("RefreshToken"))
}

func TestLogoutClearsLocallyEvenWhenServerFails(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.api.Errs["Logout"] = rest.ErrUnavailable

	res := f.manager.Logout(context.Background())

	require.True(t, res.Success, "logout cannot fail from the caller's perspective")
	require.Nil(t, f.manager.CurrentUser())
	require.Equal(t, session.StateLoggedOut, f.manager.State())
	_, err := f.store.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestLogoutInvalidatesServerSide(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	res := f.manager.Logout(context.Background())

	require.True(t, res.Success)
	require.Equal(t, []string{accessToken1}, f.api.LoggedOut)
}

func TestAddToCartWithoutUserMakesNoNetworkCall(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.AddToCart(context.Background(), "p1", 2)

	require.False(t, res.Success)
	require.True(t, res.RedirectToLogin)
	require.Zero(t, f.api.TotalCalls())
}

func TestAddToCartForwardsUnderAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	res := f.manager.AddToCart(context.Background(), "p1", 2)

	require.True(t, res.Success)
	require.Equal(t, "Added to cart", res.Message)
	require.Equal(t, []rest.AddToCartRequest{{ProductID: "p1", Quantity: 2}}, f.api.CartAdds)
}

func TestAddToCartRetriesOnceAfterRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.expireAccessToken()

	res := f.manager.AddToCart(context.Background(), "p1", 1)

	require.True(t, res.Success)
	require.Equal(t, 2, f.api.Calls("AddToCart"))
	require.Equal(t, 1, f.api.Calls("RefreshToken"))
	require.Len(t, f.api.CartAdds, 1, "the 401 attempt must not reach the cart")
}

func TestUpdateUserRefetchesProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.api.Users[accessToken1].FirstName = "Johnny"

	res := f.manager.UpdateUser(context.Background())

	require.True(t, res.Success)
	require.Equal(t, "Johnny", f.manager.CurrentUser().FirstName)
}

func TestUpdateUserWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.UpdateUser(context.Background())

	require.False(t, res.Success)
	require.True(t, res.RedirectToLogin)
	require.Zero(t, f.api.TotalCalls())
}

func TestVerifyOTPEstablishesSessionLikeLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.api.OTPs[testEmail] = "123456"

	res := f.manager.VerifyOTP(context.Background(), testEmail, "123456")

	require.True(t, res.Success)
	require.Equal(t, session.StateLoggedIn, f.manager.State())
	require.NotNil(t, f.manager.CurrentUser())

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, accessToken1, pair.AccessToken)
	require.Equal(t, refreshToken1, pair.RefreshToken)
}

func TestRegisterIsTwoPhase(t *testing.T) {
	f := setupTestFixture(t)

	res := f.manager.Register(context.Background(), rest.Registration{
		FirstName: "John",
		LastName:  "Doe",
		Email:     testEmail,
		Password:  testPassword,
	})

	require.True(t, res.Success)
	require.Equal(t, session.StateLoggedOut, f.manager.State(), "registration must not create a session")
	require.Nil(t, f.manager.CurrentUser())
	_, err := f.store.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestLoginWithOTP(t *testing.T) {
	f := setupTestFixture(t)
	f.api.OTPs[testEmail] = "654321"

	bad := f.manager.LoginWithOTP(context.Background(), testEmail, "000000")
	require.False(t, bad.Success)
	require.Nil(t, f.manager.CurrentUser())

	good := f.manager.LoginWithOTP(context.Background(), testEmail, "654321")
	require.True(t, good.Success)
	require.Equal(t, "Welcome", good.Message)
	require.NotNil(t, f.manager.CurrentUser())
}

func TestPasswordRecoveryIsStatelessForSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.api.OTPs[testEmail] = "777777"

	res := f.manager.ResetPassword(context.Background(), testEmail, "777777", "newPassword1")
	require.True(t, res.Success)
	require.Equal(t, "Password updated", res.Message)

	require.Equal(t, session.StateLoggedIn, f.manager.State(), "recovery must not touch the live session")

	bad := f.manager.ResetPassword(context.Background(), testEmail, "000000", "x")
	require.False(t, bad.Success)
	require.Equal(t, "invalid OTP", bad.Message)
}

func TestExposedRefreshFailureSignalsRedirect(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	// no refresh grant seeded: the backend rejects the refresh token

	res := f.manager.Refresh(context.Background())

	require.False(t, res.Success)
	require.True(t, res.RedirectToLogin)
	require.Nil(t, f.manager.CurrentUser())
	_, err := f.store.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestTokenSource(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.TokenSource(context.Background()).Token()
	require.ErrorIs(t, err, session.ErrNotLoggedIn)

	f.login(t)
	tok, err := f.manager.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, accessToken1, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
}

// signedJWT builds a real (HS256) JWT with the given expiry; the manager
// only reads the exp claim unverified, so the key is irrelevant.
func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   testUserID,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestProactiveRefreshOfExpiringJWT(t *testing.T) {
	f := setupTestFixture(t)

	expiring := signedJWT(t, time.Now().Add(5*time.Second))
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  expiring,
		RefreshToken: refreshToken1,
	}))
	f.api.Refreshes[refreshToken1] = accessToken2
	f.api.Users[accessToken2] = f.api.Users[accessToken1]

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success)
	require.Equal(t, 1, f.api.Calls("Me"), "a proactive refresh avoids the 401 round-trip")
	require.Equal(t, 1, f.api.Calls("RefreshToken"))
}

func TestFreshJWTIsNotRefreshed(t *testing.T) {
	f := setupTestFixture(t)

	fresh := signedJWT(t, time.Now().Add(1*time.Hour))
	f.api.Users[fresh] = f.api.Users[accessToken1]
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  fresh,
		RefreshToken: refreshToken1,
	}))

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success)
	require.Zero(t, f.api.Calls("RefreshToken"))
}

func TestExpiringTokenSurvivesRefreshOutage(t *testing.T) {
	f := setupTestFixture(t)

	expiring := signedJWT(t, time.Now().Add(5*time.Second))
	f.api.Users[expiring] = f.api.Users[accessToken1]
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  expiring,
		RefreshToken: refreshToken1,
	}))
	f.api.Errs["RefreshToken"] = rest.ErrUnavailable

	res := f.manager.Bootstrap(context.Background())

	require.True(t, res.Success, "an unreachable refresh endpoint must not log out a still-valid token")
	require.NotNil(t, f.manager.CurrentUser())
	require.Equal(t, 1, f.api.Calls("RefreshToken"))
	require.Equal(t, 1, f.api.Calls("Me"))

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, expiring, pair.AccessToken)
	require.Equal(t, refreshToken1, pair.RefreshToken)
}

func TestRefreshOutageAfter401KeepsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	// The token is now rejected server-side, and the refresh endpoint is
	// unreachable. That says nothing about the refresh token itself.
	delete(f.api.Users, accessToken1)
	f.api.Errs["RefreshToken"] = rest.ErrUnavailable

	res := f.manager.AddToCart(context.Background(), "p1", 1)

	require.False(t, res.Success)
	require.False(t, res.RedirectToLogin)
	require.Equal(t, "Unable to reach the server. Please try again.", res.Message)
	require.NotNil(t, f.manager.CurrentUser())

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, refreshToken1, pair.RefreshToken, "the refresh token must survive for a later attempt")
}

func TestTokenSourceKeepsExpiringTokenOnRefreshOutage(t *testing.T) {
	f := setupTestFixture(t)

	expiring := signedJWT(t, time.Now().Add(5*time.Second))
	f.api.Users[expiring] = f.api.Users[accessToken1]
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  expiring,
		RefreshToken: refreshToken1,
	}))
	f.api.Errs["RefreshToken"] = rest.ErrUnavailable
	require.True(t, f.manager.Bootstrap(context.Background()).Success)

	tok, err := f.manager.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, expiring, tok.AccessToken)
}

func TestBootstrapNetworkFailureKeepsStoredPairOnly(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(&credentials.TokenPair{
		AccessToken:  accessToken1,
		RefreshToken: refreshToken1,
	}))
	f.api.Errs["Me"] = rest.ErrUnavailable

	res := f.manager.Bootstrap(context.Background())

	require.False(t, res.Success)
	require.False(t, res.RedirectToLogin)
	require.Equal(t, "Unable to reach the server. Please try again.", res.Message)
	require.Equal(t, session.StateLoggedOut, f.manager.State())

	_, tokenErr := f.manager.TokenSource(context.Background()).Token()
	require.ErrorIs(t, tokenErr, session.ErrNotLoggedIn, "no in-memory session while logged out")

	pair, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, accessToken1, pair.AccessToken)

	delete(f.api.Errs, "Me")
	require.True(t, f.manager.Bootstrap(context.Background()).Success)
	require.NotNil(t, f.manager.CurrentUser())
}

func TestCartOrderAddressWrappersGateOnUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, res := f.manager.CartItems(ctx)
	require.True(t, res.RedirectToLogin)
	_, res = f.manager.CreateOrder(ctx, rest.OrderRequest{AddressID: "a1"})
	require.True(t, res.RedirectToLogin)
	res = f.manager.VerifyPayment(ctx, rest.PaymentVerification{OrderID: "o1"})
	require.True(t, res.RedirectToLogin)
	_, res = f.manager.Addresses(ctx)
	require.True(t, res.RedirectToLogin)
	_, res = f.manager.AddAddress(ctx, rest.Address{Line1: "1 Main St"})
	require.True(t, res.RedirectToLogin)
	res = f.manager.DeleteAddress(ctx, "a1")
	require.True(t, res.RedirectToLogin)

	require.Zero(t, f.api.TotalCalls())
}

func TestOrderFlow(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	addr, res := f.manager.AddAddress(context.Background(), rest.Address{
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	})
	require.True(t, res.Success)
	require.NotEmpty(t, addr.ID)

	order, res := f.manager.CreateOrder(context.Background(), rest.OrderRequest{AddressID: addr.ID})
	require.True(t, res.Success)
	require.Equal(t, "created", order.Status)

	res = f.manager.VerifyPayment(context.Background(), rest.PaymentVerification{
		OrderID:   order.ID,
		PaymentID: "pay-1",
	})
	require.True(t, res.Success)
	require.Equal(t, "Payment verified", res.Message)
}
