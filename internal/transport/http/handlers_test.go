package http

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, true, decode(t, rec)["ok"])
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, withToken("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "nope", "password": "Secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "email")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "new@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, withToken(token))
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, "CUSTOMER", user["role"])
	assert.NotContains(t, user, "password_hash")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "new@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "new@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "new@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInactiveAccountIsForbidden(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.customer)
	_, err := s.store.Users().UpdateStatus(context.Background(), s.customer.ID, domain.UserStatusInactive)
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", nil, withToken(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/admin/dashboard/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/dashboard/stats", nil, withToken(s.token(t, s.customer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/dashboard/stats", nil, withToken(s.token(t, s.admin)))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["total_bookings"])
	assert.Equal(t, "0", stats["total_revenue"])
	assert.Equal(t, float64(1), stats["total_customers"])
	assert.Equal(t, float64(1), stats["total_packages"])
	assert.Equal(t, float64(0), stats["avg_rating"])
}

func TestDashboard_StoreFailureIsGeneric(t *testing.T) {
	s := newTestServer(t)
	s.store.FailWith("bookings.Count", errors.New("connection reset by peer"))

	rec := s.do(t, http.MethodGet, "/api/v1/admin/dashboard/stats", nil, withToken(s.token(t, s.admin)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, genericFailure, decode(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	customer := withToken(s.token(t, s.customer))
	body := map[string]any{
		"schedule_id":       s.schedule.ID.String(),
		"package_id":        s.pkg.ID.String(),
		"participant_count": 3,
	}

	rec := s.do(t, http.MethodPost, "/api/v1/bookings/quote", body, customer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decode(t, rec)["quote"].(map[string]any)
	assert.Equal(t, "15000000", quote["subtotal"])
	assert.Equal(t, "13500000", quote["total"])

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", body, customer, withHeader(idempotencyKeyHeader, "order-1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	booking := created["booking"].(map[string]any)
	assert.Equal(t, "PENDING", booking["status"])
	assert.Equal(t, false, created["replayed"])
	bookingID := booking["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", body, customer, withHeader(idempotencyKeyHeader, "order-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	replay := decode(t, rec)
	assert.Equal(t, true, replay["replayed"])
	assert.Equal(t, bookingID, replay["booking"].(map[string]any)["id"])

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", body, customer)
	assert.Equal(t, http.StatusConflict, rec.Code, "only two seats left")

	rec = s.do(t, http.MethodGet, "/api/v1/bookings/"+bookingID, nil, customer)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := s.addUser(t, "other@example.com", domain.RoleCustomer)
	rec = s.do(t, http.MethodGet, "/api/v1/bookings/"+bookingID, nil, withToken(s.token(t, other)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users/me/bookings", nil, customer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bookings"], 1)
}

func TestBookingValidation(t *testing.T) {
	s := newTestServer(t)
	customer := withToken(s.token(t, s.customer))

	cases := map[string]map[string]any{
		"zero participants":  {"schedule_id": s.schedule.ID.String(), "participant_count": 0},
		"schedule not uuid":  {"schedule_id": "abc", "participant_count": 1},
		"package not uuid":   {"schedule_id": s.schedule.ID.String(), "package_id": "abc", "participant_count": 1},
		"missing schedule":   {"participant_count": 1},
		"participants wrong": {"schedule_id": s.schedule.ID.String(), "participant_count": "two"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/bookings", body, customer)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Equal(t, 5, s.availableQuota(t))

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"schedule_id":       s.schedule.ID.String(),
		"participant_count": 250,
	}, customer)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "insufficient quota")
}

func TestBookingStatusChanges(t *testing.T) {
	s := newTestServer(t)
	customer := withToken(s.token(t, s.customer))
	admin := withToken(s.token(t, s.admin))

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"schedule_id":       s.schedule.ID.String(),
		"participant_count": 2,
	}, customer)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["booking"].(map[string]any)["id"].(string)
	path := "/api/v1/bookings/" + id + "/status"

	rec = s.do(t, http.MethodPatch, path, map[string]any{"status": "PAID"}, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, map[string]any{"status": "REFUNDED"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, path, map[string]any{"status": "paid"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PAID", decode(t, rec)["booking"].(map[string]any)["status"])

	rec = s.do(t, http.MethodPatch, path, map[string]any{"status": "CANCELLED"}, customer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, s.availableQuota(t))

	rec = s.do(t, http.MethodPatch, path, map[string]any{"status": "PAID"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPackageRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := withToken(s.token(t, s.admin))

	rec := s.do(t, http.MethodGet, "/api/v1/packages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["packages"], 1)

	rec = s.do(t, http.MethodGet, "/api/v1/packages/"+s.pkg.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode(t, rec)["package"].(map[string]any)
	assert.Equal(t, "Bali Escape", detail["title"])
	assert.Len(t, detail["schedules"], 1)

	rec = s.do(t, http.MethodGet, "/api/v1/packages/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/packages", map[string]any{
		"destination_id": s.destination.ID.String(),
		"title":          "Kyoto Autumn",
		"duration_days":  5,
		"price":          "7500000",
		"quota":          10,
		"itineraries": []map[string]any{
			{"day_number": 1, "title": "Arrival"},
			{"day_number": 2, "title": "Temples"},
		},
		"facilities": []string{"Hotel", "Guide"},
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["package"].(map[string]any)
	assert.Len(t, created["itineraries"], 2)
	newID := created["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/packages", map[string]any{
		"destination_id": s.destination.ID.String(),
		"title":          "Broken",
		"duration_days":  0,
		"price":          "100",
		"quota":          1,
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/admin/packages/"+newID, map[string]any{"status": "INACTIVE"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/packages/"+newID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/admin/packages?status=INACTIVE", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["packages"], 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/admin/packages/"+newID, nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPackageDeleteBlockedByBookings(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"schedule_id":       s.schedule.ID.String(),
		"participant_count": 1,
	}, withToken(s.token(t, s.customer)))
	require.Equal(t, http.StatusCreated, rec.Code)

	admin := withToken(s.token(t, s.admin))
	rec = s.do(t, http.MethodDelete, "/api/v1/admin/packages/"+s.pkg.ID.String(), nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/admin/schedules/"+s.schedule.ID.String(), nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/packages/"+s.pkg.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPackageDeleteBlockedByReviews(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/packages/"+s.pkg.ID.String()+"/reviews",
		map[string]any{"rating": 5}, withToken(s.token(t, s.customer)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/admin/packages/"+s.pkg.ID.String(), nil, withToken(s.token(t, s.admin)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "package has reviews")

	rec = s.do(t, http.MethodGet, "/api/v1/packages/"+s.pkg.ID.String()+"/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["reviews"], 1)
}

func TestScheduleRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := withToken(s.token(t, s.admin))
	departure := time.Now().Add(60 * 24 * time.Hour).UTC().Truncate(time.Second)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/packages/"+s.pkg.ID.String()+"/schedules", map[string]any{
		"departure_date": departure,
		"return_date":    departure.Add(96 * time.Hour),
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	schedule := decode(t, rec)["schedule"].(map[string]any)
	assert.Equal(t, float64(5), schedule["available_quota"])

	rec = s.do(t, http.MethodPost, "/api/v1/admin/packages/"+s.pkg.ID.String()+"/schedules", map[string]any{
		"departure_date": departure,
		"return_date":    departure,
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/packages/"+s.pkg.ID.String()+"/schedules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["schedules"], 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/admin/schedules/"+schedule["id"].(string), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReviewRoutes(t *testing.T) {
	s := newTestServer(t)
	path := "/api/v1/packages/" + s.pkg.ID.String() + "/reviews"

	rec := s.do(t, http.MethodPost, path, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer := withToken(s.token(t, s.customer))
	rec = s.do(t, http.MethodPost, path, map[string]any{"rating": 6}, customer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path, map[string]any{"rating": 4, "comment": "Great guide"}, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(4), decode(t, rec)["aggregate"].(map[string]any)["average_rating"])

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode(t, rec)
	assert.Len(t, result["reviews"], 1)
	assert.Equal(t, float64(1), result["aggregate"].(map[string]any)["total_reviews"])
}

func TestMasterDataRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/destinations/master/countries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	countries := decode(t, rec)["countries"].([]any)
	require.Len(t, countries, 2)
	assert.Equal(t, "Indonesia", countries[0].(map[string]any)["name"])

	rec = s.do(t, http.MethodGet, "/api/v1/destinations/master/cities/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cities := decode(t, rec)["cities"].([]any)
	require.Len(t, cities, 1)
	assert.Equal(t, "Kyoto", cities[0].(map[string]any)["name"])

	rec = s.do(t, http.MethodGet, "/api/v1/destinations/master/cities/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartDestination(t *testing.T, fields map[string]string, withThumbnail bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withThumbnail {
		part, err := w.CreateFormFile(thumbnailField, "kyoto.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewGray(image.Rect(0, 0, 16, 9))))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestDestinationRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.admin)

	body, contentType := multipartDestination(t, map[string]string{
		"name":       "Kyoto",
		"city_id":    "20",
		"country_id": "2",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/destinations", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dest := decode(t, rec)["destination"].(map[string]any)
	assert.Equal(t, "Kyoto", dest["name"])
	assert.NotEmpty(t, dest["thumbnail"])
	assert.Equal(t, 1, s.storage.Len())

	body, contentType = multipartDestination(t, map[string]string{
		"name":       "Nowhere",
		"city_id":    "20",
		"country_id": "1",
	}, false)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/destinations", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	admin := withToken(token)
	rec = s.do(t, http.MethodPut, "/api/v1/admin/destinations/"+dest["id"].(string), map[string]any{"description": "Old capital"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Old capital", decode(t, rec)["destination"].(map[string]any)["description"])

	rec = s.do(t, http.MethodGet, "/api/v1/destinations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["destinations"], 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/admin/destinations/"+s.destination.ID.String(), nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/admin/destinations/"+dest["id"].(string), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, s.storage.Len())
}

func TestCustomerRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := withToken(s.token(t, s.admin))

	rec := s.do(t, http.MethodPost, "/api/v1/admin/customers", map[string]any{
		"email":     "Traveller@Example.com",
		"password":  "Secret123",
		"full_name": "Tia Traveller",
		"gender":    "Laki-laki",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["customer"].(map[string]any)
	assert.Equal(t, "traveller@example.com", created["email"])
	assert.Equal(t, "Laki-laki", created["profile"].(map[string]any)["gender"])
	id := created["id"].(string)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/customers", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["customers"], 2)

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/customers/"+id, map[string]any{"phone": "+62 811 000"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/customers/"+id+"/status", map[string]any{"status": "inactive"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INACTIVE", decode(t, rec)["customer"].(map[string]any)["status"])

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/customers/"+id+"/status", map[string]any{"status": "gone"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/customers/"+s.admin.ID.String(), nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (s *testServer) availableQuota(t *testing.T) int {
	t.Helper()
	schedule, err := s.store.Schedules().FindByID(context.Background(), s.schedule.ID)
	require.NoError(t, err)
	return schedule.AvailableQuota
}
