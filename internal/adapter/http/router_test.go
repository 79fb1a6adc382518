package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/adapter/repository/gormrepo"
	"bloodbank-service/internal/testutil/dbtest"
	"bloodbank-service/internal/testutil/eventrec"
	"bloodbank-service/internal/usecase/donation"
	"bloodbank-service/internal/usecase/inventory"
	"bloodbank-service/internal/usecase/registry"
	"bloodbank-service/internal/usecase/request"
	"bloodbank-service/internal/usecase/timeslot"
	"bloodbank-service/pkg/id"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

var (
	testSecret = []byte("router-test-secret")
	testNow    = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
)

type apiHarness struct {
	t     *testing.T
	e     *echo.Echo
	rec   *eventrec.Recorder
	admin string
}

func newAPI(t *testing.T, rdb *redis.Client) *apiHarness {
	t.Helper()
	db := dbtest.Open(t)
	repos := gormrepo.Repos(db)
	tx := gormrepo.NewGormUoW(db)
	rec := eventrec.New()
	clock := func() time.Time { return testNow }

	e := echo.New()
	e.HideBanner = true
	Register(e, RouterDeps{
		Registry:       registry.NewUsecase(repos, tx, registry.WithClock(clock)),
		Donations:      donation.NewUsecase(repos, tx, donation.WithEmitter(rec), donation.WithClock(clock)),
		Timeslots:      timeslot.NewUsecase(repos, tx, timeslot.WithEmitter(rec), timeslot.WithClock(clock)),
		Inventory:      inventory.NewUsecase(repos, tx, inventory.WithEmitter(rec), inventory.WithClock(clock)),
		Requests:       request.NewUsecase(repos, tx, request.WithEmitter(rec), request.WithClock(clock)),
		JWTSecret:      testSecret,
		Redis:          rdb,
		IdempotencyTTL: time.Hour,
	})
	h := &apiHarness{t: t, e: e, rec: rec}
	h.admin = h.token(middleware.KindAdmin, "staff-1")
	return h
}

func (h *apiHarness) token(kind middleware.Kind, sub string) string {
	h.t.Helper()
	tok, err := middleware.IssueToken(testSecret, middleware.Principal{Kind: kind, ID: sub}, time.Hour)
	if err != nil {
		h.t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func (h *apiHarness) do(method, path, tok string, body any, hdr ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

// expect checks the status and decodes the body into out when given.
func (h *apiHarness) expect(rec *httptest.ResponseRecorder, code int, out any) {
	h.t.Helper()
	if rec.Code != code {
		h.t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			h.t.Fatalf("decode: %v; body=%s", err, rec.Body.String())
		}
	}
}

func (h *apiHarness) registerDonor(group string) string {
	h.t.Helper()
	var out struct {
		DonorID string `json:"donor_id"`
	}
	h.expect(h.do(http.MethodPost, "/donors", h.admin, map[string]any{
		"full_name": "Dana", "blood_group": group, "contact_number": "0812",
	}), http.StatusCreated, &out)
	return out.DonorID
}

func (h *apiHarness) registerPatient(group string) string {
	h.t.Helper()
	var out struct {
		PatientID string `json:"patient_id"`
	}
	h.expect(h.do(http.MethodPost, "/patients", h.admin, map[string]any{
		"full_name": "Pat", "blood_group": group, "age": 40,
	}), http.StatusCreated, &out)
	return out.PatientID
}

type donationBody struct {
	DonationID string `json:"donation_id"`
	Status     string `json:"status"`
	Unit       *struct {
		UnitID   string `json:"unit_id"`
		Quantity int    `json:"quantity"`
	} `json:"unit"`
}

func TestDonationAndRequestFlow(t *testing.T) {
	h := newAPI(t, nil)
	donorID := h.registerDonor("O+")
	donorTok := h.token(middleware.KindDonor, donorID)

	var dn donationBody
	h.expect(h.do(http.MethodPost, "/donations", donorTok, map[string]any{
		"donor_id": donorID, "quantity": 2, "donation_date": "2024-01-10",
	}), http.StatusCreated, &dn)
	if dn.Status != "pending_initial" {
		t.Fatalf("status = %s", dn.Status)
	}

	var slot struct {
		TimeslotID string `json:"timeslot_id"`
	}
	h.expect(h.do(http.MethodPost, "/timeslots", h.admin, map[string]any{
		"date": "2024-01-11", "start_time": "09:00", "end_time": "10:00", "capacity": 1,
	}), http.StatusCreated, &slot)

	book := map[string]any{"timeslot_id": slot.TimeslotID}
	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/book", donorTok, book), http.StatusConflict, nil)

	// only staff approve
	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/approve-initial", donorTok, nil), http.StatusForbidden, nil)
	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/approve-initial", h.admin, nil), http.StatusOK, &dn)
	if dn.Status != "initial_approved" {
		t.Fatalf("status = %s", dn.Status)
	}

	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/book", donorTok, book), http.StatusOK, &dn)
	if dn.Status != "slot_confirmed" {
		t.Fatalf("status = %s", dn.Status)
	}

	var bookable []struct{}
	h.expect(h.do(http.MethodGet, "/donors/"+donorID+"/timeslots?today=2024-01-10", donorTok, nil), http.StatusOK, &bookable)
	if len(bookable) != 0 {
		t.Fatalf("full slot still bookable: %d", len(bookable))
	}

	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/approve-final", h.admin, nil), http.StatusOK, &dn)
	if dn.Status != "final_approved" || dn.Unit == nil || dn.Unit.Quantity != 2 {
		t.Fatalf("final = %+v", dn)
	}
	h.expect(h.do(http.MethodPost, "/donations/"+dn.DonationID+"/approve-final", h.admin, nil), http.StatusConflict, nil)

	// cooldown is now active
	var refused ErrorResponse
	h.expect(h.do(http.MethodPost, "/donations", donorTok, map[string]any{
		"donor_id": donorID, "quantity": 1,
	}), http.StatusUnprocessableEntity, &refused)
	if !hasFieldDetail(refused.Details, "days_remaining", "90") || !hasFieldDetail(refused.Details, "next_eligible_date", "2024-04-09") {
		t.Fatalf("eligibility details = %+v", refused.Details)
	}

	var avail struct {
		Sufficient     bool `json:"sufficient"`
		TotalAvailable int  `json:"total_available"`
	}
	h.expect(h.do(http.MethodGet, "/inventory/O%2B/availability?quantity=2", donorTok, nil), http.StatusOK, &avail)
	if !avail.Sufficient || avail.TotalAvailable != 2 {
		t.Fatalf("availability = %+v", avail)
	}

	patientID := h.registerPatient("O+")
	patientTok := h.token(middleware.KindPatient, patientID)

	var big, small struct {
		RequestID         string `json:"request_id"`
		Status            string `json:"status"`
		FulfilledQuantity int    `json:"fulfilled_quantity"`
		FulfilledByDonor  string `json:"fulfilled_by_donor_id"`
	}
	h.expect(h.do(http.MethodPost, "/requests", patientTok, map[string]any{"patient_id": patientID, "quantity": 3}), http.StatusCreated, &big)
	h.expect(h.do(http.MethodPost, "/requests", patientTok, map[string]any{"patient_id": patientID, "quantity": 1}), http.StatusCreated, &small)

	var short ErrorResponse
	h.expect(h.do(http.MethodPost, "/requests/"+big.RequestID+"/approve", h.admin, nil), http.StatusUnprocessableEntity, &short)
	if !hasFieldDetail(short.Details, "requested", "3") || !hasFieldDetail(short.Details, "available", "2") {
		t.Fatalf("shortage details = %+v", short.Details)
	}

	h.expect(h.do(http.MethodPost, "/requests/"+small.RequestID+"/approve", h.admin, nil), http.StatusOK, &small)
	if small.Status != "fulfilled" || small.FulfilledQuantity != 1 || small.FulfilledByDonor != donorID {
		t.Fatalf("fulfilled = %+v", small)
	}

	var summary struct {
		Groups map[string]int `json:"groups"`
		Total  int            `json:"total"`
	}
	h.expect(h.do(http.MethodGet, "/inventory/summary", h.admin, nil), http.StatusOK, &summary)
	if summary.Groups["O+"] != 1 || summary.Total != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	var list []struct{}
	h.expect(h.do(http.MethodGet, "/patients/"+patientID+"/requests", patientTok, nil), http.StatusOK, &list)
	if len(list) != 2 {
		t.Fatalf("requests = %d", len(list))
	}
}

func TestOwnership(t *testing.T) {
	h := newAPI(t, nil)
	donorID := h.registerDonor("A-")
	other := h.token(middleware.KindDonor, id.NewID32())
	self := h.token(middleware.KindDonor, donorID)

	tests := []struct {
		name   string
		method string
		path   string
		tok    string
		body   any
		want   int
	}{
		{"self reads donor", http.MethodGet, "/donors/" + donorID, self, nil, http.StatusOK},
		{"admin reads donor", http.MethodGet, "/donors/" + donorID, h.admin, nil, http.StatusOK},
		{"other donor", http.MethodGet, "/donors/" + donorID, other, nil, http.StatusForbidden},
		{"other history", http.MethodGet, "/donors/" + donorID + "/donations", other, nil, http.StatusForbidden},
		{"submit for someone else", http.MethodPost, "/donations", other, map[string]any{"donor_id": donorID, "quantity": 1}, http.StatusForbidden},
		{"donor registers donor", http.MethodPost, "/donors", self, map[string]any{"full_name": "x", "blood_group": "A+"}, http.StatusForbidden},
		{"donor creates slot", http.MethodPost, "/timeslots", self, map[string]any{}, http.StatusForbidden},
		{"donor reads stock", http.MethodGet, "/inventory/A-", self, nil, http.StatusForbidden},
		{"no token", http.MethodGet, "/donors/" + donorID, "", nil, http.StatusUnauthorized},
		{"unknown donor", http.MethodGet, "/donors/" + id.NewID32(), h.admin, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.method, tt.path, tt.tok, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	h := newAPI(t, nil)

	var out ErrorResponse
	h.expect(h.do(http.MethodPost, "/donors", h.admin, map[string]any{
		"blood_group": "C+", "age": 17,
	}), http.StatusUnprocessableEntity, &out)
	for _, f := range []string{"full_name", "blood_group", "age"} {
		if !hasFieldDetail(out.Details, f, "") {
			t.Fatalf("missing %s in %+v", f, out.Details)
		}
	}

	h.expect(h.do(http.MethodPost, "/timeslots", h.admin, map[string]any{
		"date": "11-01-2024", "start_time": "9am", "end_time": "10:00", "capacity": 0,
	}), http.StatusUnprocessableEntity, &out)
	for _, f := range []string{"date", "start_time", "capacity"} {
		if !hasFieldDetail(out.Details, f, "") {
			t.Fatalf("missing %s in %+v", f, out.Details)
		}
	}

	// semantic refusal from the usecase, not the validator
	h.expect(h.do(http.MethodPost, "/timeslots", h.admin, map[string]any{
		"date": "2024-01-11", "start_time": "11:00", "end_time": "10:00", "capacity": 1,
	}), http.StatusBadRequest, nil)

	h.expect(h.do(http.MethodGet, "/inventory/C%2B/availability?quantity=1", h.admin, nil), http.StatusBadRequest, nil)
	h.expect(h.do(http.MethodGet, "/inventory/O%2B/availability?quantity=many", h.admin, nil), http.StatusBadRequest, nil)
	h.expect(h.do(http.MethodGet, "/inventory/summary?today=yesterday", h.admin, nil), http.StatusBadRequest, nil)
}

func TestTimeslotAdmin(t *testing.T) {
	h := newAPI(t, nil)

	var slot struct {
		TimeslotID string `json:"timeslot_id"`
		Capacity   int    `json:"capacity"`
		IsActive   bool   `json:"is_active"`
	}
	h.expect(h.do(http.MethodPost, "/timeslots", h.admin, map[string]any{
		"date": "2024-01-12", "start_time": "13:00", "end_time": "14:00", "capacity": 2,
	}), http.StatusCreated, &slot)
	h.expect(h.do(http.MethodPost, "/timeslots", h.admin, map[string]any{
		"date": "2024-01-12", "start_time": "13:00", "end_time": "15:00", "capacity": 2,
	}), http.StatusConflict, nil)

	h.expect(h.do(http.MethodPut, "/timeslots/"+slot.TimeslotID, h.admin, map[string]any{
		"capacity": 5, "is_active": false,
	}), http.StatusOK, &slot)
	if slot.Capacity != 5 || slot.IsActive {
		t.Fatalf("updated = %+v", slot)
	}

	var active []struct{}
	h.expect(h.do(http.MethodGet, "/timeslots?active=true", h.admin, nil), http.StatusOK, &active)
	if len(active) != 0 {
		t.Fatalf("inactive slot listed: %d", len(active))
	}

	h.expect(h.do(http.MethodDelete, "/timeslots/"+slot.TimeslotID, h.admin, nil), http.StatusNoContent, nil)
	h.expect(h.do(http.MethodGet, "/timeslots/"+slot.TimeslotID, h.admin, nil), http.StatusNotFound, nil)
}

func TestDeleteDonor(t *testing.T) {
	h := newAPI(t, nil)
	donorID := h.registerDonor("B+")
	h.expect(h.do(http.MethodPost, "/donations", h.admin, map[string]any{"donor_id": donorID, "quantity": 1}), http.StatusCreated, nil)

	h.expect(h.do(http.MethodDelete, "/donors/"+donorID, h.admin, nil), http.StatusNoContent, nil)
	h.expect(h.do(http.MethodGet, "/donors/"+donorID, h.admin, nil), http.StatusNotFound, nil)
	h.expect(h.do(http.MethodDelete, "/donors/"+donorID, h.admin, nil), http.StatusNotFound, nil)
}

func TestIdempotentRegistration(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	h := newAPI(t, redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	body := map[string]any{"full_name": "Once", "blood_group": "AB+"}
	hdr := []string{
		"Ax-Request-Id", id.NewID32(),
		"Ax-Request-At", strconv.FormatInt(time.Now().Unix(), 10),
	}

	first := h.do(http.MethodPost, "/donors", h.admin, body, hdr...)
	h.expect(first, http.StatusCreated, nil)
	second := h.do(http.MethodPost, "/donors", h.admin, body, hdr...)
	h.expect(second, http.StatusCreated, nil)
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	// mutations need the request id once the guard is on
	h.expect(h.do(http.MethodPost, "/donors", h.admin, body), http.StatusBadRequest, nil)
}

func hasFieldDetail(fe []FieldError, field, contains string) bool {
	for _, f := range fe {
		if f.Field == field && bytes.Contains([]byte(f.Message), []byte(contains)) {
			return true
		}
	}
	return false
}
