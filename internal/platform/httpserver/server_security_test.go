package httpserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	moderationservice "homeboard/contexts/marketplace/moderation-service"
	moderationhttp "homeboard/contexts/marketplace/moderation-service/transport/http"
	"homeboard/internal/platform/session"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	module := moderationservice.NewInMemoryModule(nil, nil)
	return New(module, session.NewVerifier(testSecret), nil, ":0")
}

func doJSON(t *testing.T, srv *Server, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %s: %v", rec.Body.String(), err)
	}
}

func validSubmissionBody() moderationhttp.CreateSubmissionRequest {
	return moderationhttp.CreateSubmissionRequest{
		Title:           "Bright two-room flat",
		Description:     "South-facing, close to the metro",
		Price:           310000,
		PropertyType:    "apartment",
		TransactionType: "sale",
		Address:         moderationhttp.AddressDTO{City: "Busan", District: "Haeundae"},
		AreaSqm:         54.2,
		Rooms:           2,
	}
}

func asUser(id string) map[string]string {
	return map[string]string{"X-User-Id": id}
}

func asAdmin(id string) map[string]string {
	return map[string]string{"X-User-Id": id, "X-User-Role": "admin"}
}

func TestRoutesRequireCaller(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/submissions"},
		{http.MethodGet, "/submissions"},
		{http.MethodGet, "/submissions/some-id"},
		{http.MethodGet, "/admin/submissions"},
		{http.MethodPost, "/admin/submissions/some-id/approve"},
		{http.MethodPost, "/admin/conversions"},
	} {
		rec := doJSON(t, srv, route.method, route.path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
		var errResp moderationhttp.ErrorResponse
		decodeInto(t, rec, &errResp)
		if errResp.Code != "missing_caller" {
			t.Fatalf("%s %s: unexpected error code %s", route.method, route.path, errResp.Code)
		}
	}
}

func TestAdminRoutesRejectRegularCallers(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/submissions"},
		{http.MethodGet, "/admin/submissions/summary"},
		{http.MethodPost, "/admin/submissions/some-id/approve"},
		{http.MethodPost, "/admin/submissions/some-id/reject"},
		{http.MethodPost, "/admin/submissions/some-id/cancel-approval"},
		{http.MethodPost, "/admin/conversions"},
	} {
		rec := doJSON(t, srv, route.method, route.path, asUser("user-1"), nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestSubmitterCannotReadForeignSubmission(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/submissions", asUser("owner-1"), validSubmissionBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created moderationhttp.CreateSubmissionResponse
	decodeInto(t, rec, &created)

	rec = doJSON(t, srv, http.MethodGet, "/submissions/"+created.Submission.SubmissionID, asUser("stranger-9"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign caller, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions/"+created.Submission.SubmissionID, asAdmin("mod-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin read to succeed, got %d", rec.Code)
	}
}

func TestBearerTokenCaller(t *testing.T) {
	srv := newTestServer(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jwt-user-3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/submissions",
		map[string]string{"Authorization": "Bearer " + signed}, validSubmissionBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with bearer token, got %d: %s", rec.Code, rec.Body.String())
	}
	var created moderationhttp.CreateSubmissionResponse
	decodeInto(t, rec, &created)
	if created.Submission.SubmitterID != "jwt-user-3" {
		t.Fatalf("expected submitter from token subject, got %s", created.Submission.SubmitterID)
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions",
		map[string]string{"Authorization": "Bearer definitely-invalid"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid bearer token, got %d", rec.Code)
	}
}

func TestAttachImageUploadLimit(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/submissions", asUser("owner-1"), validSubmissionBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created moderationhttp.CreateSubmissionResponse
	decodeInto(t, rec, &created)

	oversized := bytes.Repeat([]byte{0xff}, 10<<20+1)
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+created.Submission.SubmissionID+"/images", bytes.NewReader(oversized))
	req.Header.Set("X-User-Id", "owner-1")
	imgRec := httptest.NewRecorder()
	srv.ServeHTTP(imgRec, req)
	if imgRec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized upload, got %d", imgRec.Code)
	}
	var errResp moderationhttp.ErrorResponse
	decodeInto(t, imgRec, &errResp)
	if errResp.Code != "image_too_large" {
		t.Fatalf("unexpected error code %s", errResp.Code)
	}
}

func TestCreateSubmissionValidation(t *testing.T) {
	srv := newTestServer(t)

	body := validSubmissionBody()
	body.Title = ""
	body.Price = 0
	rec := doJSON(t, srv, http.MethodPost, "/submissions", asUser("owner-1"), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid content, got %d", rec.Code)
	}
	var errResp moderationhttp.ErrorResponse
	decodeInto(t, rec, &errResp)
	if errResp.Code != "validation_failed" {
		t.Fatalf("unexpected error code %s", errResp.Code)
	}
}

func TestModerationFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/submissions", asUser("owner-1"), validSubmissionBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created moderationhttp.CreateSubmissionResponse
	decodeInto(t, rec, &created)
	id := created.Submission.SubmissionID

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+id+"/images", bytes.NewReader(img.Bytes()))
	req.Header.Set("X-User-Id", "owner-1")
	imgRec := httptest.NewRecorder()
	srv.ServeHTTP(imgRec, req)
	if imgRec.Code != http.StatusOK {
		t.Fatalf("attach: expected 200, got %d: %s", imgRec.Code, imgRec.Body.String())
	}
	var attached moderationhttp.AttachImageResponse
	decodeInto(t, imgRec, &attached)
	if len(attached.ImageRefs) != 1 {
		t.Fatalf("expected one image ref, got %v", attached.ImageRefs)
	}

	rec = doJSON(t, srv, http.MethodPost, "/admin/submissions/"+id+"/approve", asAdmin("mod-1"),
		moderationhttp.ReviewRequest{Comment: "looks good"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var reviewed moderationhttp.ReviewResponse
	decodeInto(t, rec, &reviewed)
	if reviewed.Submission.Status != "approved" || reviewed.Submission.ReviewComment != "looks good" {
		t.Fatalf("unexpected review result: %+v", reviewed.Submission)
	}

	// A second approve on the same submission must conflict.
	rec = doJSON(t, srv, http.MethodPost, "/admin/submissions/"+id+"/approve", asAdmin("mod-1"), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/admin/conversions", asAdmin("mod-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("convert: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var conversion moderationhttp.ConversionResponse
	decodeInto(t, rec, &conversion)
	if conversion.Converted != 1 || len(conversion.Failures) != 0 {
		t.Fatalf("unexpected conversion report: %+v", conversion)
	}

	// The source submission is consumed by the conversion.
	rec = doJSON(t, srv, http.MethodGet, "/submissions/"+id, asUser("owner-1"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for converted submission, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/listings", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("listings: expected 200, got %d", rec.Code)
	}
	var listings moderationhttp.ListListingsResponse
	decodeInto(t, rec, &listings)
	if len(listings.Items) != 1 {
		t.Fatalf("expected one listing, got %d", len(listings.Items))
	}
	listing := listings.Items[0]
	if listing.SubmissionID != id || listing.Title != "Bright two-room flat" || len(listing.ImageRefs) != 1 {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// The attached image is still served after conversion.
	rec = doJSON(t, srv, http.MethodGet, "/assets/"+listing.ImageRefs[0], nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("asset: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected jpeg asset, got %s", ct)
	}
}

func TestAuditTrailOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/submissions", asUser("owner-1"), validSubmissionBody())
	var created moderationhttp.CreateSubmissionResponse
	decodeInto(t, rec, &created)
	id := created.Submission.SubmissionID

	doJSON(t, srv, http.MethodPost, "/admin/submissions/"+id+"/approve", asAdmin("mod-1"), nil)
	doJSON(t, srv, http.MethodPost, "/admin/submissions/"+id+"/cancel-approval", asAdmin("mod-2"),
		moderationhttp.ReviewRequest{Comment: "needs another look"})

	rec = doJSON(t, srv, http.MethodGet, "/admin/submissions/"+id+"/audit", asAdmin("mod-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var audits moderationhttp.ListAuditsResponse
	decodeInto(t, rec, &audits)
	if len(audits.Items) != 2 {
		t.Fatalf("expected two audit entries, got %d", len(audits.Items))
	}
	if audits.Items[0].Action != "approved" || audits.Items[1].Action != "approval_cancelled" {
		t.Fatalf("unexpected audit actions: %+v", audits.Items)
	}
	if audits.Items[1].ActorID != "mod-2" || audits.Items[1].Comment != "needs another look" {
		t.Fatalf("unexpected audit entry: %+v", audits.Items[1])
	}
}

func TestStatusFilterValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/admin/submissions?status=bogus", asAdmin("mod-1"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bogus filter, got %d", rec.Code)
	}
	var errResp moderationhttp.ErrorResponse
	decodeInto(t, rec, &errResp)
	if errResp.Code != "invalid_status_filter" {
		t.Fatalf("unexpected error code %s", errResp.Code)
	}
}
