package library

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/persistence"
	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
	"github.com/pitchforge/pitchforge/internal/pkg/status"
	"github.com/pitchforge/pitchforge/internal/pkg/test"
	"github.com/pitchforge/pitchforge/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tSecret = "olia-secret"

var (
	tData   *Data
	tEcho   *echo.Echo
	tResp   *httptest.ResponseRecorder
	tDBMock *mocks.DB
)

func initTest(t *testing.T) {
	t.Helper()
	tDBMock = &mocks.DB{}
	tData = &Data{Port: 8000, DB: tDBMock, AuthSecret: tSecret}
	tEcho = initRoutes(tData)
	tResp = httptest.NewRecorder()
}

func testToken(t *testing.T, sub string) string {
	t.Helper()
	res, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": sub}).SignedString([]byte(tSecret))
	require.Nil(t, err)
	return res
}

func newReq(t *testing.T, method, target, body, token string) *http.Request {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func testRecord() *persistence.PitchRecord {
	return &persistence.PitchRecord{ID: "id1", UserID: "user1", Title: "Olia",
		OneLiner: "Olia one liner", Structure: pitch.Structure{Problem: "p"},
		Transcript: "tr", Status: "completed"}
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(tData))
	tData.DB = nil
	assert.NotNil(t, validate(tData))
	initTest(t)
	tData.AuthSecret = ""
	assert.NotNil(t, validate(tData))
}

func TestLive(t *testing.T) {
	initTest(t)
	tDBMock.On("Live", mock.Anything).Return(nil)

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/live", "", ""))

	assert.Equal(t, http.StatusOK, tResp.Code)
	assert.Equal(t, `{"service":"OK"}`, tResp.Body.String())
}

func TestLive_DBDown(t *testing.T) {
	initTest(t)
	tDBMock.On("Live", mock.Anything).Return(fmt.Errorf("olia"))

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/live", "", ""))

	assert.Equal(t, http.StatusServiceUnavailable, tResp.Code)
}

func TestAuth_NoToken(t *testing.T) {
	initTest(t)
	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches", "", ""), http.StatusUnauthorized)
}

func TestAuth_BadToken(t *testing.T) {
	initTest(t)
	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches", "", "olia.bad.token"), http.StatusUnauthorized)
}

func TestAuth_WrongSecret(t *testing.T) {
	initTest(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": "user1"}).SignedString([]byte("other"))
	require.Nil(t, err)
	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches", "", token), http.StatusUnauthorized)
}

func TestAuth_NoSub(t *testing.T) {
	initTest(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"olia": "user1"}).SignedString([]byte(tSecret))
	require.Nil(t, err)
	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches", "", token), http.StatusUnauthorized)
}

func TestSave(t *testing.T) {
	initTest(t)
	tDBMock.On("InsertPitch", mock.Anything, mock.Anything).Return(nil)
	body := `{"oneLiner":"We connect bakers with idle ovens","structure":{"problem":"p"},"transcript":"tr"}`

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodPost, "/pitches", body, testToken(t, "user1")))

	require.Equal(t, http.StatusCreated, tResp.Code)
	var res api.PitchData
	require.Nil(t, json.Unmarshal(tResp.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "We connect bakers with idle ovens", res.Title)
	assert.Equal(t, "completed", res.Status)
	assert.NotEmpty(t, res.CreatedAt)

	cRec := mocks.To[*persistence.PitchRecord](tDBMock.Calls[0].Arguments[1])
	assert.Equal(t, "user1", cRec.UserID)
	assert.Equal(t, "p", cRec.Structure.Problem)
	assert.Equal(t, "tr", cRec.Transcript)
	assert.False(t, cRec.Created.IsZero())
}

func TestSave_NoOneLiner(t *testing.T) {
	initTest(t)
	tEcho.ServeHTTP(tResp, newReq(t, http.MethodPost, "/pitches", `{"transcript":"tr"}`,
		testToken(t, "user1")))
	assert.Equal(t, http.StatusBadRequest, tResp.Code)
	tDBMock.AssertNumberOfCalls(t, "InsertPitch", 0)
}

func TestSave_DBFails(t *testing.T) {
	initTest(t)
	tDBMock.On("InsertPitch", mock.Anything, mock.Anything).Return(fmt.Errorf("olia"))
	tEcho.ServeHTTP(tResp, newReq(t, http.MethodPost, "/pitches", `{"oneLiner":"X"}`,
		testToken(t, "user1")))
	assert.Equal(t, http.StatusInternalServerError, tResp.Code)
	assert.Contains(t, tResp.Body.String(), "can't save pitch")
}

func TestList(t *testing.T) {
	initTest(t)
	tDBMock.On("ListPitches", mock.Anything, "user1").
		Return([]*persistence.PitchRecord{testRecord()}, nil)

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/pitches", "", testToken(t, "user1")))

	require.Equal(t, http.StatusOK, tResp.Code)
	var res []*api.PitchData
	require.Nil(t, json.Unmarshal(tResp.Body.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "id1", res[0].ID)
}

func TestList_StatusNormalized(t *testing.T) {
	initTest(t)
	rec := testRecord()
	rec.Status = status.Processing.String()
	rec2 := testRecord()
	rec2.ID, rec2.Status = "id2", "olia"
	tDBMock.On("ListPitches", mock.Anything, "user1").
		Return([]*persistence.PitchRecord{rec, rec2}, nil)

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/pitches", "", testToken(t, "user1")))

	require.Equal(t, http.StatusOK, tResp.Code)
	var res []*api.PitchData
	require.Nil(t, json.Unmarshal(tResp.Body.Bytes(), &res))
	require.Len(t, res, 2)
	assert.Equal(t, "processing", res[0].Status)
	assert.Equal(t, "processing", res[1].Status, "unknown stored value is not reported completed")
}

func TestList_Empty(t *testing.T) {
	initTest(t)
	tDBMock.On("ListPitches", mock.Anything, "user1").Return(nil, nil)

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/pitches", "", testToken(t, "user1")))

	require.Equal(t, http.StatusOK, tResp.Code)
	assert.Equal(t, "[]", strings.TrimSpace(tResp.Body.String()))
}

func TestLoad(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user1").Return(testRecord(), nil)

	tEcho.ServeHTTP(tResp, newReq(t, http.MethodGet, "/pitches/id1", "", testToken(t, "user1")))

	require.Equal(t, http.StatusOK, tResp.Code)
	var res api.PitchData
	require.Nil(t, json.Unmarshal(tResp.Body.Bytes(), &res))
	assert.Equal(t, "Olia", res.Title)
}

func TestLoad_NotFound(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user1").Return(nil, nil)

	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches/id1", "", testToken(t, "user1")),
		http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user1").Return(testRecord(), nil)
	tDBMock.On("DeletePitch", mock.Anything, "id1", "user1").Return(nil)

	test.Code(t, tEcho, newReq(t, http.MethodDelete, "/pitches/id1", "", testToken(t, "user1")),
		http.StatusNoContent)
}

func TestDelete_NotFound(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user1").Return(nil, nil)

	test.Code(t, tEcho, newReq(t, http.MethodDelete, "/pitches/id1", "", testToken(t, "user1")),
		http.StatusNotFound)
	tDBMock.AssertNumberOfCalls(t, "DeletePitch", 0)
}

func TestDownload(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user1").Return(testRecord(), nil)

	resp := test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches/id1/download", "",
		testToken(t, "user1")), http.StatusOK)

	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")
	body := test.RStr(t, resp.Body)
	assert.Contains(t, body, "Olia")
	assert.Contains(t, body, "ORIGINAL TRANSCRIPT")
}

func TestUserIsolation(t *testing.T) {
	initTest(t)
	tDBMock.On("LoadPitch", mock.Anything, "id1", "user2").Return(nil, nil)

	test.Code(t, tEcho, newReq(t, http.MethodGet, "/pitches/id1", "", testToken(t, "user2")),
		http.StatusNotFound)
	tDBMock.AssertCalled(t, "LoadPitch", mock.Anything, "id1", "user2")
}
