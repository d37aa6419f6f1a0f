package generator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pitchforge/pitchforge/internal/pkg/test"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	cl, err := NewClient(srv.URL)
	require.Nil(t, err)
	return cl, &calls
}

func TestNewClient_Fails(t *testing.T) {
	_, err := NewClient("")
	assert.NotNil(t, err)
}

func TestGenerate(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]string
		_ = json.NewDecoder(r.Body).Decode(&got)
		assert.Equal(t, "olia transcript", got["transcript"])
		_, _ = w.Write([]byte(`{"oneLiner":"X","structure":{"problem":"p"}}`))
	})
	res, err := cl.Generate(test.Ctx(t), "olia transcript")
	require.Nil(t, err)
	assert.Equal(t, "X", res.OneLiner)
	assert.Equal(t, "p", res.Structure.Problem)
	assert.Equal(t, "", res.Structure.Funding)
}

func TestGenerate_EmptyTranscript_NoCall(t *testing.T) {
	cl, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := cl.Generate(test.Ctx(t), "   ")
	require.NotNil(t, err)
	assert.Equal(t, utils.EmptyTranscript, utils.KindOf(err))
	assert.Equal(t, 0, *calls)
}

func TestGenerate_Fails(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	_, err := cl.Generate(test.Ctx(t), "olia")
	require.NotNil(t, err)
	assert.Equal(t, utils.GenerationFailed, utils.KindOf(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestGenerate_Malformed(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not a json`))
	})
	_, err := cl.Generate(test.Ctx(t), "olia")
	require.NotNil(t, err)
	assert.Equal(t, utils.MalformedResponse, utils.KindOf(err))
}

func TestGenerate_NoOneLiner(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"structure":{}}`))
	})
	_, err := cl.Generate(test.Ctx(t), "olia")
	require.NotNil(t, err)
	assert.Equal(t, utils.MalformedResponse, utils.KindOf(err))
}
