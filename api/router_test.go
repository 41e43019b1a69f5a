package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/bioinfer-go/internal/store"
)

const blockModelJSON = `{"states":[0,1],` +
	`"initial":{"0":0.5,"1":0.5},` +
	`"transition":{"0":{"0":0.9,"1":0.1},"1":{"0":0.1,"1":0.9}},` +
	`"emission":{"0":{"A":0.5,"C":0.5,"G":0,"T":0},"1":{"A":0,"C":0,"G":0.5,"T":0.5}}}`

const polyaModelJSON = `[[0.97,0.97,0.01,0.97,0.97,0.97],` +
	`[0.01,0.01,0.01,0.01,0.01,0.01],` +
	`[0.01,0.01,0.01,0.01,0.01,0.01],` +
	`[0.01,0.01,0.97,0.01,0.01,0.01]]`

const uniformJSON = `[[1,1,1,1,1,1],[1,1,1,1,1,1],[1,1,1,1,1,1],[1,1,1,1,1,1]]`

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.Init(context.Background()))

	srv := httptest.NewServer(NewRouter(st, log.New(io.Discard, "", 0)))
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestAlignmentRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		score  float64
	}{
		{"local", "/api/alignment/local", `{"sequence1":"HEAGAWGHEE","sequence2":"PAWHEAE"}`, 200, 25},
		{"local gap -8", "/api/alignment/local", `{"sequence1":"HEAGAWGHEE","sequence2":"PAWHEAE","gap":-8}`, 200, 20},
		{"global", "/api/alignment/global", `{"sequence1":"HEAGAWGHEE","sequence2":"PAWHEAE","gap":-8}`, 200, -8},
		{"score", "/api/alignment/score", `{"sequence1":"HEAGAWGHEE","sequence2":"PAWHEAE"}`, 200, 25},
		{"global score", "/api/alignment/score", `{"sequence1":"ACGT","sequence2":"AGT","global":true}`, 200, 11},
		{"positive gap", "/api/alignment/local", `{"sequence1":"A","sequence2":"A","gap":3}`, 400, 0},
		{"empty global", "/api/alignment/global", `{"sequence1":"","sequence2":"A"}`, 400, 0},
		{"bad body", "/api/alignment/local", `{`, 400, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, status, body)
			if status == http.StatusOK {
				assert.Equal(t, tt.score, body["score"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}

	status, body := do(t, srv, http.MethodPost, "/api/alignment/local", `{"sequence1":"HEAGAWGHEE","sequence2":"PAWHEAE"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "AWGHE-E", body["aligned_seq1"])
	assert.Equal(t, "AW HE E", body["middle"])
	assert.Equal(t, "AW-HEAE", body["aligned_seq2"])
}

func TestAlignmentCompareRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/alignment/compare",
		`{"sequences":["HEAGAWGHEE","PAWHEAE","PPPP"]}`)
	require.Equal(t, http.StatusOK, status, body)
	pairs, ok := body["pairs"].([]any)
	require.True(t, ok, body)
	require.Len(t, pairs, 3)
	first := pairs[0].(map[string]any)
	assert.Equal(t, float64(0), first["i"])
	assert.Equal(t, float64(1), first["j"])
	assert.Equal(t, float64(25), first["score"])
	assert.Equal(t, "AW HE E", first["middle"])
	last := pairs[2].(map[string]any)
	assert.Equal(t, float64(1), last["i"])
	assert.Equal(t, float64(2), last["j"])

	status, body = do(t, srv, http.MethodPost, "/api/alignment/compare",
		`{"query":"HEAGAWGHEE","sequences":["PPPP","PAWHEAE"]}`)
	require.Equal(t, http.StatusOK, status, body)
	best, ok := body["best"].(map[string]any)
	require.True(t, ok, body)
	assert.Equal(t, float64(1), best["index"])
	assert.Equal(t, float64(25), best["score"])
	assert.Nil(t, body["pairs"])

	status, body = do(t, srv, http.MethodPost, "/api/alignment/compare", `{"sequences":["HEAGAWGHEE"]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestHMMRoutes(t *testing.T) {
	srv, st := newTestServer(t)

	t.Run("decode inline model", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/api/hmm/decode",
			`{"sequence":"AACCGGTTAA","model":`+blockModelJSON+`}`)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, false, body["impossible"])
		segments := body["segments"].([]any)
		require.Len(t, segments, 3)
		assert.Equal(t, map[string]any{"start": 4.0, "end": 8.0, "state": 1.0}, segments[1])
		assert.Len(t, body["stats"], 2)
	})

	t.Run("impossible path", func(t *testing.T) {
		model := `{"states":[0,1],` +
			`"initial":{"0":1,"1":0},` +
			`"transition":{"0":{"0":1,"1":0},"1":{"0":0,"1":1}},` +
			`"emission":{"0":{"A":1,"C":0,"G":0,"T":0},"1":{"A":0,"C":0,"G":1,"T":0}}}`
		status, body := do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"AG","model":`+model+`}`)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, true, body["impossible"])
		assert.Nil(t, body["log_prob"])
	})

	t.Run("default model", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"ACGT"}`)
		require.Equal(t, http.StatusOK, status, body)
		assert.NotNil(t, body["log_prob"])
	})

	t.Run("invalid symbol", func(t *testing.T) {
		status, _ := do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"ACNT"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("train and save", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/api/hmm/train",
			`{"sequence":"ACGTGGCCGGCCACGTAAAT","iterations":3,"save_as":"trained"}`)
		require.Equal(t, http.StatusOK, status, body)
		assert.Len(t, body["iterations"], 3)
		assert.NotEmpty(t, body["saved_id"])

		rec, ok, err := st.GetModel(context.Background(), store.KindHMM, "trained")
		require.NoError(t, err)
		require.True(t, ok)
		m, err := store.DecodeHMM(rec)
		require.NoError(t, err)
		assert.NoError(t, m.Validate())

		status, body = do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"ACGT","model_name":"trained"}`)
		assert.Equal(t, http.StatusOK, status, body)
	})

	t.Run("unknown stored model", func(t *testing.T) {
		status, _ := do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"ACGT","model_name":"missing"}`)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("too many iterations", func(t *testing.T) {
		status, _ := do(t, srv, http.MethodPost, "/api/hmm/train", `{"sequence":"ACGT","iterations":100000}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestMotifRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("scan", func(t *testing.T) {
		body := `{"sequences":["CCCCAATAAACCCCCGGAAAAAAA","AATAAAGC","CCAAAAAAA"],` +
			`"model":` + polyaModelJSON + `,"background":` + uniformJSON + `,"workers":2}`
		status, out := do(t, srv, http.MethodPost, "/api/motif/scan", body)
		require.Equal(t, http.StatusOK, status, out)
		assert.Equal(t, 3.0, out["sequences"])
		assert.Equal(t, 2.0, out["hits"])
		assert.Equal(t, 21.0, out["total_distance"])
		assert.Equal(t, 10.5, out["mean_distance"])
		assert.Len(t, out["histogram"], 101)
	})

	t.Run("score", func(t *testing.T) {
		status, out := do(t, srv, http.MethodPost, "/api/motif/score",
			`{"sequence":"AATAAAGC","model":`+polyaModelJSON+`}`)
		require.Equal(t, http.StatusOK, status, out)
		assert.Equal(t, "AATAAA", out["consensus"])
		assert.Len(t, out["scores"], 3)
	})

	t.Run("entropy", func(t *testing.T) {
		status, out := do(t, srv, http.MethodPost, "/api/motif/entropy",
			`{"model":`+uniformJSON+`,"background":`+uniformJSON+`}`)
		require.Equal(t, http.StatusOK, status, out)
		assert.InDelta(t, 0.0, out["bits"], 1e-12)
	})

	t.Run("negative background width", func(t *testing.T) {
		status, out := do(t, srv, http.MethodPost, "/api/motif/background",
			`{"sequences":["AACGTAATAAAGCG"],"width":-1}`)
		assert.Equal(t, http.StatusBadRequest, status, out)
		assert.NotEmpty(t, out["error"])
	})

	t.Run("background and refine through the store", func(t *testing.T) {
		status, out := do(t, srv, http.MethodPost, "/api/motif/background",
			`{"sequences":["AACGTAATAAAGCG","GGAATAAACC"],"save_as":"bg"}`)
		require.Equal(t, http.StatusOK, status, out)
		assert.NotEmpty(t, out["saved_id"])

		status, out = do(t, srv, http.MethodPost, "/api/motif/refine",
			`{"sequences":["AACGTAATAAAGCG","GGAATAAACC"],"model_name":"bg","iterations":2,"save_as":"refined"}`)
		require.Equal(t, http.StatusOK, status, out)

		status, out = do(t, srv, http.MethodPost, "/api/motif/entropy",
			`{"model_name":"refined","background_name":"bg"}`)
		require.Equal(t, http.StatusOK, status, out)
		assert.IsType(t, 0.0, out["bits"])
	})

	t.Run("seeded refine", func(t *testing.T) {
		status, out := do(t, srv, http.MethodPost, "/api/motif/refine",
			`{"sequences":["CCAATAAACC","GAATAAAG"],"seed":true,"iterations":0}`)
		require.Equal(t, http.StatusOK, status, out)
		assert.Equal(t, "AATAAA", out["consensus"])
	})

	t.Run("missing background", func(t *testing.T) {
		status, _ := do(t, srv, http.MethodPost, "/api/motif/scan",
			`{"sequences":["ACGTACGT"],"model":`+polyaModelJSON+`}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestORFRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	status, out := do(t, srv, http.MethodPost, "/api/orf/find",
		`{"sequence":"ATGAAATAGCCCTGATAAGGGTAG","translate":true,`+
			`"annotations":[{"start":0,"end":5},{"start":12,"end":18}]}`)
	require.Equal(t, http.StatusOK, status, out)

	orfs := out["orfs"].([]any)
	require.Len(t, orfs, 4)
	first := orfs[0].(map[string]any)
	assert.Equal(t, "MK", first["protein"])
	assert.Equal(t, "+", first["strand"])
	assert.Len(t, out["tallies"], 3)
}

func TestSequenceRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	status, out := do(t, srv, http.MethodPost, "/api/sequence/clean", `{"sequence":"acgnxT"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACGTTT", out["sequence"])
	assert.Equal(t, 2.0, out["replaced"])

	status, out = do(t, srv, http.MethodPost, "/api/sequence/reverse-complement", `{"sequence":"AACGTT"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "AACGTT", out["reverse_complement"])

	status, out = do(t, srv, http.MethodPost, "/api/sequence/info", `{"sequence":"TTGCAAA"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3.0, out["poly_a_tail"])
	assert.Equal(t, 2.0, out["poly_t_head"])

	status, _ = do(t, srv, http.MethodPost, "/api/sequence/reverse-complement", `{"sequence":"ACGZ"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestModelRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	status, out := do(t, srv, http.MethodPut, "/api/models/wmm/polya", polyaModelJSON)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "polya", out["name"])

	status, _ = do(t, srv, http.MethodPut, "/api/models/hmm/block", blockModelJSON)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodPut, "/api/models/hmm/bad", `{"states":[0]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodPut, "/api/models/profile/x", uniformJSON)
	assert.Equal(t, http.StatusBadRequest, status)

	resp, err := http.Get(srv.URL + "/api/models/wmm/polya")
	require.NoError(t, err)
	var rows [][]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	require.Len(t, rows, 4)
	assert.InDelta(t, 0.97, rows[0][0], 1e-12)

	resp, err = http.Get(srv.URL + "/api/models/wmm/")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, "polya", list[0]["name"])

	status, _ = do(t, srv, http.MethodDelete, "/api/models/wmm/polya", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, srv, http.MethodGet, "/api/models/wmm/polya", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStoreFailures(t *testing.T) {
	// never initialized, so every backend call fails
	st := store.NewSQLiteStore(filepath.Join(t.TempDir(), "models.db"))
	srv := httptest.NewServer(NewRouter(st, log.New(io.Discard, "", 0)))
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"get", http.MethodGet, "/api/models/hmm/block", "", http.StatusInternalServerError},
		{"put", http.MethodPut, "/api/models/hmm/block", blockModelJSON, http.StatusInternalServerError},
		{"list", http.MethodGet, "/api/models/hmm/", "", http.StatusInternalServerError},
		{"delete", http.MethodDelete, "/api/models/hmm/block", "", http.StatusInternalServerError},
		{"decode by name", http.MethodPost, "/api/hmm/decode", `{"sequence":"ACGT","model_name":"block"}`, http.StatusInternalServerError},
		{"invalid model", http.MethodPut, "/api/models/hmm/bad", `{"states":[0]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status, body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestNoStore(t *testing.T) {
	srv := httptest.NewServer(NewRouter(nil, log.New(io.Discard, "", 0)))
	defer srv.Close()

	status, _ := do(t, srv, http.MethodGet, "/api/models/hmm/x", "")
	assert.Equal(t, http.StatusNotImplemented, status)

	status, _ = do(t, srv, http.MethodPost, "/api/hmm/decode", `{"sequence":"ACGT"}`)
	assert.Equal(t, http.StatusOK, status)
}
