package reddit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branikbot/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		RedditUserAgent:    "branikbot-test/1.0",
		RedditClientID:     "client",
		RedditClientSecret: "secret",
		RedditUsername:     "branikbot",
		RedditPassword:     "pw",
		RedditSubreddit:    "czech",
		RedditAPIBaseURL:   baseURL,
		RedditTokenURL:     baseURL + "/api/v1/access_token",
		RedditRateLimitRPS: 1000,
		RedditTimeoutMs:    5000,
	}
}

const commentsListing = `{"kind":"Listing","data":{"children":[
 {"kind":"t1","data":{"id":"c3","name":"t1_c3","author":"pepa","body":"dal bych 500kc","link_id":"t3_p1","permalink":"/r/czech/comments/p1/x/c3/"}},
 {"kind":"t1","data":{"id":"c2","name":"t1_c2","author":"jana","body":"branik","link_id":"t3_p1","permalink":"/r/czech/comments/p1/x/c2/"}},
 {"kind":"more","data":{"id":""}}
]}}`

func TestLatestCommentsWithPasswordGrant(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "branikbot-test/1.0", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/api/v1/access_token":
			atomic.AddInt32(&tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.Equal(t, "secret", pass)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "branikbot", r.PostForm.Get("username"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
		case "/r/czech/comments":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(commentsListing))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		comments, err := client.LatestComments(context.Background(), "czech", 20)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "c3", comments[0].ID)
		assert.Equal(t, "t1_c3", comments[0].FullName)
		assert.Equal(t, "t3_p1", comments[0].PostID)
		assert.Equal(t, "dal bych 500kc", comments[0].Body)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("https://example.test")
	cfg.RedditPassword = ""
	_, err := NewClient(cfg)
	assert.Error(t, err)
}

func TestBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized","error":401}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	_, err = client.LatestComments(context.Background(), "czech", 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized), err.Error())
}

func TestReplyRetriesServerErrors(t *testing.T) {
	attempt := 0
	client := newClient(testConfig("https://example.test"), &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/comment" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			attempt++
			if attempt == 1 {
				return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
			}
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "t1_c3", r.PostForm.Get("thing_id"))
			assert.Equal(t, "ahoj", r.PostForm.Get("text"))
			assert.Equal(t, "json", r.PostForm.Get("api_type"))
			return jsonResponse(http.StatusOK, `{"json":{"errors":[],"data":{"things":[]}}}`), nil
		}),
	})

	require.NoError(t, client.Reply(context.Background(), "t1_c3", "ahoj"))
	assert.Equal(t, 2, attempt)
}

func TestReplyRejected(t *testing.T) {
	client := newClient(testConfig("https://example.test"), &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`), nil
		}),
	})

	err := client.Reply(context.Background(), "t1_c3", "ahoj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATELIMIT")
}

func TestForbiddenIsNotRetried(t *testing.T) {
	attempt := 0
	client := newClient(testConfig("https://example.test"), &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempt++
			return jsonResponse(http.StatusForbidden, `{}`), nil
		}),
	})

	_, err := client.LatestComments(context.Background(), "czech", 20)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, attempt)
}
