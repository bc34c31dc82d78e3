package api

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

// fakeDoer records the request and answers with a canned response
type fakeDoer struct {
	status int
	body   string
	err    error
	// wait blocks until the request context is done before failing
	wait bool

	req     *http.Request
	reqBody string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.req = req
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		f.reqBody = string(data)
	}
	if f.wait {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newTestClient(t *testing.T, doer HTTPDoer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(doer), WithBaseURL("https://api.test")}, opts...)
	c, err := NewClient("test-key", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	require.ErrorIs(t, err, apierrors.ErrNoAPIKey)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("k", WithHTTPClient(&fakeDoer{}))
	require.NoError(t, err)
	require.Equal(t, models.DefaultModel, c.GetModel())
	require.Equal(t, models.DefaultBaseURL, c.baseURL)
	require.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
		c.Endpoint())
}

func TestGenerateContent_Success(t *testing.T) {
	doer := &fakeDoer{
		status: 200,
		body:   `{"candidates":[{"content":{"parts":[{"text":"Hello!"}]}}]}`,
	}
	c := newTestClient(t, doer, WithModel(models.ModelPro))

	reply, err := c.GenerateContent(context.Background(), "Hi there")
	require.NoError(t, err)
	require.Equal(t, "Hello!", reply)

	require.Equal(t, http.MethodPost, doer.req.Method)
	require.Equal(t, "https://api.test/v1beta/models/gemini-2.5-pro:generateContent", doer.req.URL.String())
	require.Equal(t, "application/json", doer.req.Header.Get("Content-Type"))
	require.Equal(t, "test-key", doer.req.Header.Get("x-goog-api-key"))
	require.Empty(t, doer.req.URL.RawQuery, "credential must not travel in the URL")
	require.JSONEq(t, `{"contents":[{"parts":[{"text":"Hi there"}]}]}`, doer.reqBody)
}

func TestGenerateContent_RawPromptIsSent(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`}
	c := newTestClient(t, doer)

	_, err := c.GenerateContent(context.Background(), "  padded  ")
	require.NoError(t, err)
	require.Equal(t, "  padded  ", gjson.Get(doer.reqBody, "contents.0.parts.0.text").String())
}

func TestGenerateContent_NoContent(t *testing.T) {
	bodies := []string{
		`{"candidates":[]}`,
		`{}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
		`{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, &fakeDoer{status: 200, body: body})
		_, err := c.GenerateContent(context.Background(), "hi")
		require.ErrorIs(t, err, apierrors.ErrNoContent, "body=%s", body)
	}
}

func TestGenerateContent_MalformedBody(t *testing.T) {
	c := newTestClient(t, &fakeDoer{status: 200, body: `<html>oops`})

	_, err := c.GenerateContent(context.Background(), "hi")
	require.ErrorIs(t, err, apierrors.ErrInvalidResponse)
}

func TestGenerateContent_StatusError(t *testing.T) {
	doer := &fakeDoer{
		status: 400,
		body:   `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`,
	}
	c := newTestClient(t, doer)

	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 400, apiErr.StatusCode)
	require.Equal(t, "API key not valid.", apiErr.Message)
	require.Contains(t, apiErr.Body, "INVALID_ARGUMENT")
	require.NotContains(t, err.Error(), "test-key")
}

func TestGenerateContent_StatusErrorPlainBody(t *testing.T) {
	c := newTestClient(t, &fakeDoer{status: 503, body: "unavailable"})

	_, err := c.GenerateContent(context.Background(), "hi")
	require.Equal(t, 503, apierrors.GetHTTPStatus(err))
	require.Contains(t, err.Error(), "status 503")
}

func TestGenerateContent_NetworkError(t *testing.T) {
	c := newTestClient(t, &fakeDoer{err: errors.New("connection refused")})

	_, err := c.GenerateContent(context.Background(), "hi")
	require.True(t, apierrors.IsNetworkError(err))
	require.Equal(t, "https://api.test/v1beta/models/gemini-2.5-flash:generateContent", apierrors.GetEndpoint(err))
}

func TestGenerateContent_Timeout(t *testing.T) {
	c := newTestClient(t, &fakeDoer{wait: true})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GenerateContent(ctx, "hi")
	require.True(t, apierrors.IsTimeoutError(err))
}

func TestGenerateContent_Canceled(t *testing.T) {
	c := newTestClient(t, &fakeDoer{wait: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateContent(ctx, "hi")
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, apierrors.IsTimeoutError(err))
}

func TestGenerateContent_EmptyPrompt(t *testing.T) {
	doer := &fakeDoer{status: 200}
	c := newTestClient(t, doer)

	_, err := c.GenerateContent(context.Background(), " \n\t")
	require.ErrorIs(t, err, apierrors.ErrEmptyInput)
	require.Nil(t, doer.req, "no request for empty input")
}

func TestGenerateContent_Closed(t *testing.T) {
	doer := &fakeDoer{status: 200}
	c := newTestClient(t, doer)
	c.Close()

	require.True(t, c.IsClosed())
	_, err := c.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	require.Nil(t, doer.req)
}

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"hello", `{"candidates":[{"content":{"parts":[{"text":"Hello!"}]}}]}`, "Hello!", nil},
		{"first candidate wins", `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}},{"content":{"parts":[{"text":"c"}]}}]}`, "a", nil},
		{"empty candidates", `{"candidates":[]}`, "", apierrors.ErrNoContent},
		{"number text", `{"candidates":[{"content":{"parts":[{"text":5}]}}]}`, "", apierrors.ErrNoContent},
		{"invalid", `{"candidates":`, "", apierrors.ErrInvalidResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tc.body))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
