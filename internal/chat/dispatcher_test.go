package chat

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/diogo/aichat/internal/api"
	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

func TestDispatch_Success(t *testing.T) {
	mock := &api.MockClient{Reply: "Hello!"}
	d := NewDispatcher(mock)

	reply := d.Dispatch(context.Background(), "Hi")
	require.NoError(t, reply.Err)
	require.Equal(t, models.AssistantMessage("Hello!"), reply.Message)
	require.NotEmpty(t, reply.RequestID)
	require.Equal(t, []string{"Hi"}, mock.Prompts())
}

func TestDispatch_NoContentFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	d := NewDispatcher(&api.MockClient{Err: apierrors.ErrNoContent}, WithLogger(logger))

	reply := d.Dispatch(context.Background(), "Hi")
	require.NoError(t, reply.Err, "missing text is not an error")
	require.Equal(t, "No response received.", reply.Message.Text)
	require.Equal(t, models.SenderAssistant, reply.Message.Sender)
	require.NotContains(t, buf.String(), `"level":"error"`)
}

func TestDispatch_EmptyTextFallsBack(t *testing.T) {
	d := NewDispatcher(&api.MockClient{Reply: ""})

	reply := d.Dispatch(context.Background(), "Hi")
	require.NoError(t, reply.Err)
	require.Equal(t, models.NoResponseReply, reply.Message.Text)
}

func TestDispatch_FailureFallsBackAndLogs(t *testing.T) {
	failures := []error{
		apierrors.NewNetworkError("generate content", "ep", errors.New("connection refused")),
		apierrors.NewAPIError(500, "ep", "internal"),
		apierrors.NewParseError("not json", ""),
		apierrors.NewTimeoutError("slow"),
	}

	for _, failure := range failures {
		var buf bytes.Buffer
		d := NewDispatcher(&api.MockClient{Err: failure}, WithLogger(zerolog.New(&buf)), WithModelName("m"))

		reply := d.Dispatch(context.Background(), "Hi")
		require.ErrorIs(t, reply.Err, failure)
		require.Equal(t, "Error: Unable to fetch a response.", reply.Message.Text)
		require.Equal(t, models.SenderAssistant, reply.Message.Sender)
		require.Contains(t, buf.String(), `"level":"error"`)
		require.Contains(t, buf.String(), reply.RequestID)
		require.Contains(t, buf.String(), `"model":"m"`)
	}
}

func TestDispatch_PanicIsRecovered(t *testing.T) {
	mock := &api.MockClient{Hook: func(context.Context, string) { panic("boom") }}
	d := NewDispatcher(mock)

	reply := d.Dispatch(context.Background(), "Hi")
	require.Error(t, reply.Err)
	require.Contains(t, reply.Err.Error(), "boom")
	require.Equal(t, models.ErrorReply, reply.Message.Text)
}

func TestDispatch_NilGenerator(t *testing.T) {
	reply := NewDispatcher(nil).Dispatch(context.Background(), "Hi")
	require.Error(t, reply.Err)
	require.Equal(t, models.ErrorReply, reply.Message.Text)
}

func TestDispatch_TimeoutBoundsRequest(t *testing.T) {
	mock := &api.MockClient{}
	mock.Hook = func(ctx context.Context, _ string) {
		<-ctx.Done()
		mock.Err = apierrors.NewTimeoutError(ctx.Err().Error())
	}
	d := NewDispatcher(mock, WithTimeout(20*time.Millisecond))

	start := time.Now()
	reply := d.Dispatch(context.Background(), "Hi")
	require.Less(t, time.Since(start), 2*time.Second)
	require.True(t, apierrors.IsTimeoutError(reply.Err))
	require.Equal(t, models.ErrorReply, reply.Message.Text)
}

func TestDispatch_NoTimeoutByDefault(t *testing.T) {
	var deadlineSet bool
	mock := &api.MockClient{Reply: "ok"}
	mock.Hook = func(ctx context.Context, _ string) {
		_, deadlineSet = ctx.Deadline()
	}

	NewDispatcher(mock).Dispatch(context.Background(), "Hi")
	require.False(t, deadlineSet)
}

func TestExchange_GrowsConversationByTwo(t *testing.T) {
	cases := []struct {
		name string
		mock *api.MockClient
		want string
	}{
		{"success", &api.MockClient{Reply: "Hello!"}, "Hello!"},
		{"no content", &api.MockClient{Err: apierrors.ErrNoContent}, models.NoResponseReply},
		{"network failure", &api.MockClient{Err: apierrors.NewNetworkError("op", "ep", errors.New("down"))}, models.ErrorReply},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDispatcher(tc.mock)
			s := NewState().SetInput("Hi")

			next, reply, err := d.Exchange(context.Background(), s)
			require.NoError(t, err)
			require.Equal(t, s.Len()+2, next.Len())
			require.False(t, next.Busy())
			require.Empty(t, next.Input())
			require.Equal(t, tc.want, next.Messages()[1].Text)
			require.Equal(t, reply.Message, next.Messages()[1])
		})
	}
}

func TestExchange_EmptyInputDoesNotDispatch(t *testing.T) {
	mock := &api.MockClient{Reply: "unused"}
	d := NewDispatcher(mock)
	s := NewState().SetInput("   ")

	next, _, err := d.Exchange(context.Background(), s)
	require.ErrorIs(t, err, apierrors.ErrEmptyInput)
	require.Equal(t, s, next)
	require.Empty(t, mock.Prompts())
}
