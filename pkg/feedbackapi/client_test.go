package feedbackapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/pkg/feedbackapi"
	"github.com/NomadCrew/feedback-client/tests/testutil"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestSubmitFeedback(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := feedbackapi.NewClientForURL(backend.URL())

	resp, err := client.SubmitFeedback(context.Background(), types.FeedbackRequest{
		Name:    "John Doe",
		Email:   "john@example.com",
		Message: "Great app!",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "John Doe", resp.Name)
	assert.Equal(t, "Great app!", resp.Message)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, feedbackapi.FeedbackPath, reqs[0].Path)

	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &sent))
	assert.Equal(t, map[string]string{"name": "John Doe", "email": "john@example.com", "message": "Great app!"}, sent)
}

func TestSubmitFeedback_ServerValidationError(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := feedbackapi.NewClientForURL(backend.URL())

	_, err := client.SubmitFeedback(context.Background(), types.FeedbackRequest{Name: " ", Email: "john@example.com", Message: "Hi"})

	httpErr, ok := apperrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation error", httpErr.Message)
	assert.Equal(t, []string{"name must not be blank"}, httpErr.Details())
	assert.Len(t, backend.Requests(), 1)
}

func TestGetFeedbacksPage_Envelope(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.Seed(12)
	client := feedbackapi.NewClientForURL(backend.URL())

	page, err := client.GetFeedbacksPage(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(12), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[0].ID)
	assert.Equal(t, int64(1), page.Items[1].ID)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1", reqs[0].Query.Get("page"))
	assert.Equal(t, "10", reqs[0].Query.Get("size"))
}

func TestGetFeedbacksPage_Legacy(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetShape(testutil.ShapeLegacy)
	backend.Seed(2)
	client := feedbackapi.NewClientForURL(backend.URL())

	page, err := client.GetFeedbacksPage(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
}

func TestGetFeedbacksPage_InvalidArguments(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := feedbackapi.NewClientForURL(backend.URL())

	_, err := client.GetFeedbacksPage(context.Background(), -1, 10)
	assert.True(t, errors.Is(err, feedbackapi.ErrInvalidPageRequest))

	_, err = client.GetFeedbacksPage(context.Background(), 0, 0)
	assert.True(t, errors.Is(err, feedbackapi.ErrInvalidPageRequest))

	assert.Empty(t, backend.Requests())
}

func TestGetFeedbacksPage_ServerErrorIsNotRetried(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.FailNext(http.StatusInternalServerError, "text/html", "<html>boom</html>")
	client := feedbackapi.NewClientForURL(backend.URL())

	_, err := client.GetFeedbacksPage(context.Background(), 0, 10)

	httpErr, ok := apperrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "Internal Server Error", httpErr.Message)
	assert.Nil(t, httpErr.Body)
	assert.Len(t, backend.Requests(), 1)
}

func TestGetFeedbacksPage_UnrecognisedBody(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.FailNext(http.StatusOK, "application/json", `"just a string"`)
	client := feedbackapi.NewClientForURL(backend.URL())

	_, err := client.GetFeedbacksPage(context.Background(), 0, 10)
	require.Error(t, err)
	_, isHTTP := apperrors.AsHTTPError(err)
	assert.False(t, isHTTP)
}

func TestGetFeedbacks_FirstPageOnly(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.Seed(15)
	client := feedbackapi.NewClientForURL(backend.URL())

	items, err := client.GetFeedbacks(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, feedbackapi.DefaultPageSize)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "0", reqs[0].Query.Get("page"))
	assert.Equal(t, "10", reqs[0].Query.Get("size"))
}
