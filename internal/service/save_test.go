package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"quiz-save/internal/adapter/page"
	"quiz-save/internal/adapter/saveclient"
	"quiz-save/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCollector(t *testing.T, checked ...string) CollectorService {
	t.Helper()
	qs := domain.DefaultQuestionSet()
	collector, err := NewCollectorService(qs, controlsFor(qs, checked...))
	require.NoError(t, err)
	return collector
}

func TestSaveService_Save_DisplaysFeedback(t *testing.T) {
	submitter := new(MockSubmitter)
	display := new(MockFeedbackDisplay)

	want := domain.Payload{"identity": {Code: "B"}, "negate": {Code: domain.NoSelection}}
	submitter.On("Submit", mock.Anything, want).
		Return(&domain.SubmitResult{SubmissionID: "id", StatusCode: 200, Feedback: "Saved!", HasFeedback: true}, nil).
		Once()
	display.On("DisplayFeedback", "Saved!").Return(nil).Once()

	svc := NewSaveService(newCollector(t, "q1-B"), submitter, display)
	outcome, err := svc.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want, outcome.Payload)
	assert.True(t, outcome.Displayed)
	assert.Equal(t, "Saved!", outcome.Result.Feedback)
	submitter.AssertExpectations(t)
	display.AssertExpectations(t)
}

func TestSaveService_Save_MissingFeedbackIsNotDefaulted(t *testing.T) {
	submitter := new(MockSubmitter)
	display := new(MockFeedbackDisplay)

	submitter.On("Submit", mock.Anything, mock.Anything).
		Return(&domain.SubmitResult{SubmissionID: "id", StatusCode: 200}, nil)

	svc := NewSaveService(newCollector(t), submitter, display)
	outcome, err := svc.Save(context.Background())
	require.NoError(t, err)

	assert.False(t, outcome.Result.HasFeedback)
	assert.False(t, outcome.Displayed)
	display.AssertNotCalled(t, "DisplayFeedback", mock.Anything)
}

func TestSaveService_Save_SubmitFailureIsSurfacedOnce(t *testing.T) {
	submitter := new(MockSubmitter)
	display := new(MockFeedbackDisplay)

	failure := domain.NewSubmitFailedError("Save request failed", errors.New("connection refused"))
	submitter.On("Submit", mock.Anything, mock.Anything).Return(nil, failure)

	svc := NewSaveService(newCollector(t, "q2-A"), submitter, display)
	outcome, err := svc.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)

	require.NotNil(t, outcome)
	assert.Equal(t, domain.OptionCode("A"), outcome.Payload["negate"].Code)
	assert.Nil(t, outcome.Result)
	submitter.AssertNumberOfCalls(t, "Submit", 1)
	display.AssertNotCalled(t, "DisplayFeedback", mock.Anything)
}

func TestSaveService_Save_CollectorFailureSkipsSubmit(t *testing.T) {
	qs := domain.DefaultQuestionSet()
	controls := controlsFor(qs)
	delete(controls, domain.ControlKey{Question: "negate", Code: "D"})
	collector, err := NewCollectorService(qs, controls)
	require.NoError(t, err)

	submitter := new(MockSubmitter)
	display := new(MockFeedbackDisplay)

	_, err = NewSaveService(collector, submitter, display).Save(context.Background())
	require.Error(t, err)
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSaveService_Save_DisplayFailure(t *testing.T) {
	submitter := new(MockSubmitter)
	display := new(MockFeedbackDisplay)

	submitter.On("Submit", mock.Anything, mock.Anything).
		Return(&domain.SubmitResult{Feedback: "Saved!", HasFeedback: true}, nil)
	display.On("DisplayFeedback", "Saved!").Return(domain.NewAnchorNotFoundError("save_button"))

	outcome, err := NewSaveService(newCollector(t), submitter, display).Save(context.Background())
	require.Error(t, err)
	assert.False(t, outcome.Displayed)
	assert.NotNil(t, outcome.Result)
}

const savePage = `<html><body>
<input type="radio" id="q1-A" name="q1"><input type="radio" id="q1-B" name="q1" checked>
<input type="radio" id="q1-C" name="q1"><input type="radio" id="q1-D" name="q1">
<input type="radio" id="q2-A" name="q2"><input type="radio" id="q2-B" name="q2">
<input type="radio" id="q2-C" name="q2"><input type="radio" id="q2-D" name="q2">
<button id="save_button">Save</button>
</body></html>`

func TestSaveService_Save_PageRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		mu.Lock()
		bodies = append(bodies, buf.String())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"feedback":"Saved!"}`))
	}))
	defer srv.Close()

	doc, err := page.ParseString(savePage, "save_button")
	require.NoError(t, err)

	qs := domain.DefaultQuestionSet()
	controls, err := doc.Controls(qs)
	require.NoError(t, err)
	collector, err := NewCollectorService(qs, controls)
	require.NoError(t, err)

	client, err := saveclient.NewClient(srv.URL+"/save", 0)
	require.NoError(t, err)
	defer client.Close()

	outcome, err := NewSaveService(collector, client, doc).Save(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Displayed)

	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"identity":{"code":"B"},"negate":{"code":"E"}}`, bodies[0])

	out := doc.String()
	assert.Equal(t, 1, strings.Count(out, "Saved!"))
	assert.Contains(t, out, `<div>Saved!</div><button id="save_button">`)
}

func TestSaveService_Save_OverlappingCallsEachSubmit(t *testing.T) {
	const saves = 8

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"feedback":"Saved!"}`))
	}))
	defer srv.Close()

	doc, err := page.ParseString(savePage, "save_button")
	require.NoError(t, err)

	qs := domain.DefaultQuestionSet()
	controls, err := doc.Controls(qs)
	require.NoError(t, err)
	collector, err := NewCollectorService(qs, controls)
	require.NoError(t, err)

	client, err := saveclient.NewClient(srv.URL+"/save", 0)
	require.NoError(t, err)
	defer client.Close()

	svc := NewSaveService(collector, client, doc)

	var wg sync.WaitGroup
	errs := make(chan error, saves)
	for i := 0; i < saves; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Save(context.Background())
			errs <- err
		}()
		go func(i int) {
			defer wg.Done()
			_ = doc.Check(qs[1].Options[i%len(qs[1].Options)].ElementID)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	mu.Lock()
	assert.Equal(t, saves, calls)
	mu.Unlock()
	assert.Equal(t, saves, strings.Count(doc.String(), "<div>Saved!</div>"))
}
