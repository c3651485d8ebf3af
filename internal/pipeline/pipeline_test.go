package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"productapprovals/internal/approvals"
	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/pipeline/mocks"
)

var (
	product = &model.UploadedDocument{Filename: "products.csv", ContentType: "text/csv", Data: []byte("model\nX1\n")}
	license = &model.UploadedDocument{Filename: "license.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	cert    = model.Certificate(`{"number":"CERT-1"}`)
	pass    = model.VerificationResult{Valid: true, Explanation: "ok"}
)

// expectHappyPath wires every call of a successful run.
func expectHappyPath(m *mocks.MockClient) {
	m.On("UploadCompanyLicense", mock.Anything, license).Return("company-1", nil)
	m.On("UploadProduct", mock.Anything, product).Return("job-1", nil)
	m.On("VerifyCompany", mock.Anything, "job-1", "products.csv", "company-1").Return(pass, nil)
	m.On("VerifyLab", mock.Anything, "job-1", "products.csv").Return(pass, nil)
	m.On("VerifyProductCategory", mock.Anything, "job-1", "products.csv").Return(pass, nil)
	m.On("VerifyModelNumber", mock.Anything, "job-1", "products.csv").Return(model.VerificationResult{Valid: false, Explanation: "model mismatch"}, nil)
	m.On("VerifyProductUsage", mock.Anything, "job-1", "products.csv").Return(pass, nil)
	m.On("RetrieveCertificate", mock.Anything, "job-1", "products.csv").Return(cert, nil)
	m.On("VerifyCertificateManufacturer", mock.Anything, cert, "job-1", "products.csv").Return(pass, nil)
	m.On("VerifyCertificateModelNumber", mock.Anything, cert, "job-1", "products.csv").Return(pass, nil)
	m.On("EnhanceProductDescription", mock.Anything, "job-1", "products.csv").
		Return(model.EnhancementResult{EnhancedValue: "Steel door", Explanation: "clearer"}, nil)
}

func collect(t *testing.T, p *pipeline.Pipeline, in pipeline.Input) []pipeline.Event {
	t.Helper()
	seq, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	var out []pipeline.Event
	for ev := range seq {
		out = append(out, ev)
	}
	return out
}

func TestRun_Success(t *testing.T) {
	m := new(mocks.MockClient)
	expectHappyPath(m)

	events := collect(t, pipeline.New(m), pipeline.Input{Product: product, License: license})

	steps := pipeline.Steps()
	require.Len(t, events, 2*len(steps))
	for i, step := range steps {
		pending, resolved := events[2*i], events[2*i+1]
		assert.Equal(t, pipeline.EventPending, pending.Type)
		assert.Equal(t, step.ID, pending.Step)
		assert.Equal(t, step.Pending, pending.Title)
		assert.Equal(t, step.ID, resolved.Step)
		assert.Equal(t, step.Title, resolved.Title)
		assert.True(t, resolved.Terminal())
		assert.NotEqual(t, pipeline.EventFailed, resolved.Type)
	}

	// Nine remote checks follow the two uploads.
	var renders int
	for _, ev := range events[4:] {
		if ev.Terminal() {
			renders++
		}
	}
	assert.Equal(t, 9, renders)

	assert.Equal(t, pipeline.EventVerification, events[11].Type)
	assert.Equal(t, model.VerificationResult{Valid: false, Explanation: "model mismatch"}, events[11].Verification)

	last := events[len(events)-1]
	assert.Equal(t, pipeline.EventEnhancement, last.Type)
	assert.Equal(t, "Steel door", last.Enhancement.EnhancedValue)
	assert.Equal(t, "job-1", last.State.JobID)
	assert.Equal(t, "company-1", last.State.CompanyJobID)
	assert.Equal(t, json.RawMessage(cert), json.RawMessage(last.State.Certificate))

	m.AssertExpectations(t)
}

func TestRun_MissingDocuments(t *testing.T) {
	m := new(mocks.MockClient)
	p := pipeline.New(m)

	for name, in := range map[string]pipeline.Input{
		"no product": {License: license},
		"no license": {Product: product},
		"neither":    {},
	} {
		t.Run(name, func(t *testing.T) {
			seq, err := p.Run(context.Background(), in)
			assert.ErrorIs(t, err, pipeline.ErrMissingDocuments)
			assert.Nil(t, seq)
		})
	}

	m.AssertNotCalled(t, "UploadCompanyLicense", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "UploadProduct", mock.Anything, mock.Anything)
}

func TestRun_AbortsOnTransferError(t *testing.T) {
	m := new(mocks.MockClient)
	m.On("UploadCompanyLicense", mock.Anything, license).Return("company-1", nil)
	m.On("UploadProduct", mock.Anything, product).Return("job-1", nil)
	m.On("VerifyCompany", mock.Anything, "job-1", "products.csv", "company-1").Return(pass, nil)
	m.On("VerifyLab", mock.Anything, "job-1", "products.csv").
		Return(model.VerificationResult{}, &approvals.TransferError{Purpose: "verify lab", StatusCode: 500, Body: "internal boom"})

	events := collect(t, pipeline.New(m), pipeline.Input{Product: product, License: license})

	last := events[len(events)-1]
	assert.Equal(t, pipeline.EventFailed, last.Type)
	assert.Equal(t, pipeline.StepVerifyLab, last.Step)
	assert.Contains(t, last.Err.Error(), "internal boom")
	var te *approvals.TransferError
	assert.True(t, errors.As(last.Err, &te))

	// upload x2, verify company, then pending + failed for the lab.
	assert.Len(t, events, 8)
	m.AssertNotCalled(t, "VerifyProductCategory", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "EnhanceProductDescription", mock.Anything, mock.Anything, mock.Anything)
	m.AssertExpectations(t)
}

func TestRun_AbortsOnFirstUpload(t *testing.T) {
	m := new(mocks.MockClient)
	m.On("UploadCompanyLicense", mock.Anything, license).Return("", errors.New("dial tcp: connection refused"))

	events := collect(t, pipeline.New(m), pipeline.Input{Product: product, License: license})

	require.Len(t, events, 2)
	assert.Equal(t, pipeline.EventPending, events[0].Type)
	assert.Equal(t, pipeline.EventFailed, events[1].Type)
	assert.Equal(t, pipeline.StepUploadCompanyLicense, events[1].Step)
	m.AssertNotCalled(t, "UploadProduct", mock.Anything, mock.Anything)
}

func TestRun_Restartable(t *testing.T) {
	m := new(mocks.MockClient)
	expectHappyPath(m)

	seq, err := pipeline.New(m).Run(context.Background(), pipeline.Input{Product: product, License: license})
	require.NoError(t, err)

	for range 2 {
		var n int
		for range seq {
			n++
		}
		assert.Equal(t, 22, n)
	}
	m.AssertNumberOfCalls(t, "UploadProduct", 2)
	m.AssertNumberOfCalls(t, "EnhanceProductDescription", 2)
}

func TestRun_StopsWhenConsumerBreaks(t *testing.T) {
	m := new(mocks.MockClient)
	expectHappyPath(m)

	seq, err := pipeline.New(m).Run(context.Background(), pipeline.Input{Product: product, License: license})
	require.NoError(t, err)

	for ev := range seq {
		if ev.Step == pipeline.StepUploadProduct && ev.Terminal() {
			break
		}
	}

	m.AssertNumberOfCalls(t, "UploadProduct", 1)
	m.AssertNotCalled(t, "VerifyCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTap(t *testing.T) {
	m := new(mocks.MockClient)
	expectHappyPath(m)

	seq, err := pipeline.New(m).Run(context.Background(), pipeline.Input{Product: product, License: license})
	require.NoError(t, err)

	var seen []pipeline.StepID
	tapped := pipeline.Tap(seq, func(ev pipeline.Event) {
		if ev.Type == pipeline.EventPending {
			seen = append(seen, ev.Step)
		}
	})
	var passed int
	for range tapped {
		passed++
	}

	assert.Equal(t, 22, passed)
	require.Len(t, seen, 11)
	assert.Equal(t, pipeline.StepUploadCompanyLicense, seen[0])
	assert.Equal(t, pipeline.StepEnhanceProductDescription, seen[10])
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "pending", pipeline.EventPending.String())
	assert.Equal(t, "failed", pipeline.EventFailed.String())
	assert.Equal(t, "unknown", pipeline.EventType(42).String())
}

func TestEvent_Outcome(t *testing.T) {
	assert.Equal(t, "", pipeline.Event{Type: pipeline.EventPending}.Outcome())
	assert.Equal(t, model.StepPassed, pipeline.Event{Type: pipeline.EventVerification, Verification: model.VerificationResult{Valid: true}}.Outcome())
	assert.Equal(t, model.StepRejected, pipeline.Event{Type: pipeline.EventVerification}.Outcome())
	assert.Equal(t, model.StepCompleted, pipeline.Event{Type: pipeline.EventCompleted}.Outcome())
	assert.Equal(t, model.StepCompleted, pipeline.Event{Type: pipeline.EventEnhancement}.Outcome())
	assert.Equal(t, model.StepErrored, pipeline.Event{Type: pipeline.EventFailed}.Outcome())
}
