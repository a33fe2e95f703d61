package mock

import (
	"context"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

// MockIntentCreator implements port.IntentCreator for tests.
type MockIntentCreator struct {
	Out    port.CreateIntentOutput
	Err    error
	Called bool
	In     port.CreateIntentInput
}

func (m *MockIntentCreator) CreateIntent(ctx context.Context, in port.CreateIntentInput) (port.CreateIntentOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockIntentCompleter implements port.IntentCompleter for tests.
type MockIntentCompleter struct {
	Err    error
	Called bool
	ID     db.UUID
}

func (m *MockIntentCompleter) CompleteIntent(ctx context.Context, intentID db.UUID) error {
	m.Called = true
	m.ID = intentID
	return m.Err
}

// MockMultipartInitialiser implements port.MultipartInitialiser for tests.
type MockMultipartInitialiser struct {
	Out    port.InitMultipartOutput
	Err    error
	Called bool
	In     port.InitMultipartInput
}

func (m *MockMultipartInitialiser) InitMultipart(ctx context.Context, in port.InitMultipartInput) (port.InitMultipartOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockPartSigner implements port.PartSigner for tests.
type MockPartSigner struct {
	Out    port.SignPartOutput
	Err    error
	Called bool
	In     port.SignPartInput
}

func (m *MockPartSigner) SignPart(ctx context.Context, in port.SignPartInput) (port.SignPartOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockMultipartCompleter implements port.MultipartCompleter for tests.
type MockMultipartCompleter struct {
	Out    port.CompleteMultipartOutput
	Err    error
	Called bool
	In     port.CompleteMultipartInput
}

func (m *MockMultipartCompleter) CompleteMultipart(ctx context.Context, in port.CompleteMultipartInput) (port.CompleteMultipartOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockMultipartAborter implements port.MultipartAborter for tests.
type MockMultipartAborter struct {
	Err    error
	Called bool
	ID     db.UUID
}

func (m *MockMultipartAborter) AbortMultipart(ctx context.Context, intentID db.UUID) error {
	m.Called = true
	m.ID = intentID
	return m.Err
}

// MockWebhookProcessor implements port.WebhookProcessor for tests.
type MockWebhookProcessor struct {
	Err       error
	Called    bool
	Payload   []byte
	Signature string
}

func (m *MockWebhookProcessor) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	m.Called = true
	m.Payload = payload
	m.Signature = signature
	return m.Err
}

// MockAssetGetter implements port.AssetGetter for tests.
type MockAssetGetter struct {
	Out    *port.GetAssetOutput
	Err    error
	Called bool
	ID     db.UUID
}

func (m *MockAssetGetter) GetAsset(ctx context.Context, id db.UUID) (*port.GetAssetOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// MockRecordingMaterializer implements port.RecordingMaterializer for tests.
type MockRecordingMaterializer struct {
	Err    error
	Called bool
	In     port.MaterializeRecordingInput
}

func (m *MockRecordingMaterializer) MaterializeRecording(ctx context.Context, in port.MaterializeRecordingInput) error {
	m.Called = true
	m.In = in
	return m.Err
}

// MockInstructorNotifier implements port.InstructorNotifier for tests.
type MockInstructorNotifier struct {
	Err    error
	Called bool
	ID     db.UUID
	Event  string
}

func (m *MockInstructorNotifier) NotifyInstructor(ctx context.Context, assetID db.UUID, event string) error {
	m.Called = true
	m.ID = assetID
	m.Event = event
	return m.Err
}
