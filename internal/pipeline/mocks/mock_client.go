package mocks

import (
	"context"

	"productapprovals/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) UploadCompanyLicense(ctx context.Context, doc *model.UploadedDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockClient) UploadProduct(ctx context.Context, doc *model.UploadedDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockClient) VerifyCompany(ctx context.Context, productJobID, productFilename, companyJobID string) (model.VerificationResult, error) {
	args := m.Called(ctx, productJobID, productFilename, companyJobID)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) VerifyLab(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) VerifyProductCategory(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) VerifyModelNumber(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) VerifyProductUsage(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) RetrieveCertificate(ctx context.Context, jobID, filename string) (model.Certificate, error) {
	args := m.Called(ctx, jobID, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Certificate), args.Error(1)
}

func (m *MockClient) VerifyCertificateManufacturer(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, cert, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) VerifyCertificateModelNumber(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error) {
	args := m.Called(ctx, cert, jobID, filename)
	return args.Get(0).(model.VerificationResult), args.Error(1)
}

func (m *MockClient) EnhanceProductDescription(ctx context.Context, jobID, filename string) (model.EnhancementResult, error) {
	args := m.Called(ctx, jobID, filename)
	return args.Get(0).(model.EnhancementResult), args.Error(1)
}
