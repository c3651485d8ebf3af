package pipeline

import (
	"context"
	"fmt"

	"productapprovals/internal/model"
)

// StepID identifies a pipeline step in events, metrics and the run ledger.
type StepID string

const (
	StepUploadCompanyLicense          StepID = "upload_company_license"
	StepUploadProduct                 StepID = "upload_product"
	StepVerifyCompany                 StepID = "verify_company"
	StepVerifyLab                     StepID = "verify_lab"
	StepVerifyProductCategory         StepID = "verify_product_category"
	StepVerifyModelNumber             StepID = "verify_model_number"
	StepVerifyProductUsage            StepID = "verify_product_usage"
	StepRetrieveCertificate           StepID = "retrieve_certificate"
	StepVerifyCertificateManufacturer StepID = "verify_certificate_manufacturer"
	StepVerifyCertificateModelNumber  StepID = "verify_certificate_model_number"
	StepEnhanceProductDescription     StepID = "enhance_product_description"
)

// Client is the subset of the approvals API the pipeline drives.
type Client interface {
	UploadCompanyLicense(ctx context.Context, doc *model.UploadedDocument) (string, error)
	UploadProduct(ctx context.Context, doc *model.UploadedDocument) (string, error)
	VerifyCompany(ctx context.Context, productJobID, productFilename, companyJobID string) (model.VerificationResult, error)
	VerifyLab(ctx context.Context, jobID, filename string) (model.VerificationResult, error)
	VerifyProductCategory(ctx context.Context, jobID, filename string) (model.VerificationResult, error)
	VerifyModelNumber(ctx context.Context, jobID, filename string) (model.VerificationResult, error)
	VerifyProductUsage(ctx context.Context, jobID, filename string) (model.VerificationResult, error)
	RetrieveCertificate(ctx context.Context, jobID, filename string) (model.Certificate, error)
	VerifyCertificateManufacturer(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error)
	VerifyCertificateModelNumber(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error)
	EnhanceProductDescription(ctx context.Context, jobID, filename string) (model.EnhancementResult, error)
}

// stepFunc performs one network call. It returns the next state and the
// resolving event (Type and payload only), or an error.
type stepFunc func(ctx context.Context, c Client, in Input, s RunState) (RunState, Event, error)

// Step describes one position in the fixed run order.
type Step struct {
	ID StepID
	// Pending is announced before the call, Title once it resolves.
	Pending string
	Title   string
	run     stepFunc
}

// Steps returns the run order. The slice is a copy.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

var steps = []Step{
	{StepUploadCompanyLicense, "Uploading company license...", "Uploaded company license", uploadCompanyLicense},
	{StepUploadProduct, "Uploading product...", "Uploaded product", uploadProduct},
	{StepVerifyCompany, "Verifying company license...", "Verified company license", verifyCompany},
	{StepVerifyLab, "Verifying lab...", "Verified lab", verifyJob(Client.VerifyLab)},
	{StepVerifyProductCategory, "Verifying product category...", "Verified product category", verifyJob(Client.VerifyProductCategory)},
	{StepVerifyModelNumber, "Verifying model number...", "Verified model number", verifyJob(Client.VerifyModelNumber)},
	{StepVerifyProductUsage, "Verifying product usage...", "Verified product usage", verifyJob(Client.VerifyProductUsage)},
	{StepRetrieveCertificate, "Retrieving certificate...", "Certificate retrieved successfully", retrieveCertificate},
	{StepVerifyCertificateManufacturer, "Verifying manufacturer on certificate...", "Verified manufacturer on certificate", verifyCertificate(Client.VerifyCertificateManufacturer)},
	{StepVerifyCertificateModelNumber, "Verifying model number on certificate...", "Verified model number on certificate", verifyCertificate(Client.VerifyCertificateModelNumber)},
	{StepEnhanceProductDescription, "Enhancing product description...", "Enhanced product description", enhanceProductDescription},
}

func uploadCompanyLicense(ctx context.Context, c Client, in Input, s RunState) (RunState, Event, error) {
	id, err := c.UploadCompanyLicense(ctx, in.License)
	if err != nil {
		return s, Event{}, err
	}
	s.CompanyJobID = id
	return s, Event{Type: EventCompleted}, nil
}

func uploadProduct(ctx context.Context, c Client, in Input, s RunState) (RunState, Event, error) {
	id, err := c.UploadProduct(ctx, in.Product)
	if err != nil {
		return s, Event{}, err
	}
	s.JobID = id
	s.ProductFilename = in.Product.Filename
	return s, Event{Type: EventCompleted}, nil
}

func verifyCompany(ctx context.Context, c Client, _ Input, s RunState) (RunState, Event, error) {
	if s.CompanyJobID == "" {
		return s, Event{}, fmt.Errorf("%w: company job id", ErrStateMissing)
	}
	res, err := c.VerifyCompany(ctx, s.JobID, s.ProductFilename, s.CompanyJobID)
	if err != nil {
		return s, Event{}, err
	}
	return s, Event{Type: EventVerification, Verification: res}, nil
}

func verifyJob(call func(Client, context.Context, string, string) (model.VerificationResult, error)) stepFunc {
	return func(ctx context.Context, c Client, _ Input, s RunState) (RunState, Event, error) {
		res, err := call(c, ctx, s.JobID, s.ProductFilename)
		if err != nil {
			return s, Event{}, err
		}
		return s, Event{Type: EventVerification, Verification: res}, nil
	}
}

func retrieveCertificate(ctx context.Context, c Client, _ Input, s RunState) (RunState, Event, error) {
	cert, err := c.RetrieveCertificate(ctx, s.JobID, s.ProductFilename)
	if err != nil {
		return s, Event{}, err
	}
	s.Certificate = cert
	return s, Event{Type: EventCompleted}, nil
}

func verifyCertificate(call func(Client, context.Context, model.Certificate, string, string) (model.VerificationResult, error)) stepFunc {
	return func(ctx context.Context, c Client, _ Input, s RunState) (RunState, Event, error) {
		if s.Certificate == nil {
			return s, Event{}, fmt.Errorf("%w: certificate", ErrStateMissing)
		}
		res, err := call(c, ctx, s.Certificate, s.JobID, s.ProductFilename)
		if err != nil {
			return s, Event{}, err
		}
		return s, Event{Type: EventVerification, Verification: res}, nil
	}
}

func enhanceProductDescription(ctx context.Context, c Client, _ Input, s RunState) (RunState, Event, error) {
	res, err := c.EnhanceProductDescription(ctx, s.JobID, s.ProductFilename)
	if err != nil {
		return s, Event{}, err
	}
	return s, Event{Type: EventEnhancement, Enhancement: res}, nil
}
