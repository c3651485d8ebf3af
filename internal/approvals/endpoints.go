package approvals

import (
	"context"
	"encoding/json"

	"productapprovals/internal/model"
)

// Endpoint paths relative to BasePath.
const (
	PathProductUpload                 = "/product/upload"
	PathCompanyUpload                 = "/company/upload"
	PathCompanyVerify                 = "/company/verify"
	PathLabVerify                     = "/lab/verify"
	PathProductCategory               = "/product/verification/product-category"
	PathModelNumber                   = "/product/verification/model-number"
	PathProductUsage                  = "/product/verification/product-usage"
	PathCertificateRetrieve           = "/certificate/retrieve"
	PathCertificateManufacturer       = "/certificate/verification/manufacturer"
	PathCertificateModelNumber        = "/certificate/verification/model-number"
	PathProductDescriptionEnhancement = "/product/enhancement/product-description"
)

type jobRequest struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
}

type companyVerifyRequest struct {
	ProductJobID    string `json:"product_job_id"`
	ProductFilename string `json:"product_filename"`
	CompanyJobID    string `json:"company_job_id"`
}

type certificateRequest struct {
	Certificate json.RawMessage `json:"certificate"`
	JobID       string          `json:"job_id"`
	Filename    string          `json:"filename"`
}

// UploadProduct uploads the product CSV and returns its job id.
func (c *Client) UploadProduct(ctx context.Context, doc *model.UploadedDocument) (string, error) {
	return c.upload(ctx, PathProductUpload, "upload file", doc)
}

// UploadCompanyLicense uploads the company license PDF and returns its job id.
func (c *Client) UploadCompanyLicense(ctx context.Context, doc *model.UploadedDocument) (string, error) {
	return c.upload(ctx, PathCompanyUpload, "upload company license", doc)
}

func (c *Client) upload(ctx context.Context, path, purpose string, doc *model.UploadedDocument) (string, error) {
	body, err := c.postFile(ctx, path, purpose, doc)
	if err != nil {
		return "", err
	}
	var jobID string
	if err := field(body, "job_id", &jobID); err != nil {
		return "", err
	}
	return jobID, nil
}

// VerifyCompany checks the company license against the uploaded product.
func (c *Client) VerifyCompany(ctx context.Context, productJobID, productFilename, companyJobID string) (model.VerificationResult, error) {
	return c.verify(ctx, PathCompanyVerify, "verify company license", companyVerifyRequest{
		ProductJobID:    productJobID,
		ProductFilename: productFilename,
		CompanyJobID:    companyJobID,
	})
}

// VerifyLab checks that the testing laboratory is accredited.
func (c *Client) VerifyLab(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathLabVerify, "verify lab", jobRequest{jobID, filename})
}

// VerifyProductCategory checks the declared product category.
func (c *Client) VerifyProductCategory(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathProductCategory, "verify product category", jobRequest{jobID, filename})
}

// VerifyModelNumber checks the product model number.
func (c *Client) VerifyModelNumber(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathModelNumber, "verify model number", jobRequest{jobID, filename})
}

// VerifyProductUsage checks the intended use of the product.
func (c *Client) VerifyProductUsage(ctx context.Context, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathProductUsage, "verify product usage", jobRequest{jobID, filename})
}

// RetrieveCertificate fetches the certificate for the product. The payload is
// returned untouched.
func (c *Client) RetrieveCertificate(ctx context.Context, jobID, filename string) (model.Certificate, error) {
	body, err := c.postJSON(ctx, PathCertificateRetrieve, "retrieve certificate", jobRequest{jobID, filename})
	if err != nil {
		return nil, err
	}
	var cert json.RawMessage
	if err := field(body, "certificate", &cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// VerifyCertificateManufacturer matches the certificate holder against the manufacturer.
func (c *Client) VerifyCertificateManufacturer(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathCertificateManufacturer, "verify certificate manufacturer", certificateRequest{cert, jobID, filename})
}

// VerifyCertificateModelNumber matches the certified models against the product.
func (c *Client) VerifyCertificateModelNumber(ctx context.Context, cert model.Certificate, jobID, filename string) (model.VerificationResult, error) {
	return c.verify(ctx, PathCertificateModelNumber, "verify certificate model number", certificateRequest{cert, jobID, filename})
}

// EnhanceProductDescription asks for an improved product description.
func (c *Client) EnhanceProductDescription(ctx context.Context, jobID, filename string) (model.EnhancementResult, error) {
	body, err := c.postJSON(ctx, PathProductDescriptionEnhancement, "enhance product description", jobRequest{jobID, filename})
	if err != nil {
		return model.EnhancementResult{}, err
	}
	var out model.EnhancementResult
	if err := field(body, "enhancement", &out); err != nil {
		return model.EnhancementResult{}, err
	}
	return out, nil
}

func (c *Client) verify(ctx context.Context, path, purpose string, payload any) (model.VerificationResult, error) {
	body, err := c.postJSON(ctx, path, purpose, payload)
	if err != nil {
		return model.VerificationResult{}, err
	}
	var out model.VerificationResult
	if err := field(body, "verification", &out); err != nil {
		return model.VerificationResult{}, err
	}
	return out, nil
}
