package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
)

// Form field names of the two documents.
const (
	fieldProduct = "product"
	fieldLicense = "license"
)

// Messages shown next to the upload form.
const (
	msgFilesRequired = "Please upload both the product CSV and the company license PDF files"
	msgFileTypes     = "The product file must be a .csv file and the company license a .pdf file"
)

var errFileTypes = errors.New(msgFileTypes)

// readUploads loads both form files into memory. A missing file leaves its
// Input field nil, which the pipeline rejects before any call.
func readUploads(c *fiber.Ctx) (pipeline.Input, error) {
	var in pipeline.Input
	var err error
	if in.Product, err = readUpload(c, fieldProduct); err != nil {
		return in, err
	}
	if in.License, err = readUpload(c, fieldLicense); err != nil {
		return in, err
	}
	return in, nil
}

func readUpload(c *fiber.Ctx, field string) (*model.UploadedDocument, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// No multipart body or no such part: treated as not uploaded.
		return nil, nil
	}
	if fh.Size == 0 && fh.Filename == "" {
		return nil, nil
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) (*model.UploadedDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &model.UploadedDocument{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// checkTypes enforces the extensions the form accepts.
func checkTypes(in pipeline.Input) error {
	if in.Product.Ext() != ".csv" || in.License.Ext() != ".pdf" {
		return errFileTypes
	}
	return nil
}

func complete(in pipeline.Input) bool {
	return in.Product != nil && in.License != nil
}
