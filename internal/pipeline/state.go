package pipeline

import "productapprovals/internal/model"

// Input holds the two documents a run needs.
type Input struct {
	Product *model.UploadedDocument
	License *model.UploadedDocument
}

// RunState carries the identifiers produced by earlier steps into later ones.
// Steps receive it by value and return the updated copy.
type RunState struct {
	ProductFilename string
	JobID           string
	CompanyJobID    string
	Certificate     model.Certificate
}
