package models

import (
	"github.com/go-playground/validator/v10"
)

// DefaultDelimiter is the CSV column delimiter used when none is given.
const DefaultDelimiter = ","

var validate = validator.New()

// UploadFile is the compressed dataset sent with an import request.
type UploadFile struct {
	Name    string `validate:"required"`
	Content []byte `validate:"required,min=1"`
}

// UploadRequest is the transient, validated input of a submission.
// It is never persisted.
type UploadRequest struct {
	Lists          []int `validate:"required,min=1,dive,gt=0"`
	OverrideStatus bool
	Delimiter      string      `validate:"required,len=1"`
	File           *UploadFile `validate:"required"`
}

// ImportParams is the JSON configuration sent in the "params" multipart field.
type ImportParams struct {
	Lists          []int  `json:"lists"`
	OverrideStatus bool   `json:"override_status"`
	Delimiter      string `json:"delim"`
}

// NewUploadRequest builds a request and validates it. An empty delimiter
// falls back to DefaultDelimiter.
func NewUploadRequest(lists []int, overrideStatus bool, delimiter string, file *UploadFile) (*UploadRequest, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	req := &UploadRequest{
		Lists:          append([]int(nil), lists...),
		OverrideStatus: overrideStatus,
		Delimiter:      delimiter,
		File:           file,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the request using go-playground/validator tags.
// Delimiter length is measured in characters, not bytes.
func (r *UploadRequest) Validate() error {
	return validate.Struct(r)
}

// Params returns the wire configuration for this request.
func (r *UploadRequest) Params() ImportParams {
	return ImportParams{
		Lists:          append([]int(nil), r.Lists...),
		OverrideStatus: r.OverrideStatus,
		Delimiter:      r.Delimiter,
	}
}
