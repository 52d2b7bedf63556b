package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"resume-parser/pkg/utils"
)

// uploadField is the multipart field carrying the document
const uploadField = "file"

// readUpload loads the uploaded document, enforcing the size cap
func readUpload(c echo.Context, maxBytes int64) (string, []byte, *utils.CustomError) {
	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, utils.NewPayloadTooLargeError(maxBytes)
		}
		return "", nil, utils.NewBadRequestError(fmt.Sprintf("multipart field %q is required", uploadField))
	}

	filename := filepath.Base(fileHeader.Filename)
	if err := requestValidator.Var(filename, "required,upload_filename"); err != nil {
		return "", nil, utils.NewValidationError("invalid file name")
	}

	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return "", nil, utils.NewPayloadTooLargeError(maxBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, utils.NewBadRequestError("failed to open uploaded file")
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, utils.NewBadRequestError("failed to read uploaded file")
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", nil, utils.NewPayloadTooLargeError(maxBytes)
	}
	if len(content) == 0 {
		return "", nil, utils.NewValidationError("uploaded file is empty")
	}

	return filename, content, nil
}
