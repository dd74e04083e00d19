package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MaxUploadSize caps a single upload.
const MaxUploadSize = 5 << 30 // 5GB

// ValidateUpload checks basic upload constraints before the pipeline runs.
func ValidateUpload(header *multipart.FileHeader) error {
	if err := ValidateName(header.Filename); err != nil {
		return err
	}

	if header.Size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if header.Size > MaxUploadSize {
		return fmt.Errorf("file too large: maximum size is %d GB", MaxUploadSize>>30)
	}

	return nil
}

// DetectMimeType sniffs the content type from the file's leading bytes.
// The declared Content-Type header wins when present; magic numbers are
// the fallback. The file is rewound before returning.
func DetectMimeType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if declared := header.Header.Get("Content-Type"); declared != "" {
		return declared, nil
	}

	// http.DetectContentType reads at most 512 bytes
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}
