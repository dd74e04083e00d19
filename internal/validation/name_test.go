package validation

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("report.pdf"))
	assert.NoError(t, ValidateName("Holiday Photos 2026"))
	assert.NoError(t, ValidateName(strings.Repeat("a", 255)))

	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("a", 256)))
	assert.Error(t, ValidateName("etc/passwd"))
	assert.Error(t, ValidateName("report\x00.pdf"))
}

func TestValidateUpload(t *testing.T) {
	header := func(name string, size int64) *multipart.FileHeader {
		return &multipart.FileHeader{Filename: name, Size: size}
	}

	assert.NoError(t, ValidateUpload(header("report.pdf", 1024)))
	assert.Error(t, ValidateUpload(header("", 1024)))
	assert.Error(t, ValidateUpload(header("report.pdf", 0)))
	assert.Error(t, ValidateUpload(header("report.pdf", MaxUploadSize+1)))
}
