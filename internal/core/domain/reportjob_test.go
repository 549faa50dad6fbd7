package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFormat(t *testing.T) {
	for _, alias := range []string{"xls", "xlsx", "excel", "XLSX", " Excel "} {
		format, err := NormalizeFormat(alias)
		assert.NoError(t, err, "alias %q", alias)
		assert.Equal(t, FormatXLS, format)
	}

	format, err := NormalizeFormat("PDF")
	assert.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	_, err = NormalizeFormat("csv")
	assert.Error(t, err)
}

func TestFormatExtensionAndMIME(t *testing.T) {
	// The legacy "xls" format produces a real OOXML artifact.
	assert.Equal(t, ".xlsx", FormatXLS.Extension())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLS.MIMEType())
	assert.Equal(t, ".pdf", FormatPDF.Extension())
	assert.Equal(t, "application/pdf", FormatPDF.MIMEType())
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.True(t, JobDone.Terminal())
	assert.True(t, JobError.Terminal())
}

func TestParseReportType(t *testing.T) {
	for _, rt := range ReportTypes {
		parsed, err := ParseReportType(string(rt))
		assert.NoError(t, err)
		assert.Equal(t, rt, parsed)
	}
	_, err := ParseReportType("balance-sheet")
	assert.Error(t, err)
}
