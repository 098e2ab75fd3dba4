package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportKey(t *testing.T) {
	started := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, "match-reports/2025/03/02/run-42.json", ReportKey(42, started))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Bucket: "reports", Region: "eu-south-1"}, "https://reports.s3.eu-south-1.amazonaws.com/k.json"},
		{"spaces", S3Config{Bucket: "reports", Endpoint: "https://fra1.digitaloceanspaces.com"}, "https://reports.fra1.digitaloceanspaces.com/k.json"},
		{"path style", S3Config{Bucket: "reports", Endpoint: "http://localhost:9000/"}, "http://localhost:9000/reports/k.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.cfg, "k.json"))
		})
	}
}

func TestS3ConfigEnabled(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	assert.False(t, S3Config{Bucket: "b"}.Enabled())
	assert.True(t, S3Config{Bucket: "b", Region: "us-east-1"}.Enabled())
}
