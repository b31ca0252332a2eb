package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAWSIAMTokenProvider_RequiresParams(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		region   string
		username string
		wantErr  bool
	}{
		{"all params", "db.rds.amazonaws.com:3306", "eu-west-1", "app", false},
		{"missing endpoint", "", "eu-west-1", "app", true},
		{"missing region", "db:3306", "", "app", true},
		{"missing username", "db:3306", "eu-west-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAWSIAMTokenProvider(tt.endpoint, tt.region, tt.username)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Contains(t, p.String(), "region=eu-west-1")
		})
	}
}

func TestNewAzureServicePrincipalProvider_RequiresAllParams(t *testing.T) {
	tests := []struct {
		name                             string
		tenantID, clientID, clientSecret string
		wantErr                          bool
	}{
		{"all params provided", "tenant-id", "client-id", "client-secret", false},
		{"missing tenant ID", "", "client-id", "client-secret", true},
		{"missing client ID", "tenant-id", "", "client-secret", true},
		{"missing client secret", "tenant-id", "client-id", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAzureServicePrincipalProvider(tt.tenantID, tt.clientID, tt.clientSecret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotContains(t, p.String(), tt.clientSecret)
		})
	}
}
