package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tt := []struct {
		name         string
		serverAddr   string
		databaseDSN  string
		base64Secret string
		expectErr    string
	}{
		{
			name:         "valid",
			serverAddr:   ":8000",
			databaseDSN:  "postgres://localhost/roomcast",
			base64Secret: "c2VjcmV0",
		},
		{
			name:         "empty server address",
			databaseDSN:  "postgres://localhost/roomcast",
			base64Secret: "c2VjcmV0",
			expectErr:    "server address cannot be empty",
		},
		{
			name:         "empty database DSN",
			serverAddr:   ":8000",
			base64Secret: "c2VjcmV0",
			expectErr:    "database DSN cannot be empty",
		},
		{
			name:        "empty signing secret",
			serverAddr:  ":8000",
			databaseDSN: "postgres://localhost/roomcast",
			expectErr:   "signing secret cannot be empty",
		},
		{
			name:         "signing secret is not base64",
			serverAddr:   ":8000",
			databaseDSN:  "postgres://localhost/roomcast",
			base64Secret: "not base64!",
			expectErr:    "decode signing secret",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, tc.databaseDSN, tc.base64Secret,
				[]string{"http://localhost:3000"}, "")

			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr)
			assert.Equal(t, tc.databaseDSN, cfg.DatabaseDSN)
			assert.Equal(t, []byte("secret"), cfg.SigningKey)
			assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
			assert.Empty(t, cfg.RedisAddr)
		})
	}
}
