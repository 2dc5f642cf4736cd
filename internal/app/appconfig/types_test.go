package appconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistBackendDecode(t *testing.T) {
	tests := []struct {
		in      string
		want    PersistBackend
		wantErr bool
	}{
		{"postgres", PersistBackendPostgres, false},
		{" Redis ", PersistBackendRedis, false},
		{"sqlite", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var b PersistBackend
			err := b.Decode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}
