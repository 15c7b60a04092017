package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_notifyRecipients(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []mail.Address
		wantErr bool
	}{
		{
			name: "named and bare",
			raw:  "Registrar <registrar@chuo.test>, dean@chuo.test",
			want: []mail.Address{{Name: "Registrar", Address: "registrar@chuo.test"}, {Address: "dean@chuo.test"}},
		},
		{name: "blank entries", raw: " ,dean@chuo.test,, ", want: []mail.Address{{Address: "dean@chuo.test"}}},
		{name: "unset list", raw: "", want: []mail.Address{}},
		{name: "malformed", raw: "Registrar, dean@chuo.test", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "TEST")
			t.Setenv("TEST_NOTIFY_RECIPIENTS", tt.raw)

			conf, err := NewConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, conf.TestMode)
			assert.Equal(t, tt.want, conf.NotifyAddresses())
		})
	}
}

func Test_splitList(t *testing.T) {
	assert.Equal(t, []string{"a b", "c"}, splitList(" a b ,c"))
	assert.Empty(t, splitList(""))
}
