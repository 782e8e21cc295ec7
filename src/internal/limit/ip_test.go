// FILE: logfeeder/src/internal/limit/ip_test.go
package limit

import (
	"net"
	"testing"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tcpAddr(ip string) net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(ip), Port: 40000}
}

func TestNewIPChecker_NoRules(t *testing.T) {
	c, err := NewIPChecker(nil, nil, log.NewLogger())
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.True(t, c.IsAllowed(tcpAddr("203.0.113.9")), "nil checker allows all")
	assert.Equal(t, false, c.GetStats()["enabled"])
}

func TestIPChecker_IsAllowed(t *testing.T) {
	c, err := NewIPChecker([]string{"10.0.0.0/8", "192.168.1.10"}, []string{"10.1.2.3"}, log.NewLogger())
	require.NoError(t, err)

	tests := []struct {
		addr net.Addr
		want bool
	}{
		{tcpAddr("10.4.5.6"), true},
		{tcpAddr("192.168.1.10"), true},
		{tcpAddr("192.168.1.11"), false},
		{tcpAddr("10.1.2.3"), false},
		{&net.UDPAddr{IP: net.ParseIP("10.9.9.9")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.addr.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsAllowed(tt.addr))
		})
	}
	assert.Equal(t, uint64(2), c.GetStats()["denied"])
}

func TestIPChecker_DenyOnly(t *testing.T) {
	c, err := NewIPChecker(nil, []string{"2001:db8::/32"}, log.NewLogger())
	require.NoError(t, err)

	assert.False(t, c.IsAllowed(tcpAddr("2001:db8::1")))
	assert.True(t, c.IsAllowed(tcpAddr("127.0.0.1")))
}

func TestValidateRules(t *testing.T) {
	assert.NoError(t, ValidateRules([]string{"127.0.0.1", "::1", "172.16.0.0/12"}))
	assert.Error(t, ValidateRules([]string{"localhost"}))
	assert.Error(t, ValidateRules([]string{"10.0.0.0/33"}))

	_, err := NewIPChecker([]string{"bogus"}, nil, log.NewLogger())
	assert.ErrorContains(t, err, "ip_allow")
}
