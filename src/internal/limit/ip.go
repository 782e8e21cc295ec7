// FILE: logfeeder/src/internal/limit/ip.go
package limit

import (
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/log"
)

// IPChecker is an allow/deny list for network inputs. Deny rules win over allow rules;
// a non-empty allow list rejects everything it does not cover.
type IPChecker struct {
	allow  []*net.IPNet
	deny   []*net.IPNet
	logger *log.Logger

	denied atomic.Uint64
}

// NewIPChecker parses CIDR or plain IP rules. It returns nil when no rules are given.
func NewIPChecker(allow, deny []string, logger *log.Logger) (*IPChecker, error) {
	if len(allow) == 0 && len(deny) == 0 {
		return nil, nil
	}

	c := &IPChecker{logger: logger}
	var err error
	if c.allow, err = parseRules(allow); err != nil {
		return nil, fmt.Errorf("ip_allow: %w", err)
	}
	if c.deny, err = parseRules(deny); err != nil {
		return nil, fmt.Errorf("ip_deny: %w", err)
	}

	logger.Info("msg", "IP checker initialized",
		"component", "ip_checker",
		"allow_rules", len(c.allow),
		"deny_rules", len(c.deny))
	return c, nil
}

// ValidateRules reports the first rule that is neither a CIDR nor an IP
func ValidateRules(rules []string) error {
	_, err := parseRules(rules)
	return err
}

func parseRules(rules []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(rules))
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if strings.Contains(rule, "/") {
			_, ipNet, err := net.ParseCIDR(rule)
			if err != nil {
				return nil, fmt.Errorf("invalid rule '%s': %w", rule, err)
			}
			nets = append(nets, ipNet)
			continue
		}

		ip := net.ParseIP(rule)
		if ip == nil {
			return nil, fmt.Errorf("invalid rule '%s': not an IP or CIDR", rule)
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets, nil
}

// IsAllowed validates if a remote address is permitted. A nil checker allows all.
func (c *IPChecker) IsAllowed(remoteAddr net.Addr) bool {
	if c == nil {
		return true
	}

	var ip net.IP
	switch addr := remoteAddr.(type) {
	case *net.TCPAddr:
		ip = addr.IP
	case *net.UDPAddr:
		ip = addr.IP
	default:
		host, _, err := net.SplitHostPort(remoteAddr.String())
		if err != nil {
			host = remoteAddr.String()
		}
		ip = net.ParseIP(host)
	}

	if ip == nil {
		c.denied.Add(1)
		c.logger.Warn("msg", "Could not parse remote address to IP",
			"component", "ip_checker",
			"remote_addr", remoteAddr.String())
		return false
	}

	for _, ipNet := range c.deny {
		if ipNet.Contains(ip) {
			c.denied.Add(1)
			c.logger.Warn("msg", "Denied IP rejected",
				"component", "ip_checker",
				"ip", ip.String(),
				"rule", ipNet.String())
			return false
		}
	}

	if len(c.allow) == 0 {
		return true
	}
	for _, ipNet := range c.allow {
		if ipNet.Contains(ip) {
			return true
		}
	}
	c.denied.Add(1)
	c.logger.Warn("msg", "IP not in allow list",
		"component", "ip_checker",
		"ip", ip.String())
	return false
}

// GetStats returns IP checker statistics
func (c *IPChecker) GetStats() map[string]any {
	if c == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":     true,
		"allow_rules": len(c.allow),
		"deny_rules":  len(c.deny),
		"denied":      c.denied.Load(),
	}
}
