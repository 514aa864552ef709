package geo

import (
	"log"
	"net"
	"net/http"
	"strings"
)

// Router 地域分流：来源 IP 命中任一 CIDR 时走备用后端
type Router struct {
	cidrs []*net.IPNet
}

// NewRouter 解析 CIDR 列表，非法条目记日志后跳过
func NewRouter(cidrs []string) *Router {
	r := &Router{}
	for _, c := range cidrs {
		_, ipNet, err := net.ParseCIDR(c)
		if err != nil {
			log.Printf("Invalid geo CIDR %q: %v", c, err)
			continue
		}
		r.cidrs = append(r.cidrs, ipNet)
	}
	return r
}

// ShouldProxy 判断该 IP 是否需要转发；无法解析的 IP 默认本地处理
func (r *Router) ShouldProxy(ip string) bool {
	if ip == "" || ip == "127.0.0.1" || ip == "localhost" {
		return false
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		log.Printf("Could not parse IP: %s", ip)
		return false
	}

	for _, ipNet := range r.cidrs {
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}

// ExtractRealIP 从代理头中取真实来源 IP
func ExtractRealIP(header http.Header) string {
	if xRealIP := header.Get("X-Real-Ip"); xRealIP != "" {
		return xRealIP
	}

	if xForwardedFor := header.Get("X-Forwarded-For"); xForwardedFor != "" {
		// x-forwarded-for 可能包含多个 IP，取第一个
		parts := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	return ""
}
