// Package util provides helper functions shared across the EraLove client:
// proxy-aware HTTP client construction and log level control.
package util

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// NewHTTPClient builds the outbound HTTP client used by the request pipeline.
// The timeout bounds the full round trip; a timeout surfaces as a transport
// error, never as a status the pipeline would interpret.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	httpClient := &http.Client{Timeout: timeout}
	return SetProxy(proxyURL, httpClient)
}

// SetProxy configures the provided HTTP client with the given proxy URL.
// It supports SOCKS5, HTTP, and HTTPS proxies; an empty or unparsable URL
// leaves the client untouched.
func SetProxy(proxyAddr string, httpClient *http.Client) *http.Client {
	if proxyAddr == "" {
		return httpClient
	}
	var transport *http.Transport
	proxyURL, errParse := url.Parse(proxyAddr)
	if errParse == nil {
		if proxyURL.Scheme == "socks5" {
			var proxyAuth *proxy.Auth
			if proxyURL.User != nil {
				username := proxyURL.User.Username()
				password, _ := proxyURL.User.Password()
				proxyAuth = &proxy.Auth{User: username, Password: password}
			}
			dialer, errSOCKS5 := proxy.SOCKS5("tcp", proxyURL.Host, proxyAuth, proxy.Direct)
			if errSOCKS5 != nil {
				log.Errorf("create SOCKS5 dialer failed: %v", errSOCKS5)
				return httpClient
			}
			transport = &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				},
			}
		} else if proxyURL.Scheme == "http" || proxyURL.Scheme == "https" {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	if transport != nil {
		httpClient.Transport = transport
	}
	return httpClient
}
