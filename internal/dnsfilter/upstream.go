package dnsfilter

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultUpstreamTimeout = 2 * time.Second

// IUpstream answers the queries the filter lets through.
type IUpstream interface {
	String() string
	Exchange(ctx context.Context, req *dns.Msg) (*dns.Msg, error)
}

type upstreamParams struct {
	Timeout int64 `schema:"timeout"`
}

// MakeUpstream parses links like udp://8.8.8.8:53?timeout=2000. Supported
// schemes are udp, tcp and dot. timeout is in milliseconds.
func MakeUpstream(link string) (IUpstream, error) {
	uri, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	if uri.Host == "" {
		return nil, fmt.Errorf("no upstream host found, link:%s", link)
	}
	params := &upstreamParams{}
	if err := decodeParams(params, uri.Query()); err != nil {
		return nil, err
	}
	timeout := time.Duration(params.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	switch uri.Scheme {
	case "udp", "tcp":
		addr, err := ensurePort(uri.Host, "53")
		if err != nil {
			return nil, err
		}
		return &classicUpstream{addr: addr, client: &dns.Client{Net: uri.Scheme, Timeout: timeout}}, nil
	case "dot":
		addr, err := ensurePort(uri.Host, "853")
		if err != nil {
			return nil, err
		}
		hostname, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		client := &dns.Client{
			Net:     "tcp-tls",
			Timeout: timeout,
			TLSConfig: &tls.Config{
				ServerName: hostname,
				MinVersion: tls.VersionTLS12,
			},
		}
		return &classicUpstream{addr: addr, client: client}, nil
	}
	return nil, fmt.Errorf("unsupported upstream type:%s", uri.Scheme)
}

func decodeParams(out interface{}, in map[string][]string) error {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d.Decode(out, in)
}

type classicUpstream struct {
	addr   string
	client *dns.Client
}

func (u *classicUpstream) String() string {
	return fmt.Sprintf("%s/%s", u.client.Net, u.addr)
}

func (u *classicUpstream) Exchange(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("upstream", u.String()))
	resp, _, err := u.client.ExchangeContext(ctx, req, u.addr)
	if err != nil {
		logger.Error("upstream query failed", zap.Error(err))
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from %s", u.addr)
	}
	logger.Debug("upstream query success", zap.Int("answer_count", len(resp.Answer)))
	return resp, nil
}

func ensurePort(host string, defaultPort string) (string, error) {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	cleanHost := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(cleanHost, defaultPort), nil
}
