package dnsfilter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/fuzzyac/internal/dictionary"
)

type stubUpstream struct {
	calls atomic.Int32
	err   error
}

func (u *stubUpstream) String() string {
	return "stub"
}

func (u *stubUpstream) Exchange(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	u.calls.Add(1)
	if u.err != nil {
		return nil, u.err
	}
	resp := new(dns.Msg)
	resp.SetReply(req)
	rr, err := dns.NewRR(req.Question[0].Name + " 60 IN A 1.2.3.4")
	if err != nil {
		return nil, err
	}
	resp.Answer = append(resp.Answer, rr)
	return resp, nil
}

func newDict(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.New(context.Background(), "brands", 1, dictionary.NewInlineSource("s", []string{"paypal"}))
	require.NoError(t, err)
	return d
}

func newServer(t *testing.T, up IUpstream, opts ...Option) *Server {
	t.Helper()
	f, err := NewFilter(newDict(t), 16)
	require.NoError(t, err)
	s, err := New(append([]Option{WithFilter(f), WithUpstream(up)}, opts...)...)
	require.NoError(t, err)
	return s
}

func query(name string) *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)
	return m
}

func TestBlockedName(t *testing.T) {
	up := &stubUpstream{}
	s := newServer(t, up)
	resp := s.process(context.Background(), query("secure-paypa1.example.com"))
	assert.Equal(t, dns.RcodeNameError, resp.Rcode)
	assert.True(t, resp.Authoritative)
	assert.Empty(t, resp.Answer)
	assert.Equal(t, int32(0), up.calls.Load())
}

func TestBlockedNameCustomRcode(t *testing.T) {
	s := newServer(t, &stubUpstream{}, WithRcode(dns.RcodeRefused))
	resp := s.process(context.Background(), query("PAYPAL.com"))
	assert.Equal(t, dns.RcodeRefused, resp.Rcode)
}

func TestForwardedName(t *testing.T) {
	up := &stubUpstream{}
	s := newServer(t, up)
	req := query("example.org")
	resp := s.process(context.Background(), req)
	assert.Equal(t, dns.RcodeSuccess, resp.Rcode)
	require.Len(t, resp.Answer, 1)
	assert.Equal(t, req.Question, resp.Question)
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestUpstreamFailure(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "dnsfilter.log")
	logkit := logger.Init(logFile, "error", 1, 1<<20, 1, false)
	t.Cleanup(func() {
		logger.Init("", "error", 0, 0, 0, true)
	})
	s := newServer(t, &stubUpstream{err: errors.New("boom")})
	resp := s.process(context.Background(), query("example.org"))
	assert.Equal(t, dns.RcodeServerFailure, resp.Rcode)
	_ = logkit.Sync()
	raw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "forward query failed")
	assert.Contains(t, string(raw), "boom")
	assert.Contains(t, string(raw), "stub")
}

func TestNonQueryOpcode(t *testing.T) {
	s := newServer(t, &stubUpstream{})
	req := query("example.org")
	req.Opcode = dns.OpcodeNotify
	resp := s.process(context.Background(), req)
	assert.Equal(t, dns.RcodeNotImplemented, resp.Rcode)
}

func TestFilterCacheFollowsReload(t *testing.T) {
	d := newDict(t)
	f, err := NewFilter(d, 16)
	require.NoError(t, err)
	ctx := context.Background()

	v, err := f.Check(ctx, "Paypal.com.")
	require.NoError(t, err)
	assert.True(t, v.Blocked)
	assert.Equal(t, "paypal", v.Match.Keyword)
	_, ok := f.cache.Get("paypal.com")
	assert.True(t, ok)

	v, err = f.Check(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, v.Blocked)

	require.NoError(t, d.Reload(ctx))
	cv, ok := f.cache.Get("paypal.com")
	require.True(t, ok)
	assert.NotSame(t, cv.ac, d.Automaton())
	v, err = f.Check(ctx, "paypal.com")
	require.NoError(t, err)
	assert.True(t, v.Blocked)
	cv, _ = f.cache.Get("paypal.com")
	assert.Same(t, d.Automaton(), cv.ac)
}

func TestMakeUpstream(t *testing.T) {
	tests := []struct {
		link    string
		name    string
		wantErr bool
	}{
		{link: "udp://8.8.8.8", name: "udp/8.8.8.8:53"},
		{link: "tcp://1.1.1.1:5353?timeout=500", name: "tcp/1.1.1.1:5353"},
		{link: "dot://dns.google", name: "tcp-tls/dns.google:853"},
		{link: "udp://[2001:db8::1]", name: "udp/[2001:db8::1]:53"},
		{link: "https://dns.google/dns-query", wantErr: true},
		{link: "udp://", wantErr: true},
		{link: "udp://8.8.8.8?timeout=abc", wantErr: true},
	}
	for _, tt := range tests {
		u, err := MakeUpstream(tt.link)
		if tt.wantErr {
			assert.Error(t, err, tt.link)
			continue
		}
		require.NoError(t, err, tt.link)
		assert.Equal(t, tt.name, u.String())
	}
}

func TestNewValidation(t *testing.T) {
	f, err := NewFilter(newDict(t), 0)
	require.NoError(t, err)
	_, err = New(WithFilter(f))
	assert.Error(t, err)
	_, err = New(WithUpstream(&stubUpstream{}))
	assert.Error(t, err)
	_, err = New(WithFilter(f), WithUpstream(&stubUpstream{}), WithRcode(4096))
	assert.Error(t, err)
}
