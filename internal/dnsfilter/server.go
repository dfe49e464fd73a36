package dnsfilter

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultTimeout = 6 * time.Second

// Server answers DNS queries, refusing names that hit the filter and
// forwarding the rest upstream.
type Server struct {
	c         *options
	udpServer *dns.Server
	tcpServer *dns.Server
}

func New(opts ...Option) (*Server, error) {
	c := &options{
		rcode:   dns.RcodeNameError,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.filter == nil {
		return nil, fmt.Errorf("no filter found")
	}
	if c.upstream == nil {
		return nil, fmt.Errorf("no upstream found")
	}
	if _, ok := dns.RcodeToString[c.rcode]; !ok {
		return nil, fmt.Errorf("invalid rcode:%d", c.rcode)
	}
	s := &Server{c: c}
	s.udpServer = &dns.Server{Addr: c.bind, Net: "udp", Handler: dns.HandlerFunc(s.handleDNS)}
	s.tcpServer = &dns.Server{Addr: c.bind, Net: "tcp", Handler: dns.HandlerFunc(s.handleDNS)}
	return s, nil
}

// Start listens on both UDP and TCP until ctx is done or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		errCh <- s.udpServer.ListenAndServe()
	}()
	go func() {
		errCh <- s.tcpServer.ListenAndServe()
	}()
	logutil.GetLogger(ctx).Info("dns filter start", zap.String("bind", s.c.bind), zap.String("upstream", s.c.upstream.String()))
	select {
	case <-ctx.Done():
		s.shutdown()
		return ctx.Err()
	case err := <-errCh:
		s.shutdown()
		return err
	}
}

func (s *Server) shutdown() {
	_ = s.udpServer.Shutdown()
	_ = s.tcpServer.Shutdown()
}

func (s *Server) handleDNS(w dns.ResponseWriter, req *dns.Msg) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			logutil.GetLogger(ctx).Error("panic recovered while handling dns request", zap.Any("panic", r))
		}
	}()
	resp := s.process(ctx, req)
	resp.Id = req.Id
	resp.Compress = true
	if err := w.WriteMsg(resp); err != nil {
		logutil.GetLogger(ctx).Error("write response failed", zap.Error(err))
	}
}

func (s *Server) process(ctx context.Context, req *dns.Msg) *dns.Msg {
	if req.Opcode != dns.OpcodeQuery || len(req.Question) == 0 {
		return reply(req, dns.RcodeNotImplemented)
	}
	question := req.Question[0]
	logger := logutil.GetLogger(ctx).With(zap.String("question", question.Name))
	v, err := s.c.filter.Check(ctx, question.Name)
	if err != nil {
		logger.Error("check name failed", zap.Error(err))
		return reply(req, dns.RcodeServerFailure)
	}
	if v.Blocked {
		logger.Debug("name blocked",
			zap.String("keyword", v.Match.Keyword),
			zap.String("found", v.Match.Found),
			zap.Int("distance", v.Match.Distance))
		resp := reply(req, s.c.rcode)
		resp.Authoritative = true
		return resp
	}
	ctx, cancel := context.WithTimeout(ctx, s.c.timeout)
	defer cancel()
	resp, err := s.c.upstream.Exchange(ctx, req.Copy())
	if err != nil {
		logger.Error("forward query failed", zap.String("upstream", s.c.upstream.String()), zap.Error(err))
		return reply(req, dns.RcodeServerFailure)
	}
	resp.Question = req.Question
	return resp
}

func reply(req *dns.Msg, rcode int) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetRcode(req, rcode)
	msg.RecursionAvailable = true
	return msg
}
