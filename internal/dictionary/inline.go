package dictionary

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/utils"
)

type inlineConfig struct {
	Keywords []string `json:"keywords"`
}

type inlineSource struct {
	name     string
	keywords []string
}

func (s *inlineSource) Name() string {
	return s.name
}

func (s *inlineSource) Type() string {
	return "inline"
}

func (s *inlineSource) Keywords(context.Context) ([]string, error) {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out, nil
}

func (s *inlineSource) Files() []string {
	return nil
}

// NewInlineSource wraps a fixed keyword list.
func NewInlineSource(name string, keywords []string) ISource {
	return &inlineSource{name: name, keywords: keywords}
}

func createInlineSource(name string, args interface{}) (ISource, error) {
	c := &inlineConfig{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	if len(c.Keywords) == 0 {
		return nil, fmt.Errorf("inline source requires keywords")
	}
	return NewInlineSource(name, c.Keywords), nil
}

func init() {
	Register("inline", createInlineSource)
}
