package agents

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/medichain-agent-server/internal/llm"
)

// scriptedModel returns canned replies in order, recording every request
type scriptedModel struct {
	replies  []string
	errs     []error
	requests []*llm.Request
}

func (s *scriptedModel) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	reply := s.replies[len(s.replies)-1]
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return &llm.Response{Text: reply, Model: "gpt-4", Usage: llm.TokenUsage{TotalTokens: 100}}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func f64(v float64) *float64 { return &v }

func TestDecodeModelJSONToleratesCodeFences(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}

	err := decodeModelJSON("```json\n{\"name\": \"flu\"}\n```", &out)
	assert.NoError(t, err)
	assert.Equal(t, "flu", out.Name)
}

func TestDecodeModelJSONToleratesSurroundingProse(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}

	err := decodeModelJSON("Here is the result: {\"name\": \"flu\"} as requested.", &out)
	assert.NoError(t, err)
	assert.Equal(t, "flu", out.Name)
}

func TestDecodeModelJSONRejectsGarbage(t *testing.T) {
	var out struct{}
	err := decodeModelJSON("I cannot answer that.", &out)
	assert.Error(t, err)
}
