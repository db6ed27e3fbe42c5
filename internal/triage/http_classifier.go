package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/richxcame/fraud-registry/pkg/httpclient"
)

// HTTPClassifier delegates classification to an external reasoning service.
// It POSTs the report and expects {"isSuspicious": bool, "reason": string}.
type HTTPClassifier struct {
	client *httpclient.Client
	apiKey string
}

var _ Classifier = (*HTTPClassifier)(nil)

// NewHTTPClassifier creates a classifier for the service at url. It makes a
// single attempt per report; the gate owns the timeout.
func NewHTTPClassifier(url, apiKey string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		client: httpclient.NewClient(url, timeout),
		apiKey: apiKey,
	}
}

type httpVerdict struct {
	IsSuspicious *bool  `json:"isSuspicious"`
	Reason       string `json:"reason"`
}

// Classify implements Classifier
func (c *HTTPClassifier) Classify(ctx context.Context, report Report) (*Verdict, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	body, err := c.client.Post(ctx, "", report, headers)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}

	var resp httpVerdict
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	if resp.IsSuspicious == nil {
		return nil, errors.New("classifier response missing isSuspicious")
	}

	return &Verdict{IsSuspicious: *resp.IsSuspicious, Reason: resp.Reason}, nil
}
