package aggregate

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"maidclient/internal/message"
)

// Response is one decoded peer reply: the outcome marker plus an optional
// operation-specific value (e.g. a reported health figure).
type Response struct {
	Result message.ReturnCode
	Value  interface{}
}

// DecodeFunc turns a raw response payload into a Response. A payload that
// fails to decode is counted as a failure by the classifier.
type DecodeFunc func(data []byte) (Response, error)

// CombineFunc folds the values carried by successful responses into the
// single value a success verdict resolves with.
type CombineFunc func(values []interface{}) interface{}

// Options configures an Aggregator.
type Options struct {
	// Threshold is how many successful responses constitute quorum.
	Threshold int
	// Expected is how many responses the operation will see at most; once
	// failures exceed Expected-Threshold, success is unreachable and the
	// aggregator fails early.
	Expected int
	// Decode parses one raw payload. Required.
	Decode DecodeFunc
	// Combine folds success values. Optional; the default returns nil for
	// value-less operations.
	Combine CombineFunc
	// Log receives decode-failure warnings. Optional.
	Log *logrus.Entry
}

// Aggregator owns the quorum decision for one in-flight operation. Classify
// is a pure function of the accumulated payload multiset: it recounts from
// scratch on every call, so arrival order never affects the verdict.
type Aggregator struct {
	threshold int
	expected  int
	decode    DecodeFunc
	combine   CombineFunc
	log       *logrus.Entry
}

// New validates the options and builds an aggregator.
func New(opts Options) (*Aggregator, error) {
	if opts.Decode == nil {
		return nil, fmt.Errorf("aggregate: decode function is required")
	}
	if opts.Threshold < 1 {
		return nil, fmt.Errorf("aggregate: threshold must be >= 1, got %d", opts.Threshold)
	}
	if opts.Expected < opts.Threshold {
		return nil, fmt.Errorf("aggregate: expected count %d below threshold %d",
			opts.Expected, opts.Threshold)
	}
	combine := opts.Combine
	if combine == nil {
		combine = func([]interface{}) interface{} { return nil }
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Aggregator{
		threshold: opts.Threshold,
		expected:  opts.Expected,
		decode:    opts.Decode,
		combine:   combine,
		log:       log,
	}, nil
}

// Classify renders the verdict for the payloads accumulated so far.
func (a *Aggregator) Classify(payloads [][]byte) Verdict {
	successes := 0
	failures := 0
	values := make([]interface{}, 0, len(payloads))
	var worst message.ReturnCode
	haveFailureCode := false
	decodeFailures := 0

	for _, payload := range payloads {
		resp, err := a.decode(payload)
		if err != nil {
			failures++
			decodeFailures++
			a.log.WithError(err).Warn("discarding undecodable response")
			continue
		}
		if resp.Result.OK() {
			successes++
			if resp.Value != nil {
				values = append(values, resp.Value)
			}
			continue
		}
		failures++
		if !haveFailureCode || preferred(resp.Result.Code, worst.Code) {
			worst = resp.Result
			haveFailureCode = true
		}
	}

	if successes >= a.threshold {
		return Succeeded(a.combine(values))
	}
	if failures > a.expected-a.threshold {
		if haveFailureCode {
			return Failed(worst.Err())
		}
		// Every failure was a decode failure.
		return Failed(fmt.Errorf("%w: %d undecodable responses", message.ErrFailure, decodeFailures))
	}
	return Pending()
}

// preferred reports whether candidate carries more information than current.
// Specific business codes beat the generic failure; among equally specific
// codes the lowest wins, keeping the choice a function of the response set
// rather than of arrival order.
func preferred(candidate, current message.Code) bool {
	if candidate.Specific() != current.Specific() {
		return candidate.Specific()
	}
	return candidate < current
}

// MinUint64 combines health reports by taking the most conservative figure.
func MinUint64(values []interface{}) interface{} {
	var min uint64
	first := true
	for _, v := range values {
		u, ok := v.(uint64)
		if !ok {
			continue
		}
		if first || u < min {
			min = u
			first = false
		}
	}
	if first {
		return uint64(0)
	}
	return min
}
