package aggregate

import (
	"encoding/json"
	"errors"
	"testing"

	"maidclient/internal/message"
)

func unitDecode(data []byte) (Response, error) {
	rc, err := message.DecodeUnitResponse(data)
	if err != nil {
		return Response{}, err
	}
	return Response{Result: rc}, nil
}

func unitPayload(t *testing.T, code message.Code) []byte {
	t.Helper()
	data, err := json.Marshal(message.CreateAccountResponse{
		Result: message.ReturnCode{Code: code},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func healthPayload(t *testing.T, code message.Code, size uint64) []byte {
	t.Helper()
	data, err := json.Marshal(message.PmidHealthResponse{
		Result:        message.ReturnCode{Code: code},
		AvailableSize: size,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{Threshold: 2, Expected: 3, Decode: unitDecode}, false},
		{"threshold equals expected", Options{Threshold: 3, Expected: 3, Decode: unitDecode}, false},
		{"missing decode", Options{Threshold: 2, Expected: 3}, true},
		{"zero threshold", Options{Threshold: 0, Expected: 3, Decode: unitDecode}, true},
		{"expected below threshold", Options{Threshold: 4, Expected: 3, Decode: unitDecode}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClassify_Counting(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		expected  int
		codes     []message.Code
		wantState State
	}{
		{"no responses", 3, 5, nil, StatePending},
		{"below threshold", 3, 5, []message.Code{message.CodeOK, message.CodeOK}, StatePending},
		{"exactly threshold", 3, 5, []message.Code{message.CodeOK, message.CodeOK, message.CodeOK}, StateSucceeded},
		{"threshold with failures mixed in", 3, 5,
			[]message.Code{message.CodeFailure, message.CodeOK, message.CodeFailure, message.CodeOK, message.CodeOK},
			StateSucceeded},
		{"failures below unreachability", 3, 5,
			[]message.Code{message.CodeFailure, message.CodeFailure}, StatePending},
		{"success unreachable", 3, 5,
			[]message.Code{message.CodeFailure, message.CodeFailure, message.CodeFailure}, StateFailed},
		{"threshold one single success", 1, 4, []message.Code{message.CodeOK}, StateSucceeded},
		{"threshold one all failures", 1, 2,
			[]message.Code{message.CodeFailure, message.CodeFailure}, StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := New(Options{Threshold: tt.threshold, Expected: tt.expected, Decode: unitDecode})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			payloads := make([][]byte, 0, len(tt.codes))
			for _, c := range tt.codes {
				payloads = append(payloads, unitPayload(t, c))
			}
			v := agg.Classify(payloads)
			if v.State != tt.wantState {
				t.Errorf("Classify() state = %v, want %v", v.State, tt.wantState)
			}
		})
	}
}

func TestClassify_PrefersSpecificError(t *testing.T) {
	agg, err := New(Options{Threshold: 3, Expected: 5, Decode: unitDecode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 2 successes and 3 failures, one of them specific: success unreachable,
	// the specific error must win whatever the order.
	orders := [][]message.Code{
		{message.CodeOK, message.CodeOK, message.CodeFailure, message.CodeAccountAlreadyExists, message.CodeFailure},
		{message.CodeAccountAlreadyExists, message.CodeFailure, message.CodeFailure, message.CodeOK, message.CodeOK},
		{message.CodeFailure, message.CodeFailure, message.CodeOK, message.CodeOK, message.CodeAccountAlreadyExists},
	}
	for i, codes := range orders {
		payloads := make([][]byte, 0, len(codes))
		for _, c := range codes {
			payloads = append(payloads, unitPayload(t, c))
		}
		v := agg.Classify(payloads)
		if v.State != StateFailed {
			t.Fatalf("order %d: state = %v, want StateFailed", i, v.State)
		}
		if !errors.Is(v.Err, message.ErrAccountAlreadyExists) {
			t.Errorf("order %d: err = %v, want ErrAccountAlreadyExists", i, v.Err)
		}
	}
}

func TestClassify_DecodeFailureCountsAsFailure(t *testing.T) {
	agg, err := New(Options{Threshold: 2, Expected: 3, Decode: unitDecode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payloads := [][]byte{
		[]byte("{not json"),
		[]byte("also not json"),
	}
	v := agg.Classify(payloads)
	if v.State != StateFailed {
		t.Fatalf("state = %v, want StateFailed", v.State)
	}
	if !errors.Is(v.Err, message.ErrFailure) {
		t.Errorf("err = %v, want wrapped ErrFailure", v.Err)
	}
}

func TestClassify_DecodeFailureDoesNotMaskSpecificError(t *testing.T) {
	agg, err := New(Options{Threshold: 2, Expected: 3, Decode: unitDecode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payloads := [][]byte{
		[]byte("{not json"),
		unitPayload(t, message.CodeNoSuchAccount),
	}
	v := agg.Classify(payloads)
	if v.State != StateFailed {
		t.Fatalf("state = %v, want StateFailed", v.State)
	}
	if !errors.Is(v.Err, message.ErrNoSuchAccount) {
		t.Errorf("err = %v, want ErrNoSuchAccount", v.Err)
	}
}

func TestClassify_HealthCombinesMinimum(t *testing.T) {
	decode := func(data []byte) (Response, error) {
		rc, size, err := message.DecodePmidHealthResponse(data)
		if err != nil {
			return Response{}, err
		}
		return Response{Result: rc, Value: size}, nil
	}
	agg, err := New(Options{Threshold: 3, Expected: 3, Decode: decode, Combine: MinUint64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payloads := [][]byte{
		healthPayload(t, message.CodeOK, 900),
		healthPayload(t, message.CodeOK, 300),
		healthPayload(t, message.CodeOK, 700),
	}
	v := agg.Classify(payloads)
	if v.State != StateSucceeded {
		t.Fatalf("state = %v, want StateSucceeded", v.State)
	}
	size, ok := v.Value.(uint64)
	if !ok {
		t.Fatalf("value type = %T, want uint64", v.Value)
	}
	if size != 300 {
		t.Errorf("combined health = %d, want 300", size)
	}
}
